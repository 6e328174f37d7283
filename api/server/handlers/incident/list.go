package incident

import (
	"net/http"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/shared"
	"github.com/watchdock/agent/api/server/shared/apierrors"
	"github.com/watchdock/agent/api/server/types"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/utils"
)

const incidentPageSize = 50

type ListIncidentsHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewListIncidentsHandler(config *config.Config) *ListIncidentsHandler {
	return &ListIncidentsHandler{
		resultWriter:     shared.NewDefaultResultWriter(config.Logger),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *ListIncidentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &types.ListIncidentsRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	filter := &utils.ListIncidentsFilter{Open: req.Open}

	if req.State != "" {
		state := models.IncidentState(req.State)
		filter.State = &state
	}

	if req.MonitorTag != "" {
		filter.MonitorTag = &req.MonitorTag
	}

	incidents, err := h.config.Repository.Incident.ListIncidents(
		filter,
		utils.WithSortBy("start_date_time"),
		utils.WithOrder(utils.OrderDesc),
		utils.WithLimit(incidentPageSize),
		utils.WithOffset(req.Page*incidentPageSize),
	)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	res := &types.ListIncidentsResponse{Incidents: []*types.IncidentMeta{}}

	for _, incident := range incidents {
		res.Incidents = append(res.Incidents, types.IncidentToMeta(incident))
	}

	h.resultWriter.WriteResult(w, r, res)
}
