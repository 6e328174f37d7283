package incident

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"gorm.io/gorm"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/shared"
	"github.com/watchdock/agent/api/server/shared/apierrors"
	"github.com/watchdock/agent/api/server/types"
)

type GetIncidentHandler struct {
	resultWriter shared.ResultWriter
	config       *config.Config
}

func NewGetIncidentHandler(config *config.Config) *GetIncidentHandler {
	return &GetIncidentHandler{
		resultWriter: shared.NewDefaultResultWriter(config.Logger),
		config:       config,
	}
}

func (h *GetIncidentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	incident, err := h.config.Repository.Incident.ReadIncident(uid)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrPassThroughToClient(err, http.StatusNotFound))
		return
	} else if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	res := &types.GetIncidentResponse{
		IncidentMeta: types.IncidentToMeta(incident),
		Comments:     []*types.IncidentCommentMeta{},
		Monitors:     []*types.IncidentMonitorMeta{},
	}

	for _, comment := range incident.Comments {
		res.Comments = append(res.Comments, &types.IncidentCommentMeta{
			State:       comment.State,
			Comment:     comment.Comment,
			CommentedAt: comment.CommentedAt,
		})
	}

	for _, monitor := range incident.Monitors {
		res.Monitors = append(res.Monitors, &types.IncidentMonitorMeta{
			MonitorTag: monitor.MonitorTag,
			Impact:     monitor.Impact,
		})
	}

	h.resultWriter.WriteResult(w, r, res)
}
