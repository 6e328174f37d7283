package monitor

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/shared"
	"github.com/watchdock/agent/api/server/shared/apierrors"
	"github.com/watchdock/agent/api/server/types"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/pkg/pipeline"
)

// PushResponseHandler accepts a manual data point and runs it through
// the same persistence path as checker results.
type PushResponseHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewPushResponseHandler(config *config.Config) *PushResponseHandler {
	return &PushResponseHandler{
		resultWriter:     shared.NewDefaultResultWriter(config.Logger),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *PushResponseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	req := &types.PushResponseRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	pointType := req.Type

	if pointType == "" {
		pointType = models.DataPointTypeManual
	}

	err := pipeline.PushResponse(r.Context(), h.config.Queue, &pipeline.ResponsePayload{
		Tag:       tag,
		Timestamp: req.Timestamp,
		Status:    req.Status,
		Latency:   req.Latency,
		Type:      pointType,
	})

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	h.resultWriter.WriteResult(w, r, &types.ExecuteMonitorResponse{Tag: tag, Timestamp: models.AlignMinute(req.Timestamp)})
}
