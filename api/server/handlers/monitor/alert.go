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

// PushAlertHandler forces one alert evaluation for a monitor-minute.
type PushAlertHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewPushAlertHandler(config *config.Config) *PushAlertHandler {
	return &PushAlertHandler{
		resultWriter:     shared.NewDefaultResultWriter(config.Logger),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *PushAlertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	req := &types.PushAlertRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	if err := pipeline.PushAlertEvaluation(r.Context(), h.config.Queue, tag, req.Timestamp, req.Status); err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	h.resultWriter.WriteResult(w, r, &types.ExecuteMonitorResponse{Tag: tag, Timestamp: models.AlignMinute(req.Timestamp)})
}
