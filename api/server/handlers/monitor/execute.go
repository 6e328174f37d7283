package monitor

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"gorm.io/gorm"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/shared"
	"github.com/watchdock/agent/api/server/shared/apierrors"
	"github.com/watchdock/agent/api/server/types"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/pkg/pipeline"
)

type ExecuteMonitorHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewExecuteMonitorHandler(config *config.Config) *ExecuteMonitorHandler {
	return &ExecuteMonitorHandler{
		resultWriter:     shared.NewDefaultResultWriter(config.Logger),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *ExecuteMonitorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	req := &types.ExecuteMonitorRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	if _, err := h.config.Repository.Monitor.ReadMonitor(tag); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrPassThroughToClient(err, http.StatusNotFound))
			return
		}

		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	ts := req.Timestamp

	if ts == 0 {
		ts = time.Now().UTC().Unix()
	}

	ts = models.AlignMinute(ts)

	if err := pipeline.PushExecution(r.Context(), h.config.Queue, tag, ts); err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	h.resultWriter.WriteResult(w, r, &types.ExecuteMonitorResponse{Tag: tag, Timestamp: ts})
}
