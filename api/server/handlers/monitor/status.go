package monitor

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/shared"
	"github.com/watchdock/agent/api/server/shared/apierrors"
	"github.com/watchdock/agent/api/server/types"
	"github.com/watchdock/agent/pkg/cache"
)

// GetStatusHandler serves the current status from the read-through
// cache, falling back to the latest persisted data point on a miss.
type GetStatusHandler struct {
	resultWriter shared.ResultWriter
	config       *config.Config
}

func NewGetStatusHandler(config *config.Config) *GetStatusHandler {
	return &GetStatusHandler{
		resultWriter: shared.NewDefaultResultWriter(config.Logger),
		config:       config,
	}
}

func (h *GetStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	entry, err := h.config.Cache.Status(tag, h.latestFromStore)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	if entry == nil {
		http.NotFound(w, r)
		return
	}

	h.resultWriter.WriteResult(w, r, &types.MonitorStatusResponse{
		Tag:       tag,
		Status:    entry.Status,
		Latency:   entry.Latency,
		Timestamp: entry.Timestamp,
	})
}

func (h *GetStatusHandler) latestFromStore(tag string) (*cache.StatusEntry, error) {
	points, err := h.config.Repository.DataPoint.ListLatestDataPoints(tag, 1, time.Now().UTC().Unix())

	if err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, nil
	}

	return &cache.StatusEntry{
		Status:    points[0].Status,
		Latency:   points[0].Latency,
		Timestamp: points[0].Timestamp,
	}, nil
}
