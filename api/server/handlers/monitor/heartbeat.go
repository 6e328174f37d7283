package monitor

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/shared"
	"github.com/watchdock/agent/api/server/types"
)

// PushHeartbeatHandler records a liveness ping from a HEARTBEAT
// monitor's target. The heartbeat executor judges staleness against the
// recorded time on its next run.
type PushHeartbeatHandler struct {
	resultWriter shared.ResultWriter
	config       *config.Config
}

func NewPushHeartbeatHandler(config *config.Config) *PushHeartbeatHandler {
	return &PushHeartbeatHandler{
		resultWriter: shared.NewDefaultResultWriter(config.Logger),
		config:       config,
	}
}

func (h *PushHeartbeatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	ts := time.Now().UTC().Unix()

	h.config.Cache.SetHeartbeat(tag, ts)

	h.resultWriter.WriteResult(w, r, &types.ExecuteMonitorResponse{Tag: tag, Timestamp: ts})
}
