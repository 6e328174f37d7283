package server

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/handlers/healthcheck"
	"github.com/watchdock/agent/api/server/handlers/incident"
	"github.com/watchdock/agent/api/server/handlers/monitor"
)

// NewRouter wires the exposed surface over the core pipeline.
func NewRouter(conf *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Method("GET", "/livez", healthcheck.NewLivezHandler(conf))
	r.Method("GET", "/readyz", healthcheck.NewReadyzHandler(conf))

	r.Method("POST", "/monitors/{tag}/execute", monitor.NewExecuteMonitorHandler(conf))
	r.Method("POST", "/monitors/{tag}/response", monitor.NewPushResponseHandler(conf))
	r.Method("POST", "/monitors/{tag}/alert", monitor.NewPushAlertHandler(conf))
	r.Method("POST", "/monitors/{tag}/heartbeat", monitor.NewPushHeartbeatHandler(conf))
	r.Method("GET", "/monitors/{tag}/status", monitor.NewGetStatusHandler(conf))
	r.Method("GET", "/monitors/{tag}/uptime", monitor.NewGetUptimeBarHandler(conf))
	r.Method("GET", "/monitors/{tag}/latency", monitor.NewGetLatencySeriesHandler(conf))

	r.Method("GET", "/incidents", incident.NewListIncidentsHandler(conf))
	r.Method("GET", "/incidents/{uid}", incident.NewGetIncidentHandler(conf))

	return r
}
