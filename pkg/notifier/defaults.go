package notifier

import (
	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
)

// DefaultTemplateStore resolves every id to a bare built-in template.
// Deployments with real template management implement TemplateStore
// themselves.
type DefaultTemplateStore struct{}

func (s *DefaultTemplateStore) Template(id uint) (*Template, error) {
	return &Template{
		ID:      id,
		Subject: "[${site_name}] ${monitor_name} is ${alert_state}",
		Body:    "${metric} alert for ${monitor_name} (threshold ${threshold}) is ${alert_state}.",
	}, nil
}

// LogSender writes notifications to the log instead of a transport.
// Used until a channel transport is wired in.
type LogSender struct {
	Logger *logger.Logger
}

func (s *LogSender) Send(channel models.Channel, payload *Payload) error {
	s.Logger.Info().Msgf("notification on %s for monitor %s: %s is %s",
		channel,
		payload.Vars["monitor_tag"],
		payload.Vars["metric"],
		payload.Vars["alert_state"],
	)

	return nil
}
