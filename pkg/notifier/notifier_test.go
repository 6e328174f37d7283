package notifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
)

type staticTriggers struct {
	triggers []*models.Trigger
}

func (s *staticTriggers) ListActiveTriggersForConfig(configID uint) ([]*models.Trigger, error) {
	return s.triggers, nil
}

type mapTemplates struct {
	templates map[uint]*Template
}

func (s *mapTemplates) Template(id uint) (*Template, error) {
	if template, ok := s.templates[id]; ok {
		return template, nil
	}

	return nil, errors.New("no such template")
}

type recordingSender struct {
	sent []models.Channel
	vars []map[string]string
	err  error
}

func (s *recordingSender) Send(channel models.Channel, payload *Payload) error {
	if s.err != nil {
		return s.err
	}

	s.sent = append(s.sent, channel)
	s.vars = append(s.vars, payload.Vars)

	return nil
}

func trigger(id uint, channel models.Channel, templateID uint) *models.Trigger {
	tr := &models.Trigger{Channel: channel, TemplateID: templateID, IsActive: true}
	tr.ID = id

	return tr
}

func dispatchArgs() (*models.AlertConfig, *models.Alert, *models.Monitor) {
	config := &models.AlertConfig{
		AlertFor:         models.AlertMetricStatus,
		AlertValue:       "DOWN",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Severity:         models.SeverityCritical,
	}
	config.ID = 7

	return config, models.NewAlert(config.ID), &models.Monitor{Tag: "api-1", Name: "API 1"}
}

func TestDispatchFansOutToAllTriggers(t *testing.T) {
	templates := &mapTemplates{templates: map[uint]*Template{1: {ID: 1, Body: "down"}}}
	triggers := &staticTriggers{triggers: []*models.Trigger{
		trigger(1, models.ChannelSlack, 1),
		trigger(2, models.ChannelEmail, 1),
	}}
	sender := &recordingSender{}

	n := NewNotifier(triggers, templates, sender, logger.NewConsole(false), "WatchDock", "https://status.example.com")

	config, alert, monitor := dispatchArgs()

	err := n.Dispatch(models.AlertStateTriggered, config, alert, monitor)
	assert.NoError(t, err)

	assert.Equal(t, []models.Channel{models.ChannelSlack, models.ChannelEmail}, sender.sent)
	assert.Equal(t, "api-1", sender.vars[0]["monitor_tag"])
	assert.Equal(t, "TRIGGERED", sender.vars[0]["alert_state"])
	assert.Equal(t, "WatchDock", sender.vars[0]["site_name"])
}

func TestDispatchMissingTemplateDoesNotStopSiblings(t *testing.T) {
	templates := &mapTemplates{templates: map[uint]*Template{1: {ID: 1}}}
	triggers := &staticTriggers{triggers: []*models.Trigger{
		trigger(1, models.ChannelSlack, 99),
		trigger(2, models.ChannelEmail, 1),
	}}
	sender := &recordingSender{}

	n := NewNotifier(triggers, templates, sender, logger.NewConsole(false), "WatchDock", "")

	config, alert, monitor := dispatchArgs()

	err := n.Dispatch(models.AlertStateTriggered, config, alert, monitor)
	assert.NoError(t, err)

	assert.Equal(t, []models.Channel{models.ChannelEmail}, sender.sent)
}

func TestDispatchNoTriggersIsANoOp(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(&staticTriggers{}, &mapTemplates{}, sender, logger.NewConsole(false), "", "")

	config, alert, monitor := dispatchArgs()

	assert.NoError(t, n.Dispatch(models.AlertStateResolved, config, alert, monitor))
	assert.Empty(t, sender.sent)
}
