package notifier

import (
	"fmt"
	"strconv"

	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
)

// Template is a channel-agnostic message template. Template text lives
// outside the core; the store resolves one by id.
type Template struct {
	ID      uint
	Subject string
	Body    string
}

// TemplateStore resolves notification templates.
type TemplateStore interface {
	Template(id uint) (*Template, error)
}

// Payload is everything a channel sender needs: the resolved template,
// the trigger's addressing blob and the variable map to interpolate.
type Payload struct {
	Template *Template
	Meta     string
	Vars     map[string]string
}

// Sender delivers one rendered notification on one channel.
type Sender interface {
	Send(channel models.Channel, payload *Payload) error
}

// TriggerLister is the slice of the trigger repository the notifier needs.
type TriggerLister interface {
	ListActiveTriggersForConfig(configID uint) ([]*models.Trigger, error)
}

// Notifier fans one alert state transition out to every active trigger
// of the config. Per-trigger failures (missing template, unknown
// channel, transport error) are logged and do not stop siblings.
type Notifier struct {
	Triggers  TriggerLister
	Templates TemplateStore
	Sender    Sender
	Logger    *logger.Logger

	SiteName string
	SiteURL  string
}

func NewNotifier(triggers TriggerLister, templates TemplateStore, sender Sender, l *logger.Logger, siteName, siteURL string) *Notifier {
	return &Notifier{
		Triggers:  triggers,
		Templates: templates,
		Sender:    sender,
		Logger:    l,
		SiteName:  siteName,
		SiteURL:   siteURL,
	}
}

func (n *Notifier) Dispatch(state models.AlertState, config *models.AlertConfig, alert *models.Alert, monitor *models.Monitor) error {
	triggers, err := n.Triggers.ListActiveTriggersForConfig(config.ID)

	if err != nil {
		return err
	}

	vars := n.buildVars(state, config, alert, monitor)

	for _, trigger := range triggers {
		if err := n.fire(trigger, vars); err != nil {
			n.Logger.Error().Caller().Msgf("trigger %d (%s) for config %d: %v", trigger.ID, trigger.Channel, config.ID, err)
		}
	}

	return nil
}

func (n *Notifier) fire(trigger *models.Trigger, vars map[string]string) error {
	template, err := n.Templates.Template(trigger.TemplateID)

	if err != nil {
		return fmt.Errorf("could not resolve template %d: %w", trigger.TemplateID, err)
	}

	return n.Sender.Send(trigger.Channel, &Payload{
		Template: template,
		Meta:     trigger.Meta,
		Vars:     vars,
	})
}

func (n *Notifier) buildVars(state models.AlertState, config *models.AlertConfig, alert *models.Alert, monitor *models.Monitor) map[string]string {
	vars := map[string]string{
		"site_name":         n.SiteName,
		"site_url":          n.SiteURL,
		"monitor_tag":       monitor.Tag,
		"monitor_name":      monitor.Name,
		"alert_id":          alert.UniqueID,
		"alert_state":       string(state),
		"metric":            string(config.AlertFor),
		"threshold":         config.AlertValue,
		"severity":          string(config.Severity),
		"failure_threshold": strconv.Itoa(config.FailureThreshold),
		"success_threshold": strconv.Itoa(config.SuccessThreshold),
	}

	if alert.IncidentID != nil {
		vars["incident_id"] = strconv.FormatUint(uint64(*alert.IncidentID), 10)
	}

	return vars
}
