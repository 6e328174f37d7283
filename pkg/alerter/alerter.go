package alerter

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/repository"
	"github.com/watchdock/agent/internal/utils"
	"github.com/watchdock/agent/pkg/uptime"
)

// Dispatcher fans an alert state transition out to the configured
// notification channels.
type Dispatcher interface {
	Dispatch(state models.AlertState, config *models.AlertConfig, alert *models.Alert, monitor *models.Monitor) error
}

// Alerter evaluates alert configs against fresh monitoring data. One
// evaluation runs per persisted monitor-minute; each config is checked
// inside its own error boundary so a broken config cannot starve its
// siblings.
type Alerter struct {
	Repository *repository.Repository
	Notifier   Dispatcher
	Logger     *logger.Logger
}

func NewAlerter(repo *repository.Repository, notifier Dispatcher, l *logger.Logger) *Alerter {
	return &Alerter{
		Repository: repo,
		Notifier:   notifier,
		Logger:     l,
	}
}

// EvaluateMonitor checks every active alert config of a monitor against
// the data up to and including ts.
func (a *Alerter) EvaluateMonitor(tag string, ts int64, status models.Status) error {
	monitor, err := a.Repository.Monitor.ReadMonitor(tag)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		a.Logger.Info().Msgf("monitor %s no longer exists, skipping alert evaluation", tag)
		return nil
	} else if err != nil {
		return err
	}

	isActive := true

	configs, err := a.Repository.AlertConfig.ListAlertConfigs(&utils.ListAlertConfigsFilter{
		MonitorTag: &tag,
		IsActive:   &isActive,
	})

	if err != nil {
		return err
	}

	for _, config := range configs {
		if err := a.evaluateConfig(monitor, config, ts); err != nil {
			a.Logger.Error().Caller().Msgf("alert config %d for monitor %s: %v", config.ID, tag, err)
		}
	}

	return nil
}

func (a *Alerter) evaluateConfig(monitor *models.Monitor, config *models.AlertConfig, ts int64) error {
	triggered, err := a.Repository.Alert.ReadTriggeredAlert(config.ID)

	if err != nil {
		return err
	}

	var breached, cleared bool

	switch config.AlertFor {
	case models.AlertMetricStatus, models.AlertMetricLatency:
		breached, cleared, err = a.streakVerdict(monitor.Tag, config, ts)
	case models.AlertMetricUptime:
		breached, cleared, err = a.meterVerdict(monitor.Tag, config, ts)
	default:
		return fmt.Errorf("unknown alert metric %q", config.AlertFor)
	}

	if err != nil {
		return err
	}

	if triggered == nil && breached {
		return a.trigger(monitor, config, ts)
	}

	if triggered != nil && cleared {
		return a.resolve(monitor, config, triggered, ts)
	}

	return nil
}

// streakVerdict re-reads the latest data points and reports whether the
// breach streak reached the failure threshold and whether the healthy
// streak reached the success threshold.
func (a *Alerter) streakVerdict(tag string, config *models.AlertConfig, ts int64) (bool, bool, error) {
	window := config.FailureThreshold

	if config.SuccessThreshold > window {
		window = config.SuccessThreshold
	}

	points, err := a.Repository.DataPoint.ListLatestDataPoints(tag, window, ts)

	if err != nil {
		return false, false, err
	}

	breachPoint, err := breachPredicate(config)

	if err != nil {
		return false, false, err
	}

	breached := len(points) >= config.FailureThreshold

	for i := 0; breached && i < config.FailureThreshold; i++ {
		breached = breachPoint(points[i])
	}

	cleared := len(points) >= config.SuccessThreshold

	for i := 0; cleared && i < config.SuccessThreshold; i++ {
		cleared = !breachPoint(points[i])
	}

	return breached, cleared, nil
}

func breachPredicate(config *models.AlertConfig) (func(*models.MonitoringDataPoint) bool, error) {
	if config.AlertFor == models.AlertMetricStatus {
		target := models.Status(config.AlertValue)

		return func(dp *models.MonitoringDataPoint) bool {
			return dp.Status == target
		}, nil
	}

	threshold, err := strconv.ParseFloat(config.AlertValue, 64)

	if err != nil {
		return nil, fmt.Errorf("latency threshold %q is not a number: %w", config.AlertValue, err)
	}

	return func(dp *models.MonitoringDataPoint) bool {
		return dp.Latency > threshold
	}, nil
}

// meterVerdict handles the uptime metric. Uptime is an aggregate over a
// trailing day, so the streak cannot be re-read from data points; a
// persisted meter carries the breach/ok counters across evaluations.
func (a *Alerter) meterVerdict(tag string, config *models.AlertConfig, ts int64) (bool, bool, error) {
	threshold, err := strconv.ParseFloat(config.AlertValue, 64)

	if err != nil {
		return false, false, fmt.Errorf("uptime threshold %q is not a number: %w", config.AlertValue, err)
	}

	counts, err := a.Repository.DataPoint.RangeStatusCounts(tag, ts-uptime.DaySeconds, ts+60, uptime.DaySeconds)

	if err != nil {
		return false, false, err
	}

	meter, err := a.Repository.AlertMeter.ReadMeter(config.ID)

	if err != nil {
		return false, false, err
	}

	if uptime.Percent(counts, uptime.Options{}) < threshold {
		meter.BreachCount++
		meter.OkCount = 0
	} else {
		meter.OkCount++
		meter.BreachCount = 0
	}

	if _, err := a.Repository.AlertMeter.UpsertMeter(meter); err != nil {
		return false, false, err
	}

	return meter.BreachCount >= config.FailureThreshold, meter.OkCount >= config.SuccessThreshold, nil
}

func (a *Alerter) trigger(monitor *models.Monitor, config *models.AlertConfig, ts int64) error {
	alert := models.NewAlert(config.ID)

	if config.CreateIncident {
		incident, err := a.openIncident(monitor, config, ts)

		if err != nil {
			return err
		}

		alert.IncidentID = &incident.ID
	}

	if _, err := a.Repository.Alert.CreateAlert(alert); err != nil {
		return err
	}

	a.Logger.Info().Msgf("alert triggered for monitor %s (%s %s)", monitor.Tag, config.AlertFor, config.AlertValue)

	a.dispatch(models.AlertStateTriggered, config, alert, monitor)

	return nil
}

func (a *Alerter) resolve(monitor *models.Monitor, config *models.AlertConfig, alert *models.Alert, ts int64) error {
	alert.State = models.AlertStateResolved

	if _, err := a.Repository.Alert.UpdateAlert(alert); err != nil {
		return err
	}

	if alert.IncidentID != nil {
		if err := a.closeIncident(config, *alert.IncidentID, ts); err != nil {
			return err
		}
	}

	a.Logger.Info().Msgf("alert resolved for monitor %s (%s %s)", monitor.Tag, config.AlertFor, config.AlertValue)

	a.dispatch(models.AlertStateResolved, config, alert, monitor)

	return nil
}

func (a *Alerter) openIncident(monitor *models.Monitor, config *models.AlertConfig, ts int64) (*models.Incident, error) {
	incident := models.NewIncident()
	incident.Title = fmt.Sprintf("%s %s: %s", monitor.Name, config.AlertFor, config.AlertValue)
	incident.StartDateTime = ts
	incident.Source = "alert"
	// No declared impact: a manual impact would flow back into the merge
	// pipeline and mask the monitor's recovery from its own alert.
	incident.Monitors = []models.IncidentMonitor{
		{MonitorTag: monitor.Tag},
	}

	incident, err := a.Repository.Incident.CreateIncident(incident)

	if err != nil {
		return nil, err
	}

	_, err = a.Repository.Incident.AddComment(&models.IncidentComment{
		IncidentID:  incident.ID,
		State:       models.IncidentStateInvestigating,
		Comment:     "Alert triggered.\n\n" + settingsTable(config),
		CommentedAt: ts,
	})

	if err != nil {
		return nil, err
	}

	return incident, nil
}

func (a *Alerter) closeIncident(config *models.AlertConfig, incidentID uint, ts int64) error {
	incident, err := a.Repository.Incident.ReadIncidentByID(incidentID)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	if !incident.Open() {
		return nil
	}

	incident.State = models.IncidentStateResolved
	incident.EndDateTime = &ts

	if _, err := a.Repository.Incident.UpdateIncident(incident); err != nil {
		return err
	}

	minutes := (ts - incident.StartDateTime) / 60

	_, err = a.Repository.Incident.AddComment(&models.IncidentComment{
		IncidentID:  incident.ID,
		State:       models.IncidentStateResolved,
		Comment:     fmt.Sprintf("Alert resolved after %d minutes.\n\n%s", minutes, settingsTable(config)),
		CommentedAt: ts,
	})

	return err
}

func (a *Alerter) dispatch(state models.AlertState, config *models.AlertConfig, alert *models.Alert, monitor *models.Monitor) {
	if a.Notifier == nil {
		return
	}

	if err := a.Notifier.Dispatch(state, config, alert, monitor); err != nil {
		a.Logger.Error().Caller().Msgf("could not dispatch %s notifications for config %d: %v", state, config.ID, err)
	}
}

func settingsTable(config *models.AlertConfig) string {
	return fmt.Sprintf(
		"| Setting | Value |\n|---|---|\n| Metric | %s |\n| Threshold | %s |\n| Failure threshold | %d |\n| Success threshold | %d |\n| Severity | %s |",
		config.AlertFor,
		config.AlertValue,
		config.FailureThreshold,
		config.SuccessThreshold,
		config.Severity,
	)
}
