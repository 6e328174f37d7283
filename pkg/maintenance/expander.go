package maintenance

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/utils"
	"github.com/watchdock/agent/pkg/pulsar"
)

// LookAhead is the rolling window materialized ahead of time.
const LookAhead = 7 * 24 * time.Hour

// MaintenanceStore is the slice of the maintenance repository the
// expander needs.
type MaintenanceStore interface {
	ListMaintenances(filter *utils.ListMaintenancesFilter) ([]*models.Maintenance, error)
	ListEventStarts(maintenanceID uint) (map[int64]bool, error)
	CreateEvent(event *models.MaintenanceEvent) (*models.MaintenanceEvent, error)
}

// Expander materializes recurring maintenance definitions into concrete
// scheduled events inside a rolling look-ahead window. Single-occurrence
// rules (COUNT=1) are created once with the maintenance itself and never
// touched here.
type Expander struct {
	Repository MaintenanceStore
	Logger     *logger.Logger

	// Now is the clock anchoring the look-ahead window.
	Now func() time.Time

	pulsar *pulsar.Pulsar
	done   chan struct{}
}

func NewExpander(repo MaintenanceStore, l *logger.Logger) *Expander {
	return &Expander{
		Repository: repo,
		Logger:     l,
		Now:        time.Now,
	}
}

// Start runs one expansion immediately and then re-expands hourly until
// Stop is called.
func (e *Expander) Start() {
	e.pulsar = pulsar.NewPulsar(1, time.Hour)
	e.done = make(chan struct{})

	go func() {
		defer close(e.done)

		if err := e.ExpandAll(); err != nil {
			e.Logger.Error().Caller().Msgf("maintenance expansion: %v", err)
		}

		for range e.pulsar.Pulsate() {
			if err := e.ExpandAll(); err != nil {
				e.Logger.Error().Caller().Msgf("maintenance expansion: %v", err)
			}
		}
	}()
}

// Stop halts the hourly loop and waits for an in-flight pass.
func (e *Expander) Stop() {
	if e.pulsar == nil {
		return
	}

	e.pulsar.Stop()
	<-e.done
}

// ExpandAll runs one pass over every active maintenance. Idempotent; a
// second pass over an unchanged store creates nothing.
func (e *Expander) ExpandAll() error {
	active := models.MaintenanceStatusActive

	maintenances, err := e.Repository.ListMaintenances(&utils.ListMaintenancesFilter{Status: &active})

	if err != nil {
		return err
	}

	for _, m := range maintenances {
		if err := e.expand(m); err != nil {
			// A malformed rule disables that one maintenance; the rest
			// of the pass proceeds.
			e.Logger.Error().Caller().Msgf("maintenance %d (%s): %v", m.ID, m.Title, err)
		}
	}

	return nil
}

func (e *Expander) expand(m *models.Maintenance) error {
	if m.RRule == "" {
		return nil
	}

	opts, err := rrule.StrToROption(m.RRule)

	if err != nil {
		return err
	}

	if opts.Count == 1 {
		return nil
	}

	opts.Dtstart = time.Unix(m.StartDateTime, 0).UTC()

	rule, err := rrule.NewRRule(*opts)

	if err != nil {
		return err
	}

	now := e.Now().UTC()
	occurrences := rule.Between(now, now.Add(LookAhead), true)

	if len(occurrences) == 0 {
		return nil
	}

	existing, err := e.Repository.ListEventStarts(m.ID)

	if err != nil {
		return err
	}

	for _, occurrence := range occurrences {
		start := occurrence.Unix()

		if existing[start] {
			continue
		}

		_, err := e.Repository.CreateEvent(&models.MaintenanceEvent{
			MaintenanceID: m.ID,
			StartDateTime: start,
			EndDateTime:   start + m.DurationSeconds,
			Status:        models.MaintenanceEventScheduled,
		})

		if err != nil {
			return err
		}

		e.Logger.Info().Msgf("scheduled maintenance %d at %d", m.ID, start)
	}

	return nil
}
