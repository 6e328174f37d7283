package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/pkg/pipeline"
	"github.com/watchdock/agent/pkg/queue"
)

// SecretStore enumerates named secrets to materialize into the process
// environment before monitor configs are read.
type SecretStore interface {
	ListSecrets() ([]*models.Secret, error)
}

type liveEntry struct {
	hash string
	id   cron.EntryID
}

// MonitorScheduler owns one cron runner and reconciles its entry set
// against the stored monitor definitions. Monitors are identified by
// tag; a changed definition is detected by config hash and the entry
// is replaced rather than patched.
type MonitorScheduler struct {
	Repository MonitorLister
	Secrets    SecretStore
	Queue      queue.Queue
	Logger     *logger.Logger

	// Now is the clock used to stamp fired executions.
	Now func() time.Time

	cron *cron.Cron
	mu   sync.Mutex
	live map[string]liveEntry
}

// MonitorLister is the slice of the monitor repository the scheduler needs.
type MonitorLister interface {
	ListActiveMonitors() ([]*models.Monitor, error)
}

func NewMonitorScheduler(repo MonitorLister, secrets SecretStore, q queue.Queue, l *logger.Logger) *MonitorScheduler {
	return &MonitorScheduler{
		Repository: repo,
		Secrets:    secrets,
		Queue:      q,
		Logger:     l,
		Now:        time.Now,
		cron:       cron.New(),
		live:       make(map[string]liveEntry),
	}
}

// Start begins running cron entries. Reconcile may be called before or
// after Start; entries added while stopped fire once started.
func (s *MonitorScheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron runner and waits for in-flight entry functions.
func (s *MonitorScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Reconcile diffs the live cron entries against the stored active
// monitors. Orphaned and stale entries are removed, missing ones are
// added, and a newly added monitor fires immediately so it does not
// wait a full cron period for its first data point. Reconcile is
// idempotent; a second pass over an unchanged store changes nothing.
func (s *MonitorScheduler) Reconcile() error {
	if err := s.materializeSecrets(); err != nil {
		s.Logger.Warn().Msgf("could not materialize secrets: %v", err)
	}

	monitors, err := s.Repository.ListActiveMonitors()

	if err != nil {
		return err
	}

	type desiredEntry struct {
		hash string
		cron string
	}

	desired := make(map[string]desiredEntry)

	for _, m := range monitors {
		if !m.Schedulable() {
			continue
		}

		desired[m.Tag] = desiredEntry{hash: ConfigHash(m), cron: m.Cron}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for tag, entry := range s.live {
		d, ok := desired[tag]

		if ok && d.hash == entry.hash {
			continue
		}

		s.cron.Remove(entry.id)
		delete(s.live, tag)

		s.Logger.Info().Msgf("removed schedule for monitor %s", tag)
	}

	for tag, d := range desired {
		if _, ok := s.live[tag]; ok {
			continue
		}

		tag := tag
		id, err := s.cron.AddFunc(d.cron, func() {
			s.fire(tag)
		})

		if err != nil {
			// A bad expression disables this monitor until its
			// definition is fixed; the rest of the pass proceeds.
			s.Logger.Error().Caller().Msgf("invalid cron %q for monitor %s: %v", d.cron, tag, err)
			continue
		}

		s.live[tag] = liveEntry{hash: d.hash, id: id}

		s.Logger.Info().Msgf("scheduled monitor %s with cron %q", tag, d.cron)

		s.fire(tag)
	}

	return nil
}

// fire submits one execution job stamped to the current aligned minute.
func (s *MonitorScheduler) fire(tag string) {
	ts := models.AlignMinute(s.Now().UTC().Unix())

	if err := pipeline.PushExecution(context.Background(), s.Queue, tag, ts); err != nil {
		s.Logger.Error().Caller().Msgf("could not enqueue execution for monitor %s: %v", tag, err)
	}
}

// LiveTags reports the currently scheduled monitor tags.
func (s *MonitorScheduler) LiveTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := make([]string, 0, len(s.live))

	for tag := range s.live {
		tags = append(tags, tag)
	}

	return tags
}

func (s *MonitorScheduler) liveHash(tag string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live[tag]

	return entry.hash, ok
}

// materializeSecrets exports stored secrets as environment variables so
// ${NAME} references inside monitor configs resolve at execution time.
func (s *MonitorScheduler) materializeSecrets() error {
	if s.Secrets == nil {
		return nil
	}

	secrets, err := s.Secrets.ListSecrets()

	if err != nil {
		return err
	}

	for _, secret := range secrets {
		if err := os.Setenv(secret.Name, secret.Value); err != nil {
			return err
		}
	}

	return nil
}
