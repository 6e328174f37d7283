package scheduler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/watchdock/agent/internal/models"
)

// ConfigHash fingerprints the scheduling-relevant fields of a monitor.
// Reconcile compares fingerprints to decide whether a live cron entry
// still matches the stored definition; any field change yields a new
// hash and therefore a replace.
func ConfigHash(m *models.Monitor) string {
	h := sha256.New()

	fmt.Fprintf(h, "%s|%s|%s|%s|%t|%s|%d|%d|%t",
		m.Tag,
		m.Type,
		m.Cron,
		m.DefaultStatus,
		m.Active,
		m.TypeConfig,
		m.DayDegradedMinimumCount,
		m.DayDownMinimumCount,
		m.IncludeDegradedInDowntime,
	)

	return hex.EncodeToString(h.Sum(nil))
}
