package uptime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/watchdock/agent/internal/models"
)

func TestAggregateDefaultFormula(t *testing.T) {
	counts := []*models.TimestampStatusCount{
		{Ts: 0, Up: 80, Degraded: 10, Down: 10},
	}

	summary := Aggregate(counts, Options{})

	assert.Equal(t, "90.00", summary.Uptime)
}

func TestAggregateFullUptimeHasNoDecimals(t *testing.T) {
	counts := []*models.TimestampStatusCount{
		{Ts: 0, Up: 100},
	}

	summary := Aggregate(counts, Options{})

	assert.Equal(t, "100", summary.Uptime)
}

func TestAggregateEmptyWindow(t *testing.T) {
	summary := Aggregate(nil, Options{})

	assert.Equal(t, "0", summary.Uptime)
	assert.Zero(t, summary.AvgLatency)
	assert.Zero(t, summary.MinLatency)
	assert.Zero(t, summary.MaxLatency)
}

func TestAggregateCustomFormula(t *testing.T) {
	counts := []*models.TimestampStatusCount{
		{Ts: 0, Up: 50, Degraded: 50},
	}

	// Degraded counts against availability under this formula.
	summary := Aggregate(counts, Options{
		Numerator:   []models.Status{models.StatusUp},
		Denominator: []models.Status{models.StatusUp, models.StatusDown, models.StatusDegraded},
	})

	assert.Equal(t, "50.00", summary.Uptime)
}

func TestAggregateLatencyWeightedByBucketSize(t *testing.T) {
	counts := []*models.TimestampStatusCount{
		{Ts: 0, Up: 10, AvgLatency: 100, MinLatency: 50, MaxLatency: 150},
		{Ts: DaySeconds, Up: 30, AvgLatency: 300, MinLatency: 200, MaxLatency: 400},
	}

	summary := Aggregate(counts, Options{})

	// (100*10 + 300*30) / 40
	assert.InDelta(t, 250.0, summary.AvgLatency, 0.001)
	assert.Equal(t, 50.0, summary.MinLatency)
	assert.Equal(t, 400.0, summary.MaxLatency)
}

func TestAggregateIgnoresZeroLatencyBuckets(t *testing.T) {
	counts := []*models.TimestampStatusCount{
		{Ts: 0, Down: 5},
		{Ts: DaySeconds, Up: 5, AvgLatency: 120, MinLatency: 100, MaxLatency: 140},
	}

	summary := Aggregate(counts, Options{})

	assert.InDelta(t, 120.0, summary.AvgLatency, 0.001)
	assert.Equal(t, 100.0, summary.MinLatency)
}

func TestFillGapsSynthesizesMissingDays(t *testing.T) {
	start := int64(1700006400) - 1700006400%DaySeconds

	counts := []*models.TimestampStatusCount{
		{Ts: start, Up: 10},
		{Ts: start + 2*DaySeconds, Down: 3},
	}

	filled := FillGaps(counts, start, 5)

	assert.Len(t, filled, 5)
	assert.Equal(t, 10, filled[0].Up)
	assert.Equal(t, 3, filled[2].Down)

	for _, i := range []int{1, 3, 4} {
		c := filled[i]
		assert.Zero(t, c.Up+c.Down+c.Degraded+c.Maintenance+c.NoData, "day %d is all-zero", i)
	}

	for i, c := range filled {
		assert.Equal(t, start+int64(i)*DaySeconds, c.Ts)
	}
}
