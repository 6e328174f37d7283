package uptime

import (
	"fmt"
	"math"

	"github.com/watchdock/agent/internal/models"
)

const DaySeconds int64 = 86400

// Options selects which status counts feed the uptime ratio. Empty lists
// fall back to the default formula: UP and DEGRADED count as available,
// everything except NO_DATA counts as observed.
type Options struct {
	Numerator   []models.Status
	Denominator []models.Status
}

// Summary is the aggregate over a window of buckets.
type Summary struct {
	Uptime     string  `json:"uptime"`
	AvgLatency float64 `json:"avg_latency"`
	MinLatency float64 `json:"min_latency"`
	MaxLatency float64 `json:"max_latency"`
}

var (
	defaultNumerator   = []models.Status{models.StatusUp, models.StatusDegraded}
	defaultDenominator = []models.Status{
		models.StatusUp,
		models.StatusDown,
		models.StatusDegraded,
		models.StatusMaintenance,
	}
)

// Aggregate folds a window of per-bucket status counts into one uptime
// percentage and latency statistics. The latency average is weighted by
// the number of observations behind each bucket; min and max ignore
// buckets that carry no latency at all.
func Aggregate(counts []*models.TimestampStatusCount, opts Options) Summary {
	numStatuses := opts.Numerator
	denStatuses := opts.Denominator

	if len(numStatuses) == 0 {
		numStatuses = defaultNumerator
	}

	if len(denStatuses) == 0 {
		denStatuses = defaultDenominator
	}

	var numerator, denominator int64

	var latencySum float64
	var latencyWeight int64
	minLatency := math.MaxFloat64
	maxLatency := 0.0

	for _, c := range counts {
		numerator += sumStatuses(c, numStatuses)
		denominator += sumStatuses(c, denStatuses)

		observed := observationCount(c)

		if c.AvgLatency > 0 && observed > 0 {
			latencySum += c.AvgLatency * float64(observed)
			latencyWeight += observed
		}

		if c.MinLatency > 0 && c.MinLatency < minLatency {
			minLatency = c.MinLatency
		}

		if c.MaxLatency > maxLatency {
			maxLatency = c.MaxLatency
		}
	}

	summary := Summary{Uptime: Percentage(numerator, denominator), MaxLatency: maxLatency}

	if latencyWeight > 0 {
		summary.AvgLatency = latencySum / float64(latencyWeight)
	}

	if minLatency < math.MaxFloat64 {
		summary.MinLatency = minLatency
	}

	return summary
}

// Percent computes the uptime percentage of a window as a number, for
// callers comparing against a threshold rather than rendering.
func Percent(counts []*models.TimestampStatusCount, opts Options) float64 {
	numStatuses := opts.Numerator
	denStatuses := opts.Denominator

	if len(numStatuses) == 0 {
		numStatuses = defaultNumerator
	}

	if len(denStatuses) == 0 {
		denStatuses = defaultDenominator
	}

	var numerator, denominator int64

	for _, c := range counts {
		numerator += sumStatuses(c, numStatuses)
		denominator += sumStatuses(c, denStatuses)
	}

	if denominator == 0 {
		return 0
	}

	return math.Round(float64(numerator)/float64(denominator)*10000) / 100
}

// Percentage renders numerator/denominator as an uptime percentage
// string. The ratio is rounded to two decimal places; the boundary
// values 0 and 100 render without decimals.
func Percentage(numerator, denominator int64) string {
	if denominator == 0 {
		return "0"
	}

	pct := math.Round(float64(numerator)/float64(denominator)*10000) / 100

	if pct == 0 || pct == 100 {
		return fmt.Sprintf("%.0f", pct)
	}

	return fmt.Sprintf("%.2f", pct)
}

// FillGaps densifies a window of daily buckets. Missing days are
// synthesized with all-zero counts so the uptime arithmetic stays
// well-defined over the whole window. Start must be day-aligned.
func FillGaps(counts []*models.TimestampStatusCount, start int64, days int) []*models.TimestampStatusCount {
	byTs := make(map[int64]*models.TimestampStatusCount, len(counts))

	for _, c := range counts {
		byTs[c.Ts] = c
	}

	res := make([]*models.TimestampStatusCount, 0, days)

	for i := 0; i < days; i++ {
		ts := start + int64(i)*DaySeconds

		if c, ok := byTs[ts]; ok {
			res = append(res, c)
			continue
		}

		res = append(res, &models.TimestampStatusCount{Ts: ts})
	}

	return res
}

func sumStatuses(c *models.TimestampStatusCount, statuses []models.Status) int64 {
	var sum int64

	for _, s := range statuses {
		switch s {
		case models.StatusUp:
			sum += int64(c.Up)
		case models.StatusDown:
			sum += int64(c.Down)
		case models.StatusDegraded:
			sum += int64(c.Degraded)
		case models.StatusMaintenance:
			sum += int64(c.Maintenance)
		case models.StatusNoData:
			sum += int64(c.NoData)
		}
	}

	return sum
}

func observationCount(c *models.TimestampStatusCount) int64 {
	return int64(c.Up + c.Down + c.Degraded + c.Maintenance)
}
