package monitor

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"gorm.io/gorm"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/shared"
	"github.com/watchdock/agent/api/server/shared/apierrors"
	"github.com/watchdock/agent/api/server/types"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/pkg/uptime"
)

const defaultUptimeDays = 90

type GetUptimeBarHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewGetUptimeBarHandler(config *config.Config) *GetUptimeBarHandler {
	return &GetUptimeBarHandler{
		resultWriter:     shared.NewDefaultResultWriter(config.Logger),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *GetUptimeBarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	req := &types.UptimeBarRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	monitor, err := h.config.Repository.Monitor.ReadMonitor(tag)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrPassThroughToClient(err, http.StatusNotFound))
		return
	} else if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	days := req.Days

	if days <= 0 {
		days = defaultUptimeDays
	}

	if days > 365 {
		days = 365
	}

	endOfDay := req.EndOfDay

	if endOfDay == 0 {
		endOfDay = time.Now().UTC().Unix()
	}

	// Round up to the next day boundary so the current partial day is
	// the last bucket.
	dayEnd := (endOfDay/uptime.DaySeconds + 1) * uptime.DaySeconds
	start := dayEnd - int64(days)*uptime.DaySeconds

	counts, err := h.config.Repository.DataPoint.RangeStatusCounts(tag, start, dayEnd, uptime.DaySeconds)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	filled := uptime.FillGaps(counts, start, days)
	opts := formulaFor(monitor)

	res := &types.UptimeBarResponse{
		Buckets: make([]types.DayBucket, 0, len(filled)),
		Summary: uptime.Aggregate(filled, opts),
	}

	for _, c := range filled {
		res.Buckets = append(res.Buckets, types.DayBucket{
			Timestamp: c.Ts,
			Status:    bucketStatus(c, monitor),
			Uptime:    uptime.Aggregate([]*models.TimestampStatusCount{c}, opts).Uptime,
		})
	}

	h.resultWriter.WriteResult(w, r, res)
}

// formulaFor derives the uptime formula from the monitor's overrides.
func formulaFor(monitor *models.Monitor) uptime.Options {
	if monitor.IncludeDegradedInDowntime {
		return uptime.Options{Numerator: []models.Status{models.StatusUp}}
	}

	return uptime.Options{}
}

// bucketStatus classifies one day of counts for the uptime bar, using
// the monitor's per-day minimums.
func bucketStatus(c *models.TimestampStatusCount, monitor *models.Monitor) models.Status {
	if c.Up+c.Down+c.Degraded+c.Maintenance == 0 {
		return models.StatusNoData
	}

	downMin := monitor.DayDownMinimumCount

	if downMin < 1 {
		downMin = 1
	}

	degradedMin := monitor.DayDegradedMinimumCount

	if degradedMin < 1 {
		degradedMin = 1
	}

	switch {
	case c.Down >= downMin:
		return models.StatusDown
	case c.Degraded >= degradedMin:
		return models.StatusDegraded
	case c.Up == 0 && c.Maintenance > 0:
		return models.StatusMaintenance
	default:
		return models.StatusUp
	}
}
