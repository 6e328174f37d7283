package monitor

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/shared"
	"github.com/watchdock/agent/api/server/shared/apierrors"
	"github.com/watchdock/agent/api/server/types"
	"github.com/watchdock/agent/pkg/lttb"
	"github.com/watchdock/agent/pkg/uptime"
)

const defaultLatencyPoints = 100

type GetLatencySeriesHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewGetLatencySeriesHandler(config *config.Config) *GetLatencySeriesHandler {
	return &GetLatencySeriesHandler{
		resultWriter:     shared.NewDefaultResultWriter(config.Logger),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *GetLatencySeriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	req := &types.LatencySeriesRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	end := req.End

	if end == 0 {
		end = time.Now().UTC().Unix()
	}

	start := req.Start

	if start == 0 {
		start = end - uptime.DaySeconds
	}

	target := req.Points

	if target <= 0 {
		target = defaultLatencyPoints
	}

	dataPoints, err := h.config.Repository.DataPoint.ListDataPointsInRange(tag, start, end)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
		return
	}

	points := make([]lttb.Point, 0, len(dataPoints))

	for _, dp := range dataPoints {
		points = append(points, lttb.Point{Timestamp: dp.Timestamp, Value: dp.Latency})
	}

	h.resultWriter.WriteResult(w, r, &types.LatencySeriesResponse{
		Points: lttb.Downsample(points, target),
	})
}
