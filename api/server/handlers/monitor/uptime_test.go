package monitor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/types"
	"github.com/watchdock/agent/internal/adapter"
	"github.com/watchdock/agent/internal/envconf"
	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/repository"
	"github.com/watchdock/agent/pkg/cache"
	"github.com/watchdock/agent/pkg/uptime"
)

func setupConfig(t *testing.T, dbFileName string) *config.Config {
	t.Helper()

	db, err := adapter.New(&envconf.DBConf{SQLite: true, SQLitePath: dbFileName})

	if err != nil {
		t.Fatalf("%v\n", err)
	}

	if err := repository.AutoMigrate(db, false); err != nil {
		t.Fatalf("%v\n", err)
	}

	t.Cleanup(func() {
		os.Remove(dbFileName)
	})

	return &config.Config{
		Logger:     logger.NewConsole(false),
		Repository: repository.NewRepository(db),
		Cache:      cache.NewStatusCache(),
	}
}

func TestGetUptimeBar(t *testing.T) {
	conf := setupConfig(t, "./handler_uptime_test.db")

	_, err := conf.Repository.Monitor.CreateMonitor(&models.Monitor{
		Tag:    "api-1",
		Name:   "API 1",
		Type:   models.MonitorTypeAPI,
		Active: true,
	})
	assert.NoError(t, err)

	dayStart := int64(1700006400) - 1700006400%uptime.DaySeconds

	// 9 up minutes and 1 down minute on the first day of a 3-day window.
	for i := 0; i < 10; i++ {
		status := models.StatusUp

		if i == 0 {
			status = models.StatusDown
		}

		_, err := conf.Repository.DataPoint.UpsertDataPoint(&models.MonitoringDataPoint{
			MonitorTag: "api-1",
			Timestamp:  dayStart + int64(i)*60,
			Status:     status,
			Latency:    100,
			Type:       models.DataPointTypeRealtime,
		})
		assert.NoError(t, err)
	}

	r := chi.NewRouter()
	r.Method("GET", "/monitors/{tag}/uptime", NewGetUptimeBarHandler(conf))

	endOfDay := dayStart + 3*uptime.DaySeconds - 1
	req := httptest.NewRequest("GET", fmt.Sprintf("/monitors/api-1/uptime?days=3&endOfDay=%d", endOfDay), nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	res := &types.UptimeBarResponse{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), res))

	assert.Len(t, res.Buckets, 3)
	assert.Equal(t, "90.00", res.Summary.Uptime)

	assert.Equal(t, models.StatusDown, res.Buckets[0].Status, "one down minute marks the day")
	assert.Equal(t, models.StatusNoData, res.Buckets[1].Status)
	assert.Equal(t, models.StatusNoData, res.Buckets[2].Status)
}

func TestGetUptimeBarUnknownMonitor(t *testing.T) {
	conf := setupConfig(t, "./handler_uptime_404_test.db")

	r := chi.NewRouter()
	r.Method("GET", "/monitors/{tag}/uptime", NewGetUptimeBarHandler(conf))

	req := httptest.NewRequest("GET", "/monitors/ghost/uptime", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
