package repository

import (
	"testing"

	"github.com/watchdock/agent/internal/models"
)

func TestReadTriggeredAlert(t *testing.T) {
	tester := &tester{
		dbFileName: "./alert_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	if alert, err := tester.repo.Alert.ReadTriggeredAlert(42); err != nil {
		t.Fatalf("Expected no error for missing alert, got %v", err)
	} else if alert != nil {
		t.Fatalf("Expected nil alert before any firing, got %+v", alert)
	}

	created, err := tester.repo.Alert.CreateAlert(models.NewAlert(42))

	if err != nil {
		t.Fatalf("Expected no error creating alert, got %v", err)
	}

	alert, err := tester.repo.Alert.ReadTriggeredAlert(42)

	if err != nil {
		t.Fatalf("Expected no error reading triggered alert, got %v", err)
	}

	if alert == nil || alert.UniqueID != created.UniqueID {
		t.Fatalf("Expected the created alert back, got %+v", alert)
	}

	alert.State = models.AlertStateResolved

	if _, err := tester.repo.Alert.UpdateAlert(alert); err != nil {
		t.Fatalf("Expected no error resolving alert, got %v", err)
	}

	if alert, err := tester.repo.Alert.ReadTriggeredAlert(42); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	} else if alert != nil {
		t.Fatalf("Expected no triggered alert after resolution, got %+v", alert)
	}
}

func TestListAlertConfigsNilFilter(t *testing.T) {
	tester := &tester{
		dbFileName: "./alert_config_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	for _, config := range []*models.AlertConfig{
		{MonitorTag: "api-1", AlertFor: models.AlertMetricStatus, AlertValue: "DOWN", IsActive: true},
		{MonitorTag: "api-2", AlertFor: models.AlertMetricLatency, AlertValue: "500", IsActive: false},
	} {
		if _, err := tester.repo.AlertConfig.CreateAlertConfig(config); err != nil {
			t.Fatalf("Expected no error creating config, got %v", err)
		}
	}

	configs, err := tester.repo.AlertConfig.ListAlertConfigs(nil)

	if err != nil {
		t.Fatalf("Expected nil filter to list everything, got %v", err)
	}

	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs with nil filter, got %d", len(configs))
	}
}
