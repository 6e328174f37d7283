package repository

import (
	"testing"

	"github.com/watchdock/agent/internal/models"
)

func TestReadIncident(t *testing.T) {
	tester := &tester{
		dbFileName: "./incident_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	incident := models.NewIncident()
	incident.Title = "api-prod STATUS: DOWN"
	incident.StartDateTime = 1700000000
	incident.Source = "alert"
	incident.Comments = []models.IncidentComment{
		{
			State:       models.IncidentStateInvestigating,
			Comment:     "alert triggered",
			CommentedAt: 1700000000,
		},
	}
	incident.Monitors = []models.IncidentMonitor{
		{
			MonitorTag: "api-prod",
			Impact:     models.StatusDown,
		},
	}

	incident, err := tester.repo.Incident.CreateIncident(incident)

	if err != nil {
		t.Fatalf("Expected no error after creating incident, got %v", err)
	}

	incident, err = tester.repo.Incident.ReadIncident(incident.UniqueID)

	if err != nil {
		t.Fatalf("Expected no error after reading incident, got %v", err)
	}

	if len(incident.Comments) != 1 || len(incident.Monitors) != 1 {
		t.Fatalf("Expected preloaded comments and monitors, got %d / %d",
			len(incident.Comments), len(incident.Monitors))
	}
}

func TestListOpenImpactsForMonitor(t *testing.T) {
	tester := &tester{
		dbFileName: "./incident_impact_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	open := models.NewIncident()
	open.Title = "open incident"
	open.StartDateTime = 1000
	open.Monitors = []models.IncidentMonitor{{MonitorTag: "api-prod", Impact: models.StatusDown}}

	if _, err := tester.repo.Incident.CreateIncident(open); err != nil {
		t.Fatalf("Expected no error creating incident, got %v", err)
	}

	end := int64(1500)
	closed := models.NewIncident()
	closed.Title = "closed incident"
	closed.StartDateTime = 1000
	closed.EndDateTime = &end
	closed.State = models.IncidentStateResolved
	closed.Monitors = []models.IncidentMonitor{{MonitorTag: "api-prod", Impact: models.StatusDegraded}}

	if _, err := tester.repo.Incident.CreateIncident(closed); err != nil {
		t.Fatalf("Expected no error creating incident, got %v", err)
	}

	impacts, err := tester.repo.Incident.ListOpenImpactsForMonitor("api-prod", 2000)

	if err != nil {
		t.Fatalf("Expected no error listing impacts, got %v", err)
	}

	if len(impacts) != 1 {
		t.Fatalf("Expected only the open incident's impact, got %d", len(impacts))
	}

	if impacts[0].Impact != models.StatusDown {
		t.Fatalf("Expected DOWN impact, got %s", impacts[0].Impact)
	}
}
