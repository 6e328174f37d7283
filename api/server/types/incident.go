package types

import "github.com/watchdock/agent/internal/models"

type ListIncidentsRequest struct {
	State      string `schema:"state"`
	MonitorTag string `schema:"monitor_tag"`
	Open       *bool  `schema:"open"`
	Page       uint   `schema:"page"`
}

type IncidentMeta struct {
	UniqueID      string               `json:"id"`
	Title         string               `json:"title"`
	State         models.IncidentState `json:"state"`
	Source        string               `json:"source"`
	StartDateTime int64                `json:"start_date_time"`
	EndDateTime   *int64               `json:"end_date_time,omitempty"`
}

type ListIncidentsResponse struct {
	Incidents []*IncidentMeta `json:"incidents"`
}

type IncidentCommentMeta struct {
	State       models.IncidentState `json:"state"`
	Comment     string               `json:"comment"`
	CommentedAt int64                `json:"commented_at"`
}

type IncidentMonitorMeta struct {
	MonitorTag string        `json:"monitor_tag"`
	Impact     models.Status `json:"impact,omitempty"`
}

type GetIncidentResponse struct {
	*IncidentMeta

	Comments []*IncidentCommentMeta `json:"comments"`
	Monitors []*IncidentMonitorMeta `json:"monitors"`
}

func IncidentToMeta(incident *models.Incident) *IncidentMeta {
	return &IncidentMeta{
		UniqueID:      incident.UniqueID,
		Title:         incident.Title,
		State:         incident.State,
		Source:        incident.Source,
		StartDateTime: incident.StartDateTime,
		EndDateTime:   incident.EndDateTime,
	}
}
