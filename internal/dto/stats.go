package dto

// DashboardStats summarises the funnel for the dashboard view.
type DashboardStats struct {
	TotalLeads           int            `json:"total_leads"`
	LeadsByStatus        map[string]int `json:"leads_by_status"`
	UnassignedLeads      int            `json:"unassigned_leads"`
	TotalTasks           int            `json:"total_tasks"`
	OpenTasks            int            `json:"open_tasks"`
	PendingConsultations int            `json:"pending_consultations"`
	ConversionRate       int            `json:"conversion_rate"`
	AverageScore         int            `json:"average_score"`
}
