package models

import "time"

// ReportFile сохраненный Markdown отчет
type ReportFile struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
	Content   string    `json:"content,omitempty"`
}

// RunSummary итог одного прогона по репозиторию
type RunSummary struct {
	RunID        string `json:"run_id"`
	Repository   string `json:"repository"`
	ReportName   string `json:"report_name"`
	PullRequests int    `json:"pull_requests"`
	Partial      int    `json:"partial"`
	Applied      int    `json:"applied"`
	Failed       int    `json:"failed"`
	Changed      bool   `json:"changed"`
	Error        string `json:"error,omitempty"`
}
