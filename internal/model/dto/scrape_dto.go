package dto

import (
	"time"

	"github.com/statside/sportschat/internal/model"
)

type StartScrapeRequest struct {
	Scope  string `json:"scope" binding:"required"`
	Season string `json:"season"`
}

type StartScrapeResponse struct {
	JobID int64 `json:"job_id"`
}

type JobStatusResponse struct {
	JobID            int64             `json:"job_id"`
	Scope            string            `json:"scope"`
	Season           string            `json:"season"`
	Status           string            `json:"status"`
	CancelRequested  bool              `json:"cancel_requested"`
	RecordsProcessed int               `json:"records_processed"`
	UnitErrors       []model.UnitError `json:"unit_errors"`
	CreatedAt        time.Time         `json:"created_at"`
	StartedAt        *time.Time        `json:"started_at,omitempty"`
	FinishedAt       *time.Time        `json:"finished_at,omitempty"`
}
