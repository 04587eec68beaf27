package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Job status values. A job is terminal once it leaves "running".
const (
	JobStatusQueued          = "queued"
	JobStatusRunning         = "running"
	JobStatusSucceeded       = "succeeded"
	JobStatusPartiallyFailed = "partially_failed"
	JobStatusFailed          = "failed"
)

// UnitError records a failure or warning raised by one (sport, source) unit.
type UnitError struct {
	Sport   string `json:"sport"`
	Source  string `json:"source"`
	Stage   string `json:"stage"` // fetch, extract, transform, load, cancelled
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

type ScrapingJob struct {
	ID               int64          `gorm:"primaryKey" json:"id"`
	Scope            string         `gorm:"size:100;not null;index" json:"scope"`
	Season           string         `gorm:"size:9" json:"season"`
	Status           string         `gorm:"size:20;default:queued;index" json:"status"`
	CancelRequested  bool           `gorm:"default:false" json:"cancel_requested"`
	RecordsProcessed int            `gorm:"default:0" json:"records_processed"`
	UnitErrors       datatypes.JSON `gorm:"type:json" json:"unit_errors,omitempty"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	FinishedAt       *time.Time     `json:"finished_at,omitempty"`
}

func (ScrapingJob) TableName() string {
	return "scraping_jobs"
}

// Errors decodes the accumulated unit error list. A missing or malformed
// column decodes to an empty list.
func (j *ScrapingJob) Errors() []UnitError {
	if len(j.UnitErrors) == 0 {
		return nil
	}
	var errs []UnitError
	if err := json.Unmarshal(j.UnitErrors, &errs); err != nil {
		return nil
	}
	return errs
}

// SetErrors encodes the unit error list into the JSON column.
func (j *ScrapingJob) SetErrors(errs []UnitError) error {
	data, err := json.Marshal(errs)
	if err != nil {
		return err
	}
	j.UnitErrors = datatypes.JSON(data)
	return nil
}

// Terminal reports whether the job has reached a final status.
func (j *ScrapingJob) Terminal() bool {
	switch j.Status {
	case JobStatusSucceeded, JobStatusPartiallyFailed, JobStatusFailed:
		return true
	}
	return false
}
