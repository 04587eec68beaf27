package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/statside/sportschat/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *model.ScrapingJob) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) GetByID(id int64) (*model.ScrapingJob, error) {
	var job model.ScrapingJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(job *model.ScrapingJob) error {
	return r.db.Save(job).Error
}

func (r *JobRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&model.ScrapingJob{}).Where("id = ?", id).Update("status", status).Error
}

// FindActiveByScope returns the queued or running job for a scope, if any.
// Used to enforce at-most-one-in-flight-per-scope.
func (r *JobRepository) FindActiveByScope(scope string) (*model.ScrapingJob, error) {
	var job model.ScrapingJob
	err := r.db.Where("scope = ? AND status IN ?", scope,
		[]string{model.JobStatusQueued, model.JobStatusRunning}).
		Order("created_at DESC").
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// RequestCancel flags a queued or running job for cancellation. In-flight
// units finish; no new units start.
func (r *JobRepository) RequestCancel(id int64) error {
	return r.db.Model(&model.ScrapingJob{}).
		Where("id = ? AND status IN ?", id,
			[]string{model.JobStatusQueued, model.JobStatusRunning}).
		Update("cancel_requested", true).Error
}

// CancelRequested reads the cancellation flag. The worker polls this between
// units rather than holding the row in memory.
func (r *JobRepository) CancelRequested(id int64) (bool, error) {
	var job model.ScrapingJob
	err := r.db.Select("cancel_requested").Where("id = ?", id).First(&job).Error
	if err != nil {
		return false, err
	}
	return job.CancelRequested, nil
}

// MarkRunning transitions queued -> running and stamps StartedAt.
func (r *JobRepository) MarkRunning(id int64) error {
	now := time.Now()
	return r.db.Model(&model.ScrapingJob{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     model.JobStatusRunning,
		"started_at": &now,
	}).Error
}

func (r *JobRepository) ListRecent(limit int) ([]*model.ScrapingJob, error) {
	var jobs []*model.ScrapingJob
	err := r.db.Order("created_at DESC").Limit(limit).Find(&jobs).Error
	return jobs, err
}
