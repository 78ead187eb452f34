package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *model.IngestJob) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("create ingest job failed: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByDocumentID(documentID uint) (*model.IngestJob, error) {
	var job model.IngestJob
	if err := r.db.Where("document_id = ?", documentID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingest job failed: %w", err)
	}
	return &job, nil
}

// GetByTaskIDAndSessionID resolves a poll lookup, joining through the owning
// document so jobs of other sessions never surface.
func (r *JobRepository) GetByTaskIDAndSessionID(taskID string, sessionID uint) (*model.IngestJob, error) {
	var job model.IngestJob
	err := r.db.
		Joins("JOIN documents ON documents.id = ingest_jobs.document_id").
		Where("ingest_jobs.task_id = ? AND documents.session_id = ?", taskID, sessionID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingest job by task id failed: %w", err)
	}
	return &job, nil
}

// UpdateStatus writes the new status/result in one transaction. endedAt is
// only set for terminal transitions.
func (r *JobRepository) UpdateStatus(jobID uint, status, result string, endedAt *time.Time) error {
	updates := map[string]interface{}{
		"status": status,
		"result": result,
	}
	if endedAt != nil {
		updates["ended_at"] = *endedAt
	}
	if err := r.db.Model(&model.IngestJob{}).Where("id = ?", jobID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update ingest job status failed: %w", err)
	}
	return nil
}
