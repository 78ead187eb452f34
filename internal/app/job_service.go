package app

import (
	"time"

	"docuchat/internal/model"
)

// JobService tracks the lifecycle of ingestion jobs. Status is monotonic:
// PENDING -> STARTED -> SUCCESS|FAILURE, and terminal states are frozen.
type JobService struct {
	jobs JobStore
}

func NewJobService(jobs JobStore) *JobService {
	return &JobService{jobs: jobs}
}

// Create records a freshly dispatched job in PENDING.
func (s *JobService) Create(documentID uint, taskID string) (*model.IngestJob, error) {
	if documentID == 0 || taskID == "" {
		return nil, ErrInvalidInput
	}
	job := &model.IngestJob{
		DocumentID: documentID,
		TaskID:     taskID,
		Status:     model.JobStatusPending,
	}
	if err := s.jobs.Create(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Transition moves the job to a new status, re-annotating result text.
// STARTED may be re-applied to update the progress annotation; any transition
// out of a terminal state is rejected with ErrJobTerminal and leaves the row
// untouched.
func (s *JobService) Transition(job *model.IngestJob, status, result string) error {
	if job == nil || !model.ValidJobStatus(status) {
		return ErrInvalidInput
	}
	if job.Terminal() {
		return ErrJobTerminal
	}
	if status == model.JobStatusPending && job.Status != model.JobStatusPending {
		return ErrInvalidInput
	}

	var endedAt *time.Time
	if status == model.JobStatusSuccess || status == model.JobStatusFailure {
		now := time.Now()
		endedAt = &now
	}
	if err := s.jobs.UpdateStatus(job.ID, status, result, endedAt); err != nil {
		return err
	}

	job.Status = status
	job.Result = result
	job.EndedAt = endedAt
	return nil
}

// GetByTaskID resolves a poll request. The lookup joins through the owning
// document, so a foreign session's task id misses exactly like an unknown one.
func (s *JobService) GetByTaskID(sessionID uint, taskID string) (*model.IngestJob, error) {
	if sessionID == 0 || taskID == "" {
		return nil, ErrInvalidInput
	}
	job, err := s.jobs.GetByTaskIDAndSessionID(taskID, sessionID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// GetByDocumentID is the worker-side lookup, unscoped by session.
func (s *JobService) GetByDocumentID(documentID uint) (*model.IngestJob, error) {
	job, err := s.jobs.GetByDocumentID(documentID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}
