package model

import "time"

const (
	JobStatusPending = "PENDING"
	JobStatusStarted = "STARTED"
	JobStatusSuccess = "SUCCESS"
	JobStatusFailure = "FAILURE"
)

// IngestJob tracks one asynchronous ingestion per document. Status moves
// PENDING -> STARTED -> SUCCESS|FAILURE and never leaves a terminal state.
type IngestJob struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	DocumentID uint       `gorm:"not null;uniqueIndex" json:"document_id"`
	Document   *Document  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TaskID     string     `gorm:"size:64;not null;uniqueIndex" json:"task_id"`
	Status     string     `gorm:"size:16;not null;default:PENDING" json:"status"`
	Result     string     `gorm:"type:text" json:"result,omitempty"`
	StartedAt  time.Time  `gorm:"autoCreateTime" json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// Terminal reports whether the job has finished, successfully or not.
func (j *IngestJob) Terminal() bool {
	return j.Status == JobStatusSuccess || j.Status == JobStatusFailure
}

// ValidJobStatus reports whether s is one of the four known statuses.
func ValidJobStatus(s string) bool {
	switch s {
	case JobStatusPending, JobStatusStarted, JobStatusSuccess, JobStatusFailure:
		return true
	}
	return false
}
