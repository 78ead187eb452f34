package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docuchat/internal/model"
	"docuchat/internal/pkg/docload"
)

// DocumentService handles uploads and listings. An upload persists the raw
// file and the metadata row, then hands ingestion to the async substrate; the
// caller polls the job for completion.
type DocumentService struct {
	docs       DocumentStore
	jobs       *JobService
	dispatcher IngestDispatcher
	uploadDir  string
}

// UploadResult mirrors the 202 response body for a dispatched upload.
type UploadResult struct {
	Document *model.Document
	Job      *model.IngestJob
}

func NewDocumentService(docs DocumentStore, jobs *JobService, dispatcher IngestDispatcher, uploadDir string) *DocumentService {
	return &DocumentService{
		docs:       docs,
		jobs:       jobs,
		dispatcher: dispatcher,
		uploadDir:  uploadDir,
	}
}

// Upload stores the raw bytes, creates the document (unprocessed) and its
// PENDING job, and dispatches the ingestion task.
func (s *DocumentService) Upload(ctx context.Context, sessionID uint, filename string, file io.Reader) (*UploadResult, error) {
	if sessionID == 0 || strings.TrimSpace(filename) == "" || file == nil {
		return nil, ErrInvalidInput
	}
	filename = filepath.Base(filename)
	if !docload.SupportedExt(filename) {
		return nil, ErrUnsupportedFileType
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	storagePath := filepath.Join(s.uploadDir, fmt.Sprintf("%s_%s", uuid.NewString(), filename))

	out, err := os.Create(storagePath)
	if err != nil {
		return nil, fmt.Errorf("create stored file failed: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(storagePath)
		return nil, fmt.Errorf("write stored file failed: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("close stored file failed: %w", err)
	}

	doc := &model.Document{
		SessionID:   sessionID,
		Filename:    filename,
		StoragePath: storagePath,
		IsProcessed: false,
	}
	if err := s.docs.Create(doc); err != nil {
		os.Remove(storagePath)
		return nil, err
	}

	job, err := s.jobs.Create(doc.ID, uuid.NewString())
	if err != nil {
		os.Remove(storagePath)
		return nil, err
	}

	if err := s.dispatcher.Publish(ctx, doc.ID, job.TaskID); err != nil {
		// Leave an operator trail instead of a job stuck in PENDING forever.
		_ = s.jobs.Transition(job, model.JobStatusFailure, "dispatch failed: "+err.Error())
		return nil, fmt.Errorf("dispatch ingest task failed: %w", err)
	}

	return &UploadResult{Document: doc, Job: job}, nil
}

// List returns the session's documents, newest first.
func (s *DocumentService) List(sessionID uint) ([]model.Document, error) {
	if sessionID == 0 {
		return nil, ErrInvalidInput
	}
	return s.docs.ListBySessionID(sessionID)
}
