package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"docuchat/internal/index"
	"docuchat/internal/model"
	"docuchat/internal/pkg/docload"
)

// IngestService runs the load -> chunk -> embed -> index pipeline for one
// document. Executions for different documents are independent; the only
// shared state is the relational rows, updated one transaction per step.
type IngestService struct {
	docs         DocumentStore
	jobs         *JobService
	embedder     Embedder
	index        VectorIndex
	chunkSize    int
	chunkOverlap int
	batchSize    int
}

func NewIngestService(
	docs DocumentStore,
	jobs *JobService,
	embedder Embedder,
	vectorIndex VectorIndex,
	chunkSize, chunkOverlap, batchSize int,
) *IngestService {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &IngestService{
		docs:         docs,
		jobs:         jobs,
		embedder:     embedder,
		index:        vectorIndex,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		batchSize:    batchSize,
	}
}

// Ingest executes the pipeline for the document. On any failure the job ends
// in FAILURE with the error text retained and the document stays unprocessed;
// re-upload is the recovery path.
func (s *IngestService) Ingest(ctx context.Context, documentID uint) error {
	doc, err := s.docs.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("ingest: document %d not found", documentID)
	}

	job, err := s.jobs.GetByDocumentID(documentID)
	if err != nil {
		return err
	}
	if job.Terminal() {
		// Broker redelivery after a finished run; nothing to do.
		log.Printf("ingest: job for document %d already %s, skipping", documentID, job.Status)
		return nil
	}

	if err := s.jobs.Transition(job, model.JobStatusStarted, "loading and splitting"); err != nil {
		return err
	}

	content, err := docload.Load(doc.StoragePath)
	if err != nil {
		return s.fail(job, err)
	}

	chunks := SplitText(strings.TrimSpace(content), s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return s.fail(job, errors.New("document contains no extractable text"))
	}

	if err := s.jobs.Transition(job, model.JobStatusStarted, fmt.Sprintf("embedding %d chunks", len(chunks))); err != nil {
		return err
	}

	records := make([]index.ChunkRecord, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		vectors, err := s.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return s.fail(job, err)
		}
		for i := range batch {
			records = append(records, index.ChunkRecord{
				Content:   batch[i],
				Embedding: vectors[i],
			})
		}
	}

	if err := s.index.Write(doc.ID, records); err != nil {
		return s.fail(job, err)
	}

	summary := fmt.Sprintf("RAG index created with %d chunks.", len(records))
	if err := s.docs.MarkProcessed(doc.ID, summary); err != nil {
		return s.fail(job, err)
	}

	result := fmt.Sprintf("indexed %d chunks into partition doc_%d", len(records), doc.ID)
	return s.jobs.Transition(job, model.JobStatusSuccess, result)
}

func (s *IngestService) fail(job *model.IngestJob, cause error) error {
	if err := s.jobs.Transition(job, model.JobStatusFailure, cause.Error()); err != nil {
		log.Printf("ingest: record failure for job %d failed: %v", job.ID, err)
	}
	return cause
}
