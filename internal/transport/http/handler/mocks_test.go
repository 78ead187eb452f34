package handler

import (
	"context"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/index"
	"docuchat/internal/model"
)

// Minimal store doubles for wiring real services under the handlers.

type memJobStore struct {
	jobs      map[string]*model.IngestJob
	ownership map[string]uint // taskID -> owning session
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: map[string]*model.IngestJob{}, ownership: map[string]uint{}}
}

func (s *memJobStore) put(sessionID uint, job *model.IngestJob) {
	s.jobs[job.TaskID] = job
	s.ownership[job.TaskID] = sessionID
}

func (s *memJobStore) Create(job *model.IngestJob) error {
	s.jobs[job.TaskID] = job
	return nil
}

func (s *memJobStore) GetByDocumentID(documentID uint) (*model.IngestJob, error) {
	for _, job := range s.jobs {
		if job.DocumentID == documentID {
			return job, nil
		}
	}
	return nil, nil
}

func (s *memJobStore) GetByTaskIDAndSessionID(taskID string, sessionID uint) (*model.IngestJob, error) {
	if s.ownership[taskID] != sessionID {
		return nil, nil
	}
	return s.jobs[taskID], nil
}

func (s *memJobStore) UpdateStatus(jobID uint, status, result string, endedAt *time.Time) error {
	for _, job := range s.jobs {
		if job.ID == jobID {
			job.Status = status
			job.Result = result
			job.EndedAt = endedAt
		}
	}
	return nil
}

type memDocumentStore struct {
	docs   map[uint]*model.Document
	nextID uint
}

func newMemDocumentStore() *memDocumentStore {
	return &memDocumentStore{docs: map[uint]*model.Document{}}
}

func (s *memDocumentStore) Create(doc *model.Document) error {
	if doc.ID == 0 {
		s.nextID++
		doc.ID = s.nextID
	}
	s.docs[doc.ID] = doc
	return nil
}

func (s *memDocumentStore) GetByID(documentID uint) (*model.Document, error) {
	return s.docs[documentID], nil
}

func (s *memDocumentStore) GetByIDAndSessionID(documentID, sessionID uint) (*model.Document, error) {
	doc := s.docs[documentID]
	if doc == nil || doc.SessionID != sessionID {
		return nil, nil
	}
	return doc, nil
}

func (s *memDocumentStore) ListBySessionID(sessionID uint) ([]model.Document, error) {
	var out []model.Document
	for _, doc := range s.docs {
		if doc.SessionID == sessionID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *memDocumentStore) MarkProcessed(documentID uint, summary string) error {
	if doc, ok := s.docs[documentID]; ok {
		doc.IsProcessed = true
		doc.Summary = summary
	}
	return nil
}

type memTurnStore struct {
	turns []model.ChatTurn
}

func (s *memTurnStore) AppendPair(sessionID, documentID uint, question, answer string) error {
	s.turns = append(s.turns,
		model.ChatTurn{SessionID: sessionID, DocumentID: documentID, Role: "user", Content: question},
		model.ChatTurn{SessionID: sessionID, DocumentID: documentID, Role: "assistant", Content: answer},
	)
	return nil
}

func (s *memTurnStore) ListRecent(sessionID, documentID uint, limit int) ([]model.ChatTurn, error) {
	var matched []model.ChatTurn
	for _, turn := range s.turns {
		if turn.SessionID == sessionID && turn.DocumentID == documentID {
			matched = append(matched, turn)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

type nopDispatcher struct {
	published int
}

func (d *nopDispatcher) Publish(ctx context.Context, documentID uint, taskID string) error {
	d.published++
	return nil
}

type scriptedLLM struct {
	chunks []string
	err    error
}

func (l *scriptedLLM) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	return "", nil
}

func (l *scriptedLLM) StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	var full string
	for _, chunk := range l.chunks {
		if err := onChunk(chunk); err != nil {
			return "", err
		}
		full += chunk
	}
	return full, nil
}

type flatEmbedder struct{}

func (flatEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (flatEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type memIndex struct {
	partitions map[uint][]index.ChunkRecord
}

func newMemIndex() *memIndex {
	return &memIndex{partitions: map[uint][]index.ChunkRecord{}}
}

func (m *memIndex) Write(documentID uint, records []index.ChunkRecord) error {
	m.partitions[documentID] = records
	return nil
}

func (m *memIndex) Search(documentID uint, query []float32, topK int) ([]index.SearchResult, error) {
	records, ok := m.partitions[documentID]
	if !ok {
		return nil, index.ErrPartitionNotFound
	}
	results := make([]index.SearchResult, 0, len(records))
	for _, r := range records {
		results = append(results, index.SearchResult{Content: r.Content, Score: 1})
	}
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (m *memIndex) Delete(documentID uint) error {
	delete(m.partitions, documentID)
	return nil
}
