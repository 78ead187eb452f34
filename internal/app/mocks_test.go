package app

import (
	"context"
	"errors"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/index"
	"docuchat/internal/model"
)

// Hand-written doubles for the consumer-side interfaces.

type stubSessionStore struct {
	byToken map[string]*model.Session
	byID    map[uint]*model.Session
	nextID  uint
	deleted []uint
	listErr error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		byToken: map[string]*model.Session{},
		byID:    map[uint]*model.Session{},
		nextID:  1,
	}
}

func (s *stubSessionStore) Create(session *model.Session) error {
	session.ID = s.nextID
	s.nextID++
	s.byToken[session.Token] = session
	s.byID[session.ID] = session
	return nil
}

func (s *stubSessionStore) GetByToken(token string) (*model.Session, error) {
	return s.byToken[token], nil
}

func (s *stubSessionStore) GetByID(sessionID uint) (*model.Session, error) {
	return s.byID[sessionID], nil
}

func (s *stubSessionStore) Touch(sessionID uint, lastActivity, expiresAt time.Time) error {
	if session, ok := s.byID[sessionID]; ok {
		session.LastActivity = lastActivity
		session.ExpiresAt = expiresAt
	}
	return nil
}

func (s *stubSessionStore) ListExpired(now time.Time) ([]model.Session, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var expired []model.Session
	for _, session := range s.byID {
		if !session.Valid(now) {
			expired = append(expired, *session)
		}
	}
	return expired, nil
}

func (s *stubSessionStore) DeleteByID(sessionID uint) (bool, error) {
	session, ok := s.byID[sessionID]
	if !ok {
		return false, nil
	}
	delete(s.byID, sessionID)
	delete(s.byToken, session.Token)
	s.deleted = append(s.deleted, sessionID)
	return true, nil
}

type stubDocumentStore struct {
	byID    map[uint]*model.Document
	nextID  uint
	marked  map[uint]string
	listErr error
}

func newStubDocumentStore() *stubDocumentStore {
	return &stubDocumentStore{
		byID:   map[uint]*model.Document{},
		nextID: 1,
		marked: map[uint]string{},
	}
}

func (s *stubDocumentStore) Create(doc *model.Document) error {
	doc.ID = s.nextID
	s.nextID++
	s.byID[doc.ID] = doc
	return nil
}

func (s *stubDocumentStore) GetByID(documentID uint) (*model.Document, error) {
	return s.byID[documentID], nil
}

func (s *stubDocumentStore) GetByIDAndSessionID(documentID, sessionID uint) (*model.Document, error) {
	doc := s.byID[documentID]
	if doc == nil || doc.SessionID != sessionID {
		return nil, nil
	}
	return doc, nil
}

func (s *stubDocumentStore) ListBySessionID(sessionID uint) ([]model.Document, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var docs []model.Document
	for _, doc := range s.byID {
		if doc.SessionID == sessionID {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (s *stubDocumentStore) MarkProcessed(documentID uint, summary string) error {
	if doc, ok := s.byID[documentID]; ok {
		doc.IsProcessed = true
		doc.Summary = summary
	}
	s.marked[documentID] = summary
	return nil
}

type stubJobStore struct {
	byID   map[uint]*model.IngestJob
	nextID uint
}

func newStubJobStore() *stubJobStore {
	return &stubJobStore{byID: map[uint]*model.IngestJob{}, nextID: 1}
}

func (s *stubJobStore) Create(job *model.IngestJob) error {
	job.ID = s.nextID
	s.nextID++
	copied := *job
	s.byID[job.ID] = &copied
	return nil
}

func (s *stubJobStore) GetByDocumentID(documentID uint) (*model.IngestJob, error) {
	for _, job := range s.byID {
		if job.DocumentID == documentID {
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubJobStore) GetByTaskIDAndSessionID(taskID string, sessionID uint) (*model.IngestJob, error) {
	// Ownership joins are exercised against the real repository; the stub
	// only matches by task id.
	for _, job := range s.byID {
		if job.TaskID == taskID {
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubJobStore) UpdateStatus(jobID uint, status, result string, endedAt *time.Time) error {
	job, ok := s.byID[jobID]
	if !ok {
		return errors.New("job not found")
	}
	job.Status = status
	job.Result = result
	job.EndedAt = endedAt
	return nil
}

type appendedPair struct {
	sessionID  uint
	documentID uint
	question   string
	answer     string
}

type stubTurnStore struct {
	turns    []model.ChatTurn
	appended []appendedPair
}

func (s *stubTurnStore) AppendPair(sessionID, documentID uint, question, answer string) error {
	s.appended = append(s.appended, appendedPair{sessionID, documentID, question, answer})
	s.turns = append(s.turns,
		model.ChatTurn{SessionID: sessionID, DocumentID: documentID, Role: "user", Content: question},
		model.ChatTurn{SessionID: sessionID, DocumentID: documentID, Role: "assistant", Content: answer},
	)
	return nil
}

func (s *stubTurnStore) ListRecent(sessionID, documentID uint, limit int) ([]model.ChatTurn, error) {
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

type stubLLM struct {
	condensed    string
	completeErr  error
	streamChunks []string
	streamErr    error

	completeCalls [][]ai.ChatMessage
	streamCalls   [][]ai.ChatMessage
}

func (l *stubLLM) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	l.completeCalls = append(l.completeCalls, messages)
	if l.completeErr != nil {
		return "", l.completeErr
	}
	return l.condensed, nil
}

func (l *stubLLM) StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error) {
	l.streamCalls = append(l.streamCalls, messages)
	var full string
	for _, chunk := range l.streamChunks {
		if err := onChunk(chunk); err != nil {
			return "", err
		}
		full += chunk
	}
	if l.streamErr != nil {
		return "", l.streamErr
	}
	return full, nil
}

type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return embedText(text), nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = embedText(t)
	}
	return vecs, nil
}

// embedText is a cheap deterministic stand-in for a real embedding model.
func embedText(text string) []float32 {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r%32) / 32
	}
	return vec
}

type fakeIndex struct {
	partitions map[uint][]index.ChunkRecord
	writeErr   error
	searchErr  error
	deleted    []uint
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{partitions: map[uint][]index.ChunkRecord{}}
}

func (f *fakeIndex) Write(documentID uint, records []index.ChunkRecord) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.partitions[documentID] = records
	return nil
}

func (f *fakeIndex) Search(documentID uint, query []float32, topK int) ([]index.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	records, ok := f.partitions[documentID]
	if !ok {
		return nil, index.ErrPartitionNotFound
	}
	results := make([]index.SearchResult, 0, len(records))
	for _, r := range records {
		results = append(results, index.SearchResult{Content: r.Content})
	}
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (f *fakeIndex) Delete(documentID uint) error {
	delete(f.partitions, documentID)
	f.deleted = append(f.deleted, documentID)
	return nil
}
