package app

import (
	"context"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/index"
	"docuchat/internal/model"
)

// Consumer-side contracts for the services in this package. The concrete
// implementations live in repository, cache, index, ai and platform/rabbitmq.

type SessionStore interface {
	Create(session *model.Session) error
	GetByToken(token string) (*model.Session, error)
	GetByID(sessionID uint) (*model.Session, error)
	Touch(sessionID uint, lastActivity, expiresAt time.Time) error
	ListExpired(now time.Time) ([]model.Session, error)
	DeleteByID(sessionID uint) (bool, error)
}

type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(documentID uint) (*model.Document, error)
	GetByIDAndSessionID(documentID, sessionID uint) (*model.Document, error)
	ListBySessionID(sessionID uint) ([]model.Document, error)
	MarkProcessed(documentID uint, summary string) error
}

type JobStore interface {
	Create(job *model.IngestJob) error
	GetByDocumentID(documentID uint) (*model.IngestJob, error)
	GetByTaskIDAndSessionID(taskID string, sessionID uint) (*model.IngestJob, error)
	UpdateStatus(jobID uint, status, result string, endedAt *time.Time) error
}

type TurnStore interface {
	AppendPair(sessionID, documentID uint, question, answer string) error
	ListRecent(sessionID, documentID uint, limit int) ([]model.ChatTurn, error)
}

// HistoryCache is the redis-backed recent-turns cache.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID, documentID uint) ([]model.ChatTurn, bool, error)
	SetHistory(ctx context.Context, sessionID, documentID uint, turns []model.ChatTurn) error
	DeleteHistory(ctx context.Context, sessionID, documentID uint) error
	MarkDirty(ctx context.Context, sessionID, documentID uint) error
	IsDirty(ctx context.Context, sessionID, documentID uint) (bool, error)
}

// LLM is the black-box generation capability.
type LLM interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
	StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error)
}

// Embedder is the black-box embedding-model capability.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex stores and searches per-document index partitions.
type VectorIndex interface {
	Write(documentID uint, records []index.ChunkRecord) error
	Search(documentID uint, query []float32, topK int) ([]index.SearchResult, error)
	Delete(documentID uint) error
}

// IngestDispatcher hands an ingestion task to the async execution substrate.
type IngestDispatcher interface {
	Publish(ctx context.Context, documentID uint, taskID string) error
}
