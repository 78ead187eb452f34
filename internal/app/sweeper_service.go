package app

import (
	"context"
	"log"
	"os"
	"time"
)

// SweeperService reconciles expired sessions: stored files and index
// partitions are removed best-effort, then the session row is deleted and the
// relational cascade takes documents, jobs and turns with it.
//
// Operational constraint: run a single active sweeper at a time. The sweep is
// idempotent, but there is no distributed lock guarding concurrent runs.
type SweeperService struct {
	sessions SessionStore
	docs     DocumentStore
	index    VectorIndex
	history  HistoryCache
}

func NewSweeperService(sessions SessionStore, docs DocumentStore, vectorIndex VectorIndex, history HistoryCache) *SweeperService {
	return &SweeperService{
		sessions: sessions,
		docs:     docs,
		index:    vectorIndex,
		history:  history,
	}
}

// Sweep removes every expired session and its data. A failure listing the
// expired set aborts the sweep; per-document cleanup failures are logged and
// skipped, since leaked storage beats blocked cleanup. Returns how many
// sessions were removed.
func (s *SweeperService) Sweep(ctx context.Context) (int, error) {
	expired, err := s.sessions.ListExpired(time.Now())
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, session := range expired {
		docs, err := s.docs.ListBySessionID(session.ID)
		if err != nil {
			log.Printf("sweeper: list documents for session %d failed: %v", session.ID, err)
			continue
		}

		for _, doc := range docs {
			if doc.StoragePath != "" {
				if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
					log.Printf("sweeper: delete file %s failed: %v", doc.StoragePath, err)
				}
			}
			if err := s.index.Delete(doc.ID); err != nil {
				log.Printf("sweeper: delete index partition for document %d failed: %v", doc.ID, err)
			}
			if s.history != nil {
				_ = s.history.DeleteHistory(ctx, session.ID, doc.ID)
			}
		}

		deleted, err := s.sessions.DeleteByID(session.ID)
		if err != nil {
			log.Printf("sweeper: delete session %d failed: %v", session.ID, err)
			continue
		}
		if deleted {
			cleaned++
		}
	}

	if cleaned > 0 {
		log.Printf("sweeper: removed %d expired sessions", cleaned)
	}
	return cleaned, nil
}
