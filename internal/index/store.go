package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

var ErrPartitionNotFound = errors.New("index partition not found")

// ChunkRecord is one indexed chunk: its text and embedding.
type ChunkRecord struct {
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// SearchResult is a chunk with its similarity score against the query.
type SearchResult struct {
	Content string
	Score   float32
}

// Store keeps one index partition per document as a JSON file under the root
// directory. A partition exists iff the document finished ingestion; writers
// only ever touch their own document's partition.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create index root failed: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) partitionDir(documentID uint) string {
	return filepath.Join(s.root, fmt.Sprintf("doc_%d", documentID))
}

func (s *Store) partitionFile(documentID uint) string {
	return filepath.Join(s.partitionDir(documentID), "chunks.json")
}

// Write replaces the document's partition with the given records. The file is
// written to a temp path first and renamed so readers never see a torn write.
func (s *Store) Write(documentID uint, records []ChunkRecord) error {
	dir := s.partitionDir(documentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index partition failed: %w", err)
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal index partition failed: %w", err)
	}

	tmp := s.partitionFile(documentID) + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write index partition failed: %w", err)
	}
	if err := os.Rename(tmp, s.partitionFile(documentID)); err != nil {
		return fmt.Errorf("commit index partition failed: %w", err)
	}
	return nil
}

// Exists reports whether the document has a committed partition.
func (s *Store) Exists(documentID uint) bool {
	_, err := os.Stat(s.partitionFile(documentID))
	return err == nil
}

// Search returns the topK records most similar to the query vector,
// best match first.
func (s *Store) Search(documentID uint, query []float32, topK int) ([]SearchResult, error) {
	raw, err := os.ReadFile(s.partitionFile(documentID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPartitionNotFound
		}
		return nil, fmt.Errorf("read index partition failed: %w", err)
	}

	var records []ChunkRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse index partition failed: %w", err)
	}

	results := make([]SearchResult, 0, len(records))
	for i := range records {
		results = append(results, SearchResult{
			Content: records[i].Content,
			Score:   cosineSimilarity(query, records[i].Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Delete removes the document's partition. Missing partitions are not an error.
func (s *Store) Delete(documentID uint) error {
	if err := os.RemoveAll(s.partitionDir(documentID)); err != nil {
		return fmt.Errorf("delete index partition failed: %w", err)
	}
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
