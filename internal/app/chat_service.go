package app

import (
	"context"
	"strings"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

// RefusalSentence is the fixed answer the model is instructed to give when
// the retrieved context cannot support the question.
const RefusalSentence = "I don't have enough information in the document to answer that."

const condensePrompt = "Given the chat history and the latest user question, formulate a standalone question " +
	"that can be fully understood without the chat history. Return ONLY the question string and nothing else."

const groundedPrompt = "You are an expert Q&A system. Use ONLY the following pieces of retrieved context " +
	"to answer the question. If the answer is not contained in the context, you MUST state: '" +
	RefusalSentence + "'\n\nCONTEXT:\n"

// ChatService answers questions about a session's processed documents. The
// pipeline is an explicit sequence: load history, condense, retrieve, prompt,
// stream, persist.
type ChatService struct {
	docs         DocumentStore
	turns        TurnStore
	history      HistoryCache
	llm          LLM
	embedder     Embedder
	index        VectorIndex
	topK         int
	historyTurns int
}

func NewChatService(
	docs DocumentStore,
	turns TurnStore,
	history HistoryCache,
	llm LLM,
	embedder Embedder,
	vectorIndex VectorIndex,
	topK, historyTurns int,
) *ChatService {
	if topK <= 0 {
		topK = 4
	}
	if historyTurns <= 0 {
		historyTurns = 10
	}
	return &ChatService{
		docs:         docs,
		turns:        turns,
		history:      history,
		llm:          llm,
		embedder:     embedder,
		index:        vectorIndex,
		topK:         topK,
		historyTurns: historyTurns,
	}
}

// Answer streams a grounded answer through onChunk and, once the stream has
// completed, appends {question, answer} to the conversation log. A failure
// mid-stream persists nothing.
func (s *ChatService) Answer(
	ctx context.Context,
	sessionID, documentID uint,
	question string,
	onChunk func(string) error,
) (string, error) {
	question = strings.TrimSpace(question)
	if sessionID == 0 || documentID == 0 || question == "" {
		return "", ErrInvalidInput
	}

	doc, err := s.docs.GetByIDAndSessionID(documentID, sessionID)
	if err != nil {
		return "", err
	}
	if doc == nil || !doc.IsProcessed {
		return "", ErrDocumentNotFound
	}

	history, err := s.loadHistory(ctx, sessionID, documentID)
	if err != nil {
		return "", err
	}

	retrievalQuery := question
	if len(history) > 0 {
		retrievalQuery, err = s.condense(ctx, history, question)
		if err != nil {
			return "", err
		}
	}

	contextBlock, err := s.retrieve(ctx, documentID, retrievalQuery)
	if err != nil {
		return "", err
	}

	// The grounded prompt always carries the original question; the condensed
	// one exists only to retrieve with.
	messages := []ai.ChatMessage{
		{Role: "system", Content: groundedPrompt + contextBlock},
		{Role: "user", Content: question},
	}
	answer, err := s.llm.StreamComplete(ctx, messages, onChunk)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = RefusalSentence
	}

	if s.history != nil {
		_ = s.history.MarkDirty(ctx, sessionID, documentID)
		_ = s.history.DeleteHistory(ctx, sessionID, documentID)
	}
	if err := s.turns.AppendPair(sessionID, documentID, question, answer); err != nil {
		return "", err
	}
	return answer, nil
}

func (s *ChatService) loadHistory(ctx context.Context, sessionID, documentID uint) ([]model.ChatTurn, error) {
	if s.history != nil {
		dirty, err := s.history.IsDirty(ctx, sessionID, documentID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.history.GetHistory(ctx, sessionID, documentID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	turns, err := s.turns.ListRecent(sessionID, documentID, s.historyTurns)
	if err != nil {
		return nil, err
	}
	if s.history != nil {
		if dirty, dirtyErr := s.history.IsDirty(ctx, sessionID, documentID); dirtyErr == nil && !dirty {
			_ = s.history.SetHistory(ctx, sessionID, documentID, turns)
		}
	}
	return turns, nil
}

// condense rewrites a follow-up question into a standalone query using the
// prior turns. No side effects on the conversation log.
func (s *ChatService) condense(ctx context.Context, history []model.ChatTurn, question string) (string, error) {
	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: condensePrompt})
	for _, turn := range history {
		role := turn.Role
		if role == "" {
			role = "user"
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: question})

	standalone, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	standalone = strings.TrimSpace(standalone)
	if standalone == "" {
		return question, nil
	}
	return standalone, nil
}

// retrieve embeds the query and concatenates the top-k chunks from the
// document's partition, similarity order preserved.
func (s *ChatService) retrieve(ctx context.Context, documentID uint, query string) (string, error) {
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", err
	}

	results, err := s.index.Search(documentID, queryVec, s.topK)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Content)
	}
	return strings.Join(parts, "\n\n"), nil
}
