package app

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrDocumentNotFound covers missing, unprocessed and foreign-session
	// documents alike so callers cannot probe for other sessions' data.
	ErrDocumentNotFound = errors.New("document not found or not processed")

	ErrSessionNotFound     = errors.New("session not found")
	ErrJobNotFound         = errors.New("ingest job not found")
	ErrJobTerminal         = errors.New("ingest job already in a terminal state")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

const llmConfigErrorMessage = "LLM API key configuration error. Please check LLM_API_KEY."

// SanitizeLLMError maps an LLM failure to a message safe to show callers.
// Credential-shaped errors get a fixed configuration hint instead of the raw
// provider text, which may echo headers or key fragments.
func SanitizeLLMError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "status 401") {
		return llmConfigErrorMessage
	}
	return "generation failed"
}
