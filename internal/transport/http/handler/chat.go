package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type chatRequest struct {
	Question string `json:"question" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat streams a grounded answer as text/plain. Preconditions (ownership,
// processed flag) map to 404; generation failures before the first byte map
// to 500 with a sanitized message. Once bytes are on the wire a failure can
// only end the stream.
func (h *ChatHandler) Chat(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "missing session")
		return
	}

	documentID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || documentID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	streaming := false
	_, err = h.chatService.Answer(c.Request.Context(), sessionID, uint(documentID64), req.Question, func(chunk string) error {
		if !streaming {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("Cache-Control", "no-cache")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
			streaming = true
		}
		if _, writeErr := c.Writer.Write([]byte(chunk)); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if streaming {
			// Headers are gone; nothing was persisted, just end the stream.
			log.Printf("chat stream aborted: %v", err)
			c.Abort()
			return
		}
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "document not found or not processed")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "question is required")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, app.SanitizeLLMError(err))
		}
	}
}
