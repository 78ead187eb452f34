package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

const maxUploadSize = 20 << 20 // 20 MB

type DocumentHandler struct {
	docService *app.DocumentService
}

type jobDetails struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type uploadResponse struct {
	DocumentID uint       `json:"document_id"`
	Filename   string     `json:"filename"`
	StatusURL  string     `json:"status_url"`
	Job        jobDetails `json:"job"`
}

type documentInfo struct {
	ID          uint   `json:"id"`
	Filename    string `json:"filename"`
	IsProcessed bool   `json:"is_processed"`
}

func NewDocumentHandler(docService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

// Upload accepts a multipart document, persists it and dispatches the
// ingestion job. Responds 202: the client polls the status URL.
func (h *DocumentHandler) Upload(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "missing session")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 20MB)")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	result, err := h.docService.Upload(c.Request.Context(), sessionID, file.Filename, f)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnsupportedFileType):
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedType, "only PDF, TXT and MD files are allowed")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.Accepted(c, uploadResponse{
		DocumentID: result.Document.ID,
		Filename:   result.Document.Filename,
		StatusURL:  fmt.Sprintf("/api/v1/jobs/status/%s", result.Job.TaskID),
		Job: jobDetails{
			JobID:   result.Job.TaskID,
			Status:  result.Job.Status,
			Message: "task dispatched to worker",
		},
	})
}

// List returns the session's documents with their processed flag.
func (h *DocumentHandler) List(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "missing session")
		return
	}

	docs, err := h.docService.List(sessionID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	infos := make([]documentInfo, 0, len(docs))
	for _, d := range docs {
		infos = append(infos, documentInfo{
			ID:          d.ID,
			Filename:    d.Filename,
			IsProcessed: d.IsProcessed,
		})
	}
	response.OK(c, infos)
}
