package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

type JobHandler struct {
	jobService *app.JobService
}

type jobStatusResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewJobHandler(jobService *app.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// Status lets the client poll an ingestion job. Unknown task ids and task
// ids belonging to another session both answer 404.
func (h *JobHandler) Status(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "missing session")
		return
	}

	taskID := c.Param("taskID")
	job, err := h.jobService.GetByTaskID(sessionID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrJobNotFound), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "job not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "job lookup failed")
		}
		return
	}

	message := job.Result
	if message == "" {
		message = "job is currently in progress"
	}
	response.OK(c, jobStatusResponse{
		JobID:   job.TaskID,
		Status:  job.Status,
		Message: message,
	})
}
