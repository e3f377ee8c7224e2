package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-attachments/internal/models"
	"github.com/adanyl0v/go-todo-attachments/internal/services"
)

type getTaskResponse struct {
	ID            string    `json:"taskId"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
	DueDate       *string   `json:"dueDate,omitempty"`
	Done          bool      `json:"done"`
	AttachmentURL string    `json:"attachmentUrl,omitempty"`
}

func newGetTaskResponse(task *models.Task) getTaskResponse {
	return getTaskResponse{
		ID:            task.ID,
		Name:          task.Name,
		CreatedAt:     task.CreatedAt,
		DueDate:       task.DueDate,
		Done:          task.Done,
		AttachmentURL: task.AttachmentURL,
	}
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newServiceError(err))
		return
	}

	response := make([]getTaskResponse, len(tasks))
	for i := range tasks {
		response[i] = newGetTaskResponse(&tasks[i])
	}

	h.logger.Info().Msg("fetched tasks")
	c.JSON(http.StatusOK, gin.H{"items": response})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c, userID, taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to get task")
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().Msg("fetched task")
	c.JSON(http.StatusOK, gin.H{"item": newGetTaskResponse(task)})
}

type createTaskRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	DueDate *string `json:"dueDate,omitempty"`
	Done    *bool   `json:"done,omitempty"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, userID, services.CreateTaskParams{
		Name:    req.Name,
		DueDate: req.DueDate,
		Done:    req.Done,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().Msg("created task")
	c.JSON(http.StatusCreated, gin.H{"item": newGetTaskResponse(task)})
}

type updateTaskRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	DueDate *string `json:"dueDate,omitempty"`
	Done    bool    `json:"done"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.tasks.UpdateTask(c, userID, taskID, models.TaskUpdate{
		Name:    req.Name,
		DueDate: req.DueDate,
		Done:    req.Done,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().Msg("updated task")
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c, userID, taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().Msg("deleted task")
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleRequestAttachmentUpload(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	ref, err := h.tasks.RequestAttachmentUpload(c, userID, taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to request attachment upload")
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().Msg("issued attachment upload url")
	c.JSON(http.StatusOK, gin.H{"uploadUrl": ref.URL})
}

func (h *handlerImpl) taskID(c *gin.Context) (string, bool) {
	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError(errMissingTaskID.Error()))
		return "", false
	}
	return taskID, true
}
