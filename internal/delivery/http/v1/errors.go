package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-attachments/internal/attachments"
	"github.com/adanyl0v/go-todo-attachments/internal/services"
	"github.com/adanyl0v/go-todo-attachments/internal/storage"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errMissingTaskID      = errors.New("task id is required")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

// newServiceError maps a task service failure onto the response status.
func newServiceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, attachments.ErrInvalidTaskID):
		return newBadRequestError(err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(err.Error())
	case errors.Is(err, storage.ErrStoreUnavailable), errors.Is(err, attachments.ErrObjectStoreUnavailable):
		return newStatusTextError(http.StatusServiceUnavailable)
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
