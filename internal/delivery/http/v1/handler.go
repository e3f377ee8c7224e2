package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-attachments/internal/services"
)

type Handler interface {
	HandleHealth(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleCORSMiddleware(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleRequestAttachmentUpload(c *gin.Context)
}

type handlerImpl struct {
	logger        zerolog.Logger
	tasks         services.TaskService
	jwtIssuer     string
	jwtSigningKey []byte
}

func New(
	logger zerolog.Logger,
	taskService services.TaskService,
	jwtIssuer string,
	jwtSigningKey string,
) Handler {
	return &handlerImpl{
		logger:        logger,
		tasks:         taskService,
		jwtIssuer:     jwtIssuer,
		jwtSigningKey: []byte(jwtSigningKey),
	}
}

// RegisterRoutes mounts the health check and the authenticated task routes.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.Use(h.HandleCORSMiddleware)
	router.GET("/healthz", h.HandleHealth)

	tasksRouter := router.Group("/tasks", h.HandleAuthMiddleware)
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PATCH("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
	tasksRouter.POST("/:id/attachment", h.HandleRequestAttachmentUpload)
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
