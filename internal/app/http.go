package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-attachments/internal/attachments"
	"github.com/adanyl0v/go-todo-attachments/internal/config"
	"github.com/adanyl0v/go-todo-attachments/internal/delivery/http/v1"
	"github.com/adanyl0v/go-todo-attachments/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(requestLogger)
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for SIGINT or SIGTERM, then drain in-flight
	// requests within HTTP_SHUTDOWN_TIMEOUT.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

// requestLogger replaces gin's text access log with a structured entry.
func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	event := globalLogger.Info()
	if status >= http.StatusInternalServerError {
		event = globalLogger.Error()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("client_ip", c.ClientIP()).
		Msg("handled request")
}

func registerRoutes(router *gin.Engine) {
	cfg := config.Global()

	attachmentService := attachments.NewService(
		globalLogger,
		globalObjectStore,
		cfg.Attachments.UploadURLTTL,
	)
	taskService := services.NewTaskService(
		globalLogger,
		globalTaskStore,
		attachmentService,
	)

	v1Handler := v1.New(
		globalLogger,
		taskService,
		cfg.JWT.Issuer,
		cfg.JWT.SigningKey,
	)
	v1.RegisterRoutes(router, v1Handler)
}
