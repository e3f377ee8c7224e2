package app

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/adanyl0v/go-todo-attachments/internal/attachments"
	"github.com/adanyl0v/go-todo-attachments/internal/config"
	"github.com/adanyl0v/go-todo-attachments/internal/objectstore/memory"
	"github.com/adanyl0v/go-todo-attachments/internal/objectstore/s3store"
)

var globalObjectStore attachments.ObjectStore

func MustInitObjectStore() {
	cfg := config.Global()
	logger := globalLogger.With().
		Str("object_store", cfg.ObjectStore.Driver).
		Logger()

	switch cfg.ObjectStore.Driver {
	case config.ObjectStoreDriverS3:
		s3Cfg := cfg.S3
		client := s3.NewFromConfig(mustLoadAWSConfig(), func(o *s3.Options) {
			if s3Cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(s3Cfg.Endpoint)
			}
			o.UsePathStyle = s3Cfg.UsePathStyle
		})
		globalObjectStore = s3store.NewStore(
			logger,
			client,
			s3.NewPresignClient(client),
			s3Cfg.Bucket,
			cfg.Attachments.PublicBaseURL,
		)
		globalLogger.Info().
			Str("bucket", s3Cfg.Bucket).
			Msg("initialized s3 object store")
	case config.ObjectStoreDriverMemory:
		globalObjectStore = memory.NewStore("attachments")
		globalLogger.Warn().Msg("initialized in-memory object store")
	default:
		panic(fmt.Errorf("unknown object store driver: %s", cfg.ObjectStore.Driver))
	}
}
