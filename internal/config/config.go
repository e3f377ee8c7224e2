package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StoreDriverDynamo   = "dynamodb"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

const (
	ObjectStoreDriverS3     = "s3"
	ObjectStoreDriverMemory = "memory"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env         string `env:"ENV" env-required:"true"`
	HTTP        HTTPConfig
	JWT         JWTConfig
	Store       StoreConfig
	AWS         AWSConfig
	Dynamo      DynamoConfig
	Postgres    PostgresConfig
	ObjectStore ObjectStoreConfig
	S3          S3Config
	Attachments AttachmentsConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type JWTConfig struct {
	Issuer     string `env:"JWT_ISSUER" env-required:"true"`
	SigningKey string `env:"JWT_SIGNING_KEY" env-required:"true"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" env-default:"dynamodb"`
}

type AWSConfig struct {
	Region string `env:"AWS_REGION" env-default:"us-east-1"`
}

type DynamoConfig struct {
	Table    string `env:"DYNAMO_TABLE"`
	Endpoint string `env:"DYNAMO_ENDPOINT"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type ObjectStoreConfig struct {
	Driver string `env:"OBJECT_STORE_DRIVER" env-default:"s3"`
}

type S3Config struct {
	Bucket       string `env:"S3_BUCKET"`
	Endpoint     string `env:"S3_ENDPOINT"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
}

type AttachmentsConfig struct {
	UploadURLTTL  time.Duration `env:"ATTACHMENT_UPLOAD_URL_TTL" env-default:"5m"`
	PublicBaseURL string        `env:"ATTACHMENT_PUBLIC_BASE_URL"`
}

// Validate checks the settings that are only required by the selected drivers.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	var errs []error
	switch c.Store.Driver {
	case StoreDriverDynamo:
		if c.Dynamo.Table == "" {
			errs = append(errs, errors.New("DYNAMO_TABLE is required"))
		}
	case StoreDriverPostgres:
		if c.Postgres.Host == "" {
			errs = append(errs, errors.New("POSTGRES_HOST is required"))
		}
		if c.Postgres.Username == "" {
			errs = append(errs, errors.New("POSTGRES_USERNAME is required"))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, errors.New("POSTGRES_DATABASE is required"))
		}
	case StoreDriverMemory:
		if c.Env == EnvProd {
			errs = append(errs, errors.New("memory store driver is not allowed in prod"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver: %s", c.Store.Driver))
	}

	switch c.ObjectStore.Driver {
	case ObjectStoreDriverS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required"))
		}
	case ObjectStoreDriverMemory:
		if c.Env == EnvProd {
			errs = append(errs, errors.New("memory object store driver is not allowed in prod"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown object store driver: %s", c.ObjectStore.Driver))
	}

	if c.Attachments.UploadURLTTL <= 0 {
		errs = append(errs, errors.New("ATTACHMENT_UPLOAD_URL_TTL must be positive"))
	}
	return errors.Join(errs...)
}
