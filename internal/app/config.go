package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/go-todo-attachments/internal/config"
)

func MustReadEnv() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Str("store_driver", cfg.Store.Driver).
		Str("object_store_driver", cfg.ObjectStore.Driver).
		Dur("upload_url_ttl", cfg.Attachments.UploadURLTTL).
		Msg("read env")

	config.SetGlobal(cfg)
}
