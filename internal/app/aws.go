package app

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/adanyl0v/go-todo-attachments/internal/config"
)

var (
	globalAWSConfig   aws.Config
	awsConfigIsLoaded bool
)

// mustLoadAWSConfig loads the shared AWS config once for every AWS client.
func mustLoadAWSConfig() aws.Config {
	if awsConfigIsLoaded {
		return globalAWSConfig
	}

	region := config.Global().AWS.Region
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to load aws config")
		panic(err)
	}
	globalLogger.Info().
		Str("region", region).
		Msg("loaded aws config")

	globalAWSConfig = cfg
	awsConfigIsLoaded = true
	return globalAWSConfig
}
