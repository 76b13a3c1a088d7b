package config

import (
	"log"

	"go.uber.org/zap"
)

// Logger is a no-op until InitLogger runs, so packages may log from tests.
var Logger = zap.NewNop()

// InitLogger builds the global zap logger. Production gets JSON output, everything else the development encoder.
func InitLogger(env string) {
	var err error
	if env == "production" {
		Logger, err = zap.NewProduction()
	} else {
		Logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}

	Logger.Info("Zap logger initialized", zap.String("env", env))
}
