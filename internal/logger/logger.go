package logger

import (
	"go.uber.org/zap"
)

// New builds the process-wide zap logger. Production config (JSON, info level)
// unless APP_ENV asks for development output.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
