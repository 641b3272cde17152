package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide zap logger. Local environments get the
// human-readable development config; everything else gets production JSON.
func NewLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "local" || env == "test" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
