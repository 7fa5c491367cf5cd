package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a console logger for the dev environment and a JSON one
// everywhere else.
func New(environment, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if environment == "dev" {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}

	return cfg.Build()
}
