package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a zap logger: JSON production output for "prod"/"production",
// console development output otherwise.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}
