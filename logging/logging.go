package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New creates a new zap logger suited to the given environment. "local" gets the
// example logger, "development" the development logger and anything else the
// production logger.
func New(env string) (*zap.Logger, error) {
	switch strings.ToLower(env) {
	case "local":
		return zap.NewExample(), nil
	case "development", "dev":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
