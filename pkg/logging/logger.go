package logging

import "go.uber.org/zap"

// New builds the engine logger: human-readable in local development,
// JSON in any other environment.
func New(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
