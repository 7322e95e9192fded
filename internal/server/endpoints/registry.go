package endpoints

import (
	"github.com/jackzampolin/tagsheet/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	// SwaggerSpecPath overrides the embedded OpenAPI document.
	SwaggerSpecPath string
	// MaxUploadBytes caps request bodies on upload endpoints (default 64MB).
	MaxUploadBytes int64
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Pipeline endpoints
		&ExtractEndpoint{MaxUploadBytes: cfg.MaxUploadBytes},
		&TagSheetEndpoint{MaxUploadBytes: cfg.MaxUploadBytes},

		// Run history endpoints
		&ListRunsEndpoint{},
		&GetRunEndpoint{},

		// Observability
		&MetricsEndpoint{},
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
		&SwaggerUIEndpoint{},
	}
}
