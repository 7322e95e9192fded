package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tagsheet/internal/api"
	"github.com/jackzampolin/tagsheet/internal/svcctx"
)

// MetricsEndpoint serves Prometheus metrics at GET /metrics.
type MetricsEndpoint struct{}

var _ api.Endpoint = (*MetricsEndpoint)(nil)

func (e *MetricsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/metrics", e.handler
}

func (e *MetricsEndpoint) RequiresInit() bool { return true }

func (e *MetricsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	m := svcctx.MetricsFrom(r.Context())
	if m == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics not initialized")
		return
	}
	m.Handler().ServeHTTP(w, r)
}

// Command returns nil; scrape /metrics directly.
func (e *MetricsEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}
