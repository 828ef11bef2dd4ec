package server

import (
	"net/http"
	"time"

	"kismet/internal/document"
)

// HealthStatus represents operational status for the /health endpoint.
type HealthStatus struct {
	Status         string           `json:"status"`
	Timestamp      time.Time        `json:"timestamp"`
	BaseURL        string           `json:"baseUrl"`
	Artists        int              `json:"artistCount"`
	Cache          string           `json:"cache"`
	Providers      []string         `json:"providers"`
	TemplateSource string           `json:"templateSource,omitempty"`
	Counters       map[string]int64 `json:"counters"`
}

// handleHealthCheck reports liveness plus the state of the template chain.
// A fallback template is reported as degraded but still answers 200.
func (ps *PreviewServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	health := &HealthStatus{
		Status:         "healthy",
		Timestamp:      time.Now(),
		BaseURL:        ps.site.BaseURL,
		Artists:        len(ps.site.ArtistIDs()),
		Cache:          "disabled",
		Providers:      ps.chain.Providers(),
		TemplateSource: ps.lastSource.Load().(string),
		Counters:       ps.metrics.snapshot(),
	}

	if ps.pages != nil {
		health.Cache = ps.pages.Name()
	}
	if health.TemplateSource == document.SourceFallback {
		health.Status = "degraded"
	}

	if r.Method == http.MethodHead {
		return
	}
	ps.respondJSON(w, health)
}
