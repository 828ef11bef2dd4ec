package server

import "sync/atomic"

// metrics are process-wide counters reported by /health
type metrics struct {
	requests          atomic.Int64
	artistRenders     atomic.Int64
	defaultRenders    atomic.Int64
	tagMisses         atomic.Int64
	templateFallbacks atomic.Int64
	errors            atomic.Int64
}

func (m *metrics) snapshot() map[string]int64 {
	return map[string]int64{
		"document_requests":  m.requests.Load(),
		"artist_renders":     m.artistRenders.Load(),
		"default_renders":    m.defaultRenders.Load(),
		"tag_misses":         m.tagMisses.Load(),
		"template_fallbacks": m.templateFallbacks.Load(),
		"errors":             m.errors.Load(),
	}
}
