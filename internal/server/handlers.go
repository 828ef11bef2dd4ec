package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"kismet/internal/cache"
	"kismet/internal/document"
	"kismet/internal/metatags"
	"kismet/pkg/models"

	"github.com/sirupsen/logrus"
)

// TemplateSourceHeader names the provider that produced the base template
const TemplateSourceHeader = "X-Kismet-Template-Source"

// handleDocument serves the mini-app document. A known ?artist= gets its
// share tags rewritten; anything else gets the base template as is.
func (ps *PreviewServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	ps.metrics.requests.Add(1)

	artist, resolved := ps.site.Artist(r.URL.Query().Get("artist"))

	chain := ps.chain
	if r.Header.Get(document.OriginFetchHeader) != "" {
		chain = ps.localChain
	}

	page, err := ps.renderPage(r.Context(), chain, artist, resolved)
	if err != nil {
		ps.metrics.errors.Add(1)
		ps.respondWithErrorPage(w, r, http.StatusInternalServerError, "The page could not be generated.", err)
		return
	}

	if resolved {
		ps.metrics.artistRenders.Add(1)
	} else {
		ps.metrics.defaultRenders.Add(1)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", ps.config.CacheControl())
	w.Header().Set(TemplateSourceHeader, page.Source)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write([]byte(page.HTML))
	}
}

// renderPage returns the document for the resolved state, going through the
// page cache when one is configured.
func (ps *PreviewServer) renderPage(ctx context.Context, chain *document.Chain, artist models.ArtistMeta, resolved bool) (cache.Page, error) {
	key := cache.DefaultKey
	if resolved {
		key = artist.ID
	}

	var gen uint64
	if ps.pages != nil {
		gen = ps.pages.Generation()
		page, ok, err := ps.pages.GetPage(ctx, key)
		if err != nil {
			ps.logger.WithError(err).WithField("key", key).Warn("Page cache read failed")
		} else if ok {
			return page, nil
		}
	}

	tmpl := chain.Acquire(ctx)
	ps.lastSource.Store(tmpl.Source)
	if tmpl.Source == document.SourceFallback {
		ps.metrics.templateFallbacks.Add(1)
	}

	page := cache.Page{HTML: tmpl.HTML, Source: tmpl.Source}
	if resolved {
		result, err := metatags.Rewrite(tmpl.HTML, metatags.ArtistValues(ps.site, artist))
		if err != nil {
			return cache.Page{}, fmt.Errorf("rewriting tags for %s: %w", artist.ID, err)
		}
		for _, miss := range result.Misses {
			ps.metrics.tagMisses.Add(1)
			ps.logger.WithFields(logrus.Fields{
				"artist":   artist.ID,
				"tag":      miss.Tag,
				"matches":  miss.Matches,
				"provider": tmpl.Source,
			}).Warn("Managed tag not rewritten, template format drift")
		}
		page.HTML = result.HTML
	}

	// A degraded page is not worth pinning for a whole TTL, and a page
	// rendered before the last build change is already stale
	if ps.pages != nil && tmpl.Source != document.SourceFallback {
		stored, err := ps.pages.SetPageAt(ctx, key, page, gen)
		if err != nil {
			ps.logger.WithError(err).WithField("key", key).Warn("Page cache write failed")
		} else if !stored {
			ps.logger.WithField("key", key).Debug("Build changed during render, page not cached")
		}
	}

	return page, nil
}

// staticHandler serves build output first and public files second. The
// template itself is only ever served through handleDocument.
func (ps *PreviewServer) staticHandler() http.Handler {
	dist := http.FileServer(http.Dir(ps.config.Template.DistDir))
	public := http.FileServer(http.Dir(ps.config.Server.PublicDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := path.Clean("/" + r.URL.Path)
		if clean == "/" || strings.HasSuffix(clean, "/index.html") {
			http.NotFound(w, r)
			return
		}

		switch {
		case fileExists(ps.config.Template.DistDir, clean):
			dist.ServeHTTP(w, r)
		case fileExists(ps.config.Server.PublicDir, clean):
			public.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func fileExists(root, urlPath string) bool {
	if root == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(urlPath)))
	return err == nil && !info.IsDir()
}

// handleMethodNotAllowed rejects everything but GET and HEAD.
func (ps *PreviewServer) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, HEAD")
	ps.respondWithErrorPage(w, r, http.StatusMethodNotAllowed, "Method not allowed.", nil)
}
