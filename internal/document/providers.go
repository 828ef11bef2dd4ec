package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kismet/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Provider names, in the order Standard tries them
const (
	SourceStaticFile = "static-file"
	SourceAssetScan  = "asset-scan"
	SourceOrigin     = "origin"
	SourceInline     = "inline"
)

// OriginFetchHeader marks template fetches made by this server so a request
// routed back to it is not served through the origin provider again.
const OriginFetchHeader = "X-Kismet-Origin-Fetch"

// maxTemplateSize caps how much of a remote document is read
const maxTemplateSize = 512 * 1024

// StaticFile reads a previously generated index.html.
type StaticFile struct {
	Path string
}

func (p *StaticFile) Name() string { return SourceStaticFile }

func (p *StaticFile) Fetch(_ context.Context) (string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// AssetScan looks for the bundled entry point in the build output and
// generates a document that loads it.
type AssetScan struct {
	Site    *config.Site
	Dir     string
	Pattern string
}

func (p *AssetScan) Name() string { return SourceAssetScan }

func (p *AssetScan) Fetch(_ context.Context) (string, error) {
	matches, err := filepath.Glob(filepath.Join(p.Dir, p.Pattern))
	if err != nil {
		return "", fmt.Errorf("invalid asset pattern: %w", err)
	}

	// Newest build wins when stale bundles are still lying around
	var newest string
	var newestTime time.Time
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = match
			newestTime = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no asset matching %s in %s", p.Pattern, p.Dir)
	}

	rel, err := filepath.Rel(p.Dir, newest)
	if err != nil {
		return "", err
	}
	return Generate(p.Site, "/"+filepath.ToSlash(rel))
}

// Origin fetches the deployed site's own default document.
type Origin struct {
	URL    string
	Client *http.Client
}

// NewOriginClient returns a client suited to template fetches.
func NewOriginClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

func (p *Origin) Name() string { return SourceOrigin }

func (p *Origin) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", "KismetPreview/1.0")
	req.Header.Set(OriginFetchHeader, "1")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("origin returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read origin document: %w", err)
	}
	if len(body) > maxTemplateSize {
		return "", fmt.Errorf("origin document exceeds %d bytes", maxTemplateSize)
	}
	return string(body), nil
}

// Inline generates the document, taking the entry script from the
// post-build script reference when one exists.
type Inline struct {
	Site          *config.Site
	ScriptRefPath string
	DefaultSrc    string
}

func (p *Inline) Name() string { return SourceInline }

func (p *Inline) Fetch(_ context.Context) (string, error) {
	return Generate(p.Site, p.scriptSrc())
}

func (p *Inline) scriptSrc() string {
	if p.ScriptRefPath != "" {
		if data, err := os.ReadFile(p.ScriptRefPath); err == nil {
			if src := gjson.GetBytes(data, "scriptSrc").String(); src != "" {
				return src
			}
		}
	}
	if p.DefaultSrc != "" {
		return p.DefaultSrc
	}
	return "/index.tsx"
}

// Standard builds the chain described by the template section: static file,
// asset scan, origin fetch, inline generation.
func Standard(cfg *config.Config, site *config.Site, logger logrus.FieldLogger) *Chain {
	tc := cfg.Template
	timeout := time.Duration(tc.FetchTimeout) * time.Second

	staticPath := tc.StaticFile
	if !filepath.IsAbs(staticPath) {
		staticPath = filepath.Join(tc.DistDir, staticPath)
	}

	providers := []Provider{
		&StaticFile{Path: staticPath},
		&AssetScan{Site: site, Dir: tc.DistDir, Pattern: tc.AssetsPattern},
	}

	if !tc.DisableOrigin {
		originURL := tc.OriginURL
		if originURL == "" {
			originURL = strings.TrimRight(site.BaseURL, "/") + "/index.html"
		}
		providers = append(providers, &Origin{URL: originURL, Client: NewOriginClient(timeout)})
	}

	providers = append(providers, &Inline{
		Site:          site,
		ScriptRefPath: filepath.Join(tc.DistDir, tc.ScriptRefFile),
		DefaultSrc:    tc.DefaultScriptSrc,
	})

	return NewChain(site, timeout, logger, providers...)
}
