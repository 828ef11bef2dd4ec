// Package document acquires the base HTML template of the mini-app.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kismet/internal/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrNoTemplate is logged when every provider in a chain failed.
var ErrNoTemplate = errors.New("no template provider succeeded")

// SourceFallback names templates produced by FallbackPage
const SourceFallback = "fallback"

// Provider is one way of obtaining the base template.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (string, error)
}

// Template is an acquired base document and the provider it came from.
type Template struct {
	HTML   string
	Source string
}

// Chain tries its providers in order; the first success wins. Every attempt
// is bounded by the chain timeout. When all providers fail the chain serves
// FallbackPage, so Acquire never fails.
type Chain struct {
	site      *config.Site
	providers []Provider
	timeout   time.Duration
	logger    logrus.FieldLogger
	group     *singleflight.Group
}

// NewChain creates a chain over providers.
func NewChain(site *config.Site, timeout time.Duration, logger logrus.FieldLogger, providers ...Provider) *Chain {
	return &Chain{
		site:      site,
		providers: providers,
		timeout:   timeout,
		logger:    logger,
		group:     &singleflight.Group{},
	}
}

// Providers returns the provider names in order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Without returns a chain that skips the named provider.
func (c *Chain) Without(name string) *Chain {
	kept := make([]Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if p.Name() != name {
			kept = append(kept, p)
		}
	}
	return NewChain(c.site, c.timeout, c.logger, kept...)
}

// Acquire returns the first template a provider can produce. Concurrent
// callers share one acquisition; the result is an immutable string so
// sharing it is safe.
func (c *Chain) Acquire(ctx context.Context) Template {
	// A caller going away must not degrade the result for the others
	detached := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do("template", func() (interface{}, error) {
		return c.acquire(detached), nil
	})
	return v.(Template)
}

func (c *Chain) acquire(ctx context.Context) Template {
	var failures []error
	for _, p := range c.providers {
		html, err := c.try(ctx, p)
		if err == nil {
			return Template{HTML: html, Source: p.Name()}
		}
		c.logger.WithError(err).WithField("provider", p.Name()).Warn("Template provider failed, trying next")
		failures = append(failures, err)
	}

	err := ErrNoTemplate
	if joined := errors.Join(failures...); joined != nil {
		err = fmt.Errorf("%w: %w", ErrNoTemplate, joined)
	}
	c.logger.WithError(err).Error("All template providers failed, serving fallback page")
	return Template{HTML: FallbackPage(c.site), Source: SourceFallback}
}

type fetchResult struct {
	html string
	err  error
}

// try runs one provider under the chain timeout. Providers that ignore the
// context are abandoned when it expires.
func (c *Chain) try(ctx context.Context, p Provider) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		html, err := p.Fetch(ctx)
		done <- fetchResult{html: html, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("%s: %w", p.Name(), r.err)
		}
		if strings.TrimSpace(r.html) == "" {
			return "", fmt.Errorf("%s: empty document", p.Name())
		}
		return r.html, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", p.Name(), ctx.Err())
	}
}
