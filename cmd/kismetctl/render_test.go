package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kismet/internal/config"
	"kismet/internal/metatags"

	"github.com/sirupsen/logrus"
)

func TestRender(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Template.DistDir = t.TempDir()
	cfg.Template.DisableOrigin = true
	site := cfg.BuildSite()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tests := []struct {
		artist string
		title  string
	}{
		{"sato", "<title>SATO | Based House Collection</title>"},
		{"", "<title>Based House Collection</title>"},
		{"nobody", "<title>Based House Collection</title>"},
	}

	for _, tt := range tests {
		t.Run(tt.artist, func(t *testing.T) {
			var out bytes.Buffer
			if err := render(context.Background(), &out, logger, cfg, site, tt.artist); err != nil {
				t.Fatalf("render() error: %v", err)
			}
			if !strings.Contains(out.String(), tt.title) {
				t.Errorf("output missing %s", tt.title)
			}
			if err := metatags.Verify(out.String()); err != nil {
				t.Errorf("rendered document invalid: %v", err)
			}
		})
	}
}

func TestScriptRefCommand(t *testing.T) {
	dist := t.TempDir()
	if err := os.WriteFile(filepath.Join(dist, "index.html"), []byte(`<script type="module" src="/assets/index-z.js"></script>`), 0644); err != nil {
		t.Fatalf("writing index: %v", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.toml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"scriptref", "--config", missing, "--dist", dist, "--remove-index"})
	t.Cleanup(func() {
		scriptRefDist, scriptRefRemove = "", false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out.String(), "/assets/index-z.js") {
		t.Errorf("unexpected output: %s", out.String())
	}
	if _, err := os.Stat(filepath.Join(dist, ".script-ref.json")); err != nil {
		t.Errorf("script reference not written: %v", err)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("scriptref must not create a config file")
	}
}

func TestScriptRefCommandReportsBrokenConfig(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "kismet.toml")
	if err := os.WriteFile(broken, []byte("[template\ndist_dir = "), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	rootCmd.SetOut(io.Discard)
	rootCmd.SetArgs([]string{"scriptref", "--config", broken, "--dist", t.TempDir()})
	t.Cleanup(func() {
		scriptRefDist = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected the config parse error to be reported")
	}
}
