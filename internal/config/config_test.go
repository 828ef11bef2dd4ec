package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kismet/pkg/models"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	if len(cfg.Artists) != 9 {
		t.Errorf("expected 9 default artists, got %d", len(cfg.Artists))
	}
	if got := cfg.CacheControl(); got != "public, s-maxage=300, stale-while-revalidate=60" {
		t.Errorf("unexpected cache control: %s", got)
	}
	if got := cfg.GetAddress(); got != "0.0.0.0:8080" {
		t.Errorf("unexpected address: %s", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"relative base url", func(c *Config) { c.Site.BaseURL = "/kismet" }, true},
		{"ftp base url", func(c *Config) { c.Site.BaseURL = "ftp://example.com" }, true},
		{"empty app name", func(c *Config) { c.Site.AppName = "" }, true},
		{"zero fetch timeout", func(c *Config) { c.Template.FetchTimeout = 0 }, true},
		{"zero cache ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"zero cache ttl with cache disabled", func(c *Config) { c.Cache.TTL = 0; c.Cache.Enabled = false }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"duplicate artist", func(c *Config) { c.Artists = append(c.Artists, c.Artists[0]) }, true},
		{"artist id with query chars", func(c *Config) { c.Artists[0].ID = "qab&x=1" }, true},
		{"artist without image", func(c *Config) { c.Artists[0].ImageURL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantError && err == nil {
				t.Errorf("Validate() expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfigCreatesDefaultFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join("conf", "kismet.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}

	// The written file must load back to the same roster
	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if len(reloaded.Artists) != len(cfg.Artists) {
		t.Errorf("expected %d artists after reload, got %d", len(cfg.Artists), len(reloaded.Artists))
	}
	if reloaded.Site.BaseURL != defaultBaseURL {
		t.Errorf("unexpected base url after reload: %s", reloaded.Site.BaseURL)
	}
}

func TestReadConfigHasNoSideEffects(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := ReadConfig("kismet.toml")
	if err != nil {
		t.Fatalf("ReadConfig() error: %v", err)
	}
	if len(cfg.Artists) != len(DefaultArtists()) {
		t.Errorf("expected the default roster, got %d artists", len(cfg.Artists))
	}
	if _, err := os.Stat("kismet.toml"); !os.IsNotExist(err) {
		t.Error("ReadConfig must not write a config file")
	}

	if err := os.WriteFile("broken.toml", []byte("[site\nbase_url = "), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := ReadConfig("broken.toml"); err == nil {
		t.Error("expected a parse error for a malformed file")
	}
}

func TestLoadConfigArtistTableReplacesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	content := `
[site]
base_url = "https://example.org"
app_name = "Test Show"

[[artists]]
id = "solo"
name = "SOLO"
image_url = "https://img.example.org/solo.png"
description = "Only one."
`
	if err := os.WriteFile("kismet.toml", []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig("kismet.toml")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if len(cfg.Artists) != 1 || cfg.Artists[0].ID != "solo" {
		t.Fatalf("expected only the configured artist, got %+v", cfg.Artists)
	}
	// Unset sections keep their defaults
	if cfg.Server.SharedMaxAge != 300 {
		t.Errorf("expected default shared max age, got %d", cfg.Server.SharedMaxAge)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvBaseURL, "https://preview.example.net")
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/2")
	t.Setenv(EnvLogLevel, "debug")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}

	if cfg.Site.BaseURL != "https://preview.example.net" {
		t.Errorf("base url not overridden: %s", cfg.Site.BaseURL)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port not overridden: %s", cfg.Server.Port)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("redis url not overridden: %s", cfg.Cache.RedisURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level not overridden: %s", cfg.Logging.Level)
	}
}

func TestApplyEnvReadsDotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvPort, "")
	os.Unsetenv(EnvPort)

	if err := os.WriteFile(".env", []byte("KISMET_PORT=7070\n"), 0644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvPort) })

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected port from .env, got %s", cfg.Server.Port)
	}
}

func TestLoadArtists(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "artists.yaml")
	yamlContent := `artists:
  - id: alpha
    name: ALPHA
    image_url: https://img.example.org/alpha.png
    description: First.
  - id: beta
    name: BETA
    image_url: https://img.example.org/beta.png
    description: Second.
`
	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("writing yaml catalog: %v", err)
	}

	tomlPath := filepath.Join(dir, "artists.toml")
	tomlContent := `[[artists]]
id = "gamma"
name = "GAMMA"
image_url = "https://img.example.org/gamma.png"
description = "Third."
`
	if err := os.WriteFile(tomlPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("writing toml catalog: %v", err)
	}

	t.Run("yaml", func(t *testing.T) {
		artists, err := LoadArtists(yamlPath)
		if err != nil {
			t.Fatalf("LoadArtists() error: %v", err)
		}
		if len(artists) != 2 || artists[1].ImageURL != "https://img.example.org/beta.png" {
			t.Errorf("unexpected artists: %+v", artists)
		}
	})

	t.Run("toml", func(t *testing.T) {
		artists, err := LoadArtists(tomlPath)
		if err != nil {
			t.Fatalf("LoadArtists() error: %v", err)
		}
		if len(artists) != 1 || artists[0].ID != "gamma" {
			t.Errorf("unexpected artists: %+v", artists)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		jsonPath := filepath.Join(dir, "artists.json")
		if err := os.WriteFile(jsonPath, []byte(`{"artists":[]}`), 0644); err != nil {
			t.Fatalf("writing json catalog: %v", err)
		}
		if _, err := LoadArtists(jsonPath); err == nil {
			t.Error("expected an error for a json catalog")
		}
	})
}

func TestBuildSite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Site.BaseURL = "https://example.org/"
	cfg.Artists = []models.ArtistMeta{
		{ID: "tagged", Name: "<b>BOLD</b> NAME", ImageURL: "https://img.example.org/t.png", Description: `Says "hi" & <i>waves</i>`},
	}

	site := cfg.BuildSite()

	if site.BaseURL != "https://example.org" {
		t.Errorf("trailing slash should be trimmed, got %s", site.BaseURL)
	}
	if site.SplashImageURL != "https://example.org/splash.png" {
		t.Errorf("unexpected splash url: %s", site.SplashImageURL)
	}
	if site.DefaultImageURL != "https://example.org/image.png" {
		t.Errorf("unexpected default image: %s", site.DefaultImageURL)
	}

	artist, ok := site.Artist("tagged")
	if !ok {
		t.Fatal("expected artist to be present")
	}
	if artist.Name != "BOLD NAME" {
		t.Errorf("markup should be stripped from name, got %q", artist.Name)
	}
	if strings.Contains(artist.Description, "<i>") || !strings.Contains(artist.Description, `"hi" &`) {
		t.Errorf("description should be plain unescaped text, got %q", artist.Description)
	}

	if _, ok := site.Artist("Tagged"); ok {
		t.Error("artist lookup must be case-sensitive")
	}
	if got := site.ArtistURL("tagged"); got != "https://example.org?artist=tagged" {
		t.Errorf("unexpected artist url: %s", got)
	}
}

func TestBuildSiteKeepsTagLikeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Tom <Jerry>", "Tom <Jerry>"},
		{"I <3 paint", "I <3 paint"},
		{"a < b > c", "a < b > c"},
		{"Q &amp; A", "Q &amp; A"},
		{"<em>Loud</em> <Jerry>", "Loud"},
		{"<script>alert(1)</script>Name", "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Artists = []models.ArtistMeta{{ID: "x", Name: tt.input, ImageURL: "https://img.example.org/x.png"}}

			artist, _ := cfg.BuildSite().Artist("x")
			if artist.Name != tt.want {
				t.Errorf("Name = %q, want %q", artist.Name, tt.want)
			}
		})
	}
}

func TestBuildSiteKeepsRosterOrder(t *testing.T) {
	site := DefaultConfig().BuildSite()
	ids := site.ArtistIDs()
	want := []string{"qab", "gressie", "noistruct", "sulkian", "kathonejo", "arbstein", "sato", "alva", "pinkyblue"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("unexpected roster order: %v", ids)
	}

	// Returned slice is a copy
	ids[0] = "mutated"
	if site.ArtistIDs()[0] != "qab" {
		t.Error("ArtistIDs must not expose internal state")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup, mirroring testing.T.Chdir from newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
