package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"kismet/pkg/models"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig        `toml:"server"`
	Site     SiteConfig          `toml:"site"`
	Template TemplateConfig      `toml:"template"`
	Cache    CacheConfig         `toml:"cache"`
	Logging  LoggingConfig       `toml:"logging"`
	Ngrok    NgrokConfig         `toml:"ngrok"`
	Artists  []models.ArtistMeta `toml:"artists"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port                 string `toml:"port"`
	Host                 string `toml:"host"`
	PublicDir            string `toml:"public_dir"`
	EnableCORS           bool   `toml:"enable_cors"`
	ReadTimeout          int    `toml:"read_timeout_seconds"`
	WriteTimeout         int    `toml:"write_timeout_seconds"`
	IdleTimeout          int    `toml:"idle_timeout_seconds"`
	SharedMaxAge         int    `toml:"shared_max_age_seconds"`
	StaleWhileRevalidate int    `toml:"stale_while_revalidate_seconds"`
}

// SiteConfig holds the default (site-wide) identity used in share previews
type SiteConfig struct {
	BaseURL               string `toml:"base_url"`
	AppName               string `toml:"app_name"`
	DefaultTitle          string `toml:"default_title"`
	DefaultDescription    string `toml:"default_description"`
	DefaultImageURL       string `toml:"default_image_url"`
	DefaultButtonTitle    string `toml:"default_button_title"`
	SplashImageURL        string `toml:"splash_image_url"`
	SplashBackgroundColor string `toml:"splash_background_color"`
	DescriptionSuffix     string `toml:"description_suffix"`
	ArtistsFile           string `toml:"artists_file"`
}

// TemplateConfig controls where the base HTML document comes from
type TemplateConfig struct {
	DistDir          string `toml:"dist_dir"`
	StaticFile       string `toml:"static_file"`
	AssetsPattern    string `toml:"assets_pattern"`
	ScriptRefFile    string `toml:"script_ref_file"`
	DefaultScriptSrc string `toml:"default_script_src"`
	OriginURL        string `toml:"origin_url"`
	DisableOrigin    bool   `toml:"disable_origin"`
	FetchTimeout     int    `toml:"fetch_timeout_seconds"`
}

// CacheConfig contains rendered document cache configuration
type CacheConfig struct {
	Enabled   bool   `toml:"enabled"`
	TTL       int    `toml:"ttl_seconds"`
	RedisURL  string `toml:"redis_url"`
	KeyPrefix string `toml:"key_prefix"`
	WatchDist bool   `toml:"watch_dist"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level          string `toml:"level"`
	Format         string `toml:"format"`
	File           string `toml:"file"`
	RequestLogging bool   `toml:"request_logging"`
}

// NgrokConfig contains ngrok tunnel configuration
type NgrokConfig struct {
	Enabled      bool   `toml:"enabled"`
	AuthToken    string `toml:"auth_token"`
	Domain       string `toml:"domain"`
	UsePublicURL bool   `toml:"use_public_url"`
}

const defaultBaseURL = "https://kismet-miniapp-2025.vercel.app"

var artistIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                 "8080",
			Host:                 "0.0.0.0",
			PublicDir:            "./public",
			EnableCORS:           true,
			ReadTimeout:          15,
			WriteTimeout:         15,
			IdleTimeout:          60,
			SharedMaxAge:         300,
			StaleWhileRevalidate: 60,
		},
		Site: SiteConfig{
			BaseURL:               defaultBaseURL,
			AppName:               "Based House Collection",
			DefaultTitle:          "Based House Collection",
			DefaultDescription:    "An immersive, experimental digital exhibition space for the Kismet Casa x Basehouse residency artists. A living interface that morphs to match the aesthetic soul of each creator.",
			DefaultImageURL:       "", // derived from base_url
			DefaultButtonTitle:    "Explore Kismet",
			SplashImageURL:        "", // derived from base_url
			SplashBackgroundColor: "#000000",
			DescriptionSuffix:     "Explore this artist's work in the Kismet Casa x Basehouse residency exhibition.",
		},
		Template: TemplateConfig{
			DistDir:          "./dist",
			StaticFile:       "index.html",
			AssetsPattern:    "assets/index-*.js",
			ScriptRefFile:    ".script-ref.json",
			DefaultScriptSrc: "/index.tsx",
			OriginURL:        "", // derived from base_url
			DisableOrigin:    false,
			FetchTimeout:     3,
		},
		Cache: CacheConfig{
			Enabled:   true,
			TTL:       60,
			RedisURL:  "",
			KeyPrefix: "kismet:",
			WatchDist: true,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			File:           "",
			RequestLogging: true,
		},
		Ngrok: NgrokConfig{
			Enabled:      false,
			AuthToken:    "",
			Domain:       "",
			UsePublicURL: true,
		},
		Artists: DefaultArtists(),
	}
}

// DefaultArtists returns the residency artists shown in the exhibition
func DefaultArtists() []models.ArtistMeta {
	return []models.ArtistMeta{
		{
			ID:          "qab",
			Name:        "QABQABQAB",
			ImageURL:    "https://i.postimg.cc/RZSqXtGT/qab-da-kismet-female-energy.png",
			Description: "QABQABQAB - Pop Gestual Urbano. Da Kismet Female Energy.",
		},
		{
			ID:          "gressie",
			Name:        "GRESSIE",
			ImageURL:    "https://i.postimg.cc/nhFM0mT4/gressie-house-of-chaos.png",
			Description: "GRESSIE - Etéreo Suave. House of Chaos.",
		},
		{
			ID:          "noistruct",
			Name:        "NOISTRUCT",
			ImageURL:    "https://i.postimg.cc/mgLh89VQ/noistruct-17h-maho-shoujo-error-bronze.png",
			Description: "NOISTRUCT - Biomecánico / Reliquia Gótica. 17h Maho Shoujo Error Bronze.",
		},
		{
			ID:          "sulkian",
			Name:        "SULKIAN CORE",
			ImageURL:    "https://i.postimg.cc/mgLh89V6/sulkian-DS-L-Oₓₓₓ-1.png",
			Description: "SULKIAN CORE - Biomecanoide Tech-Futurista. DS-L-Oₓₓₓ I.",
		},
		{
			ID:          "kathonejo",
			Name:        "KATHONEJO",
			ImageURL:    "https://i.postimg.cc/HkYjBM3X/kathonejo-Collage-Kismet-residence.png",
			Description: "KATHONEJO - Modo Cielo Kawaii Místico. Collage Kismet Residence.",
		},
		{
			ID:          "arbstein",
			Name:        "ARBSTEIN",
			ImageURL:    "https://i.postimg.cc/13m4JFMq/arbstein-phyloem.png",
			Description: "ARBSTEIN - Orgánico-Viscoso. Phyloem.",
		},
		{
			ID:          "sato",
			Name:        "SATO",
			ImageURL:    "https://i.postimg.cc/Vkf5Dt4W/sato-Untitled.png",
			Description: "SATO - Cuaderno de Grafito. Untitled.",
		},
		{
			ID:          "alva",
			Name:        "ALVABRINA",
			ImageURL:    "https://i.postimg.cc/c4MrRh78/alva-Yellow-Birth.png",
			Description: "ALVABRINA - Portal Energético. Yellow Birth.",
		},
		{
			ID:          "pinkyblue",
			Name:        "PINKYBLU",
			ImageURL:    "https://i.postimg.cc/pTTD77ZD/pinkyblu-Other-sunlights.gif",
			Description: "PINKYBLU - Pixel-Sueño Líquido. Other Sunlights.",
		},
	}
}

// LoadConfig loads configuration from a TOML file, writing one with the
// defaults when it does not exist yet.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create it with defaults
		if err := DefaultConfig().SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Printf("Created default configuration file at: %s\n", configPath)
	}
	return ReadConfig(configPath)
}

// ReadConfig is LoadConfig without side effects: a missing file means the
// defaults, nothing is written.
func ReadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		// An [[artists]] table in the file replaces the built-in roster
		cfg.Artists = nil
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if len(cfg.Artists) == 0 {
			cfg.Artists = DefaultArtists()
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	// An external catalog replaces the inline artist table
	if cfg.Site.ArtistsFile != "" {
		artists, err := LoadArtists(cfg.Site.ArtistsFile)
		if err != nil {
			return nil, err
		}
		cfg.Artists = artists
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	header := `# Kismet Share Preview Server Configuration
# Site identity, artist roster and template sources for the Based House Collection mini-app.
# Edit the values below to customize your deployment.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.SharedMaxAge < 0 || c.Server.StaleWhileRevalidate < 0 {
		return fmt.Errorf("cache-control windows must be positive")
	}

	// Validate site config
	base, err := url.Parse(c.Site.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("site base_url must be an absolute http(s) URL: %q", c.Site.BaseURL)
	}
	if c.Site.AppName == "" {
		return fmt.Errorf("site app name cannot be empty")
	}

	// Validate template config
	if c.Template.FetchTimeout < 1 {
		return fmt.Errorf("template fetch timeout must be at least 1 second")
	}
	if c.Template.DistDir == "" {
		return fmt.Errorf("template dist directory cannot be empty")
	}

	if c.Cache.Enabled && c.Cache.TTL < 1 {
		return fmt.Errorf("cache ttl must be at least 1 second when caching is enabled")
	}

	// Validate artist table
	seen := make(map[string]bool, len(c.Artists))
	for _, artist := range c.Artists {
		if !artistIDPattern.MatchString(artist.ID) {
			return fmt.Errorf("invalid artist id: %q", artist.ID)
		}
		if seen[artist.ID] {
			return fmt.Errorf("duplicate artist id: %s", artist.ID)
		}
		seen[artist.ID] = true
		if artist.Name == "" || artist.ImageURL == "" {
			return fmt.Errorf("artist %s needs a name and an image url", artist.ID)
		}
	}

	// Validate logging config
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// GetAddress returns the full server address
func (c *Config) GetAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// CacheControl returns the Cache-Control header value for rendered documents
func (c *Config) CacheControl() string {
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		c.Server.SharedMaxAge, c.Server.StaleWhileRevalidate)
}
