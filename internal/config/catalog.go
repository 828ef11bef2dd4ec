package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kismet/pkg/models"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// artistCatalog is the on-disk shape of an external artist roster
type artistCatalog struct {
	Artists []models.ArtistMeta `yaml:"artists" toml:"artists"`
}

// LoadArtists reads an artist roster from a YAML (.yaml/.yml) or TOML file.
func LoadArtists(path string) ([]models.ArtistMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artist catalog: %w", err)
	}

	var catalog artistCatalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse artist catalog %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse artist catalog %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported artist catalog format: %s", ext)
	}

	if len(catalog.Artists) == 0 {
		return nil, fmt.Errorf("artist catalog %s contains no artists", path)
	}
	return catalog.Artists, nil
}
