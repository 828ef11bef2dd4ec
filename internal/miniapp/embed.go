// Package miniapp builds the Farcaster mini-app embed descriptors carried by
// the fc:miniapp and fc:frame meta tags.
package miniapp

import (
	"encoding/json"
	"fmt"
	"strings"

	"kismet/internal/config"
	"kismet/pkg/models"
)

// EmbedVersion is the descriptor version understood by Farcaster clients
const EmbedVersion = "1"

// Build returns the launch_miniapp descriptor for a share preview.
func Build(site *config.Site, imageURL, buttonTitle, launchURL string) models.EmbedPayload {
	return models.EmbedPayload{
		Version:  EmbedVersion,
		ImageURL: imageURL,
		Button: models.EmbedButton{
			Title: buttonTitle,
			Action: models.EmbedAction{
				Type:                  models.ActionLaunchMiniApp,
				URL:                   launchURL,
				Name:                  site.AppName,
				SplashImageURL:        site.SplashImageURL,
				SplashBackgroundColor: site.SplashBackgroundColor,
			},
		},
	}
}

// ForArtist builds the descriptor that deep links into an artist.
func ForArtist(site *config.Site, artist models.ArtistMeta) models.EmbedPayload {
	return Build(site, artist.ImageURL, "View "+artist.Name, site.ArtistURL(artist.ID))
}

// Default builds the descriptor of the site-wide preview.
func Default(site *config.Site) models.EmbedPayload {
	return Build(site, site.DefaultImageURL, site.DefaultButtonTitle, site.BaseURL)
}

// AsFrame returns the legacy fc:frame duplicate of p. EmbedPayload holds no
// references so the copy shares nothing with p.
func AsFrame(p models.EmbedPayload) models.EmbedPayload {
	frame := p
	frame.Button.Action.Type = models.ActionLaunchFrame
	return frame
}

// AttrValue serializes p for a single-quoted HTML attribute. Go's encoder
// already turns <, > and & into \u escapes, so the only character left to
// protect is the apostrophe.
func AttrValue(p models.EmbedPayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode embed payload: %w", err)
	}
	return strings.ReplaceAll(string(data), "'", "&#39;"), nil
}

// ParseAttrValue reverses AttrValue.
func ParseAttrValue(s string) (models.EmbedPayload, error) {
	var p models.EmbedPayload
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "&#39;", "'")), &p); err != nil {
		return p, fmt.Errorf("failed to decode embed payload: %w", err)
	}
	return p, nil
}
