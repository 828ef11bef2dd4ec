package config

import (
	"html"
	"strings"

	"kismet/pkg/models"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Site is the read-only identity of the deployment: the default share
// preview values plus the artist table. It is built once at start-up and
// shared by every request; nothing mutates it afterwards.
type Site struct {
	BaseURL               string
	AppName               string
	DefaultTitle          string
	DefaultDescription    string
	DefaultImageURL       string
	DefaultButtonTitle    string
	SplashImageURL        string
	SplashBackgroundColor string
	DescriptionSuffix     string

	artists map[string]models.ArtistMeta
	order   []string
}

// BuildSite resolves derived URLs and freezes the artist table.
func (c *Config) BuildSite() *Site {
	base := strings.TrimRight(c.Site.BaseURL, "/")
	policy := bluemonday.StrictPolicy()

	site := &Site{
		BaseURL:               base,
		AppName:               plainText(policy, c.Site.AppName),
		DefaultTitle:          plainText(policy, c.Site.DefaultTitle),
		DefaultDescription:    plainText(policy, c.Site.DefaultDescription),
		DefaultImageURL:       c.Site.DefaultImageURL,
		DefaultButtonTitle:    plainText(policy, c.Site.DefaultButtonTitle),
		SplashImageURL:        c.Site.SplashImageURL,
		SplashBackgroundColor: c.Site.SplashBackgroundColor,
		DescriptionSuffix:     plainText(policy, c.Site.DescriptionSuffix),
		artists:               make(map[string]models.ArtistMeta, len(c.Artists)),
	}
	if site.DefaultTitle == "" {
		site.DefaultTitle = site.AppName
	}
	if site.DefaultImageURL == "" {
		site.DefaultImageURL = base + "/image.png"
	}
	if site.SplashImageURL == "" {
		site.SplashImageURL = base + "/splash.png"
	}

	for _, artist := range c.Artists {
		artist.Name = plainText(policy, artist.Name)
		artist.Description = plainText(policy, artist.Description)
		site.artists[artist.ID] = artist
		site.order = append(site.order, artist.ID)
	}

	return site
}

// NewSite builds a Site straight from a roster, mostly for tests and tools.
func NewSite(siteCfg SiteConfig, artists []models.ArtistMeta) *Site {
	cfg := DefaultConfig()
	cfg.Site = siteCfg
	cfg.Artists = artists
	return cfg.BuildSite()
}

// Artist looks up an artist by its case-sensitive identifier.
func (s *Site) Artist(id string) (models.ArtistMeta, bool) {
	artist, ok := s.artists[id]
	return artist, ok
}

// ArtistIDs returns the identifiers in roster order.
func (s *Site) ArtistIDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// ArtistURL is the deep link that opens the mini-app on an artist.
func (s *Site) ArtistURL(id string) string {
	return s.BaseURL + "?artist=" + id
}

// plainText strips HTML elements from configured copy and returns the text
// unescaped; escaping happens when values are placed into the document.
// Text without real elements, such as "Tom <Jerry>" or "<3", is kept as is.
func plainText(policy *bluemonday.Policy, s string) string {
	if !hasMarkup(s) {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// hasMarkup reports whether s contains a tag naming a known HTML element.
func hasMarkup(s string) bool {
	z := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return false
		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) != 0 {
				return true
			}
		case xhtml.CommentToken, xhtml.DoctypeToken:
			return true
		}
	}
}
