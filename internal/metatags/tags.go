// Package metatags rewrites the share-preview tags of the mini-app document.
package metatags

import (
	"fmt"
	"regexp"
	"strings"

	"kismet/internal/config"
	"kismet/internal/miniapp"
	"kismet/pkg/models"
)

// Values are the raw (unescaped) contents of the managed tags.
type Values struct {
	Title            string
	Description      string // og:description
	ShortDescription string // twitter:description
	ImageURL         string
	URL              string
	Embed            models.EmbedPayload // fc:miniapp; fc:frame is derived
}

// DefaultValues describes the site-wide preview.
func DefaultValues(site *config.Site) Values {
	return Values{
		Title:            site.DefaultTitle,
		Description:      site.DefaultDescription,
		ShortDescription: site.DefaultDescription,
		ImageURL:         site.DefaultImageURL,
		URL:              site.BaseURL,
		Embed:            miniapp.Default(site),
	}
}

// ArtistValues describes the preview of a single artist.
func ArtistValues(site *config.Site, artist models.ArtistMeta) Values {
	description := artist.Description
	if site.DescriptionSuffix != "" {
		description = strings.TrimSpace(description + " " + site.DescriptionSuffix)
	}
	return Values{
		Title:            artist.Name + " | " + site.AppName,
		Description:      description,
		ShortDescription: artist.Description,
		ImageURL:         artist.ImageURL,
		URL:              site.ArtistURL(artist.ID),
		Embed:            miniapp.ForArtist(site, artist),
	}
}

// encoded holds Values after escaping for their destination.
type encoded struct {
	title, description, shortDescription, image, url string
	miniappJSON, frameJSON                           string
}

func encode(v Values) (encoded, error) {
	miniappJSON, err := miniapp.AttrValue(v.Embed)
	if err != nil {
		return encoded{}, err
	}
	frameJSON, err := miniapp.AttrValue(miniapp.AsFrame(v.Embed))
	if err != nil {
		return encoded{}, err
	}
	return encoded{
		title:            EscapeAttr(v.Title),
		description:      EscapeAttr(v.Description),
		shortDescription: EscapeAttr(v.ShortDescription),
		image:            EscapeAttr(v.ImageURL),
		url:              EscapeAttr(v.URL),
		miniappJSON:      miniappJSON,
		frameJSON:        frameJSON,
	}, nil
}

// Tag is one managed element of the document head.
type Tag struct {
	Key     string
	pattern *regexp.Regexp
	render  func(e encoded) string
}

func nameTag(key string, single bool, value func(e encoded) string) Tag {
	if single {
		return Tag{
			Key:     key,
			pattern: regexp.MustCompile(`<meta name="` + regexp.QuoteMeta(key) + `" content='[^']*' />`),
			render: func(e encoded) string {
				return `<meta name="` + key + `" content='` + value(e) + `' />`
			},
		}
	}
	return Tag{
		Key:     key,
		pattern: regexp.MustCompile(`<meta name="` + regexp.QuoteMeta(key) + `" content="[^"]*" />`),
		render: func(e encoded) string {
			return `<meta name="` + key + `" content="` + value(e) + `" />`
		},
	}
}

func propertyTag(key string, value func(e encoded) string) Tag {
	return Tag{
		Key:     key,
		pattern: regexp.MustCompile(`<meta property="` + regexp.QuoteMeta(key) + `" content="[^"]*" />`),
		render: func(e encoded) string {
			return `<meta property="` + key + `" content="` + value(e) + `" />`
		},
	}
}

// Replacement order matches the order of the tags in the generated head.
var managed = []Tag{
	nameTag("fc:miniapp", true, func(e encoded) string { return e.miniappJSON }),
	nameTag("fc:frame", true, func(e encoded) string { return e.frameJSON }),
	propertyTag("og:title", func(e encoded) string { return e.title }),
	propertyTag("og:description", func(e encoded) string { return e.description }),
	propertyTag("og:image", func(e encoded) string { return e.image }),
	propertyTag("og:url", func(e encoded) string { return e.url }),
	nameTag("twitter:title", false, func(e encoded) string { return e.title }),
	nameTag("twitter:description", false, func(e encoded) string { return e.shortDescription }),
	nameTag("twitter:image", false, func(e encoded) string { return e.image }),
	{
		Key:     "title",
		pattern: regexp.MustCompile(`<title>[^<]*</title>`),
		render:  func(e encoded) string { return "<title>" + e.title + "</title>" },
	},
}

// Keys lists the managed tags in replacement order.
func Keys() []string {
	keys := make([]string, len(managed))
	for i, tag := range managed {
		keys[i] = tag.Key
	}
	return keys
}

// RenderHead renders every managed tag, one per line, in the exact syntax
// Rewrite matches.
func RenderHead(v Values, indent string) (string, error) {
	e, err := encode(v)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, tag := range managed {
		sb.WriteString(indent)
		sb.WriteString(tag.render(e))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// attrEscaper covers values placed in double-quoted attributes and in the
// <title> text. Single quotes are left alone; they are legal there.
var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeAttr escapes s for a double-quoted attribute value.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// Miss records a managed tag that was not rewritten because its pattern did
// not match exactly once.
type Miss struct {
	Tag     string
	Matches int
}

func (m Miss) String() string {
	return fmt.Sprintf("%s matched %d times", m.Tag, m.Matches)
}
