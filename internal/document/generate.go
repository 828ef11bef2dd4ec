package document

import (
	"fmt"

	"kismet/internal/config"
	"kismet/internal/metatags"
)

// Generate builds the default mini-app document around the given entry
// script. The managed tags carry the site-wide preview.
func Generate(site *config.Site, scriptSrc string) (string, error) {
	head, err := metatags.RenderHead(metatags.DefaultValues(site), "    ")
	if err != nil {
		return "", fmt.Errorf("failed to render head: %w", err)
	}

	return `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
` + head + `    <meta property="og:type" content="website" />
    <meta name="twitter:card" content="summary_large_image" />
    <style>html,body{margin:0;background:` + metatags.EscapeAttr(site.SplashBackgroundColor) + `;}</style>
  </head>
  <body>
    <div id="root"></div>
    <script type="module" src="` + metatags.EscapeAttr(scriptSrc) + `"></script>
  </body>
</html>
`, nil
}

// FallbackPage is served when no provider produced a template. It keeps the
// default preview tags so crawlers still see the site identity.
func FallbackPage(site *config.Site) string {
	head, err := metatags.RenderHead(metatags.DefaultValues(site), "    ")
	if err != nil {
		head = "    <title>" + metatags.EscapeAttr(site.DefaultTitle) + "</title>\n"
	}
	return `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
` + head + `  </head>
  <body>
    <p><a href="` + metatags.EscapeAttr(site.BaseURL) + `">` + metatags.EscapeAttr(site.AppName) + `</a></p>
  </body>
</html>
`
}
