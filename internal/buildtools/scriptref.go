// Package buildtools holds the post-build steps run against the front-end
// build output: recording the entry script and filling the manifest.
package buildtools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/sjson"
	"golang.org/x/net/html"
)

// DefaultScriptSrc is recorded when the build output names no entry script.
const DefaultScriptSrc = "/index.tsx"

// ErrIndexNotFound is returned when dist/index.html is absent, usually
// because a previous run already removed it.
var ErrIndexNotFound = errors.New("dist index.html not found")

// ScriptRef is the outcome of WriteScriptRef.
type ScriptRef struct {
	Src          string
	Path         string
	Fallback     bool
	IndexRemoved bool
}

// ExtractScriptRef returns the src of the first module script in doc.
func ExtractScriptRef(doc string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "script" {
				continue
			}
			var typ, src string
			for _, attr := range tok.Attr {
				switch attr.Key {
				case "type":
					typ = attr.Val
				case "src":
					src = attr.Val
				}
			}
			if typ == "module" && src != "" {
				return src, true
			}
		}
	}
}

// WriteScriptRef reads <distDir>/index.html, records its entry script in
// <distDir>/<refFile> as {"scriptSrc": ...} and optionally removes the index
// so that every document request goes through the preview service.
func WriteScriptRef(distDir, refFile string, removeIndex bool) (ScriptRef, error) {
	indexPath := filepath.Join(distDir, "index.html")
	data, err := os.ReadFile(indexPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ScriptRef{}, ErrIndexNotFound
		}
		return ScriptRef{}, fmt.Errorf("failed to read %s: %w", indexPath, err)
	}

	ref := ScriptRef{Path: filepath.Join(distDir, refFile)}
	src, ok := ExtractScriptRef(string(data))
	if !ok {
		src = DefaultScriptSrc
		ref.Fallback = true
	}
	ref.Src = src

	body, err := sjson.Set("", "scriptSrc", src)
	if err != nil {
		return ScriptRef{}, fmt.Errorf("failed to encode script reference: %w", err)
	}
	if err := os.WriteFile(ref.Path, []byte(body), 0644); err != nil {
		return ScriptRef{}, fmt.Errorf("failed to write %s: %w", ref.Path, err)
	}

	if removeIndex {
		if err := os.Remove(indexPath); err != nil {
			return ref, fmt.Errorf("failed to remove %s: %w", indexPath, err)
		}
		ref.IndexRemoved = true
	}

	return ref, nil
}
