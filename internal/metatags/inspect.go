package metatags

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Inspect parses doc and collects the content of every managed tag, keyed as
// in Keys(). Attribute values come back unescaped.
func Inspect(doc string) (map[string][]string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	wanted := make(map[string]bool, len(managed))
	for _, tag := range managed {
		wanted[tag.Key] = true
	}

	found := make(map[string][]string)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				found["title"] = append(found["title"], textContent(n))
			case "meta":
				key := getAttr(n, "name")
				if key == "" {
					key = getAttr(n, "property")
				}
				if wanted[key] && key != "title" {
					found[key] = append(found[key], getAttr(n, "content"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return found, nil
}

// Verify checks that doc carries exactly one of each managed tag.
func Verify(doc string) error {
	found, err := Inspect(doc)
	if err != nil {
		return err
	}
	var problems []string
	for _, key := range Keys() {
		if n := len(found[key]); n != 1 {
			problems = append(problems, fmt.Sprintf("%s x%d", key, n))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("managed tags out of shape: %s", strings.Join(problems, ", "))
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
