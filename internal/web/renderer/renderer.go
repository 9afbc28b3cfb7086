// Package renderer converts stored Markdown into display HTML. Only
// the raw Markdown is ever persisted; rendering happens per request.
package renderer

import (
	"bytes"
	"html/template"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"go.abhg.dev/goldmark/wikilink"

	"warren/internal/wiki"
)

// namespaceResolver points [[Page Title]] links into one user's wiki
// namespace, slugifying the target the same way page creation does.
// The [[User:name/Page Title]] form links into another user's
// namespace instead; a User: prefix with no page part is treated as a
// plain same-namespace target.
type namespaceResolver struct {
	owner string
}

func (r namespaceResolver) ResolveWikilink(n *wikilink.Node) ([]byte, error) {
	owner := r.owner
	target := string(n.Target)
	if rest, found := strings.CutPrefix(target, "User:"); found {
		if name, page, hasPage := strings.Cut(rest, "/"); hasPage {
			owner = strings.TrimSpace(name)
			target = page
		} else {
			target = rest
		}
	}
	slug := wiki.Slugify(target)
	if slug == "" {
		return nil, nil
	}
	return []byte("/" + owner + "/wiki/" + slug), nil
}

// New builds a Markdown renderer whose wiki links resolve within
// owner's namespace.
func New(owner string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("friendly"),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
			&wikilink.Extender{Resolver: namespaceResolver{owner: owner}},
		),
	)
}

// Render converts Markdown to HTML with owner-namespace wiki links.
func Render(content, owner string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := New(owner).Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
