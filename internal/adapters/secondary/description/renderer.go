// Package description turns plain-text video descriptions into safe HTML.
package description

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// DefaultSummaryLines is how many lines the collapsed description shows
const DefaultSummaryLines = 3

// Renderer implements ports.DescriptionRenderer with goldmark and bluemonday
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer creates a renderer that links bare URLs and keeps line breaks
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,       // bare URLs become links
			extension.Strikethrough, // ~~strikethrough~~
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // descriptions rely on single newlines
		),
	)

	return &Renderer{md: md, policy: createDescriptionPolicy()}
}

// createDescriptionPolicy allows the inline formatting a description can produce
func createDescriptionPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "del", "code")
	p.AllowElements("ul", "ol", "li", "blockquote")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return p
}

// Render converts a description to sanitized HTML
func (r *Renderer) Render(description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(description), &buf); err != nil {
		return "", fmt.Errorf("rendering description: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Summary returns the first lines of a description, trimmed
func (r *Renderer) Summary(description string, lines int) string {
	if lines <= 0 {
		lines = DefaultSummaryLines
	}
	all := strings.Split(strings.ReplaceAll(strings.TrimSpace(description), "\r\n", "\n"), "\n")
	if len(all) > lines {
		all = all[:lines]
	}
	return strings.TrimSpace(strings.Join(all, "\n"))
}

var _ ports.DescriptionRenderer = (*Renderer)(nil)
