package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"newsdigest/internal/domain/entity"
)

// htmlShell wraps the converted digest body in a minimal email-safe
// HTML document.
const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 16px;">
{{.Body}}
</body>
</html>
`

// Renderer turns ordered fragments into the digest document. Rendering
// is deterministic: the same fragments and date always produce the
// same output. Malformed markup is never an error; goldmark renders it
// literally.
type Renderer struct {
	layout   Layout
	markdown goldmark.Markdown
	shell    *template.Template
}

// New creates a Renderer for the given layout.
func New(layout Layout) (*Renderer, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}

	return &Renderer{
		layout: layout,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		shell: template.Must(template.New("shell").Parse(htmlShell)),
	}, nil
}

// Subject returns the email subject line for a cycle date.
func (r *Renderer) Subject(cycleDate time.Time) string {
	return fmt.Sprintf("%s %s", r.layout.Subject, cycleDate.Format("2006-01-02"))
}

// Render assembles the fragments into the final digest. Fragments are
// emitted in layout order regardless of slice order; sections missing
// from the input are skipped.
func (r *Renderer) Render(cycleDate time.Time, fragments []entity.Fragment) (entity.Digest, error) {
	bySection := make(map[string]entity.Fragment, len(fragments))
	for _, f := range fragments {
		bySection[f.Section] = f
	}

	title := fmt.Sprintf("%s for %s", r.layout.Title, cycleDate.Format("2006-01-02"))

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n", title)
	for _, section := range r.layout.Sections {
		frag, ok := bySection[section.Name]
		if !ok {
			continue
		}
		md.WriteString("\n")
		if section.Heading != "" {
			fmt.Fprintf(&md, "## %s\n\n", section.Heading)
		}
		md.WriteString(strings.TrimRight(frag.Body, "\n"))
		md.WriteString("\n")
	}

	source := md.String()

	var converted bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &converted); err != nil {
		return entity.Digest{}, fmt.Errorf("Render: convert markdown: %w", err)
	}

	var page bytes.Buffer
	err := r.shell.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		// goldmark output is already escaped HTML
		Body: template.HTML(converted.String()),
	})
	if err != nil {
		return entity.Digest{}, fmt.Errorf("Render: execute shell template: %w", err)
	}

	digest := entity.Digest{
		CycleDate: cycleDate,
		Source:    source,
		HTML:      page.String(),
	}
	if err := digest.Validate(); err != nil {
		return entity.Digest{}, fmt.Errorf("Render: %w", err)
	}

	return digest, nil
}
