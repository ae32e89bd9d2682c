package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"kinfolk/internal/family/models"
	"kinfolk/internal/hierarchy"
	dErrors "kinfolk/pkg/domain-errors"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Format selects a report layout.
type Format string

const (
	FormatVisual  Format = "visual"
	FormatList    Format = "list"
	FormatOutline Format = "outline"
)

// ParseFormat accepts the wire names of the report formats. Empty means visual.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatVisual:
		return FormatVisual, nil
	case FormatList:
		return FormatList, nil
	case FormatOutline:
		return FormatOutline, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unsupported report format %q", s)
}

// ContentType returns the media type a document of this format is served as.
func (f Format) ContentType() string {
	if f == FormatOutline {
		return "text/plain; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

// Extension is the file suffix used by the CLI and download headers.
func (f Format) Extension() string {
	if f == FormatOutline {
		return ".txt"
	}
	return ".html"
}

const (
	visualTitle = "Family Tree Ancestor Report"
	listTitle   = "Family Tree Text Report"
)

// Document is a rendered report.
type Document struct {
	Format      Format
	ContentType string
	Title       string
	Body        []byte
}

// Renderer turns deep hierarchies into printable documents. It is safe for
// concurrent use.
type Renderer struct {
	visual *template.Template
	list   *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		visual: template.Must(template.ParseFS(templateFS, "templates/visual.html.tmpl")),
		list:   template.Must(template.ParseFS(templateFS, "templates/list.html.tmpl")),
	}
}

// Render formats roots in the given format. Roots are not modified.
func (r *Renderer) Render(format Format, roots []*hierarchy.ReportNode) (Document, error) {
	var (
		buf   bytes.Buffer
		title string
		err   error
	)
	switch format {
	case FormatVisual:
		title = visualTitle
		err = r.visual.ExecuteTemplate(&buf, "visual.html.tmpl", visualPage(roots))
	case FormatList:
		title = listTitle
		err = r.list.ExecuteTemplate(&buf, "list.html.tmpl", listPage(roots))
	case FormatOutline:
		title = listTitle
		writeOutline(&buf, roots)
	default:
		return Document{}, dErrors.Newf(dErrors.CodeValidation, "unsupported report format %q", format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("rendering %s report: %w", format, err)
	}
	return Document{
		Format:      format,
		ContentType: format.ContentType(),
		Title:       title,
		Body:        buf.Bytes(),
	}, nil
}

type personView struct {
	Name  string
	Dates string
}

func viewOf(p models.Person) personView {
	return personView{Name: p.FullName, Dates: p.Lifespan()}
}

type visualNode struct {
	personView
	Couple   bool
	Partner  personView
	Spouses  []personView
	Children []visualNode
}

type visualSection struct {
	Root visualNode
}

func visualPage(roots []*hierarchy.ReportNode) map[string]any {
	sections := make([]visualSection, 0, len(roots))
	for _, root := range roots {
		sections = append(sections, visualSection{Root: toVisual(root, true)})
	}
	return map[string]any{"Title": visualTitle, "Sections": sections}
}

// toVisual draws a root that has a spouse as a couple of boxes. Every other
// node lists its spouses inside its own box.
func toVisual(n *hierarchy.ReportNode, isRoot bool) visualNode {
	v := visualNode{personView: viewOf(n.Person)}
	if isRoot && len(n.Spouses) > 0 {
		v.Couple = true
		v.Partner = viewOf(n.Spouses[0])
	} else {
		for _, s := range n.Spouses {
			v.Spouses = append(v.Spouses, viewOf(s))
		}
	}
	for _, c := range n.Children {
		v.Children = append(v.Children, toVisual(c, false))
	}
	return v
}

type listLine struct {
	personView
	Indent     int
	SpouseText string
}

type listSection struct {
	Root  personView
	Lines []listLine
}

func listPage(roots []*hierarchy.ReportNode) map[string]any {
	sections := make([]listSection, 0, len(roots))
	for _, root := range roots {
		s := listSection{Root: viewOf(root.Person)}
		flatten(root, 0, &s.Lines)
		sections = append(sections, s)
	}
	return map[string]any{"Title": listTitle, "Sections": sections}
}

const indentPerLevel = 30

func flatten(n *hierarchy.ReportNode, level int, out *[]listLine) {
	*out = append(*out, listLine{
		personView: viewOf(n.Person),
		Indent:     level * indentPerLevel,
		SpouseText: spouseText(n.Spouses),
	})
	for _, c := range n.Children {
		flatten(c, level+1, out)
	}
}

// spouseText renders " [Spouse(s): a (dates), b (dates)]", or "" without spouses.
func spouseText(spouses []models.Person) string {
	if len(spouses) == 0 {
		return ""
	}
	parts := make([]string, 0, len(spouses))
	for _, s := range spouses {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.FullName, s.Lifespan()))
	}
	return " [Spouse(s): " + strings.Join(parts, ", ") + "]"
}
