package composedocument

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl templates/report.css
var templateFS embed.FS

var (
	sectionTemplates = template.Must(template.New("sections").Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).ParseFS(templateFS, "templates/sections.html.tmpl"))
	documentTemplate = template.Must(template.New("document.html.tmpl").Funcs(template.FuncMap{"section": renderSection}).ParseFS(templateFS, "templates/document.html.tmpl"))
	reportStylesheet = template.CSS(mustReadAsset("templates/report.css"))
)

func mustReadAsset(name string) string {
	data, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// renderSection executes the template named after the section kind.
func renderSection(s Section) (template.HTML, error) {
	var buf bytes.Buffer
	if err := sectionTemplates.ExecuteTemplate(&buf, string(s.Kind()), s); err != nil {
		return "", fmt.Errorf("render section %s: %w", s.Kind(), err)
	}
	return template.HTML(buf.String()), nil
}

// HTML serializes the document. User supplied text is escaped, and the
// output is byte-identical for identical documents.
func (d *Document) HTML() ([]byte, error) {
	var buf bytes.Buffer
	err := documentTemplate.Execute(&buf, struct {
		*Document
		Stylesheet template.CSS
	}{d, reportStylesheet})
	if err != nil {
		return nil, fmt.Errorf("serialize document %s: %w", d.ReportID, err)
	}
	return buf.Bytes(), nil
}
