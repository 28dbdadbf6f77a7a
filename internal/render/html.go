package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("ppm").ParseFS(templateFS, "templates/*.tmpl"))

// Templates returns the page templates, keyed by file name ("upload.tmpl",
// "viewer.tmpl", "folders.tmpl").
func Templates() *template.Template {
	return templates
}

// HTML renders the report fragment. Server-provided strings are escaped.
func HTML(r *Report) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "report", r); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// EmailHTML renders a standalone HTML document for sharing r by email.
func EmailHTML(title string, r *Report) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Title  string
		Report *Report
	}{title, r}
	if err := templates.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("rendering email: %w", err)
	}
	return buf.String(), nil
}

// Text renders r as plain text.
func Text(r *Report) string {
	if r.Empty {
		return r.Placeholder + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Contract cost:          %s\n", r.Summary.ContractCost)
	fmt.Fprintf(&b, "Estimated market price: %s\n", r.Summary.MarketPrice)
	fmt.Fprintf(&b, "Total difference:       %s\n", r.Summary.Difference)
	fmt.Fprintf(&b, "Credibility:            %s\n", r.Summary.Credibility)
	for _, s := range []Section{r.Alerts, r.Recommendations} {
		fmt.Fprintf(&b, "\n%s\n", s.Title)
		if s.Empty() {
			fmt.Fprintf(&b, "  %s\n", s.Placeholder)
		}
		for _, item := range s.Items {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
	}
	if r.Details != nil && r.Details.Visible {
		b.WriteString("\nLine items\n")
		for _, row := range r.Rows {
			fmt.Fprintf(&b, "  %s | %s %s | %s | %s | %s | %s\n",
				row.Concept, row.Quantity, row.Unit, row.ContractCost, row.MarketPrice, row.Difference, row.DifferencePercent)
		}
	}
	return b.String()
}
