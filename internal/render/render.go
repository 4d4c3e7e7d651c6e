// Package render produces the printable delivery note.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"kebutuhan-pln/internal/model"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Letterhead is printed above the note title.
type Letterhead struct {
	Company string
	Unit    string
}

// DefaultLetterhead is used when the configuration leaves it empty.
var DefaultLetterhead = Letterhead{
	Company: "PT. PLN (PERSERO) UIT JAWA BAGIAN TENGAH",
	Unit:    "UPT BOGOR",
}

// Renderer executes the embedded note template.
type Renderer struct {
	tmpl *template.Template
	head Letterhead
}

type noteData struct {
	*model.DeliveryNoteView
	Company string
	Unit    string
}

// New parses the embedded templates.
func New(head Letterhead) (*Renderer, error) {
	if head.Company == "" {
		head.Company = DefaultLetterhead.Company
	}
	if head.Unit == "" {
		head.Unit = DefaultLetterhead.Unit
	}

	funcs := template.FuncMap{
		"dash": func(s string) string {
			if strings.TrimSpace(s) == "" {
				return "-"
			}
			return s
		},
	}

	tmpl, err := template.New("_root").Funcs(funcs).ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{tmpl: tmpl, head: head}, nil
}

// DeliveryNote writes the printable HTML of view to w.
func (r *Renderer) DeliveryNote(w io.Writer, view *model.DeliveryNoteView) error {
	data := noteData{DeliveryNoteView: view, Company: r.head.Company, Unit: r.head.Unit}
	if err := r.tmpl.ExecuteTemplate(w, "surat_jalan", data); err != nil {
		return fmt.Errorf("failed to render delivery note: %w", err)
	}
	return nil
}
