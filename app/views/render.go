// Package views renders the task list page from a services.State.
package views

import (
	"embed"
	"html/template"
	"io"
	"io/fs"

	"tasklist/app/models"
	"tasklist/app/services"
)

//go:embed templates/index.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

const Title = "To-Do List App"

type FilterOption struct {
	Value    models.Filter
	Label    string
	Selected bool
}

type Item struct {
	ID          int64
	Text        string
	Author      string
	Completed   bool
	Deleted     bool
	ToggleLabel string
}

// Page is the view model for templates/index.html.
type Page struct {
	Title   string
	Counts  models.Counts
	Filter  models.Filter
	Options []FilterOption
	Form    services.FormState
	Items   []Item
}

// NewPage maps a State to the page view model.
func NewPage(st services.State) Page {
	p := Page{
		Title:  Title,
		Counts: st.Counts,
		Filter: st.Filter,
		Form:   st.Form,
		Items:  make([]Item, 0, len(st.Visible)),
	}
	for _, f := range models.Filters() {
		p.Options = append(p.Options, FilterOption{Value: f, Label: f.Label(), Selected: f == st.Filter})
	}
	for _, t := range st.Visible {
		label := "Complete"
		if t.Completed {
			label = "Uncomplete"
		}
		p.Items = append(p.Items, Item{
			ID:          t.ID,
			Text:        t.Text,
			Author:      t.Author,
			Completed:   t.Completed,
			Deleted:     t.Deleted,
			ToggleLabel: label,
		})
	}
	return p
}

// Render writes the HTML page for p.
func Render(w io.Writer, p Page) error {
	return indexTmpl.Execute(w, p)
}

// StaticFS serves the stylesheet; paths are relative to the static/ directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
