// Package web embeds the HTML templates rendered by the page handlers.
package web

import (
	"embed"
	"html/template"
	"time"

	"contact-agenda/internal/shared/form"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page and partial. Pages are looked up by file name.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html")
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"fieldErrors": fieldErrors,
		"date": func(t time.Time) string {
			return t.Format("02/01/2006 15:04")
		},
	}
}

func fieldErrors(errs interface{}, field string) []string {
	switch e := errs.(type) {
	case form.Errors:
		return e[field]
	case map[string][]string:
		return e[field]
	}
	return nil
}
