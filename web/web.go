// Package web embeds the server-rendered pages.
package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/wanderlist/wanderlist/internal/preferences"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	// has reports whether tag (a string or string-like value) is among tags.
	"has": func(tags []string, tag interface{}) bool {
		return preferences.Has(tags, fmt.Sprint(tag))
	},
	"km": func(meters float64) string {
		return fmt.Sprintf("%.1f km", meters/1000)
	},
}

// Templates parses every page; names are the file names, e.g. "home.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}
