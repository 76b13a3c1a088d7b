// Package web holds the embedded page templates and their helper functions.
package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Parse builds the page set. extra overrides the built-in helpers; the HTTP layer passes its "url" reverser here.
func Parse(extra template.FuncMap) (*template.Template, error) {
	t := template.New("webcourse")
	funcs := Funcs()
	funcs["url"] = func(name string, args ...any) (string, error) {
		return "", fmt.Errorf("url %s: no route table installed", name)
	}
	for name, fn := range blockFuncs(t) {
		funcs[name] = fn
	}
	for name, fn := range extra {
		funcs[name] = fn
	}
	return t.Funcs(funcs).ParseFS(files, "templates/*.html")
}
