// Package web provides the embedded report templates.
package web

import (
	"embed"
	"io/fs"
)

// TemplatesFS contains the embedded HTML templates.
//
//go:embed all:templates
var TemplatesFS embed.FS

// Templates returns the templates rooted at the templates directory.
func Templates() fs.FS {
	sub, err := fs.Sub(TemplatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
