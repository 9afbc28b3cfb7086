package web

import (
	"embed"
	"io/fs"
	"net/http"
)

// Static assets (the stylesheet) are compiled into the binary so the
// server deploys as a single file.
//
//go:embed static
var staticFS embed.FS

// StaticFileServer serves the embedded assets rooted at static/.
func StaticFileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
