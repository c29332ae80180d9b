package statics

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed www/*
var www embed.FS

// ServeStatics serves staticsDir when set, the embedded landing page otherwise.
func ServeStatics(staticsDir string) http.HandlerFunc {
	if staticsDir != "" {
		return http.FileServer(http.Dir(staticsDir)).ServeHTTP
	}

	root, err := fs.Sub(www, "www")
	if err != nil {
		panic(err) // embedded at build time
	}
	return http.FileServer(http.FS(root)).ServeHTTP
}
