package main

import (
	"embed"
	"io/fs"

	"github.com/lazypower/cony/internal/server"
)

// The ui directory is populated by the web client build, which copies its
// dist output here. A placeholder index.html ships in the repo.
//
//go:embed all:ui
var uiDist embed.FS

func init() {
	sub, err := fs.Sub(uiDist, "ui")
	if err != nil {
		return
	}
	server.SetUI(sub)
}
