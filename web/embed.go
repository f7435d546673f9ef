// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package web embeds the renderer page: a Leaflet map that speaks the
// bridge protocol over the websocket endpoint.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// Handler serves the embedded renderer assets with index.html at /.
func Handler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// embed guarantees the directory exists; this is unreachable
		// outside a broken build.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
