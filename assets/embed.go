// Package assets embeds the static files served under /assets/.
package assets

import "embed"

// AssetsFS holds the stylesheet and the page script. css/output.css is
// generated from css/input.css by "go run ./cmd/do gen".
//
//go:embed css js
var AssetsFS embed.FS
