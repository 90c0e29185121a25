// Package templates embeds the HTML pages served by the handler package.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
