// Package web holds the HTML templates served by the application.
package web

import "embed"

// TemplateFiles contains the shared layout and one file per page under templates/pages.
//
//go:embed templates
var TemplateFiles embed.FS
