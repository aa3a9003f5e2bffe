// Package assets embeds the files served next to the API: the HTML page templates and the OpenAPI document.
package assets

import (
	"embed"
)

//go:embed templates/*.gohtml openapi.yaml
var FS embed.FS

const (
	TemplatesDir = "templates"
	OpenAPIFile  = "openapi.yaml"
)

// OpenAPI returns the raw OpenAPI document.
func OpenAPI() ([]byte, error) {
	return FS.ReadFile(OpenAPIFile)
}
