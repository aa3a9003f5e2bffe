package echoapi

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/assets"
)

// LoadOpenAPI loads and validates the embedded OpenAPI document describing the server's routes.
func LoadOpenAPI() (*openapi3.T, error) {
	data, err := assets.OpenAPI()
	if err != nil {
		return nil, errors.Wrap(err, "reading openapi document")
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, errors.Wrap(err, "loading openapi document")
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, errors.Wrap(err, "invalid openapi document")
	}
	return doc, nil
}

func registerOpenAPI(g *echo.Group, doc *openapi3.T) {
	g.GET("/openapi.json", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, doc)
	})
}
