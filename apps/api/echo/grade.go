package echoapi

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grade"
)

const (
	msgGradeAdded = "Grade added"
	msgNoData     = "No data"
)

type (
	gradeApi struct {
		svc grade.ServiceInterface
	}

	gradeAdded struct {
		Message string      `json:"message"`
		Grade   grade.Grade `json:"grade"`
	}

	messageResp struct {
		Message string `json:"message"`
	}
)

func registerGradeAPI(g *echo.Group, svc grade.ServiceInterface) {
	api := gradeApi{svc: svc}

	g.GET("/grades", api.list)
	g.POST("/grades", api.create)
	g.GET("/stats", api.stats)
}

// Handlers

func (api *gradeApi) list(ctx echo.Context) error {
	coll, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing grades")
	}
	return ctx.JSON(http.StatusOK, coll)
}

func (api *gradeApi) create(ctx echo.Context) error {
	req := ctx.Request()
	mediaType, _, err := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	if err != nil || mediaType != echo.MIMEApplicationJSON {
		return echo.ErrUnsupportedMediaType
	}
	// the binder matches the header case-sensitively
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	if req.ContentLength == 0 {
		return errEmptyBody
	}

	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}

	g, err := api.svc.Append(req.Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding grade")
	}
	return ctx.JSON(http.StatusCreated, gradeAdded{Message: msgGradeAdded, Grade: g})
}

func (api *gradeApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		if errors.Cause(err) == grade.ErrNoData {
			return ctx.JSON(http.StatusOK, messageResp{Message: msgNoData})
		}
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
