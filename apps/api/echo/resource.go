package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/resource"
)

type resourceAPI struct {
	deps *Deps
}

func registerResourceAPI(g *echo.Group, authMW, teacherMW echo.MiddlewareFunc, deps *Deps) {
	api := resourceAPI{deps: deps}

	rg := g.Group("/resources", authMW)
	rg.GET("", api.query)
	rg.POST("", api.create, teacherMW)
}

func (api *resourceAPI) query(ctx echo.Context) error {
	list, err := api.deps.ResourceSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing resources")
	}
	if list == nil {
		list = []resource.Resource{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *resourceAPI) create(ctx echo.Context) error {
	id, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var data resource.NewResource
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	res, err := api.deps.ResourceSvc.Create(ctx.Request().Context(), id.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating resource")
	}
	return ctx.JSON(http.StatusCreated, res)
}
