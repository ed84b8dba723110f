package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/activity"
)

type activityAPI struct {
	deps *Deps
}

func registerActivityAPI(g *echo.Group, authMW, teacherMW echo.MiddlewareFunc, deps *Deps) {
	api := activityAPI{deps: deps}

	ag := g.Group("/activities", authMW)
	ag.GET("", api.query)
	ag.POST("", api.create, teacherMW)
	ag.POST("/question", api.addQuestion, teacherMW)
}

func (api *activityAPI) query(ctx echo.Context) error {
	acts, err := api.deps.ActivitySvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing activities")
	}
	if acts == nil {
		acts = []activity.Activity{}
	}
	return ctx.JSON(http.StatusOK, acts)
}

func (api *activityAPI) create(ctx echo.Context) error {
	id, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}

	var data activity.NewActivity
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	act, err := api.deps.ActivitySvc.Create(ctx.Request().Context(), id.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, act)
}

func (api *activityAPI) addQuestion(ctx echo.Context) error {
	var data activity.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	q, err := api.deps.ActivitySvc.AddQuestion(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, q)
}
