package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

type userAPI struct {
	deps *Deps
}

func registerUserAPI(g *echo.Group, authMW echo.MiddlewareFunc, deps *Deps) {
	api := userAPI{deps: deps}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)

	// authed endpoints
	ag.GET("/me", api.me, authMW)
}

// Handlers

func (api *userAPI) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	res, err := api.deps.UserSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	api.deps.Metrics.authEvent(eventRegister)
	return ctx.JSON(http.StatusCreated, res)
}

func (api *userAPI) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	res, err := api.deps.UserSvc.Login(ctx.Request().Context(), data)
	if err != nil {
		if err == user.ErrInvalidCredentials {
			api.deps.Metrics.authEvent(eventLoginFailed)
			return err
		}
		return errors.Wrap(err, "logging in")
	}
	api.deps.Metrics.authEvent(eventLoginOK)
	return ctx.JSON(http.StatusOK, res)
}

// me returns the caller. A valid token whose user no longer exists is treated as unauthenticated.
func (api *userAPI) me(ctx echo.Context) error {
	id, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	usr, err := api.deps.UserSvc.GetByID(ctx.Request().Context(), id.ID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errAuthRequired
		}
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}
