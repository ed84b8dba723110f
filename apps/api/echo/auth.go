package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/user"
)

const contextIdentityKey = "identity"

// bearerToken extracts the token of an `Authorization: Bearer <token>` header.
// The scheme is case-insensitive; any other scheme counts as no token.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authMiddleware rejects requests without a valid bearer token and stores the caller's identity in the context.
func authMiddleware(tokens TokenVerifier, metrics *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token, ok := bearerToken(ctx.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return errAuthRequired
			}
			id, err := tokens.Verify(token)
			if err != nil {
				metrics.authEvent(eventTokenRejected)
				return errAuthRequired
			}
			ctx.Set(contextIdentityKey, id)
			return next(ctx)
		}
	}
}

// roleMiddleware must run after authMiddleware.
func roleMiddleware(metrics *Metrics, roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := getContextIdentity(ctx)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if id.Role == role {
					return next(ctx)
				}
			}
			metrics.authEvent(eventForbidden)
			return errHTTPForbidden
		}
	}
}

func getContextIdentity(ctx echo.Context) (auth.Identity, error) {
	if id, ok := ctx.Get(contextIdentityKey).(auth.Identity); ok {
		return id, nil
	}
	return auth.Identity{}, errAuthRequired
}

func setAuthenticateHeader(ctx echo.Context, code int) {
	if code == http.StatusUnauthorized {
		ctx.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="api"`)
	}
}
