package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"healtogether/cmd/internal/utils"
	"healtogether/cmd/internal/utils/apierror"
)

type TokenParser interface {
	Parse(raw string) (*utils.TokenData, error)
}

// Auth requires a bearer session token and stores its identity under
// utils.TokenDataKey.
func Auth(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			data, err := tokens.Parse(raw)
			if err != nil {
				log.Debugf("rejected session token: %v", err)
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			c.Set(utils.TokenDataKey, data)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
