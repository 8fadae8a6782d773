package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

// HeaderOperatorKey is the header operators present their API key in.
const HeaderOperatorKey = "X-Operator-Key"

// OperatorAuth returns an Echo middleware that resolves the
// X-Operator-Key header to an operator identity and injects the
// resolved operator ID into the request context. Handlers behind this
// middleware read the ID via c.Get("operator_id") and never see the
// raw credential. Requests with a missing or unknown key are rejected
// with 401 before any handler runs.
func OperatorAuth(operators *repository.OperatorRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get(HeaderOperatorKey))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing " + HeaderOperatorKey + " header"})
			}
			op, err := operators.GetByAPIKey(c.Request().Context(), key)
			if err != nil {
				if err == repository.ErrOperatorNotFound {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid operator key"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}
			c.Set("operator_id", op.ID)
			return next(c)
		}
	}
}
