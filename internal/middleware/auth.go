package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming
    "time"     // current time for session expiry checks

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/finovai/finovai-backend/internal/model"
    "github.com/finovai/finovai-backend/internal/repository"
)

// userContextKey is where the resolved user lands in the Echo context.
const userContextKey = "user"

// SessionAuth returns an Echo middleware that resolves a Bearer token
// against the sessions table and injects the owning user into the request
// context.  It fails closed: missing, unknown or expired tokens always
// yield 401, never a partial identity.  On success the session's last-used
// timestamp is touched best-effort; a failed touch does not fail the
// request.
func SessionAuth(sessions *repository.SessionRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
            }
            token := strings.TrimPrefix(auth, "Bearer ")

            now := time.Now().UTC()
            user, err := sessions.Resolve(c.Request().Context(), token, now)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Sesion invalida"})
            }
            _ = sessions.Touch(c.Request().Context(), token, now)

            c.Set(userContextKey, user)
            return next(c)
        }
    }
}

// CurrentUser extracts the authenticated user placed in the context by
// SessionAuth.  The second return value is false on unauthenticated routes.
func CurrentUser(c echo.Context) (model.User, bool) {
    u, ok := c.Get(userContextKey).(model.User)
    return u, ok
}

// BearerToken returns the raw bearer token of the request, or "" when the
// Authorization header is absent or malformed.  Logout uses this directly
// so it stays idempotent even without a valid session.
func BearerToken(c echo.Context) string {
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimPrefix(auth, "Bearer ")
    }
    return ""
}
