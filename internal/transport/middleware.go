package transport

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/models"
)

const bearerPrefix = "bearer "

// AuthMiddleware requires an "Authorization: Bearer <token>" header on every route but /ping.
// The token is checked against the configured bcrypt hash when there is one.
func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Path() == "/ping" {
			return next(c)
		}

		token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			s.logger.Errorw("unauthorized request", "path", c.Request().URL.Path, "reason", "missing bearer token")
			return c.JSON(http.StatusUnauthorized, models.NewErrorResp("Unauthorized request"))
		}

		if s.tokenHash != nil {
			if err := bcrypt.CompareHashAndPassword(s.tokenHash, []byte(token)); err != nil {
				s.logger.Errorw("unauthorized request", "path", c.Request().URL.Path, "reason", "token mismatch")
				return c.JSON(http.StatusUnauthorized, models.NewErrorResp("Unauthorized request"))
			}
		}

		return next(c)
	}
}

func bearerToken(header string) string {
	if len(header) <= len(bearerPrefix) || strings.ToLower(header[:len(bearerPrefix)]) != bearerPrefix {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// AccessLog writes one line per request once the response is committed.
func AccessLog(l *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			l.Infow("http_request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"bytes", res.Size,
				"duration", time.Since(start),
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}
