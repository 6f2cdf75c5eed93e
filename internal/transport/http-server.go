package transport

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/models"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/service"
)

const (
	msgBookmarkNotFound = "Bookmark not found"
	// PATCH keeps the message existing clients of this API already match on.
	msgPatchNotFound = "Article not found"
	msgPatchEmpty    = "Body must contain title, url, description, or rating"
)

type HTTPServer struct {
	echo      *echo.Echo
	gateway   service.Gateway
	logger    *zap.SugaredLogger
	baseURL   string
	tokenHash []byte
}

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, gateway service.Gateway, logger *zap.SugaredLogger) *HTTPServer {
	instance := New(cfg, gateway, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				logger.Infof("HTTP server listening on %s", listen)
				if err := instance.echo.Start(listen); err != nil && err != http.ErrServerClosed {
					logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return instance.echo.Shutdown(ctx)
		},
	})

	return instance
}

// New builds the echo instance with routes and middleware, without binding a listener.
func New(cfg *config.Config, gateway service.Gateway, logger *zap.SugaredLogger) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	instance := &HTTPServer{
		echo:    e,
		gateway: gateway,
		logger:  logger,
		baseURL: cfg.PublicBaseURL(),
	}
	if cfg.APITokenHash != "" {
		instance.tokenHash = []byte(cfg.APITokenHash)
	}

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.GET("/bookmarks", instance.BookmarkList)
	e.POST("/bookmarks", instance.BookmarkCreate)
	e.GET("/bookmarks/:id", instance.BookmarkGet)
	e.PATCH("/bookmarks/:id", instance.BookmarkUpdate)
	e.DELETE("/bookmarks/:id", instance.BookmarkDelete)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(AccessLog(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(instance.AuthMiddleware)

	e.Validator = NewCustomValidator()
	e.HTTPErrorHandler = instance.HTTPErrorHandler

	return instance
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *HTTPServer) BookmarkList(c echo.Context) error {
	bookmarks, err := s.gateway.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.SanitizeAll(bookmarks))
}

func (s *HTTPServer) BookmarkCreate(c echo.Context) error {
	req := models.BookmarkReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.badRequest(c, err)
	}

	fields := req.Fields()
	if err := fields.Validate(); err != nil {
		return s.badRequest(c, err)
	}

	bookmark, err := s.gateway.Create(c.Request().Context(), fields)
	if err != nil {
		return err
	}

	s.logger.Infow("bookmark created", "id", bookmark.ID)
	c.Response().Header().Set(echo.HeaderLocation, s.location(bookmark.ID))
	return c.JSON(http.StatusCreated, bookmark.Sanitized())
}

func (s *HTTPServer) BookmarkGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return s.notFoundText(c)
	}

	bookmark, found, err := s.gateway.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !found {
		return s.notFoundText(c)
	}

	return c.JSON(http.StatusOK, bookmark.Sanitized())
}

func (s *HTTPServer) BookmarkUpdate(c echo.Context) error {
	req := models.BookmarkPatchReq{}
	if err := c.Bind(&req); err != nil {
		return s.badRequest(c, err)
	}

	patch := req.Patch()
	if patch.Empty() {
		return s.badRequest(c, &models.ValidationError{Message: msgPatchEmpty})
	}
	if err := patch.Validate(); err != nil {
		return s.badRequest(c, err)
	}

	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return s.notFoundJSON(c, msgPatchNotFound)
	}

	n, err := s.gateway.Update(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.notFoundJSON(c, msgPatchNotFound)
	}

	s.logger.Infow("bookmark updated", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) BookmarkDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return s.notFoundText(c)
	}

	n, err := s.gateway.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.notFoundText(c)
	}

	s.logger.Infow("bookmark deleted", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) location(id uint64) string {
	return s.baseURL + "/bookmarks/" + strconv.FormatUint(id, 10)
}
