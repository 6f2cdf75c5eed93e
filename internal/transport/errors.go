package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/models"
)

var errInvalidBody = &models.ValidationError{Message: "Request body must be valid JSON"}

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Tag() == "required" {
			return &models.ValidationError{Message: fmt.Sprintf("'%s' is required", fe.Field())}
		}
		return &models.ValidationError{Message: fmt.Sprintf("'%s' is invalid", fe.Field())}
	}
	return err
}

func BindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return err
	}
	return c.Validate(v)
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid path param '%s'", name))
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, err := GetParam(c, name)
	if err != nil {
		return 0, err
	}
	// ids are stored as signed bigint
	vv, err := strconv.ParseUint(v, 10, 63)
	if err != nil {
		return 0, errors.Wrapf(err, "parse path param '%s'", name)
	}
	return vv, nil
}

// badRequest answers a ValidationError; any other error comes from binding the body.
func (s *HTTPServer) badRequest(c echo.Context, err error) error {
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		s.logger.Debugw("bind request body", "path", c.Path(), "error", err)
		vErr = bindError(err)
	}

	s.logger.Errorw("invalid request", "method", c.Request().Method, "path", c.Request().URL.Path, "reason", vErr.Message)
	return c.JSON(http.StatusBadRequest, models.NewErrorResp(vErr.Message))
}

// bindError names the offending field when the body is JSON with a value of the wrong type.
func bindError(err error) *models.ValidationError {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Internal != nil {
		err = he.Internal
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return errInvalidBody
	}
	if typeErr.Field == "rating" {
		return models.RatingRangeError()
	}
	return &models.ValidationError{Message: fmt.Sprintf("'%s' is invalid", typeErr.Field)}
}

func (s *HTTPServer) notFoundText(c echo.Context) error {
	s.logger.Errorw("bookmark not found", "method", c.Request().Method, "id", c.Param("id"))
	return c.String(http.StatusNotFound, msgBookmarkNotFound)
}

func (s *HTTPServer) notFoundJSON(c echo.Context, message string) error {
	s.logger.Errorw("bookmark not found", "method", c.Request().Method, "id", c.Param("id"))
	return c.JSON(http.StatusNotFound, models.NewErrorResp(message))
}

// HTTPErrorHandler is the boundary for everything a handler returns instead of answering itself:
// store failures become a generic 500, echo's own errors keep their status.
func (s *HTTPServer) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(http.StatusInternalServerError)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		message = fmt.Sprint(he.Message)
		s.logger.Warnw("request rejected", "method", c.Request().Method, "path", c.Request().URL.Path, "status", status, "error", err)
	} else {
		s.logger.Errorw("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, models.NewErrorResp(message))
	}
	if err != nil {
		s.logger.Errorw("write error response", "error", err)
	}
}
