package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/internal/tracker/service"
	"golang-price-tracker/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// HeaderOwnerID carries the caller identity resolved by the upstream auth layer.
const HeaderOwnerID = "X-Owner-ID"

// Validator adapts validator/v10 to echo.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func ownerID(c echo.Context) (string, error) {
	owner := strings.TrimSpace(c.Request().Header.Get(HeaderOwnerID))
	if owner == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized", Message: HeaderOwnerID + " header is required"})
	}
	return owner, nil
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: fmt.Sprintf("invalid %s", name)})
	}
	return id, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "Invalid request payload"})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, dto.ErrorResponse{Error: "validation_failed", Message: describeValidation(err)})
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// respondError maps service errors to status codes. Unknown errors are logged and hidden.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, httpErr.Message)
	}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation_failed", Message: verr.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, service.ErrIntervalConflict):
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "conflict", Message: err.Error()})
	}

	log.ErrorContext(c.Request().Context(), "Request failed",
		logger.ErrorField(err),
		logger.StringField("method", c.Request().Method),
		logger.StringField("path", c.Path()))
	return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal_error", Message: "Internal server error"})
}
