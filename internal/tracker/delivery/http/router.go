package http

import (
	"golang-price-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	swagger "github.com/swaggo/echo-swagger"
)

// NewServer builds the echo instance with middleware and every tracker route.
func NewServer(log *logger.Logger, products *ProductHandler, insights *InsightHandler, alerts *AlertHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(echomiddleware.Recover())
	e.Use(RequestID())

	apiV1 := e.Group("/api/v1")
	products.RegisterRoutes(apiV1)
	insights.RegisterRoutes(apiV1)
	alerts.RegisterRoutes(apiV1)

	e.GET("/metrics", MetricsHandler())
	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/swagger/*", swagger.WrapHandler)

	log.Debug("HTTP routes registered", logger.IntField("routes", len(e.Routes())))
	return e
}
