package http

import (
	"net/http"

	"golang-price-tracker/internal/scheduler/service"
	"golang-price-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DispatchHandler exposes manual dispatch and service health.
type DispatchHandler struct {
	schedulerService service.SchedulerService
	logger           *logger.Logger
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(schedulerService service.SchedulerService, logger *logger.Logger) *DispatchHandler {
	return &DispatchHandler{schedulerService: schedulerService, logger: logger}
}

// RegisterRoutes registers the dispatch routes to the Echo group.
func (h *DispatchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/dispatch", h.Dispatch)
}

// RegisterOpsRoutes registers health and metrics on the root router.
func (h *DispatchHandler) RegisterOpsRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Dispatch godoc
// @Summary Dispatch due products now
// @Description Runs one poll outside the regular schedule
// @Tags dispatch
// @Produce  json
// @Success 200 {object} dto.DispatchResult
// @Router /dispatch [post]
func (h *DispatchHandler) Dispatch(c echo.Context) error {
	result := h.schedulerService.ProcessDue(c.Request().Context())
	h.logger.Info("Manual dispatch finished", logger.IntField("published", result.Published))
	return c.JSON(http.StatusOK, result)
}

func (h *DispatchHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
