package http

import (
	"net/http"

	"golang-price-tracker/internal/tracker/service"
	"golang-price-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// InsightHandler exposes the insight engine.
type InsightHandler struct {
	insightService service.InsightService
	logger         *logger.Logger
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService service.InsightService, logger *logger.Logger) *InsightHandler {
	return &InsightHandler{insightService: insightService, logger: logger}
}

// RegisterRoutes registers the insight routes to the Echo group.
func (h *InsightHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/products/:id/insight", h.Compute)
	g.GET("/products/:id/insight/latest", h.Latest)
	g.POST("/insights/refresh", h.Refresh)
}

// Compute godoc
// @Summary Compute and store an insight
// @Tags insights
// @Produce  json
// @Param   X-Owner-ID  header  string  true  "Owner identity"
// @Param   id  path  int  true  "Tracked product ID"
// @Success 201 {object} entity.AIInsight
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/{id}/insight [post]
func (h *InsightHandler) Compute(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	rec, err := h.insightService.ComputeAndStore(c.Request().Context(), owner, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// Latest godoc
// @Summary Get the latest stored insight
// @Tags insights
// @Produce  json
// @Param   X-Owner-ID  header  string  true  "Owner identity"
// @Param   id  path  int  true  "Tracked product ID"
// @Success 200 {object} entity.AIInsight
// @Failure 404 {object} dto.ErrorResponse
// @Router /products/{id}/insight/latest [get]
func (h *InsightHandler) Latest(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	rec, err := h.insightService.Latest(c.Request().Context(), owner, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Refresh godoc
// @Summary Recompute insights for every active product
// @Description Failures are isolated per product and reported in the result
// @Tags insights
// @Produce  json
// @Success 200 {object} dto.RefreshResult
// @Router /insights/refresh [post]
func (h *InsightHandler) Refresh(c echo.Context) error {
	result := h.insightService.RefreshAll(c.Request().Context())
	return c.JSON(http.StatusOK, result)
}
