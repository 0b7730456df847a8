package http

import (
	"net/http"
	"time"

	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/internal/tracker/service"
	"golang-price-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ProductHandler handles observation ingestion and product scheduling.
type ProductHandler struct {
	ingestService   service.IngestService
	scheduleService service.ScheduleService
	logger          *logger.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ingestService service.IngestService, scheduleService service.ScheduleService, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{ingestService: ingestService, scheduleService: scheduleService, logger: logger}
}

// RegisterRoutes registers the product routes to the Echo group.
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/track", h.Track)
	g.PATCH("/products/:id/interval", h.UpdateInterval)
	g.DELETE("/products/:id", h.Deactivate)
}

// Track godoc
// @Summary Record a price observation
// @Description Upserts the tracked product, appends a snapshot and evaluates insight and alerts
// @Tags products
// @Accept  json
// @Produce  json
// @Param   X-Owner-ID  header  string  true  "Owner identity"
// @Param   observation  body  dto.Observation  true  "Observation"
// @Success 200 {object} dto.IngestResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /track [post]
func (h *ProductHandler) Track(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.Observation
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	req.OwnerID = owner

	result, err := h.ingestService.Ingest(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}

// UpdateInterval godoc
// @Summary Change the refresh interval of a product
// @Description Rejected with 409 while the next scheduled run is closer than the new interval
// @Tags products
// @Accept  json
// @Produce  json
// @Param   X-Owner-ID  header  string  true  "Owner identity"
// @Param   id  path  int  true  "Tracked product ID"
// @Param   request  body  dto.UpdateIntervalRequest  true  "Interval in hours"
// @Success 200 {object} dto.ProductScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /products/{id}/interval [patch]
func (h *ProductHandler) UpdateInterval(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.UpdateIntervalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	product, err := h.scheduleService.UpdateInterval(c.Request().Context(), owner, id, req.Hours)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	resp := dto.ProductScheduleResponse{
		TrackedProductID: product.ID,
		UpdateInterval:   product.UpdateInterval,
	}
	if product.LastScrapedAt != nil {
		last := product.LastScrapedAt.UTC().Format(time.RFC3339)
		resp.LastScrapedAt = &last
	}
	if product.NextRunAt != nil {
		resp.NextRunAt = product.NextRunAt.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary Stop tracking a product
// @Description Soft-deletes the product; history is kept and a later observation reactivates it
// @Tags products
// @Param   X-Owner-ID  header  string  true  "Owner identity"
// @Param   id  path  int  true  "Tracked product ID"
// @Success 204 {object} nil
// @Failure 404 {object} dto.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) Deactivate(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.scheduleService.Deactivate(c.Request().Context(), owner, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
