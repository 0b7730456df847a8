package http

import (
	"net/http"
	"strconv"

	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/internal/tracker/service"
	"golang-price-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AlertHandler handles target-price alerts.
type AlertHandler struct {
	alertService service.AlertService
	logger       *logger.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService service.AlertService, logger *logger.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, logger: logger}
}

// RegisterRoutes registers the alert routes to the Echo group.
func (h *AlertHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/products/:id/alerts", h.Create)
	g.GET("/alerts/pending", h.Pending)
	g.POST("/alerts/:id/ack", h.Acknowledge)
}

// Create godoc
// @Summary Arm a target-price alert
// @Tags alerts
// @Accept  json
// @Produce  json
// @Param   X-Owner-ID  header  string  true  "Owner identity"
// @Param   id  path  int  true  "Tracked product ID"
// @Param   request  body  dto.CreateAlertRequest  true  "Alert"
// @Success 201 {object} entity.PriceEvent
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /products/{id}/alerts [post]
func (h *AlertHandler) Create(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.CreateAlertRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	event, err := h.alertService.Create(c.Request().Context(), owner, id, req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, event)
}

// Pending godoc
// @Summary List triggered, unacknowledged alerts
// @Tags alerts
// @Produce  json
// @Param   X-Owner-ID  header  string  true  "Owner identity"
// @Param   limit  query  int  false  "Maximum number of alerts"
// @Success 200 {array} entity.PriceEvent
// @Failure 400 {object} dto.ErrorResponse
// @Router /alerts/pending [get]
func (h *AlertHandler) Pending(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "invalid limit"})
		}
	}

	events, err := h.alertService.Pending(c.Request().Context(), owner, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, events)
}

// Acknowledge godoc
// @Summary Acknowledge a triggered alert
// @Tags alerts
// @Accept  json
// @Param   X-Owner-ID  header  string  true  "Owner identity"
// @Param   id  path  int  true  "Alert ID"
// @Param   request  body  dto.AckAlertRequest  false  "Acknowledgement source"
// @Success 204 {object} nil
// @Failure 404 {object} dto.ErrorResponse
// @Router /alerts/{id}/ack [post]
func (h *AlertHandler) Acknowledge(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.AckAlertRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "Invalid request payload"})
		}
	}

	if err := h.alertService.Acknowledge(c.Request().Context(), owner, id, req.Source); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
