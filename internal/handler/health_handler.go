package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves liveness and the service banner.
type HealthHandler struct {
	environment string
	now         func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{environment: environment, now: time.Now}
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// BannerResponse describes the API root.
type BannerResponse struct {
	Message     string            `json:"message"`
	Version     string            `json:"version"`
	Environment string            `json:"environment"`
	Endpoints   map[string]string `json:"endpoints"`
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "OK",
		Timestamp:   h.now().UTC(),
		Environment: h.environment,
	})
}

// Root godoc
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} BannerResponse
// @Router / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, BannerResponse{
		Message:     "Restaurant Backend API",
		Version:     "1.0.0",
		Environment: h.environment,
		Endpoints: map[string]string{
			"auth":    "/api/auth",
			"menu":    "/api/menu",
			"orders":  "/api/order",
			"address": "/api/address",
			"payment": "/api/payment",
			"health":  "/health",
			"swagger": "/swagger/index.html",
		},
	})
}
