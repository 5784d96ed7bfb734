package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"bistro/internal/errors"
	"bistro/internal/middleware"
	"bistro/internal/model"
	"bistro/internal/service"
)

// OrderHandler handles order placement and tracking.
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrderRequest is decoded loosely: clients send IDs as numbers or
// strings and items as an array or an index-keyed object.
type CreateOrderRequest struct {
	UserID    json.RawMessage `json:"userId" swaggertype:"integer"`
	AddressID json.RawMessage `json:"addressId" swaggertype:"integer"`
	Items     json.RawMessage `json:"items" swaggertype:"array,object"`
}

// UpdateStatusRequest sets an order status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OrderCreatedResponse wraps a newly created order.
type OrderCreatedResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *model.Order `json:"data"`
}

// CreateOrder godoc
// @Summary Place an order
// @Description The owner is the authenticated caller or, without a token, the body's userId.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Order"
// @Success 201 {object} OrderCreatedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /order [post]
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return errors.Wrap(errors.ErrInvalidRequest, "invalid request body")
	}

	in := service.CreateOrderInput{}
	if claims, ok := middleware.ClaimsFrom(c); ok {
		in.UserID = claims.UserID
		in.Admin = claims.IsAdmin()
	} else {
		userID, err := parseID(req.UserID)
		if err != nil || userID == nil {
			return errors.Wrap(errors.ErrInvalidRequest, "User ID and items are required")
		}
		in.UserID = *userID
	}

	addressID, err := parseID(req.AddressID)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidRequest, "addressId must be a positive integer")
	}
	in.AddressID = addressID

	if in.Items, err = NormalizeOrderItems(req.Items); err != nil {
		return err
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, OrderCreatedResponse{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}

// GetMyOrders godoc
// @Summary List the caller's orders
// @Description Newest first, at most 50.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Order
// @Failure 401 {object} errors.ErrorResponse
// @Router /order/my-orders [get]
func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListMyOrders(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// GetUserOrders godoc
// @Summary List one user's orders
// @Description Allowed for the user themself or an admin.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {array} model.Order
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /order/user/{userId} [get]
func (h *OrderHandler) GetUserOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListUserOrders(c.Request().Context(), actor, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// GetAllOrders godoc
// @Summary List every order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Order
// @Failure 403 {object} errors.ErrorResponse
// @Router /order/all [get]
func (h *OrderHandler) GetAllOrders(c echo.Context) error {
	orders, err := h.orderService.ListAllOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get one order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param orderId path int true "Order ID"
// @Success 200 {object} model.Order
// @Failure 404 {object} errors.ErrorResponse
// @Router /order/{orderId} [get]
func (h *OrderHandler) GetOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	order, err := h.orderService.GetOrder(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus godoc
// @Summary Set an order's status
// @Description Any of the six statuses may follow any other.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orderId path int true "Order ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} model.Order
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /order/{orderId}/status [patch]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return errors.Wrap(errors.ErrInvalidRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Status) == "" {
		return errors.Wrap(errors.ErrInvalidRequest, "orderId and status required")
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// DeleteOrder godoc
// @Summary Delete an order with its items and history
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param orderId path int true "Order ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /order/{orderId} [delete]
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	if err := h.orderService.DeleteOrder(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
