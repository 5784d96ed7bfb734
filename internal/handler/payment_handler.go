package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"bistro/internal/errors"
	"bistro/internal/model"
	"bistro/internal/service"
)

// PaymentHandler handles stored payment methods and payment intents.
type PaymentHandler struct {
	methodService  service.PaymentMethodService
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(methodService service.PaymentMethodService, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{methodService: methodService, paymentService: paymentService}
}

// PaymentMethodRequest creates or replaces a payment method. The card number
// is only used to derive the masked display fields.
type PaymentMethodRequest struct {
	Type        string `json:"type" validate:"required,oneof=card paypal"`
	CardNumber  string `json:"cardNumber" validate:"omitempty,max=23"`
	CardHolder  string `json:"cardHolder" validate:"max=255"`
	Expiry      string `json:"expiry" validate:"omitempty,len=5"`
	Brand       string `json:"brand" validate:"max=30"`
	PayPalEmail string `json:"paypalEmail" validate:"omitempty,email"`
	IsDefault   bool   `json:"isDefault"`
	Temporary   bool   `json:"temporary"`
}

func (r PaymentMethodRequest) input() service.PaymentMethodInput {
	return service.PaymentMethodInput{
		Type:        model.PaymentMethodType(r.Type),
		CardNumber:  r.CardNumber,
		CardHolder:  r.CardHolder,
		Expiry:      r.Expiry,
		Brand:       r.Brand,
		PayPalEmail: r.PayPalEmail,
		IsDefault:   r.IsDefault,
		Temporary:   r.Temporary,
	}
}

// PaymentIntentRequest starts a provider payment.
type PaymentIntentRequest struct {
	Amount             decimal.Decimal `json:"amount" swaggertype:"string" example:"24.50"`
	Currency           string          `json:"currency" validate:"omitempty,len=3,alpha"`
	PaymentMethodTypes []string        `json:"paymentMethodTypes"`
	OrderID            *uint           `json:"orderId"`
}

// CreateMethod godoc
// @Summary Add a payment method
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PaymentMethodRequest true "Payment method"
// @Success 201 {object} model.PaymentMethod
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /payment [post]
func (h *PaymentHandler) CreateMethod(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req PaymentMethodRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pm, err := h.methodService.Create(c.Request().Context(), actor, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, pm)
}

// ListMethods godoc
// @Summary List the caller's payment methods
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param includeTemporary query bool false "Include checkout-only methods"
// @Success 200 {array} model.PaymentMethod
// @Failure 401 {object} errors.ErrorResponse
// @Router /payment [get]
func (h *PaymentHandler) ListMethods(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	methods, err := h.methodService.List(c.Request().Context(), actor, queryBool(c, "includeTemporary"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, methods)
}

// UpdateMethod godoc
// @Summary Update a payment method
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment method ID"
// @Param request body PaymentMethodRequest true "Payment method"
// @Success 200 {object} model.PaymentMethod
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /payment/{id} [put]
func (h *PaymentHandler) UpdateMethod(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req PaymentMethodRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pm, err := h.methodService.Update(c.Request().Context(), actor, id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pm)
}

// DeleteMethod godoc
// @Summary Delete a payment method
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment method ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /payment/{id} [delete]
func (h *PaymentHandler) DeleteMethod(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.methodService.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// CreateIntent godoc
// @Summary Create a payment intent with the configured provider
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PaymentIntentRequest true "Amount and currency"
// @Success 200 {object} service.PaymentIntentResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /payment/intent [post]
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req PaymentIntentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Amount.IsZero() {
		return errors.Wrap(errors.ErrInvalidRequest, "Amount required")
	}

	res, err := h.paymentService.CreateIntent(c.Request().Context(), actor, service.PaymentIntentInput{
		Amount:             req.Amount,
		Currency:           req.Currency,
		PaymentMethodTypes: req.PaymentMethodTypes,
		OrderID:            req.OrderID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
