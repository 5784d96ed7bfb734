package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bistro/internal/service"
)

// AddressHandler manages the caller's addresses.
type AddressHandler struct {
	addressService service.AddressService
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// AddressRequest creates or replaces an address.
type AddressRequest struct {
	Label      string `json:"label" validate:"max=100"`
	Street     string `json:"street" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
	Phone      string `json:"phone" validate:"max=30"`
	Temporary  bool   `json:"temporary"`
}

func (r AddressRequest) input() service.AddressInput {
	return service.AddressInput{
		Label:      r.Label,
		Street:     r.Street,
		City:       r.City,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
		Temporary:  r.Temporary,
	}
}

// Create godoc
// @Summary Add an address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddressRequest true "Address"
// @Success 201 {object} model.Address
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /address [post]
func (h *AddressHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req AddressRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	addr, err := h.addressService.Create(c.Request().Context(), actor, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, addr)
}

// List godoc
// @Summary List the caller's addresses
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param includeTemporary query bool false "Include checkout-only addresses"
// @Success 200 {array} model.Address
// @Failure 401 {object} errors.ErrorResponse
// @Router /address [get]
func (h *AddressHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	addresses, err := h.addressService.List(c.Request().Context(), actor, queryBool(c, "includeTemporary"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, addresses)
}

// Update godoc
// @Summary Update an address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Param request body AddressRequest true "Address"
// @Success 200 {object} model.Address
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /address/{id} [put]
func (h *AddressHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AddressRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	addr, err := h.addressService.Update(c.Request().Context(), actor, id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, addr)
}

// Delete godoc
// @Summary Delete an address
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /address/{id} [delete]
func (h *AddressHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.addressService.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
