package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"bistro/internal/model"
	"bistro/internal/service"
)

// MenuHandler serves the public menu and its administration.
type MenuHandler struct {
	menuService service.MenuService
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(menuService service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// MenuItemRequest creates or replaces a menu item.
type MenuItemRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"12.50"`
	CategoryID  uint            `json:"categoryId" validate:"required"`
}

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// MenuItemResponse renders IDs as strings for client compatibility.
type MenuItemResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	CategoryID  string          `json:"categoryId"`
}

func newMenuItemResponse(item *model.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          strconv.FormatUint(uint64(item.ID), 10),
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		CategoryID:  strconv.FormatUint(uint64(item.CategoryID), 10),
	}
}

func (r MenuItemRequest) input() service.MenuItemInput {
	return service.MenuItemInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID,
	}
}

// GetMenu godoc
// @Summary Get the full menu
// @Tags menu
// @Produce json
// @Success 200 {object} service.MenuView
// @Failure 500 {object} errors.ErrorResponse
// @Router /menu [get]
func (h *MenuHandler) GetMenu(c echo.Context) error {
	menu, err := h.menuService.GetMenu(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, menu)
}

// ListCategories godoc
// @Summary List menu categories
// @Tags menu
// @Produce json
// @Success 200 {array} model.MenuCategory
// @Router /menu/categories [get]
func (h *MenuHandler) ListCategories(c echo.Context) error {
	categories, err := h.menuService.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

// GetItem godoc
// @Summary Get one menu item
// @Tags menu
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} MenuItemResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /menu/item/{id} [get]
func (h *MenuHandler) GetItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.menuService.GetItem(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newMenuItemResponse(item))
}

// CreateItem godoc
// @Summary Create a menu item
// @Tags menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MenuItemRequest true "Menu item"
// @Success 201 {object} MenuItemResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /menu [post]
func (h *MenuHandler) CreateItem(c echo.Context) error {
	var req MenuItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := h.menuService.CreateItem(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newMenuItemResponse(item))
}

// UpdateItem godoc
// @Summary Update a menu item
// @Tags menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Menu item ID"
// @Param request body MenuItemRequest true "Menu item"
// @Success 200 {object} MenuItemResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /menu/{id} [put]
func (h *MenuHandler) UpdateItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req MenuItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := h.menuService.UpdateItem(c.Request().Context(), id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newMenuItemResponse(item))
}

// DeleteItem godoc
// @Summary Delete a menu item
// @Tags menu
// @Produce json
// @Security BearerAuth
// @Param id path int true "Menu item ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /menu/{id} [delete]
func (h *MenuHandler) DeleteItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.menuService.DeleteItem(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Menu item deleted successfully"})
}

// CreateCategory godoc
// @Summary Create a menu category
// @Tags menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} model.MenuCategory
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /menu/categories [post]
func (h *MenuHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.menuService.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory godoc
// @Summary Rename a menu category
// @Tags menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} model.MenuCategory
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /menu/categories/{id} [put]
func (h *MenuHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.menuService.UpdateCategory(c.Request().Context(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory godoc
// @Summary Delete a menu category and its items
// @Tags menu
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /menu/categories/{id} [delete]
func (h *MenuHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.menuService.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}

// SeedResponse reports a completed menu seed.
type SeedResponse struct {
	Message    string `json:"message"`
	Categories int    `json:"categories"`
	Items      int    `json:"items"`
}

// Seed godoc
// @Summary Replace all menu data with the bar and grill catalogue
// @Description Destructive. Disabled unless ALLOW_SEED is on.
// @Tags menu
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SeedResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /menu/seed [post]
func (h *MenuHandler) Seed(c echo.Context) error {
	res, err := h.menuService.Seed(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SeedResponse{
		Message:    "Menu data seeded with bar and grill items",
		Categories: res.Categories,
		Items:      res.Items,
	})
}
