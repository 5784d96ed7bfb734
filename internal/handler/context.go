package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"bistro/internal/errors"
	"bistro/internal/middleware"
	"bistro/internal/service"
)

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// SuccessResponse acknowledges a delete.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// actorFrom returns the authenticated caller.
func actorFrom(c echo.Context) (service.Actor, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return service.Actor{}, errors.ErrUnauthorized
	}
	return service.Actor{UserID: claims.UserID, Admin: claims.IsAdmin()}, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Wrap(errors.ErrInvalidRequest, "%s must be a positive integer", name)
	}
	return uint(id), nil
}

// bind decodes the request into req and runs struct validation.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.Wrap(errors.ErrInvalidRequest, "invalid request body")
	}
	return c.Validate(req)
}

func queryBool(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && v
}
