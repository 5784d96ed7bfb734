package service

import (
	"fmt"

	"gorm.io/gorm"

	"bistro/internal/errors"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	UserID uint
	Admin  bool
}

// Owns reports whether the actor may act on a row owned by ownerID.
func (a Actor) Owns(ownerID uint) bool {
	return a.Admin || (a.UserID != 0 && a.UserID == ownerID)
}

// lookupErr maps gorm's missing-row error to ErrNotFound and wraps the rest.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(errors.ErrNotFound, "%s not found", what)
	}
	return fmt.Errorf("find %s: %w", what, err)
}
