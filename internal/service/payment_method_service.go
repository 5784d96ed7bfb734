package service

import (
	"context"
	"fmt"
	"strings"

	"bistro/internal/errors"
	"bistro/internal/model"
	"bistro/internal/repository"
)

// PaymentMethodInput is the writable part of a payment method. CardNumber is
// only read to derive the masked display fields.
type PaymentMethodInput struct {
	Type        model.PaymentMethodType
	CardNumber  string
	CardHolder  string
	Expiry      string
	Brand       string
	PayPalEmail string
	IsDefault   bool
	Temporary   bool
}

// PaymentMethodService manages a user's stored payment methods.
type PaymentMethodService interface {
	Create(ctx context.Context, actor Actor, in PaymentMethodInput) (*model.PaymentMethod, error)
	List(ctx context.Context, actor Actor, includeTemporary bool) ([]model.PaymentMethod, error)
	Update(ctx context.Context, actor Actor, id uint, in PaymentMethodInput) (*model.PaymentMethod, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type paymentMethodService struct {
	repo      repository.PaymentMethodRepository
	validator *CardValidator
}

// NewPaymentMethodService creates a new payment method service.
func NewPaymentMethodService(repo repository.PaymentMethodRepository) PaymentMethodService {
	return &paymentMethodService{repo: repo, validator: NewCardValidator()}
}

func (s *paymentMethodService) Create(ctx context.Context, actor Actor, in PaymentMethodInput) (*model.PaymentMethod, error) {
	if actor.UserID == 0 {
		return nil, errors.ErrUnauthorized
	}
	pm := &model.PaymentMethod{UserID: actor.UserID}
	if err := s.apply(pm, in); err != nil {
		return nil, err
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.PaymentMethodRepository) error {
		if err := repo.Create(ctx, pm); err != nil {
			return fmt.Errorf("create payment method: %w", err)
		}
		if pm.IsDefault {
			return repo.ClearDefault(ctx, pm.UserID, pm.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (s *paymentMethodService) List(ctx context.Context, actor Actor, includeTemporary bool) ([]model.PaymentMethod, error) {
	methods, err := s.repo.ListByUser(ctx, actor.UserID, includeTemporary)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return methods, nil
}

func (s *paymentMethodService) Update(ctx context.Context, actor Actor, id uint, in PaymentMethodInput) (*model.PaymentMethod, error) {
	pm, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(pm, in); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.PaymentMethodRepository) error {
		if err := repo.Update(ctx, pm); err != nil {
			return fmt.Errorf("update payment method: %w", err)
		}
		if pm.IsDefault {
			return repo.ClearDefault(ctx, pm.UserID, pm.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (s *paymentMethodService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupErr(err, "payment method")
	}
	return nil
}

func (s *paymentMethodService) owned(ctx context.Context, actor Actor, id uint) (*model.PaymentMethod, error) {
	pm, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "payment method")
	}
	if !actor.Owns(pm.UserID) {
		return nil, errors.Wrap(errors.ErrNotFound, "payment method not found")
	}
	return pm, nil
}

// apply copies input onto pm. A new card number replaces the masked fields;
// an update without one keeps the stored card.
func (s *paymentMethodService) apply(pm *model.PaymentMethod, in PaymentMethodInput) error {
	switch in.Type {
	case model.PaymentMethodCard:
		if strings.TrimSpace(in.CardNumber) != "" {
			card, err := s.validator.Validate(in.CardNumber, in.Expiry)
			if err != nil {
				return err
			}
			pm.CardNumber = card.Masked
			pm.Last4 = card.Last4
			pm.Brand = card.Brand
		} else if pm.Last4 == "" {
			return errors.Wrap(errors.ErrInvalidRequest, "cardNumber is required for card payment methods")
		}
		if in.Brand != "" {
			pm.Brand = in.Brand
		}
		pm.CardHolder = in.CardHolder
		pm.Expiry = in.Expiry
		pm.PayPalEmail = ""
	case model.PaymentMethodPayPal:
		if in.PayPalEmail == "" {
			return errors.Wrap(errors.ErrInvalidRequest, "paypalEmail is required for paypal payment methods")
		}
		pm.PayPalEmail = in.PayPalEmail
		pm.CardNumber, pm.Last4, pm.CardHolder, pm.Expiry, pm.Brand = "", "", "", "", ""
	default:
		return errors.Wrap(errors.ErrInvalidRequest, "type must be card or paypal")
	}
	pm.Type = in.Type
	pm.IsDefault = in.IsDefault
	pm.Temporary = in.Temporary
	return nil
}
