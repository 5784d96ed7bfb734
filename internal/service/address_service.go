package service

import (
	"context"
	"fmt"

	"bistro/internal/errors"
	"bistro/internal/model"
	"bistro/internal/repository"
)

// AddressInput is the writable part of an address.
type AddressInput struct {
	Label      string
	Street     string
	City       string
	PostalCode string
	Country    string
	Phone      string
	Temporary  bool
}

// AddressService manages a user's saved and checkout addresses.
type AddressService interface {
	Create(ctx context.Context, actor Actor, in AddressInput) (*model.Address, error)
	List(ctx context.Context, actor Actor, includeTemporary bool) ([]model.Address, error)
	Update(ctx context.Context, actor Actor, id uint, in AddressInput) (*model.Address, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type addressService struct {
	repo repository.AddressRepository
}

// NewAddressService creates a new address service.
func NewAddressService(repo repository.AddressRepository) AddressService {
	return &addressService{repo: repo}
}

func (s *addressService) Create(ctx context.Context, actor Actor, in AddressInput) (*model.Address, error) {
	if actor.UserID == 0 {
		return nil, errors.ErrUnauthorized
	}
	addr := &model.Address{UserID: actor.UserID}
	applyAddress(addr, in)
	if err := s.repo.Create(ctx, addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return addr, nil
}

func (s *addressService) List(ctx context.Context, actor Actor, includeTemporary bool) ([]model.Address, error) {
	addresses, err := s.repo.ListByUser(ctx, actor.UserID, includeTemporary)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

func (s *addressService) Update(ctx context.Context, actor Actor, id uint, in AddressInput) (*model.Address, error) {
	addr, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyAddress(addr, in)
	if err := s.repo.Update(ctx, addr); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}
	return addr, nil
}

func (s *addressService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupErr(err, "address")
	}
	return nil
}

// owned loads the address and hides it from anyone but its owner or an admin.
func (s *addressService) owned(ctx context.Context, actor Actor, id uint) (*model.Address, error) {
	addr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "address")
	}
	if !actor.Owns(addr.UserID) {
		return nil, errors.Wrap(errors.ErrNotFound, "address not found")
	}
	return addr, nil
}

func applyAddress(addr *model.Address, in AddressInput) {
	addr.Label = in.Label
	addr.Street = in.Street
	addr.City = in.City
	addr.PostalCode = in.PostalCode
	addr.Country = in.Country
	addr.Phone = in.Phone
	addr.Temporary = in.Temporary
}
