package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bistro/internal/errors"
	"bistro/internal/model"
)

func TestAddressService_Create(t *testing.T) {
	repo := new(MockAddressRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Address) bool {
		return a.UserID == 3 && a.Street == "1 Main St" && a.Temporary
	})).Return(nil)
	svc := NewAddressService(repo)

	addr, err := svc.Create(context.Background(), Actor{UserID: 3}, AddressInput{Street: "1 Main St", City: "Town", Temporary: true})
	require.NoError(t, err)
	assert.Equal(t, uint(3), addr.UserID)

	_, err = svc.Create(context.Background(), Actor{}, AddressInput{Street: "x"})
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
	repo.AssertExpectations(t)
}

func TestAddressService_List(t *testing.T) {
	repo := new(MockAddressRepository)
	repo.On("ListByUser", mock.Anything, uint(3), false).Return([]model.Address{{ID: 1, UserID: 3}}, nil)
	repo.On("ListByUser", mock.Anything, uint(3), true).Return([]model.Address{{ID: 1}, {ID: 2, Temporary: true}}, nil)
	svc := NewAddressService(repo)

	saved, err := svc.List(context.Background(), Actor{UserID: 3}, false)
	require.NoError(t, err)
	assert.Len(t, saved, 1)

	all, err := svc.List(context.Background(), Actor{UserID: 3}, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddressService_UpdateAndDeleteOwnership(t *testing.T) {
	tests := []struct {
		name          string
		actor         Actor
		setupMock     func(*MockAddressRepository)
		expectedError error
	}{
		{
			name:  "owner",
			actor: Actor{UserID: 3},
			setupMock: func(m *MockAddressRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.Address{ID: 1, UserID: 3}, nil)
				m.On("Update", mock.Anything, mock.Anything).Return(nil)
				m.On("Delete", mock.Anything, uint(1)).Return(nil)
			},
		},
		{
			name:  "admin",
			actor: Actor{UserID: 99, Admin: true},
			setupMock: func(m *MockAddressRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.Address{ID: 1, UserID: 3}, nil)
				m.On("Update", mock.Anything, mock.Anything).Return(nil)
				m.On("Delete", mock.Anything, uint(1)).Return(nil)
			},
		},
		{
			name:  "another user",
			actor: Actor{UserID: 4},
			setupMock: func(m *MockAddressRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.Address{ID: 1, UserID: 3}, nil)
			},
			expectedError: errors.ErrNotFound,
		},
		{
			name:  "missing address",
			actor: Actor{UserID: 3},
			setupMock: func(m *MockAddressRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAddressRepository)
			tt.setupMock(repo)
			svc := NewAddressService(repo)

			_, updateErr := svc.Update(context.Background(), tt.actor, 1, AddressInput{Street: "2 New St", City: "Town"})
			deleteErr := svc.Delete(context.Background(), tt.actor, 1)

			if tt.expectedError != nil {
				assert.ErrorIs(t, updateErr, tt.expectedError)
				assert.ErrorIs(t, deleteErr, tt.expectedError)
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, updateErr)
				assert.NoError(t, deleteErr)
			}
			repo.AssertExpectations(t)
		})
	}
}
