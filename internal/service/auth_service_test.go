package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bistro/internal/auth"
	"bistro/internal/errors"
	"bistro/internal/mailer"
	"bistro/internal/model"
)

type authFixture struct {
	users  *MockUserRepository
	tokens *MockTokenStore
	mail   *MockMailer
	google *MockGoogleVerifier
	jwt    *auth.JWTService
	hasher *auth.PasswordHasher
	svc    AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  new(MockUserRepository),
		tokens: new(MockTokenStore),
		mail:   new(MockMailer),
		google: new(MockGoogleVerifier),
		jwt:    auth.NewJWTService("test-secret", "test-refresh-secret", time.Hour, 24*time.Hour),
		hasher: auth.NewPasswordHasher(4),
	}
	f.svc = NewAuthService(f.users, f.jwt, f.tokens, f.hasher, f.mail, f.google, "http://localhost:3000/", zap.NewNop())
	return f
}

func (f *authFixture) hash(t *testing.T, password string) string {
	t.Helper()
	h, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return h
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*authFixture)
		expectedError error
	}{
		{
			name:  "successful registration",
			email: "  Test@Example.com ",
			setupMock: func(f *authFixture) {
				f.users.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				f.mail.On("Send", mock.Anything, mock.MatchedBy(func(m mailer.Message) bool {
					return m.To == "test@example.com" && m.Subject == "Verify your email"
				})).Return(nil)
			},
		},
		{
			name:  "email already in use",
			email: "existing@example.com",
			setupMock: func(f *authFixture) {
				f.users.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{ID: 4, Email: "existing@example.com"}, nil)
			},
			expectedError: errors.ErrConflict,
		},
		{
			name:  "email taken between lookup and insert",
			email: "race@example.com",
			setupMock: func(f *authFixture) {
				f.users.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: errors.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			tt.setupMock(f)

			res, err := f.svc.Register(context.Background(), " Test User ", tt.email, "password123")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "test@example.com", res.User.Email)
				assert.Equal(t, "Test User", res.User.Name)
				assert.Equal(t, model.RoleUser, res.User.Role)
				assert.False(t, res.User.EmailVerified)
				assert.NotEmpty(t, res.Tokens.AccessToken)
				assert.NotEmpty(t, res.Tokens.RefreshToken)

				created := f.users.Calls[1].Arguments.Get(1).(*model.User)
				assert.NotEqual(t, "password123", created.PasswordHash)
				require.NotNil(t, created.VerificationToken)
				require.NotNil(t, created.VerificationExpires)
				assert.WithinDuration(t, time.Now().Add(24*time.Hour), *created.VerificationExpires, time.Minute)
			}

			f.users.AssertExpectations(t)
			f.mail.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture()
	hash := f.hash(t, "password123")

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID: 1, Email: "test@example.com", PasswordHash: hash, Role: model.RoleAdmin,
				}, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrongpassword",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID: 1, Email: "test@example.com", PasswordHash: hash,
				}, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "google-only account",
			email:    "g@example.com",
			password: "anything",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "g@example.com").Return(&model.User{ID: 2, Email: "g@example.com"}, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.users = new(MockUserRepository)
			tt.setupMock(f.users)
			svc := NewAuthService(f.users, f.jwt, f.tokens, f.hasher, f.mail, f.google, "", zap.NewNop())

			res, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				claims, err := f.jwt.ValidateAccessToken(res.Tokens.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, uint(1), claims.UserID)
				assert.Equal(t, model.RoleAdmin, claims.Role)
			}
			f.users.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Run("rotates the pair and revokes the old token", func(t *testing.T) {
		f := newAuthFixture()
		jti, refresh, err := f.jwt.GenerateRefreshToken(5, model.RoleUser)
		require.NoError(t, err)

		f.tokens.On("IsRefreshTokenRevoked", mock.Anything, jti).Return(false, nil)
		f.tokens.On("RevokeRefreshToken", mock.Anything, jti, mock.AnythingOfType("time.Duration")).Return(nil)
		f.users.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, Role: model.RoleAdmin}, nil)

		res, err := f.svc.RefreshToken(context.Background(), refresh)
		require.NoError(t, err)
		assert.NotEqual(t, refresh, res.Tokens.RefreshToken)

		claims, err := f.jwt.ValidateAccessToken(res.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, claims.Role, "role is reloaded from the user")

		f.tokens.AssertExpectations(t)
	})

	t.Run("revoked token", func(t *testing.T) {
		f := newAuthFixture()
		jti, refresh, err := f.jwt.GenerateRefreshToken(5, model.RoleUser)
		require.NoError(t, err)
		f.tokens.On("IsRefreshTokenRevoked", mock.Anything, jti).Return(true, nil)

		_, err = f.svc.RefreshToken(context.Background(), refresh)
		assert.Equal(t, errors.ErrInvalidRefreshToken, err)
		f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := newAuthFixture()
		access, err := f.jwt.GenerateAccessToken(5, model.RoleUser)
		require.NoError(t, err)

		_, err = f.svc.RefreshToken(context.Background(), access)
		assert.Equal(t, errors.ErrInvalidRefreshToken, err)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		f := newAuthFixture()
		jti, refresh, err := f.jwt.GenerateRefreshToken(9, model.RoleUser)
		require.NoError(t, err)
		f.tokens.On("IsRefreshTokenRevoked", mock.Anything, jti).Return(false, nil)
		f.users.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

		_, err = f.svc.RefreshToken(context.Background(), refresh)
		assert.Equal(t, errors.ErrInvalidRefreshToken, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	jti, refresh, err := f.jwt.GenerateRefreshToken(5, model.RoleUser)
	require.NoError(t, err)
	f.tokens.On("RevokeRefreshToken", mock.Anything, jti, mock.MatchedBy(func(d time.Duration) bool {
		return d > 23*time.Hour && d <= 24*time.Hour
	})).Return(nil)

	require.NoError(t, f.svc.Logout(context.Background(), refresh))
	assert.Equal(t, errors.ErrInvalidRefreshToken, f.svc.Logout(context.Background(), "garbage"))
	f.tokens.AssertExpectations(t)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		f := newAuthFixture()
		tok := "tok"
		user := &model.User{ID: 3, VerificationToken: &tok}
		f.users.On("FindByVerificationToken", mock.Anything, "tok", mock.AnythingOfType("time.Time")).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)

		require.NoError(t, f.svc.VerifyEmail(context.Background(), "tok"))
		assert.True(t, user.EmailVerified)
		assert.Nil(t, user.VerificationToken)
	})

	t.Run("unknown or expired token", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByVerificationToken", mock.Anything, "old", mock.AnythingOfType("time.Time")).Return(nil, gorm.ErrRecordNotFound)

		assert.Equal(t, errors.ErrInvalidToken, f.svc.VerifyEmail(context.Background(), "old"))
	})
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture()
	user := &model.User{ID: 3, Email: "a@example.com", PasswordHash: f.hash(t, "old-password")}

	f.users.On("FindByEmail", mock.Anything, "a@example.com").Return(user, nil)
	f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("Update", mock.Anything, user).Return(nil)
	f.mail.On("Send", mock.Anything, mock.MatchedBy(func(m mailer.Message) bool {
		return m.Subject == "Password Reset"
	})).Return(nil).Once()

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "A@example.com"))
	require.NoError(t, f.svc.ForgotPassword(context.Background(), "nobody@example.com"))
	require.NotNil(t, user.ResetToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *user.ResetExpires, time.Minute)

	token := *user.ResetToken
	f.users.On("FindByResetToken", mock.Anything, token, mock.AnythingOfType("time.Time")).Return(user, nil)

	require.NoError(t, f.svc.ResetPassword(context.Background(), token, "new-password"))
	assert.True(t, f.hasher.Compare(user.PasswordHash, "new-password"))
	assert.Nil(t, user.ResetToken)
	assert.Nil(t, user.ResetExpires)
	f.mail.AssertExpectations(t)
}

func TestAuthService_GoogleSignIn(t *testing.T) {
	identity := &auth.GoogleIdentity{Subject: "g-1", Email: "G@example.com", EmailVerified: true, Name: "Gee"}

	t.Run("creates a verified user", func(t *testing.T) {
		f := newAuthFixture()
		f.google.On("Verify", mock.Anything, "id-token").Return(identity, nil)
		f.users.On("FindByGoogleID", mock.Anything, "g-1").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("FindByEmail", mock.Anything, "g@example.com").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "g@example.com" && u.EmailVerified && u.GoogleID != nil && *u.GoogleID == "g-1" && u.PasswordHash == ""
		})).Return(nil)

		res, err := f.svc.GoogleSignIn(context.Background(), "id-token")
		require.NoError(t, err)
		assert.Equal(t, "Gee", res.User.Name)
		assert.NotEmpty(t, res.Tokens.AccessToken)
		f.users.AssertExpectations(t)
	})

	t.Run("links an existing email account", func(t *testing.T) {
		f := newAuthFixture()
		existing := &model.User{ID: 8, Email: "g@example.com", Name: "Existing"}
		f.google.On("Verify", mock.Anything, "id-token").Return(identity, nil)
		f.users.On("FindByGoogleID", mock.Anything, "g-1").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("FindByEmail", mock.Anything, "g@example.com").Return(existing, nil)
		f.users.On("Update", mock.Anything, existing).Return(nil)

		res, err := f.svc.GoogleSignIn(context.Background(), "id-token")
		require.NoError(t, err)
		assert.Equal(t, uint(8), res.User.ID)
		require.NotNil(t, existing.GoogleID)
		assert.Equal(t, "g-1", *existing.GoogleID)
		assert.True(t, existing.EmailVerified)
	})

	t.Run("unverified email does not link", func(t *testing.T) {
		f := newAuthFixture()
		unverified := &auth.GoogleIdentity{Subject: "attacker", Email: "victim@example.com", EmailVerified: false}
		f.google.On("Verify", mock.Anything, "id-token").Return(unverified, nil)
		f.users.On("FindByGoogleID", mock.Anything, "attacker").Return(nil, gorm.ErrRecordNotFound)

		res, err := f.svc.GoogleSignIn(context.Background(), "id-token")
		assert.ErrorIs(t, err, errors.ErrUnauthorized)
		assert.Nil(t, res)
		f.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejected token", func(t *testing.T) {
		f := newAuthFixture()
		f.google.On("Verify", mock.Anything, "bad").Return(nil, auth.ErrInvalidToken)

		_, err := f.svc.GoogleSignIn(context.Background(), "bad")
		assert.ErrorIs(t, err, errors.ErrUnauthorized)
	})

	t.Run("not configured", func(t *testing.T) {
		f := newAuthFixture()
		f.google.On("Verify", mock.Anything, "tok").Return(nil, auth.ErrGoogleDisabled)

		_, err := f.svc.GoogleSignIn(context.Background(), "tok")
		assert.ErrorIs(t, err, errors.ErrInvalidRequest)
	})
}
