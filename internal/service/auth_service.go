package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bistro/internal/auth"
	"bistro/internal/errors"
	"bistro/internal/mailer"
	"bistro/internal/model"
	"bistro/internal/repository"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
)

// AuthResult is returned by every flow that signs a user in.
type AuthResult struct {
	Tokens *auth.TokenPair
	User   model.PublicUser
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	SendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error)
}

type authService struct {
	userRepo    repository.UserRepository
	jwtService  *auth.JWTService
	tokenStore  auth.TokenStoreInterface
	hasher      *auth.PasswordHasher
	mail        mailer.Sender
	google      auth.GoogleVerifier
	frontendURL string
	log         *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	hasher *auth.PasswordHasher,
	mail mailer.Sender,
	google auth.GoogleVerifier,
	frontendURL string,
	log *zap.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		tokenStore:  tokenStore,
		hasher:      hasher,
		mail:        mail,
		google:      google,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account, emails a verification link and
// signs the user in straight away.
func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		s.log.Warn("registration rejected, email in use", zap.String("email", email))
		return nil, errors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token := uuid.NewString()
	expires := s.now().Add(verificationTokenTTL)
	user := &model.User{
		Name:                strings.TrimSpace(name),
		Email:               email,
		PasswordHash:        hash,
		Role:                model.RoleUser,
		VerificationToken:   &token,
		VerificationExpires: &expires,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Warn("registration rejected, email in use", zap.String("email", email))
			return nil, errors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendMail(ctx, mailer.VerificationEmail(user.Email, user.Name, s.frontendURL, token))
	s.log.Info("user registered", zap.Uint("user_id", user.ID))

	return s.signIn(user)
}

// Login answers unknown email and wrong password identically.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		s.log.Warn("login failed", zap.Uint("user_id", user.ID))
		return nil, errors.ErrInvalidCredentials
	}

	s.log.Info("user logged in", zap.Uint("user_id", user.ID))
	return s.signIn(user)
}

// RefreshToken rotates the pair: the presented token is revoked and the
// user is reloaded so role changes take effect.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.ErrInvalidRefreshToken
	}

	revoked, err := s.tokenStore.IsRefreshTokenRevoked(ctx, claims.ID)
	if err != nil || revoked {
		return nil, errors.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	s.revoke(ctx, claims)
	return s.signIn(user)
}

// Logout revokes the refresh token until it would have expired.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return errors.ErrInvalidRefreshToken
	}
	if err := s.tokenStore.RevokeRefreshToken(ctx, claims.ID, s.remaining(claims)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// SendVerification reissues a verification token for unverified accounts.
// Unknown or verified emails are ignored so callers cannot enumerate accounts.
func (s *authService) SendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.EmailVerified {
		return nil
	}

	token := uuid.NewString()
	expires := s.now().Add(verificationTokenTTL)
	user.VerificationToken = &token
	user.VerificationExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	s.sendMail(ctx, mailer.VerificationEmail(user.Email, user.Name, s.frontendURL, token))
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return errors.Wrap(errors.ErrInvalidRequest, "token is required")
	}
	user, err := s.userRepo.FindByVerificationToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrInvalidToken
		}
		return fmt.Errorf("find user: %w", err)
	}

	user.EmailVerified = true
	user.VerificationToken = nil
	user.VerificationExpires = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	s.log.Info("email verified", zap.Uint("user_id", user.ID))
	return nil
}

// ForgotPassword issues a one-hour reset token. Unknown emails are ignored.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token := uuid.NewString()
	expires := s.now().Add(resetTokenTTL)
	user.ResetToken = &token
	user.ResetExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.sendMail(ctx, mailer.PasswordResetEmail(user.Email, s.frontendURL, token))
	return nil
}

// ResetPassword consumes the reset token.
func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return errors.Wrap(errors.ErrInvalidRequest, "token is required")
	}
	user, err := s.userRepo.FindByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrInvalidToken
		}
		return fmt.Errorf("find user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetExpires = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	s.log.Info("password reset", zap.Uint("user_id", user.ID))
	return nil
}

// GoogleSignIn finds the user by Google subject, then by email (linking the
// account), and otherwise creates a new one.
func (s *authService) GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error) {
	if idToken == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "idToken is required")
	}
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, auth.ErrGoogleDisabled) {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "google sign-in is not configured")
		}
		s.log.Warn("google token rejected", zap.Error(err))
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid google token")
	}
	if identity.Email == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "google account has no email")
	}

	user, err := s.userRepo.FindByGoogleID(ctx, identity.Subject)
	if err == nil {
		return s.signIn(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	// Accounts are linked or created only for Google-verified emails.
	if !identity.EmailVerified {
		s.log.Warn("google sign-in rejected, email not verified", zap.String("subject", identity.Subject))
		return nil, errors.Wrap(errors.ErrUnauthorized, "google email is not verified")
	}

	email := normalizeEmail(identity.Email)
	subject := identity.Subject
	user, err = s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		user.GoogleID = &subject
		user.EmailVerified = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("link google account: %w", err)
		}
		s.log.Info("google account linked", zap.Uint("user_id", user.ID))
	case errors.Is(err, gorm.ErrRecordNotFound):
		name := strings.TrimSpace(identity.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = &model.User{
			Name:          name,
			Email:         email,
			Role:          model.RoleUser,
			EmailVerified: true,
			GoogleID:      &subject,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.log.Info("user registered via google", zap.Uint("user_id", user.ID))
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}

	return s.signIn(user)
}

func (s *authService) signIn(user *model.User) (*AuthResult, error) {
	pair, err := s.jwtService.GeneratePair(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &AuthResult{Tokens: pair, User: user.Public()}, nil
}

func (s *authService) revoke(ctx context.Context, claims *auth.Claims) {
	if err := s.tokenStore.RevokeRefreshToken(ctx, claims.ID, s.remaining(claims)); err != nil {
		s.log.Warn("revoke refresh token failed", zap.Error(err))
	}
}

func (s *authService) remaining(claims *auth.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return s.jwtService.RefreshTTL()
	}
	return claims.ExpiresAt.Sub(s.now())
}

func (s *authService) sendMail(ctx context.Context, msg mailer.Message) {
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("send email failed", zap.Error(err), zap.String("subject", msg.Subject))
	}
}
