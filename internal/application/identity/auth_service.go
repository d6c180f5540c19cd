package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marvelstore/backend/internal/domain/identity"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Error messages shown to clients. Login failures share one message so that
// unknown emails cannot be told apart from wrong passwords.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgUserExists         = "User already exists"
	msgTokenFailed        = "Not authorized, token failed"
	msgTokenRevoked       = "Not authorized, token revoked"
	msgUserNotFound       = "Not authorized, user not found"
)

// AuthService handles registration, login, logout and session checks
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service. blacklist may be nil,
// in which case logout is a no-op.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for account events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates an account and signs the user in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		s.logger.Info("Registration with existing email rejected")
		return nil, shared.NewDomainError("ALREADY_EXISTS", msgUserExists)
	}

	user, err := identity.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", msgUserExists)
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	if err := shared.PublishAndClear(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))

	return toAuthResult(user, token.Token), nil
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email")
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", msgInvalidCredentials)
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return toAuthResult(user, token.Token), nil
}

// Logout revokes the presented token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Authenticate validates a bearer token and loads its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*identity.User, *auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, nil, shared.NewDomainError("UNAUTHORIZED", msgTokenFailed)
	}

	if s.blacklist != nil && claims.ID != "" {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("Token blacklist check failed", zap.Error(err))
			return nil, nil, shared.NewDomainError("UNAUTHORIZED", msgTokenFailed)
		}
		if revoked {
			return nil, nil, shared.NewDomainError("UNAUTHORIZED", msgTokenRevoked)
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, nil, shared.NewDomainError("UNAUTHORIZED", msgTokenFailed)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.NewDomainError("UNAUTHORIZED", msgUserNotFound)
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
