package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/document-tracking/internal/auth"
	"github.com/spec-kit/document-tracking/internal/config"
	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/repository"
	apperrors "github.com/spec-kit/document-tracking/pkg/util/errorutil"
)

const minPasswordLength = 8

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Username   string
	FullName   string
	Password   string
	Role       domain.UserRole
	AreaID     *int64
	EmployeeID *int64
}

// AuthService coordinates login and account provisioning.
type AuthService struct {
	users      repository.UserRepository
	areas      repository.AreaRepository
	employees  repository.EmployeeRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	AreaRepo     repository.AreaRepository
	EmployeeRepo repository.EmployeeRepository
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		areas:      deps.AreaRepo,
		employees:  deps.EmployeeRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Login authenticates a user and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			auth.MatchPassword("", password)
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if !auth.MatchPassword(user.PasswordHash, password) || !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// CreateUser provisions an account. Only administrators may call it.
func (s *AuthService) CreateUser(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username is required", map[string]any{"field": "username"})
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	if !input.Role.IsValid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}

	areaID := input.AreaID
	if input.EmployeeID != nil {
		employee, err := s.employees.GetByID(ctx, *input.EmployeeID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewReferentialError("employee does not exist", map[string]any{"employee_id": *input.EmployeeID})
		}
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if areaID == nil {
			areaID = &employee.AreaID
		} else if *areaID != employee.AreaID {
			return nil, apperrors.NewReferentialError("employee does not belong to the area", map[string]any{
				"employee_id": employee.ID,
				"area_id":     *areaID,
			})
		}
	}
	if areaID != nil {
		if _, err := s.areas.GetByID(ctx, *areaID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewReferentialError("area does not exist", map[string]any{"area_id": *areaID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError("password too long", map[string]any{"max_bytes": 72})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Username:     username,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Role:         input.Role,
		AreaID:       areaID,
		EmployeeID:   input.EmployeeID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapRepositoryError(err, "user")
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator when it does not exist yet.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		Username:     username,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         domain.RoleAdministrator,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info("bootstrap administrator created", zap.String("username", username))
	return true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
