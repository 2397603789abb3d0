package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/student-desk-api/internal/models"
	"github.com/noah-isme/student-desk-api/internal/repository"
	appErrors "github.com/noah-isme/student-desk-api/pkg/errors"
)

type principalRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Principal, error)
	Create(ctx context.Context, principal models.Principal) error
}

// RegisterPrincipalRequest holds payload for principal registration.
type RegisterPrincipalRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Credentials is a per-request username/password pair. There are no
// sessions or tokens; every principal-gated call presents these again.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PrincipalInfo is the response shape for principal data. The stored
// password hash never leaves the service.
type PrincipalInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthService registers principals and verifies their credentials.
type AuthService struct {
	repo      principalRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo principalRepository, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger}
}

// Register stores a new principal with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, req RegisterPrincipalRequest) (*PrincipalInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid principal payload")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	principal := models.Principal{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, principal); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register principal")
	}

	return &PrincipalInfo{Username: principal.Username, Email: principal.Email}, nil
}

// Login checks the presented credentials and returns the matching principal.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*PrincipalInfo, error) {
	if err := s.validator.Struct(creds); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if err := s.Verify(ctx, creds.Username, creds.Password); err != nil {
		return nil, err
	}
	principal, err := s.repo.FindByUsername(ctx, creds.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load principal")
	}
	return &PrincipalInfo{Username: principal.Username, Email: principal.Email}, nil
}

// Verify returns nil iff some stored principal matches both username and
// password. Unknown usernames and wrong passwords are indistinguishable.
func (s *AuthService) Verify(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "principal credentials required")
	}
	principal, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.ErrUnauthorized
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load principal")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		return appErrors.ErrUnauthorized
	}
	return nil
}
