package auth

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

// Service defines the interface for authentication business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=120"`
	Vendor   bool   `json:"vendor"`
}

type service struct {
	repo     Repository
	validate *validator.Validate
	secret   string
	tokenTTL time.Duration
}

// NewService creates a new auth service.
func NewService(repo Repository, secret string, tokenTTL time.Duration) Service {
	return &service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation("invalid registration payload").WithDetails(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Dependency("failed to hash password", err)
	}

	role := RoleCustomer
	if req.Vendor {
		role = RoleVendor
	}
	u := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Same response for unknown email and wrong password.
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", apperr.Auth("invalid credentials")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Auth("invalid credentials")
	}

	token, err := GenerateToken(u.ID, u.Role, s.secret, s.tokenTTL)
	if err != nil {
		return "", apperr.Dependency("failed to sign token", err)
	}
	return token, nil
}
