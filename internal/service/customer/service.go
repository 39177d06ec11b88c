package customer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"storefront-cart/internal/domain"
	custrepo "storefront-cart/internal/repository/customer"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidEmail is returned for addresses that do not parse.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrWeakPassword wraps password policy failures.
	ErrWeakPassword = errors.New("weak password")
)

type tokenIssuer interface {
	GenerateToken(userID, email string) (string, error)
}

// Service handles customer signup/login flows.
type Service struct {
	repo        custrepo.Repository
	tokens      tokenIssuer
	passwordMin int
}

func New(repo custrepo.Repository, tokens tokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens, passwordMin: 8}
}

// SignupInput captures fields expected by the register endpoint.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// Signup registers a new customer.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Customer, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Customer{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hashed),
	})
}

// Login validates credentials and returns the customer with a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Customer, string, error) {
	c, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.GenerateToken(c.ID, c.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return c, token, nil
}

// Profile returns the customer a token was issued for.
func (s *Service) Profile(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return fmt.Errorf("%w: password must be at least %d characters", ErrWeakPassword, min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number", ErrWeakPassword)
	}
	return nil
}
