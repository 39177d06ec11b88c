package customer

import (
	"context"
	"errors"
	"testing"

	"storefront-cart/internal/domain"
)

// memoryRepo is a lightweight in-memory customer repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.Customer
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.Customer)}
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	if _, exists := r.byEmail[c.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := c
	clone.ID = "cust-" + c.Email
	r.byEmail[clone.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	if c, ok := r.byEmail[email]; ok {
		clone := c
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	for _, c := range r.byEmail {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubIssuer struct {
	lastUserID string
	err        error
}

func (s *stubIssuer) GenerateToken(userID, email string) (string, error) {
	s.lastUserID = userID
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + email, nil
}

func TestSignupHashesPassword(t *testing.T) {
	svc := New(newMemoryRepo(), &stubIssuer{})

	c, err := svc.Signup(context.Background(), SignupInput{Email: " Ana@Example.com ", Password: "Abcdefg1", Name: " Ana "})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if c.Email != "ana@example.com" || c.Name != "Ana" {
		t.Fatalf("unexpected customer %+v", c)
	}
	if c.PasswordHash == "" || c.PasswordHash == "Abcdefg1" {
		t.Fatalf("expected hashed password, got %q", c.PasswordHash)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := New(newMemoryRepo(), &stubIssuer{})
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "", Password: "Abcdefg1"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Email: "not an email", Password: "Abcdefg1"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "alllowercase1"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := New(newMemoryRepo(), &stubIssuer{})
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Email: "A@example.com", Password: "Abcdefg1"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	issuer := &stubIssuer{}
	svc := New(newMemoryRepo(), issuer)
	ctx := context.Background()

	created, err := svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "Abcdefg1"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	c, token, err := svc.Login(ctx, "a@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.ID != created.ID || token != "token-for-a@example.com" || issuer.lastUserID != created.ID {
		t.Fatalf("unexpected login result %+v %q", c, token)
	}

	if _, _, err := svc.Login(ctx, "a@example.com", "Wrong1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "missing@example.com", "Abcdefg1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLoginTokenFailure(t *testing.T) {
	svc := New(newMemoryRepo(), &stubIssuer{err: errors.New("no key")})
	ctx := context.Background()
	if _, err := svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@example.com", "Abcdefg1"); err == nil {
		t.Fatalf("expected token error")
	}
}

func TestProfile(t *testing.T) {
	svc := New(newMemoryRepo(), &stubIssuer{})
	ctx := context.Background()
	created, _ := svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "Abcdefg1", Name: "Ana"})

	got, err := svc.Profile(ctx, created.ID)
	if err != nil || got.Name != "Ana" {
		t.Fatalf("profile: %+v, %v", got, err)
	}
	if _, err := svc.Profile(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
