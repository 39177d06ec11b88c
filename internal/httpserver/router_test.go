package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-cart/internal/auth"
	"storefront-cart/internal/domain"
	cartsvc "storefront-cart/internal/service/cart"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCartService struct {
	cart domain.Cart
	err  error

	lastUserID    string
	lastProductID string
	lastQty       int
	lastAdd       cartsvc.AddItemInput
	cleared       bool
}

func (s *stubCartService) Get(_ context.Context, userID string) (domain.Cart, error) {
	s.lastUserID = userID
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, userID string, in cartsvc.AddItemInput) (domain.Cart, error) {
	s.lastUserID = userID
	s.lastAdd = in
	return s.cart, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	s.lastUserID = userID
	s.lastProductID = productID
	s.lastQty = quantity
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, userID, productID string) (domain.Cart, error) {
	s.lastUserID = userID
	s.lastProductID = productID
	return s.cart, s.err
}

func (s *stubCartService) Clear(_ context.Context, userID string) (domain.Cart, error) {
	s.lastUserID = userID
	s.cleared = true
	return domain.EmptyCart(), s.err
}

type stubProductService struct {
	products []domain.Product
	product  *domain.Product
	err      error
	lastID   string
}

func (s *stubProductService) List(context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	s.lastID = id
	return s.product, s.err
}

var testAuth = auth.NewJWTAuthenticator("test-secret", "storefront", time.Hour)

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := testAuth.GenerateToken(userID, userID+"@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func newTestRouter(t *testing.T, carts *stubCartService, products *stubProductService, db Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(nil, db, Deps{
		CartSvc:     carts,
		ProductSvc:  products,
		Auth:        testAuth,
		CORSOrigins: []string{"http://localhost:5173"},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func TestBuildRouterRequiresDeps(t *testing.T) {
	gin.SetMode(gin.TestMode)
	if _, err := buildRouter(nil, nil, Deps{}); err == nil {
		t.Fatalf("expected error for missing services")
	}
	if _, err := buildRouter(nil, nil, Deps{CartSvc: &stubCartService{}, ProductSvc: &stubProductService{}}); err == nil {
		t.Fatalf("expected error for missing token validator")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, &stubCartService{}, &stubProductService{}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestReadyz(t *testing.T) {
	cases := []struct {
		name string
		db   Pinger
		want int
	}{
		{"no db", nil, http.StatusServiceUnavailable},
		{"db down", stubPinger{err: errors.New("down")}, http.StatusServiceUnavailable},
		{"db up", stubPinger{}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, &stubCartService{}, &stubProductService{}, tc.db)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, &stubCartService{}, &stubProductService{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q (status %d)", got, rec.Code)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := newTestRouter(t, &stubCartService{}, &stubProductService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}
