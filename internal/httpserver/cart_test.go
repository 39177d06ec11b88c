package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront-cart/internal/domain"
)

type cartEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    domain.Cart `json:"data"`
	Cart    domain.Cart `json:"cart"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, cartEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "u1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env cartEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func sampleCart() domain.Cart {
	items := []domain.LineItem{{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(50), SalePercentage: decimal.NewFromInt(20)}}
	qty, total := domain.Totals(items)
	return domain.Cart{Items: items, Total: total, ItemCount: qty}
}

func TestGetCartHandler(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	router := newTestRouter(t, carts, &stubProductService{}, nil)

	rec, env := doJSON(t, router, http.MethodGet, "/api/cart", "")
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("expected success, got %d %s", rec.Code, rec.Body.String())
	}
	if env.Data.ItemCount != 2 || !env.Data.Total.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected cart %+v", env.Data)
	}
}

func TestAddItemHandler_DefaultsQuantity(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	router := newTestRouter(t, carts, &stubProductService{}, nil)

	rec, env := doJSON(t, router, http.MethodPost, "/api/cart", `{"productId":"p1","selectedFlavor":"vanilla"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if env.Message != "Item added to cart" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	if carts.lastAdd.ProductID != "p1" || carts.lastAdd.Quantity != 1 || carts.lastAdd.SelectedFlavor != "vanilla" {
		t.Fatalf("unexpected add input %+v", carts.lastAdd)
	}
}

func TestAddItemHandler_Validation(t *testing.T) {
	router := newTestRouter(t, &stubCartService{}, &stubProductService{}, nil)

	cases := []struct {
		body string
		want string
	}{
		{`{"quantity":1}`, "productId is required"},
		{`{"productId":"p1","quantity":100}`, "quantity must be at most 99"},
		{`{"productId":"p1","quantity":-2}`, "quantity must be at least 1"},
		{`not json`, "Invalid request body"},
	}
	for _, tc := range cases {
		rec, env := doJSON(t, router, http.MethodPost, "/api/cart", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.body, rec.Code)
		}
		if env.Success || env.Message != tc.want {
			t.Fatalf("%s: unexpected envelope %+v", tc.body, env)
		}
	}
}

func TestAddItemHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "Product not found"},
		{domain.ErrInvalidFlavor, http.StatusBadRequest, "Selected flavor is not available"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		router := newTestRouter(t, &stubCartService{err: tc.err}, &stubProductService{}, nil)
		rec, env := doJSON(t, router, http.MethodPost, "/api/cart", `{"productId":"p1","quantity":1}`)
		if rec.Code != tc.wantCode || env.Message != tc.wantMsg {
			t.Fatalf("%v: got %d %q", tc.err, rec.Code, env.Message)
		}
	}
}

func TestUpdateQuantityHandler(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	router := newTestRouter(t, carts, &stubProductService{}, nil)

	rec, _ := doJSON(t, router, http.MethodPut, "/api/cart/p1", `{"quantity":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if carts.lastProductID != "p1" || carts.lastQty != 0 {
		t.Fatalf("unexpected update call %+v", carts)
	}

	rec, env := doJSON(t, router, http.MethodPut, "/api/cart/p1", `{}`)
	if rec.Code != http.StatusBadRequest || env.Message != "quantity is required" {
		t.Fatalf("expected quantity required, got %d %q", rec.Code, env.Message)
	}
}

func TestRemoveItemHandler_NotInCart(t *testing.T) {
	router := newTestRouter(t, &stubCartService{err: domain.ErrNotFound}, &stubProductService{}, nil)
	rec, env := doJSON(t, router, http.MethodDelete, "/api/cart/p1", "")
	if rec.Code != http.StatusNotFound || env.Message != "Item not found in cart" {
		t.Fatalf("unexpected response %d %q", rec.Code, env.Message)
	}
}

func TestClearCartHandler(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	router := newTestRouter(t, carts, &stubProductService{}, nil)

	rec, env := doJSON(t, router, http.MethodDelete, "/api/cart", "")
	if rec.Code != http.StatusOK || !carts.cleared {
		t.Fatalf("expected clear, got %d", rec.Code)
	}
	if env.Message != "Cart cleared" || len(env.Cart.Items) != 0 || env.Cart.ItemCount != 0 {
		t.Fatalf("unexpected clear body %s", rec.Body.String())
	}
}

func TestGetProductHandler(t *testing.T) {
	products := &stubProductService{product: &domain.Product{ID: "p1", Name: "Whey", Price: decimal.NewFromInt(40), Flavors: []string{"vanilla"}}}
	router := newTestRouter(t, &stubCartService{}, products, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/p1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data struct {
			Product domain.Product `json:"product"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Product.Identifier() != "p1" || products.lastID != "p1" {
		t.Fatalf("unexpected product %+v", body.Data.Product)
	}

	products.err = domain.ErrNotFound
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListProductsHandler_EmptyIsArray(t *testing.T) {
	router := newTestRouter(t, &stubCartService{}, &stubProductService{}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
