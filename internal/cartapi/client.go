package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/logging"
)

// DefaultTimeout bounds every request made by the Client.
const DefaultTimeout = 10 * time.Second

// Credentials supplies the bearer token attached to each request. An empty
// token sends the request unauthenticated.
type Credentials interface {
	BearerToken() string
}

// Client talks to the remote cart endpoints and normalizes their responses.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.SugaredLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The client is copied;
// its Timeout is kept unless zero or overridden by WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the API rooted at baseURL (e.g. https://host/api).
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := http.Client{}
	if c.httpClient != nil {
		hc = *c.httpClient
	}
	switch {
	case c.timeout > 0:
		hc.Timeout = c.timeout
	case hc.Timeout == 0:
		hc.Timeout = DefaultTimeout
	}
	c.httpClient = &hc
	c.logger = logging.OrNop(c.logger)
	return c
}

type addItemRequest struct {
	ProductID      string  `json:"productId"`
	Quantity       int     `json:"quantity"`
	SelectedFlavor *string `json:"selectedFlavor"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FetchCart returns the authenticated user's cart.
func (c *Client) FetchCart(ctx context.Context) (domain.Cart, error) {
	body, err := c.do(ctx, "fetch cart", "Failed to fetch cart", http.MethodGet, "/cart", nil)
	if err != nil {
		return domain.Cart{}, err
	}
	return c.cartFromBody("fetch cart", body), nil
}

// AddItem adds quantity of productID to the cart and returns the refreshed
// cart. A non-positive quantity is sent as 1; an empty flavor as null.
func (c *Client) AddItem(ctx context.Context, productID string, quantity int, selectedFlavor string) (domain.Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}
	req := addItemRequest{ProductID: productID, Quantity: quantity}
	if selectedFlavor != "" {
		req.SelectedFlavor = &selectedFlavor
	}
	body, err := c.do(ctx, "add item", "Failed to add item to cart", http.MethodPost, "/cart", req)
	if err != nil {
		return domain.Cart{}, err
	}
	return c.cartFromBody("add item", body), nil
}

// RemoveItem deletes the line for productID and returns the refreshed cart.
func (c *Client) RemoveItem(ctx context.Context, productID string) (domain.Cart, error) {
	body, err := c.do(ctx, "remove item", "Failed to remove item from cart", http.MethodDelete, "/cart/"+url.PathEscape(productID), nil)
	if err != nil {
		return domain.Cart{}, err
	}
	return c.cartFromBody("remove item", body), nil
}

// UpdateItemQuantity sets the quantity for productID. Zero is forwarded
// unchanged; translating it into a removal is the caller's decision.
func (c *Client) UpdateItemQuantity(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	body, err := c.do(ctx, "update quantity", "Failed to update cart item quantity", http.MethodPut, "/cart/"+url.PathEscape(productID), updateQuantityRequest{Quantity: quantity})
	if err != nil {
		return domain.Cart{}, err
	}
	return c.cartFromBody("update quantity", body), nil
}

// ClearCart empties the cart. A response without a decodable cart yields an
// empty cart rather than an error.
func (c *Client) ClearCart(ctx context.Context) (domain.Cart, error) {
	body, err := c.do(ctx, "clear cart", "Failed to clear cart", http.MethodDelete, "/cart", nil)
	if err != nil {
		return domain.Cart{}, err
	}
	return c.cartFromBody("clear cart", body), nil
}

// GetProduct fetches a catalog product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	const op = "get product"
	body, err := c.do(ctx, op, "Failed to fetch product", http.MethodGet, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := decodeProduct(body)
	if err != nil {
		return domain.Product{}, newError(op, "Failed to fetch product", http.StatusOK, nil, err)
	}
	return p, nil
}

// Login exchanges credentials for a bearer token. The token is returned, not
// stored; the caller decides which session it belongs to.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	const op = "login"
	body, err := c.do(ctx, op, "Login failed", http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	token, err := decodeToken(body)
	if err != nil {
		return "", newError(op, "Login failed", http.StatusOK, nil, err)
	}
	return token, nil
}

// cartFromBody decodes a successful response. Malformed shapes never fail the
// operation: they degrade to an empty cart.
func (c *Client) cartFromBody(op string, body []byte) domain.Cart {
	payload, err := decodeEnvelope(body)
	if err != nil {
		c.logger.Warnw("cart response without payload", "op", op, "error", err)
		return domain.EmptyCart()
	}
	cart, skipped, err := decodeCart(payload)
	if err != nil {
		c.logger.Warnw("malformed cart payload", "op", op, "error", err)
		return domain.EmptyCart()
	}
	if skipped > 0 {
		c.logger.Warnw("skipped malformed cart items", "op", op, "count", skipped)
	}
	return cart
}

func (c *Client) do(ctx context.Context, op, fallback, method, path string, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, newError(op, fallback, 0, nil, fmt.Errorf("encode request: %w", err))
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, newError(op, fallback, 0, nil, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.BearerToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorw("cart request failed", "op", op, "request_id", requestID, "error", err)
		return nil, newError(op, fallback, 0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Errorw("read cart response", "op", op, "request_id", requestID, "status", resp.StatusCode, "error", err)
		return nil, newError(op, fallback, 0, nil, err)
	}

	c.logger.Debugw("cart request", "op", op, "method", method, "path", path,
		"status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(op, fallback, resp.StatusCode, body, fmt.Errorf("http status %d", resp.StatusCode))
		c.logger.Errorw("cart API error", "op", op, "request_id", requestID, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}
	return body, nil
}
