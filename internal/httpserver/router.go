package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/logging"
	cartsvc "storefront-cart/internal/service/cart"
	customersvc "storefront-cart/internal/service/customer"
)

type cartService interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	AddItem(ctx context.Context, userID string, in cartsvc.AddItemInput) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error)
	Clear(ctx context.Context, userID string) (domain.Cart, error)
}

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type accountService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, error)
	Profile(ctx context.Context, id string) (*domain.Customer, error)
}

type tokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Deps are the services the router dispatches to.
type Deps struct {
	CartSvc     cartService
	ProductSvc  productService
	AccountSvc  accountService // optional; enables /api/auth
	Auth        tokenValidator
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.SugaredLogger, db Pinger, deps Deps) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.ProductSvc == nil {
		return nil, errors.New("cart and product services are required")
	}
	if deps.Auth == nil {
		return nil, errors.New("token validator is required")
	}

	logger = logging.OrNop(logger)
	useJSONFieldNames()
	router := gin.New()
	router.Use(requestID(), requestLogger(logger), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{carts: deps.CartSvc, products: deps.ProductSvc, accounts: deps.AccountSvc, logger: logger}

	api := router.Group("/api")
	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)

	if deps.AccountSvc != nil {
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth/profile", bearerAuth(deps.Auth), h.profile)
	}

	cart := api.Group("/cart", bearerAuth(deps.Auth))
	cart.GET("", h.getCart)
	cart.POST("", h.addItem)
	cart.DELETE("", h.clearCart)
	cart.PUT("/:productId", h.updateQuantity)
	cart.DELETE("/:productId", h.removeItem)

	return router, nil
}

type handlers struct {
	carts    cartService
	products productService
	accounts accountService
	logger   *zap.SugaredLogger
}
