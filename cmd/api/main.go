package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"storefront-cart/internal/auth"
	"storefront-cart/internal/config"
	"storefront-cart/internal/db"
	"storefront-cart/internal/httpserver"
	"storefront-cart/internal/logging"
	cartrepo "storefront-cart/internal/repository/cart"
	customerrepo "storefront-cart/internal/repository/customer"
	productrepo "storefront-cart/internal/repository/product"
	cartsvc "storefront-cart/internal/service/cart"
	customersvc "storefront-cart/internal/service/customer"
	productsvc "storefront-cart/internal/service/product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel).Named("api")
	defer func() { _ = logger.Sync() }()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}
	// Prices travel as JSON numbers, as the storefront expects.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	cartRepo := cartrepo.NewPostgres(dbpool)
	cartService := cartsvc.New(cartRepo, productRepo)
	authenticator := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour)
	customerService := customersvc.New(customerrepo.NewPostgres(dbpool, logger), authenticator)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:     cartService,
		ProductSvc:  productService,
		AccountSvc:  customerService,
		Auth:        authenticator,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Infow("shutting down", "signal", sig.String())
	case err := <-serverErr:
		logger.Errorw("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
	} else {
		logger.Info("server stopped")
	}
}
