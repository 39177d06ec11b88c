package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront-cart/internal/auth"
	"storefront-cart/internal/cart"
	"storefront-cart/internal/cartapi"
	"storefront-cart/internal/cartstore"
	"storefront-cart/internal/config"
	"storefront-cart/internal/logging"
)

type rootOptions struct {
	envFile string
	baseURL string
	token   string
	timeout time.Duration
	verbose bool
}

// app is the client stack shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *zap.SugaredLogger
	session *auth.Session
	client  *cartapi.Client
	cart    *cart.Facade
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Inspect and modify a storefront cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Cart API base URL (or set CART_API_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token (or set CART_API_TOKEN)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "Request timeout (or set CART_API_TIMEOUT)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newShowCmd(a),
		newAddCmd(a),
		newSetCmd(a),
		newStepCmd(a, "inc", "Increase a product's quantity by one", 1),
		newStepCmd(a, "dec", "Decrease a product's quantity by one", -1),
		newRemoveCmd(a),
		newClearCmd(a),
		newLoginCmd(a),
		newTokenCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	if opts.baseURL != "" {
		cfg.APIBaseURL = opts.baseURL
	}
	if opts.token != "" {
		cfg.APIToken = opts.token
	}
	if opts.timeout > 0 {
		cfg.APITimeout = opts.timeout
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.NewTo(cfg.LogLevel, os.Stderr).Named("cartctl")
	a.session = auth.NewSession()
	a.client = cartapi.New(cfg.APIBaseURL, a.session,
		cartapi.WithTimeout(cfg.APITimeout),
		cartapi.WithLogger(a.logger),
	)
	store := cartstore.New(a.client, cartstore.WithLogger(a.logger))
	a.cart = cart.New(store, a.session, a.logger)
	if cfg.APIToken != "" {
		a.session.Login(cfg.APIToken)
	}
	return nil
}

// load fetches the cart for the current session.
func (a *app) load(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		return errors.New("not logged in: pass --token or set CART_API_TOKEN")
	}
	if err := a.cart.SyncSession(ctx); err != nil {
		return err
	}
	if a.session.User() == nil {
		// Opaque tokens carry no user claims; fetch anyway.
		return a.cart.Refresh(ctx)
	}
	return nil
}
