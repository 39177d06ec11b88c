package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"storefront-cart/internal/auth"
	"storefront-cart/internal/domain"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			return a.printCart(cmd.OutOrStdout())
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var (
		quantity int
		flavor   string
	)
	cmd := &cobra.Command{
		Use:   "add <productId>...",
		Short: "Add products to the cart",
		Long: `Add one or more products to the cart. Each product is looked up in the
catalog first; when several are given they are added concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			g, gctx := errgroup.WithContext(ctx)
			for _, id := range args {
				g.Go(func() error {
					return a.addProduct(gctx, id, flavor, quantity)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			// Concurrent responses may settle out of order.
			if len(args) > 1 {
				if err := a.cart.Refresh(ctx); err != nil {
					return err
				}
			}
			return a.printCart(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "Units to add")
	cmd.Flags().StringVar(&flavor, "flavor", "", "Selected flavor")
	return cmd
}

func (a *app) addProduct(ctx context.Context, id, flavor string, quantity int) error {
	product, err := a.client.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("look up %s: %w", id, err)
	}
	if flavor != "" && len(product.Flavors) > 0 && !slices.Contains(product.Flavors, flavor) {
		return fmt.Errorf("%s has no flavor %q (available: %v)", product.Name, flavor, product.Flavors)
	}
	if !a.cart.AddItem(ctx, &product, flavor, quantity) {
		return a.failure("add " + id)
	}
	return nil
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <productId> <quantity>",
		Short: "Set a product's quantity; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], err)
			}
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			if !a.cart.UpdateItemQuantity(ctx, &domain.Product{ID: args[0]}, "", qty) {
				return a.failure("set quantity")
			}
			return a.printCart(cmd.OutOrStdout())
		},
	}
}

func newStepCmd(a *app, use, short string, delta int) *cobra.Command {
	var times int
	cmd := &cobra.Command{
		Use:   use + " <productId>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			control := a.cart.NewQuantityControl(&domain.Product{ID: args[0]}, "", a.cfg.InFlightCooldown)
			for i := 0; i < times; i++ {
				if i > 0 {
					time.Sleep(a.cfg.InFlightCooldown + 20*time.Millisecond)
				}
				ok := control.Increment
				if delta < 0 {
					ok = control.Decrement
				}
				if !ok(ctx) {
					return a.failure(use)
				}
			}
			return a.printCart(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&times, "times", "n", 1, "Repeat the step")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <cartItemKey>",
		Short: "Remove a line by product id or id_flavor key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			if !a.cart.RemoveItem(ctx, args[0]) {
				return a.failure("remove " + args[0])
			}
			return a.printCart(cmd.OutOrStdout())
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			if !a.cart.ClearCart(ctx) {
				return a.failure("clear")
			}
			return a.printCart(cmd.OutOrStdout())
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		Long: `Exchange credentials for a bearer token and print it. Export it as
CART_API_TOKEN or pass it with --token on later calls.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.session.Login(token)
			if u := a.session.User(); u != nil {
				a.logger.Infow("logged in", "user", u.ID, "expires", u.ExpiresAt)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTokenCmd(a *app) *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development token for the reference cart service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := auth.NewJWTAuthenticator(a.cfg.JWTSecret, a.cfg.JWTIssuer, ttl).GenerateToken(userID, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "dev-user", "Token subject")
	cmd.Flags().StringVar(&email, "email", "dev@example.com", "Email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func (a *app) failure(action string) error {
	if msg := a.cart.Error(); msg != "" {
		return fmt.Errorf("%s: %s", action, msg)
	}
	return fmt.Errorf("%s failed", action)
}

func (a *app) printCart(out io.Writer) error {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "Cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tQTY\tUNIT\tTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.Key(), it.Name, it.Quantity, it.UnitPrice().StringFixed(2), it.LineTotal().StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Items: %d  Total: %s\n", a.cart.GetItemCount(), a.cart.Total().StringFixed(2))
	return nil
}
