package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shopsync/internal/model"
	"shopsync/internal/storefront"
)

// =============================================================================
// SESSION COMMANDS
// =============================================================================

func (a *app) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <token>",
		Short: "Store a bearer token and merge guest items into the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				wasLoggedIn := sf.Session().LoggedIn()
				if err := sf.Login(ctx, args[0]); err != nil {
					return err
				}
				if wasLoggedIn {
					a.printSuccess("Token refreshed")
				} else {
					a.printSuccess("Logged in")
				}
				return a.printStatus(sf.Status())
			})
		},
	}
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Logout(ctx); err != nil {
					return err
				}
				a.printSuccess("Logged out")
				return nil
			})
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state and collection sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Check(); err != nil {
					return err
				}
				return a.printStatus(sf.Status())
			})
		},
	}
}

// =============================================================================
// CART COMMANDS
// =============================================================================

func (a *app) cartCmd() *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the cart",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cart items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Check(); err != nil {
					return err
				}
				return a.printCart(sf)
			})
		},
	}

	var qty int
	addCmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add units of a product; quantities accumulate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				item := model.Item{ProductID: model.ProductID(args[0]), Quantity: qty}
				if err := sf.Cart().Add(ctx, item); err != nil {
					return err
				}
				return a.printCart(sf)
			})
		},
	}
	addCmd.Flags().IntVarP(&qty, "qty", "q", 1, "Units to add")

	setCmd := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %q", args[1])
			}
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Cart().UpdateQuantity(ctx, model.ProductID(args[0]), quantity); err != nil {
					return err
				}
				return a.printCart(sf)
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Cart().Remove(ctx, model.ProductID(args[0])); err != nil {
					return err
				}
				return a.printCart(sf)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Cart().Clear(ctx); err != nil {
					return err
				}
				a.printSuccess("Cart cleared")
				return nil
			})
		},
	}

	cartCmd.AddCommand(listCmd, addCmd, setCmd, removeCmd, clearCmd)
	return cartCmd
}

// =============================================================================
// WISHLIST COMMANDS
// =============================================================================

func (a *app) wishlistCmd() *cobra.Command {
	wishlistCmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage the wishlist",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List wishlist entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Check(); err != nil {
					return err
				}
				return a.printWishlist(sf)
			})
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Save a product to the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Wishlist().Add(ctx, model.Item{ProductID: model.ProductID(args[0])}); err != nil {
					return err
				}
				return a.printWishlist(sf)
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Wishlist().Remove(ctx, model.ProductID(args[0])); err != nil {
					return err
				}
				return a.printWishlist(sf)
			})
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle <product-id>",
		Short: "Add a product, or remove it if already saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				on, err := sf.Wishlist().Toggle(ctx, model.Item{ProductID: model.ProductID(args[0])})
				if err != nil {
					return err
				}
				if on {
					a.printSuccess("Saved %s", args[0])
				} else {
					a.printSuccess("Removed %s", args[0])
				}
				return a.printWishlist(sf)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorefront(cmd, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Wishlist().Clear(ctx); err != nil {
					return err
				}
				a.printSuccess("Wishlist cleared")
				return nil
			})
		},
	}

	wishlistCmd.AddCommand(listCmd, addCmd, removeCmd, toggleCmd, clearCmd)
	return wishlistCmd
}
