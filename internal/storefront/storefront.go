// Package storefront assembles the cart and wishlist views from configuration.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shopsync/internal/collection"
	"shopsync/internal/config"
	"shopsync/internal/guest"
	"shopsync/internal/model"
	"shopsync/internal/reconcile"
	"shopsync/internal/remote"
	"shopsync/internal/session"
)

// Options overrides parts of the assembly.
type Options struct {
	// Slot replaces the configured guest slot backend. The caller keeps
	// ownership; Close does not close it.
	Slot     guest.Slot
	Reporter collection.Reporter
	Logger   *slog.Logger
}

// Storefront owns one shopper's cart, wishlist and session.
type Storefront struct {
	cart     *collection.Cart
	wishlist *collection.Wishlist
	sessions *session.Manager
	syncer   *reconcile.Reconciler

	slot     guest.Slot
	ownsSlot bool
	clients  []*remote.Client
	logger   *slog.Logger
}

// Open builds the storefront and restores the persisted session. Both views
// are loaded on return.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Storefront, error) {
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Storefront{slot: opts.Slot, logger: opts.Logger}
	if s.slot == nil {
		slot, err := guest.Open(ctx, cfg.Guest)
		if err != nil {
			return nil, fmt.Errorf("opening guest store: %w", err)
		}
		s.slot, s.ownsSlot = slot, true
	}

	newClient := func(kind model.Kind) (*remote.Client, error) {
		c, err := remote.New(kind, remote.Config{
			BaseURL:     cfg.API.BaseURL,
			APIKey:      cfg.API.APIKey,
			Timeout:     cfg.API.Timeout,
			Fingerprint: cfg.API.Fingerprint,
			Logger:      opts.Logger,
		})
		if err != nil {
			return nil, err
		}
		s.clients = append(s.clients, c)
		return c, nil
	}
	cartClient, err := newClient(model.KindCart)
	if err != nil {
		s.Close()
		return nil, err
	}
	wishlistClient, err := newClient(model.KindWishlist)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Views start in the stored session so restoring it is not a login.
	tokens := session.NewTokenStore(s.slot)
	token, err := tokens.Load(ctx)
	if err != nil {
		opts.Logger.Warn("stored token unreadable, starting as guest", "error", err)
		token = ""
	}
	initial := session.Session{Token: token}

	cartStore := guest.NewStore(model.KindCart, s.slot, opts.Logger)
	wishlistStore := guest.NewStore(model.KindWishlist, s.slot, opts.Logger)

	s.syncer = reconcile.New(cartStore, cartClient, cfg.MergePolicy, opts.Logger)
	s.cart = collection.NewCart(cartStore, cartClient, collection.Options{
		Syncer:   s.syncer,
		Reporter: opts.Reporter,
		Logger:   opts.Logger,
		Session:  initial,
	})
	s.wishlist = collection.NewWishlist(wishlistStore, wishlistClient, collection.Options{
		Syncer:   reconcile.New(wishlistStore, wishlistClient, cfg.MergePolicy, opts.Logger),
		Reporter: opts.Reporter,
		Logger:   opts.Logger,
		Session:  initial,
	})
	s.sessions = session.NewManager(tokens, opts.Logger, s.cart, s.wishlist)

	if _, err := s.sessions.Restore(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}
	return s, nil
}

// Cart returns the cart view.
func (s *Storefront) Cart() *collection.Cart { return s.cart }

// Wishlist returns the wishlist view.
func (s *Storefront) Wishlist() *collection.Wishlist { return s.wishlist }

// Session returns the current session.
func (s *Storefront) Session() session.Session { return s.sessions.Current() }

// Login stores token and moves guest items to the shopper's account.
func (s *Storefront) Login(ctx context.Context, token string) error {
	return s.sessions.Login(ctx, token)
}

// Logout forgets the token. Both views fall back to the (empty) guest store.
func (s *Storefront) Logout(ctx context.Context) error {
	return s.sessions.Logout(ctx)
}

// Close releases idle connections and the guest slot if Open created it.
func (s *Storefront) Close() error {
	for _, c := range s.clients {
		c.CloseIdleConnections()
	}
	if s.ownsSlot && s.slot != nil {
		return s.slot.Close()
	}
	return nil
}

// Status summarizes both collections.
type Status struct {
	LoggedIn      bool        `json:"loggedIn"`
	CartItems     int         `json:"cartItems"`
	CartTotal     model.Money `json:"cartTotal"`
	WishlistItems int         `json:"wishlistItems"`

	MergePolicy reconcile.MergePolicy `json:"mergePolicy"`
}

// Status reports the session and collection sizes as last loaded.
func (s *Storefront) Status() Status {
	return Status{
		LoggedIn:      s.Session().LoggedIn(),
		CartItems:     s.cart.Count(),
		CartTotal:     s.cart.Total(),
		WishlistItems: len(s.wishlist.Items()),
		MergePolicy:   s.syncer.Policy(),
	}
}

// ErrNotLoaded is reported when a collection could not be read at all.
var ErrNotLoaded = errors.New("collection not loaded")

// Check returns ErrNotLoaded if either view has never loaded.
func (s *Storefront) Check() error {
	if !s.cart.IsLoaded() {
		return fmt.Errorf("cart: %w", ErrNotLoaded)
	}
	if !s.wishlist.IsLoaded() {
		return fmt.Errorf("wishlist: %w", ErrNotLoaded)
	}
	return nil
}
