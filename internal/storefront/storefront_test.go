package storefront

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"shopsync/internal/collection"
	"shopsync/internal/config"
	"shopsync/internal/devstore"
	"shopsync/internal/guest"
	"shopsync/internal/handler"
	"shopsync/internal/middleware"
	"shopsync/internal/model"
	"shopsync/internal/negotiation"
	"shopsync/internal/reconcile"
)

const testAPIKey = "test-key"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAPI starts the reference storefront API with the devapi middleware chain.
func newAPI(t *testing.T) (*devstore.Store, *httptest.Server) {
	t.Helper()
	logger := testLogger()
	store := devstore.New(nil)

	mux := http.NewServeMux()
	handler.New(store, logger).RegisterRoutes(mux)
	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.APIKey(testAPIKey, logger),
		negotiation.Middleware(negotiation.Config{ServerVersion: "v1.2.0", RequireHeader: true}, logger),
	)

	srv := httptest.NewServer(chain(mux))
	t.Cleanup(srv.Close)
	return store, srv
}

func testConfig(baseURL, apiKey string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL: baseURL,
			APIKey:  apiKey,
			Timeout: 5 * time.Second,
		},
		MergePolicy: reconcile.PolicySum,
	}
}

// failures records reported failures.
type failures struct {
	mu  sync.Mutex
	got []collection.Failure
}

func (f *failures) Report(_ context.Context, failure collection.Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, failure)
}

func (f *failures) list() []collection.Failure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]collection.Failure(nil), f.got...)
}

func open(t *testing.T, cfg *config.Config, slot guest.Slot, reporter collection.Reporter) *Storefront {
	t.Helper()
	s, err := Open(context.Background(), cfg, Options{Slot: slot, Reporter: reporter, Logger: testLogger()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quantities(items []model.Item) map[model.ProductID]int {
	out := make(map[model.ProductID]int, len(items))
	for _, it := range items {
		out[it.ProductID] = it.Quantity
	}
	return out
}

func TestOpenRequiresBaseURL(t *testing.T) {
	_, err := Open(context.Background(), testConfig("", ""), Options{Slot: guest.NewMemorySlot()})
	if err == nil {
		t.Fatal("expected error without API base URL")
	}
}

func TestGuestThenLogin(t *testing.T) {
	ctx := context.Background()
	api, srv := newAPI(t)
	if _, err := api.Add("alice", model.KindCart, "7", 1); err != nil {
		t.Fatal(err)
	}

	slot := guest.NewMemorySlot()
	s := open(t, testConfig(srv.URL, testAPIKey), slot, nil)
	if s.Session().LoggedIn() {
		t.Fatal("fresh storefront should be a guest")
	}

	if err := s.Cart().Add(ctx, model.Item{ProductID: "7", Quantity: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Cart().Add(ctx, model.Item{ProductID: "9"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Wishlist().Toggle(ctx, model.Item{ProductID: "5"}); err != nil {
		t.Fatal(err)
	}
	if got := s.Status(); got.CartItems != 3 || got.WishlistItems != 1 || got.LoggedIn {
		t.Errorf("guest status = %+v", got)
	}

	// Nothing reached the API before login.
	if items := api.Items("alice", model.KindCart); len(items) != 1 {
		t.Fatalf("remote cart before login = %+v", items)
	}

	if err := s.Login(ctx, "alice"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	want := map[model.ProductID]int{"7": 3, "9": 1}
	if diff := cmp.Diff(want, quantities(api.Items("alice", model.KindCart))); diff != "" {
		t.Errorf("remote cart (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, quantities(s.Cart().Items())); diff != "" {
		t.Errorf("cart view (-want +got):\n%s", diff)
	}
	if !s.Wishlist().Contains("5") {
		t.Error("wishlist view should contain 5 after login")
	}
	if got := api.Items("alice", model.KindWishlist); len(got) != 1 || got[0].ProductID != "5" {
		t.Errorf("remote wishlist = %+v", got)
	}

	for _, kind := range []model.Kind{model.KindCart, model.KindWishlist} {
		if left := guest.NewStore(kind, slot, testLogger()).Load(ctx); len(left) != 0 {
			t.Errorf("guest %s not cleared: %+v", kind, left)
		}
	}
}

func TestRemoteMutationsAfterLogin(t *testing.T) {
	ctx := context.Background()
	api, srv := newAPI(t)
	s := open(t, testConfig(srv.URL, testAPIKey), guest.NewMemorySlot(), nil)
	if err := s.Login(ctx, "bob"); err != nil {
		t.Fatal(err)
	}

	if err := s.Cart().Add(ctx, model.Item{ProductID: "1", Quantity: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Cart().UpdateQuantity(ctx, "1", 4); err != nil {
		t.Fatal(err)
	}
	if got := quantities(api.Items("bob", model.KindCart)); got["1"] != 4 {
		t.Errorf("remote quantity = %d, want 4", got["1"])
	}

	if err := s.Cart().UpdateQuantity(ctx, "1", 0); err == nil {
		t.Error("quantity 0 should be rejected")
	}
	if got := quantities(api.Items("bob", model.KindCart)); got["1"] != 4 {
		t.Errorf("rejected update changed remote quantity to %d", got["1"])
	}

	if err := s.Cart().Remove(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if items := s.Cart().Items(); len(items) != 0 {
		t.Errorf("cart after remove = %+v", items)
	}
}

func TestRestoredSessionSkipsReconcile(t *testing.T) {
	ctx := context.Background()
	api, srv := newAPI(t)
	slot := guest.NewMemorySlot()
	cfg := testConfig(srv.URL, testAPIKey)

	first := open(t, cfg, slot, nil)
	if err := first.Login(ctx, "carol"); err != nil {
		t.Fatal(err)
	}
	if err := first.Cart().Add(ctx, model.Item{ProductID: "3", Quantity: 1}); err != nil {
		t.Fatal(err)
	}

	// Stray guest data must not be pushed by a restore.
	if err := guest.NewStore(model.KindCart, slot, testLogger()).Save(ctx, []model.Item{{ProductID: "8", Quantity: 1}}); err != nil {
		t.Fatal(err)
	}

	second := open(t, cfg, slot, nil)
	if !second.Session().LoggedIn() {
		t.Fatal("session should be restored from the stored token")
	}
	if diff := cmp.Diff(map[model.ProductID]int{"3": 1}, quantities(second.Cart().Items())); diff != "" {
		t.Errorf("restored cart (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[model.ProductID]int{"3": 1}, quantities(api.Items("carol", model.KindCart))); diff != "" {
		t.Errorf("remote cart (-want +got):\n%s", diff)
	}
}

func TestLogoutShowsEmptyGuest(t *testing.T) {
	ctx := context.Background()
	_, srv := newAPI(t)
	s := open(t, testConfig(srv.URL, testAPIKey), guest.NewMemorySlot(), nil)

	if err := s.Login(ctx, "dave"); err != nil {
		t.Fatal(err)
	}
	if err := s.Cart().Add(ctx, model.Item{ProductID: "1", Quantity: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatal(err)
	}

	if s.Session().LoggedIn() {
		t.Error("still logged in after logout")
	}
	if items := s.Cart().Items(); len(items) != 0 {
		t.Errorf("cart after logout = %+v, want empty", items)
	}
}

func TestRejectedKeyPreservesGuestItems(t *testing.T) {
	ctx := context.Background()
	_, srv := newAPI(t)
	slot := guest.NewMemorySlot()
	reported := &failures{}
	s := open(t, testConfig(srv.URL, "wrong-key"), slot, reported)

	if err := s.Cart().Add(ctx, model.Item{ProductID: "4", Quantity: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Login(ctx, "erin"); err != nil {
		t.Fatalf("Login should absorb sync failures: %v", err)
	}

	var syncFailure *collection.Failure
	for _, f := range reported.list() {
		if f.Resource == model.KindCart && f.Op == collection.OpSync {
			syncFailure = &f
			break
		}
	}
	if syncFailure == nil {
		t.Fatalf("no cart sync failure reported: %+v", reported.list())
	}
	if !errors.Is(syncFailure, model.ErrUnauthorized) {
		t.Errorf("failure = %v, want unauthorized", syncFailure.Err)
	}

	left := guest.NewStore(model.KindCart, slot, testLogger()).Load(ctx)
	if diff := cmp.Diff(map[model.ProductID]int{"4": 2}, quantities(left)); diff != "" {
		t.Errorf("guest cart (-want +got):\n%s", diff)
	}
}
