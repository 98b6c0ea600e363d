// shopsync is a command-line storefront client. Without a stored token the
// cart and wishlist live in the local guest store; `shopsync login` moves them
// to the shopper's account.
//
// Examples:
//
//	shopsync cart add 42 --qty 2
//	shopsync wishlist toggle 7
//	shopsync login $TOKEN
//	shopsync cart list --json
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"shopsync/internal/collection"
	"shopsync/internal/config"
	"shopsync/internal/storefront"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s✗ %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

// app carries global flags and output streams shared by every command.
type app struct {
	out    io.Writer
	errOut io.Writer

	jsonOutput bool
	verbose    bool
	noColor    bool

	mu       sync.Mutex
	failures []collection.Failure
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "shopsync",
		Short: "Manage a storefront cart and wishlist from the terminal",
		Long: `shopsync keeps a cart and wishlist that work before and after sign-in.

As a guest, items are stored locally (GUEST_STORE_BACKEND selects file,
sqlite, redis or memory). Logging in merges them into the account at
API_BASE_URL using MERGE_POLICY (sum, guest, remote or max).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.noColor || os.Getenv("NO_COLOR") != "" {
				disableColors()
			}
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Print JSON instead of a table")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.cartCmd(),
		a.wishlistCmd(),
	)

	return rootCmd
}

// withStorefront loads configuration, opens the storefront, runs fn and
// closes it. Failures absorbed by the views turn into a non-nil error.
func (a *app) withStorefront(cmd *cobra.Command, fn func(ctx context.Context, sf *storefront.Storefront) error) error {
	ctx := cmd.Context()

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sf, err := storefront.Open(ctx, cfg, storefront.Options{
		Reporter: collection.ReporterFunc(a.report),
		Logger:   a.logger(),
	})
	if err != nil {
		return err
	}
	defer sf.Close()

	if err := fn(ctx, sf); err != nil {
		return err
	}
	if n := a.failureCount(); n > 0 {
		return fmt.Errorf("%d storefront operation(s) failed", n)
	}
	return nil
}

// report prints an absorbed failure. Listeners run concurrently, so it locks.
func (a *app) report(ctx context.Context, f collection.Failure) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, f)
	fmt.Fprintf(a.errOut, "%s⚠ %s %s failed: %v%s\n", colorYellow, f.Resource, f.Op, f.Err, colorReset)
}

func (a *app) failureCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.failures)
}

// logger writes to stderr; debug with --verbose, warnings otherwise.
func (a *app) logger() *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
}
