package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/propledger/internal/api"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func runServe(ctx context.Context, a *app) error {
	srv := api.New(api.Deps{
		Accounts: a.accounts,
		Journal:  a.journal,
		Reports:  a.reports,
		Store:    a.store,
		Metrics:  a.metrics,
		Logger:   a.log,
	}).HTTPServer(a.cfg.Server.Addr, a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("starting ledger API", zap.String("addr", srv.Addr), zap.String("database", a.cfg.Database.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		a.log.Error("server stopped", zap.Error(err))
		return err
	}
	a.log.Info("server exited")
	return nil
}
