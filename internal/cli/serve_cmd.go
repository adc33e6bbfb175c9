package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/staffplan/internal/api"
	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/workspace"
)

const shutdownTimeout = 10 * time.Second

// errAlreadyServing is returned when another process holds the serve lock.
var errAlreadyServing = errors.New("another staffplan server is already using this store")

func newServeCmd(app *App) *cobra.Command {
	var src planSource
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning workspace over HTTP and WebSocket",
		Long: `Starts the JSON API for a browser front-end. Every edit made through the
API is pushed to connected WebSocket clients. Only one server may run
per store; a lock file next to the store enforces that.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, name, err := src.resolve(cmd.Context(), app)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("Sirviendo en ")+"http://"+ln.Addr().String())
			return serve(ctx, app, app.Workspace(name, plan), ln)
		},
	}

	addPlanSourceFlags(cmd, &src)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from [server] addr)")

	return cmd
}

// serve runs the API on ln until ctx is cancelled, then shuts down
// gracefully. It holds the store lock for its whole lifetime.
func serve(ctx context.Context, app *App, ws *workspace.Workspace, ln net.Listener) error {
	log := app.Log.Named("serve")

	lockPath := app.Config.Server.LockFile
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		ln.Close()
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		ln.Close()
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		ln.Close()
		return errAlreadyServing
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("failed to release serve lock", zap.Error(err))
		}
	}()

	srv := api.NewServer(api.Deps{
		Workspace:          ws,
		Scenarios:          app.Scenarios,
		History:            app.History,
		UoW:                app.UoW,
		Log:                app.Log,
		RecommendPerMinute: app.Config.Server.RecommendPerMinute,
		RecommendBurst:     app.Config.Server.RecommendBurst,
	})
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server started", zap.String("addr", ln.Addr().String()), zap.String("lock", lockPath))
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		log.Info("http server stopping")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
