package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	StatusAddr string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the terminal daemon",
		Long: `Run the terminal daemon until interrupted.

The daemon probes the store of record, drains the offline queue whenever
it becomes reachable and serves the status API (health, metrics, queue
and a manual sync trigger).

Examples:
  pos-terminal run
  pos-terminal run --status-addr 127.0.0.1:9191`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.StatusAddr, "status-addr", "", "status API listen address (default TERMINAL_STATUS_ADDR)")

	return cmd
}

func runDaemon(opts *RunOptions, cmd *cobra.Command) error {
	t, err := opts.open()
	if err != nil {
		return err
	}
	defer t.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := opts.StatusAddr
	if addr == "" {
		addr = t.Config.Terminal.StatusAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           t.Status.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var wg sync.WaitGroup
	if t.Monitor != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.Monitor.Run(ctx)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		t.Sync.Run(ctx, t.Signal)
	}()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	t.Log.Info("terminal started",
		zap.String("terminal", t.Config.Terminal.ID),
		zap.String("status_addr", addr),
		zap.String("remote", t.Config.Terminal.RemoteURL),
	)
	opts.formatter(cmd).VerboseLog("status API listening on %s", addr)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = WrapExitError(ExitCommandError, "status API failed", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		t.Log.Warn("status API shutdown", zap.Error(err))
	}
	wg.Wait()
	t.Log.Info("terminal stopped")
	return runErr
}
