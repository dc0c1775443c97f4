package cli

import (
	"context"

	"github.com/sangkips/investify-pos/internal/config"
	"github.com/sangkips/investify-pos/internal/pos/catalog"
	"github.com/sangkips/investify-pos/internal/pos/checkout"
	"github.com/sangkips/investify-pos/internal/pos/connectivity"
	"github.com/sangkips/investify-pos/internal/pos/ledger"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/receipt"
	"github.com/sangkips/investify-pos/internal/pos/remote"
	"github.com/sangkips/investify-pos/internal/pos/statusapi"
	"github.com/sangkips/investify-pos/internal/pos/syncer"
	"github.com/sangkips/investify-pos/pkg/logger"
	"github.com/sangkips/investify-pos/pkg/printer"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Components are the collaborators a Terminal is assembled from.
type Components struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    *localstore.Store
	Remote   remote.Store
	Signal   connectivity.Signal
	Printer  printer.Printer
	Notifier syncer.Notifier
}

// Terminal is a fully wired POS terminal.
type Terminal struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    *localstore.Store
	Remote   remote.Store
	Signal   connectivity.Signal
	Printer  printer.Printer
	Catalog  *catalog.Catalog
	Checkout *checkout.Service
	Sync     *syncer.Engine
	Ledger   *ledger.Service
	Status   *statusapi.Server

	// Monitor is nil when Signal is driven by hand.
	Monitor *connectivity.Monitor
}

// Assemble wires the terminal services over c.
func Assemble(c Components) *Terminal {
	cfg := c.Config
	t := &Terminal{
		Config:  cfg,
		Log:     c.Log,
		Store:   c.Store,
		Remote:  c.Remote,
		Signal:  c.Signal,
		Printer: c.Printer,
		Catalog: catalog.New(c.Store, c.Remote, c.Log),
		Sync:    syncer.New(c.Store, c.Remote, c.Notifier, c.Log),
		Ledger:  ledger.NewService(c.Remote, c.Log),
	}
	t.Checkout = checkout.NewService(c.Remote, c.Store, c.Signal, c.Printer, t.header(), cfg.Printer.Width, c.Log)
	t.Status = statusapi.NewServer(cfg.Terminal.ID, c.Store, t.Sync, c.Signal, c.Log)
	return t
}

func (t *Terminal) header() receipt.Header {
	return receipt.Header{
		StoreName: t.Config.Store.Name,
		Address:   t.Config.Store.Address,
		Phone:     t.Config.Store.Phone,
	}
}

// OpenTerminal builds the production terminal from the environment.
func OpenTerminal(opts *RootOptions) (*Terminal, error) {
	cfg := config.Load()
	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(cfg.App.Env, level)
	if err != nil {
		return nil, err
	}

	store := localstore.OpenOrDegrade(cfg.Terminal.DBPath, log)
	client := remote.NewClient(cfg.Terminal.RemoteURL, cfg.Terminal.APIToken, cfg.Terminal.RequestTimeout, log)
	monitor := connectivity.NewMonitor(client, cfg.Terminal.ProbeInterval, cfg.Terminal.ProbeTimeout, log)

	p, err := printer.New(printer.Options{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Warn("printer disabled", zap.Error(err))
		p, _ = printer.New(printer.Options{Type: "none"})
	}

	t := Assemble(Components{
		Config:  cfg,
		Log:     log,
		Store:   store,
		Remote:  client,
		Signal:  monitor,
		Printer: p,
		Notifier: syncer.NotifierFunc(func(ctx context.Context, message string) {
			log.Info(message)
		}),
	})
	t.Monitor = monitor
	return t, nil
}

// Connect refreshes the connectivity state with one probe when a monitor is
// attached and reports whether the store of record is reachable.
func (t *Terminal) Connect(ctx context.Context) bool {
	if t.Monitor != nil {
		return t.Monitor.Probe(ctx)
	}
	return t.Signal.Online()
}

func (t *Terminal) Close() error {
	t.Catalog.Wait()
	err := multierr.Combine(t.Store.Close(), t.Printer.Close())
	_ = t.Log.Sync()
	return err
}
