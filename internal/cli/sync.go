package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sangkips/investify-pos/internal/pos/syncer"
	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Drain the offline queue now",
		Long: `Submit every queued sale to the store of record, oldest first.

Side effects left in the outbox by earlier syncs are replayed first.
A sale that fails stays queued for the next attempt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
}

type syncReport struct {
	syncer.Result
}

func (r syncReport) String() string {
	if r.Skipped {
		return "A sync is already running.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Synced %d of %d queued sales\n", r.Synced, r.Attempted)
	if r.Failed > 0 {
		fmt.Fprintf(&b, "Failed: %d (still queued)\n", r.Failed)
	}
	if r.EffectsReplayed > 0 {
		fmt.Fprintf(&b, "Outbox effects replayed: %d\n", r.EffectsReplayed)
	}
	if r.PartialWrites > 0 {
		fmt.Fprintf(&b, "Effects moved to outbox: %d\n", r.PartialWrites)
	}
	fmt.Fprintf(&b, "Remaining in queue: %d\n", r.Remaining)
	return b.String()
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	t, err := opts.open()
	if err != nil {
		return err
	}
	defer t.Close()

	ctx := cmd.Context()
	if !t.Connect(ctx) {
		return NewExitError(ExitFailure, "store of record is unreachable, sales stay queued")
	}

	res, err := t.Sync.Drain(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "sync failed", err)
	}
	if err := opts.formatter(cmd).Success(syncReport{res}); err != nil {
		return err
	}
	if res.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d queued sales failed to sync", res.Failed))
	}
	return nil
}

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "refresh",
		Short:         "Reload every cached catalog from the store of record",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(rootOpts, cmd)
		},
	}
}

// refreshReport maps a cached entity to the number of rows now cached.
type refreshReport map[string]int

func (r refreshReport) String() string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%-18s %d\n", name, r[name])
	}
	return b.String()
}

func runRefresh(opts *RootOptions, cmd *cobra.Command) error {
	t, err := opts.open()
	if err != nil {
		return err
	}
	defer t.Close()

	ctx := cmd.Context()
	if !t.Connect(ctx) {
		return NewExitError(ExitFailure, "store of record is unreachable")
	}

	counts, refreshErr := t.Catalog.RefreshAll(ctx)
	report := refreshReport{}
	for entity, n := range counts {
		report[string(entity)] = n
	}
	if err := opts.formatter(cmd).Success(report); err != nil {
		return err
	}
	if refreshErr != nil {
		return WrapExitError(ExitFailure, "refresh incomplete", refreshErr)
	}
	return nil
}
