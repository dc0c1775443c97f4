package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/receipt"
	"github.com/spf13/cobra"
)

// NewQueueCommand creates the queue command and its subcommands.
func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect sales taken while offline",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List queued sales in sync order",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "count",
		Short:         "Count queued sales and outbox effects",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueCount(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show ID",
		Short:         "Show the provisional slip of a queued sale",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueShow(rootOpts, cmd, args[0])
		},
	})

	return cmd
}

type queueList []localstore.PendingSale

func (q queueList) String() string {
	if len(q) == 0 {
		return "No queued sales.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tQUEUED AT\tPAYMENT\tLINES\tTOTAL\tCUSTOMER")
	for _, p := range q {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			p.ID,
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
			p.PaymentMethod,
			len(p.Snapshot.Lines),
			receipt.Money(p.QueuedTotal),
			p.Snapshot.CustomerName,
		)
	}
	w.Flush()
	return b.String()
}

func runQueueList(opts *RootOptions, cmd *cobra.Command) error {
	t, err := opts.open()
	if err != nil {
		return err
	}
	defer t.Close()

	sales, err := t.Store.ListAll(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read queue", err)
	}
	return opts.formatter(cmd).Success(queueList(sales))
}

type queueCount struct {
	Queued int `json:"queued"`
	Outbox int `json:"outbox"`
}

func (c queueCount) String() string {
	return fmt.Sprintf("Queued sales: %d\nOutbox effects: %d\n", c.Queued, c.Outbox)
}

func runQueueCount(opts *RootOptions, cmd *cobra.Command) error {
	t, err := opts.open()
	if err != nil {
		return err
	}
	defer t.Close()

	ctx := cmd.Context()
	queued, err := t.Store.Count(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read queue", err)
	}
	outbox, err := t.Store.CountEffects(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read outbox", err)
	}
	return opts.formatter(cmd).Success(queueCount{Queued: queued, Outbox: outbox})
}

type queuedSlip struct {
	Sale    localstore.PendingSale `json:"sale"`
	Receipt receipt.Receipt        `json:"receipt"`
	width   int
}

func (s queuedSlip) String() string {
	return s.Receipt.Text(s.width)
}

func runQueueShow(opts *RootOptions, cmd *cobra.Command, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid queue id", err)
	}

	t, err := opts.open()
	if err != nil {
		return err
	}
	defer t.Close()

	p, err := t.Store.Get(cmd.Context(), id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read queue", err)
	}
	if p == nil {
		return NewExitError(ExitFailure, fmt.Sprintf("no queued sale with id %d", id))
	}
	return opts.formatter(cmd).Success(queuedSlip{
		Sale:    *p,
		Receipt: receipt.Provisional(t.header(), *p),
		width:   t.Config.Printer.Width,
	})
}
