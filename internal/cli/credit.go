package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/pos/receipt"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/spf13/cobra"
)

// NewCreditCommand creates the credit command and its subcommands.
func NewCreditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Settle or return credit sales",
		Long: `Settle or return credit sales.

Both operations need the store of record; they are not queued offline.

Examples:
  pos-terminal credit pay 3f2a... 250.00
  pos-terminal credit return 3f2a...`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "pay ID AMOUNT",
		Short:         "Record a payment against a credit record",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreditPay(rootOpts, cmd, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "return ID",
		Short:         "Return the goods of a credit sale and restock them",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreditReturn(rootOpts, cmd, args[0])
		},
	})

	return cmd
}

type creditReport struct {
	Record  contract.CreditRecord `json:"record"`
	Warning string                `json:"warning,omitempty"`
}

func (r creditReport) String() string {
	s := fmt.Sprintf("Credit %s (%s): %s\nOwed: %s  Paid: %s  Balance: %s\n",
		r.Record.ID, r.Record.CustomerName, r.Record.Status,
		receipt.Money(r.Record.TotalOwed),
		receipt.Money(r.Record.AmountPaid),
		receipt.Money(r.Record.Balance),
	)
	if r.Warning != "" {
		s += "Warning: " + r.Warning + "\n"
	}
	return s
}

func runCreditPay(opts *RootOptions, cmd *cobra.Command, idArg, amountArg string) error {
	id, err := uuid.Parse(idArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid credit record id", err)
	}
	amount, err := parseMoney(amountArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid amount", err)
	}

	t, err := opts.open()
	if err != nil {
		return err
	}
	defer t.Close()

	ctx := cmd.Context()
	if !t.Connect(ctx) {
		return NewExitError(ExitFailure, "store of record is unreachable")
	}
	actor, err := t.Remote.CurrentActor(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to resolve the current actor", err)
	}

	rec, err := t.Ledger.ApplyPayment(ctx, id, amount, actor.ID)
	return reportCredit(opts, cmd, rec, err, "payment failed", "payment recorded but not fully posted")
}

func runCreditReturn(opts *RootOptions, cmd *cobra.Command, idArg string) error {
	id, err := uuid.Parse(idArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid credit record id", err)
	}

	t, err := opts.open()
	if err != nil {
		return err
	}
	defer t.Close()

	ctx := cmd.Context()
	if !t.Connect(ctx) {
		return NewExitError(ExitFailure, "store of record is unreachable")
	}

	rec, err := t.Ledger.MarkReturned(ctx, id)
	return reportCredit(opts, cmd, rec, err, "return failed", "return incomplete, run the command again to finish")
}

// reportCredit prints the updated record. A partial write still prints the
// record before failing with partialMsg.
func reportCredit(opts *RootOptions, cmd *cobra.Command, rec contract.CreditRecord, err error, msg, partialMsg string) error {
	out := opts.formatter(cmd)
	switch {
	case err == nil:
		return out.Success(creditReport{Record: rec})
	case apperror.IsPartialWrite(err):
		if ferr := out.Success(creditReport{Record: rec, Warning: err.Error()}); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, partialMsg, err)
	case apperror.IsValidation(err):
		appErr := apperror.GetAppError(err)
		if ferr := out.Error("VALIDATION", appErr.Message, appErr.Errors); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, msg, err)
	default:
		return WrapExitError(ExitFailure, msg, err)
	}
}
