package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/cart"
	"github.com/sangkips/investify-pos/internal/pos/checkout"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/receipt"
	"github.com/sangkips/investify-pos/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	CartFile string
	Payment  string
	Cashier  string
}

// CartFile is the YAML description of a cart. Amounts are in major units.
type CartFile struct {
	TaxRate     string           `yaml:"tax_rate"`
	Discount    string           `yaml:"discount"`
	Customer    string           `yaml:"customer"`
	Attribution *AttributionSpec `yaml:"attribution"`
	Lines       []CartLineSpec   `yaml:"lines"`
}

// CartLineSpec names a product by SKU or id.
type CartLineSpec struct {
	SKU       string `yaml:"sku"`
	ProductID string `yaml:"product_id"`
	Quantity  int    `yaml:"quantity"`
	UnitPrice string `yaml:"unit_price"`
}

type AttributionSpec struct {
	Profile        string `yaml:"profile"` // profile id or email
	CommissionRate string `yaml:"commission_rate"`
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Commit a cart described in a YAML file",
		Long: `Commit a cart described in a YAML file.

While the store of record is reachable the sale is written directly and a
receipt is printed. Otherwise the sale is queued and a provisional slip is
printed; it syncs once the store of record is back.

Cart file:
  tax_rate: "16"
  discount: "5.00"
  customer: Wanjiru
  lines:
    - sku: FL-2KG
      quantity: 2
    - product_id: 6f1c...
      unit_price: "3.50"

Examples:
  pos-terminal checkout -f cart.yaml
  pos-terminal checkout -f cart.yaml --payment credit`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.CartFile, "file", "f", "", "path to the cart YAML file (required)")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().StringVar(&opts.Payment, "payment", "cash", "payment method (cash|credit|mobile|card)")
	cmd.Flags().StringVar(&opts.Cashier, "cashier", "", "profile id recorded on sales queued offline")

	return cmd
}

type checkoutReport struct {
	Path       checkout.Path       `json:"path"`
	Sale       *contract.Sale      `json:"sale,omitempty"`
	QueueID    int64               `json:"queue_id,omitempty"`
	Receipt    receipt.Receipt     `json:"receipt"`
	Pending    []localstore.Effect `json:"pending_effects,omitempty"`
	PrintError string              `json:"print_error,omitempty"`
	width      int
}

func (r checkoutReport) String() string {
	var b strings.Builder
	b.WriteString(r.Receipt.Text(r.width))
	b.WriteString("\n")
	if r.Path == checkout.PathOffline {
		fmt.Fprintf(&b, "Queued as #%d, will sync when the store of record is reachable.\n", r.QueueID)
	} else {
		fmt.Fprintf(&b, "Sale %s committed.\n", r.Receipt.Number)
	}
	for _, e := range r.Pending {
		fmt.Fprintf(&b, "Pending %s effect %s left for the next sync.\n", e.Kind, e.Reference)
	}
	if r.PrintError != "" {
		fmt.Fprintf(&b, "Receipt not printed: %s\n", r.PrintError)
	}
	return b.String()
}

func runCheckout(opts *CheckoutOptions, cmd *cobra.Command) error {
	method, err := enum.ParsePaymentMethod(opts.Payment)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --payment", err)
	}
	var cashier uuid.UUID
	if opts.Cashier != "" {
		if cashier, err = uuid.Parse(opts.Cashier); err != nil {
			return WrapExitError(ExitCommandError, "invalid --cashier", err)
		}
	}
	file, err := readCartFile(opts.CartFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read cart file", err)
	}

	t, err := opts.open()
	if err != nil {
		return err
	}
	defer t.Close()

	ctx := cmd.Context()
	t.Connect(ctx)
	out := opts.formatter(cmd)

	c, err := buildCart(ctx, t, file)
	if err != nil {
		return checkoutFailure(out, err)
	}
	out.VerboseLog("cart %s: %d lines, total %s", c.IdempotencyKey(), len(c.Lines()), receipt.Money(c.Total()))

	res, err := t.Checkout.Checkout(ctx, c, method, cashier)
	if err != nil {
		return checkoutFailure(out, err)
	}

	report := checkoutReport{
		Path:    res.Path,
		Sale:    res.Sale,
		QueueID: res.QueueID,
		Receipt: res.Receipt,
		Pending: res.Pending,
		width:   t.Config.Printer.Width,
	}
	if res.PrintErr != nil {
		report.PrintError = res.PrintErr.Error()
	}
	return out.Success(report)
}

func checkoutFailure(out *OutputFormatter, err error) error {
	if appErr := apperror.GetAppError(err); appErr != nil && apperror.IsValidation(err) {
		if ferr := out.Error("VALIDATION", appErr.Message, appErr.Errors); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "cart rejected", err)
	}
	return WrapExitError(ExitFailure, "checkout failed", err)
}

func readCartFile(path string) (*CartFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f CartFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// buildCart resolves the lines of f against the cached catalog.
func buildCart(ctx context.Context, t *Terminal, f *CartFile) (*cart.Cart, error) {
	rate, err := parseRate(f.TaxRate, t.Config.Terminal.DefaultTaxRate)
	if err != nil {
		return nil, apperror.NewFieldError("tax_rate", err.Error())
	}
	c := cart.New(rate)

	products, err := t.Catalog.Products.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("product catalog unavailable: %w", err)
	}
	bySKU := make(map[string]contract.Product, len(products))
	byID := make(map[string]contract.Product, len(products))
	for _, p := range products {
		bySKU[p.SKU] = p
		byID[p.ID.String()] = p
	}

	for i, l := range f.Lines {
		p, ok := bySKU[l.SKU]
		if l.ProductID != "" {
			p, ok = byID[l.ProductID]
		}
		if !ok || (l.SKU == "" && l.ProductID == "") {
			return nil, apperror.NewFieldError(fmt.Sprintf("lines.%d", i), "unknown product")
		}
		if err := addLine(c, p, l); err != nil {
			return nil, err
		}
	}

	if f.Discount != "" {
		d, err := parseMoney(f.Discount)
		if err != nil {
			return nil, apperror.NewFieldError("discount", err.Error())
		}
		c.SetDiscount(d)
	}

	if name := strings.TrimSpace(f.Customer); name != "" {
		var id *uuid.UUID
		// An unknown name is still a valid credit customer.
		if customers, err := t.Catalog.Customers.Load(ctx); err == nil {
			for _, cu := range customers {
				if strings.EqualFold(cu.Name, name) {
					cid := cu.ID
					id = &cid
					break
				}
			}
		}
		c.SetCustomer(id, name)
	}

	if a := f.Attribution; a != nil {
		if err := attribute(ctx, t, c, a); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func addLine(c *cart.Cart, p contract.Product, l CartLineSpec) error {
	qty := l.Quantity
	if qty <= 0 {
		qty = 1
	}
	if !c.AddLine(p) {
		return apperror.NewFieldError("lines."+p.Name, "out of stock")
	}
	for _, existing := range c.Lines() {
		if existing.Product.ID == p.ID {
			// AddLine already counted one unit of this entry.
			qty += existing.Quantity - 1
		}
	}
	if got := c.SetQuantity(p.ID, qty); got < qty {
		return apperror.NewFieldError("lines."+p.Name, fmt.Sprintf("only %d in stock", got))
	}
	if l.UnitPrice != "" {
		price, err := parseMoney(l.UnitPrice)
		if err != nil {
			return apperror.NewFieldError("lines."+p.Name, err.Error())
		}
		if !c.SetUnitPrice(p.ID, price) {
			return apperror.NewFieldError("lines."+p.Name, "price must be above cost")
		}
	}
	return nil
}

func attribute(ctx context.Context, t *Terminal, c *cart.Cart, a *AttributionSpec) error {
	rate, err := parseRate(a.CommissionRate, decimal.Zero)
	if err != nil {
		return apperror.NewFieldError("attribution.commission_rate", err.Error())
	}
	profiles, err := t.Catalog.Profiles.Load(ctx)
	if err != nil {
		return fmt.Errorf("profile catalog unavailable: %w", err)
	}
	for _, p := range profiles {
		if p.ID.String() == a.Profile || strings.EqualFold(p.Email, a.Profile) {
			c.SetAttribution(p, rate)
			return nil
		}
	}
	return apperror.NewFieldError("attribution.profile", "unknown profile")
}
