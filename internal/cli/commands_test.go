package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/config"
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/connectivity"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/internal/pos/remote/remotetest"
	"github.com/sangkips/investify-pos/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cliHarness struct {
	dir     string
	fake    *remotetest.Fake
	signal  *connectivity.Static
	printer *printer.Recorder
	product contract.Product
	actor   contract.Profile
	opts    *RootOptions
}

func newCLIHarness(t *testing.T, online bool) *cliHarness {
	t.Helper()
	h := &cliHarness{
		dir:     t.TempDir(),
		actor:   contract.Profile{ID: uuid.New(), Name: "Amina", Email: "amina@shop.test"},
		signal:  connectivity.NewStatic(online),
		printer: &printer.Recorder{},
		product: contract.Product{
			ID: uuid.New(), SKU: "FL-2KG", Name: "maize flour",
			Quantity: 20, BuyingPrice: 150, SellingPrice: 200,
		},
	}
	h.fake = remotetest.New(h.actor)
	h.fake.AddProduct(h.product)

	cfg := &config.Config{
		Terminal: config.TerminalConfig{ID: "till-test", DefaultTaxRate: decimal.NewFromInt(16)},
		Printer:  config.PrinterConfig{Width: 32},
		Store:    config.StoreConfig{Name: "Test Shop"},
	}
	dbPath := filepath.Join(h.dir, "pos.db")
	h.opts = &RootOptions{Open: func(*RootOptions) (*Terminal, error) {
		store, err := localstore.Open(dbPath, zap.NewNop())
		if err != nil {
			return nil, err
		}
		return Assemble(Components{
			Config:  cfg,
			Log:     zap.NewNop(),
			Store:   store,
			Remote:  h.fake,
			Signal:  h.signal,
			Printer: h.printer,
		}), nil
	}}
	return h
}

func (h *cliHarness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRootCommand(h.opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func (h *cliHarness) cartFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(h.dir, "cart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const twoBags = `
lines:
  - sku: FL-2KG
    quantity: 2
`

func TestCheckoutOnlineCommitsSale(t *testing.T) {
	h := newCLIHarness(t, true)

	out, err := h.run(t, "checkout", "-f", h.cartFile(t, twoBags))
	require.NoError(t, err)

	sales := h.fake.Sales()
	require.Len(t, sales, 1)
	assert.Equal(t, int64(400), sales[0].Subtotal)
	assert.Equal(t, int64(64), sales[0].TaxAmount)
	assert.Equal(t, int64(464), sales[0].Total)
	assert.Contains(t, out, "Sale "+sales[0].ReceiptNumber+" committed.")
	assert.Contains(t, out, "TOTAL")
	assert.Len(t, h.printer.Jobs(), 1)

	p, ok := h.fake.Product(h.product.ID)
	require.True(t, ok)
	assert.Equal(t, 18, p.Quantity)
}

func TestCheckoutOfflineQueuesUntilSync(t *testing.T) {
	h := newCLIHarness(t, false)

	out, err := h.run(t, "checkout", "-f", h.cartFile(t, twoBags))
	require.NoError(t, err)
	assert.Contains(t, out, "PENDING SYNC")
	assert.Contains(t, out, "Queued as #1")
	assert.Empty(t, h.fake.Sales())

	out, err = h.run(t, "queue", "count", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data queueCount `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.Queued)

	_, err = h.run(t, "sync")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	h.signal.Set(true)
	out, err = h.run(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced 1 of 1 queued sales")
	assert.Contains(t, out, "Remaining in queue: 0")
	require.Len(t, h.fake.Sales(), 1)
	assert.Equal(t, int64(464), h.fake.Sales()[0].Total)
}

func TestQueueListFormats(t *testing.T) {
	h := newCLIHarness(t, false)
	_, err := h.run(t, "checkout", "-f", h.cartFile(t, twoBags+"customer: Wanjiru\n"), "--payment", "credit")
	require.NoError(t, err)

	out, err := h.run(t, "queue", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "credit")
	assert.Contains(t, out, "4.64")
	assert.Contains(t, out, "Wanjiru")

	out, err = h.run(t, "queue", "list", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "status: ok\n")
	assert.Contains(t, out, "payment_method: credit")
	assert.Contains(t, out, "queued_total: 464")

	out, err = h.run(t, "queue", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Queue #:")

	_, err = h.run(t, "queue", "show", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no queued sale with id 9")
}

func TestCheckoutRejectsInvalidCart(t *testing.T) {
	h := newCLIHarness(t, true)

	tests := []struct {
		name string
		cart string
		args []string
	}{
		{name: "below cost", cart: "lines:\n  - sku: FL-2KG\n    unit_price: \"1.00\"\n"},
		{name: "unknown sku", cart: "lines:\n  - sku: NOPE\n"},
		{name: "over stock", cart: "lines:\n  - sku: FL-2KG\n    quantity: 50\n"},
		{name: "credit without customer", cart: twoBags, args: []string{"--payment", "credit"}},
		{name: "empty cart", cart: "lines: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"checkout", "-f", h.cartFile(t, tt.cart)}, tt.args...)
			out, err := h.run(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error [VALIDATION]")
		})
	}
	assert.Empty(t, h.fake.Sales())
}

func TestCheckoutMissingCartFile(t *testing.T) {
	h := newCLIHarness(t, true)

	_, err := h.run(t, "checkout", "-f", filepath.Join(h.dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCreditPayThenReturn(t *testing.T) {
	h := newCLIHarness(t, true)
	_, err := h.run(t, "checkout", "-f", h.cartFile(t, twoBags+"customer: Wanjiru\n"), "--payment", "credit")
	require.NoError(t, err)

	credits := h.fake.CreditRecords()
	require.Len(t, credits, 1)
	id := credits[0].ID.String()
	assert.Equal(t, int64(464), credits[0].TotalOwed)

	out, err := h.run(t, "credit", "pay", id, "2.00")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "Balance: 2.64")

	out, err = h.run(t, "credit", "return", id, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data creditReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, enum.CreditStatusReturned, resp.Data.Record.Status)

	p, _ := h.fake.Product(h.product.ID)
	assert.Equal(t, 20, p.Quantity)
	sale, _ := h.fake.Sale(credits[0].SaleID)
	assert.Equal(t, enum.SaleStatusVoided, sale.Status)

	_, err = h.run(t, "credit", "pay", id, "1.00")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCreditPayRejectsBadArguments(t *testing.T) {
	h := newCLIHarness(t, true)

	_, err := h.run(t, "credit", "pay", "not-a-uuid", "1.00")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = h.run(t, "credit", "pay", uuid.NewString(), "1.005")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRefreshReportsCounts(t *testing.T) {
	h := newCLIHarness(t, true)

	out, err := h.run(t, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "products")
	assert.Contains(t, out, "profiles")

	h.signal.Set(false)
	_, err = h.run(t, "refresh")
	require.Error(t, err)
}
