// Package receipt lays out sale receipts and provisional slips.
package receipt

import (
	"fmt"
	"time"

	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/sangkips/investify-pos/internal/pos/cart"
	"github.com/sangkips/investify-pos/internal/pos/localstore"
	"github.com/sangkips/investify-pos/pkg/printer"
	"github.com/shopspring/decimal"
)

// Header is the shop identity printed at the top.
type Header struct {
	StoreName string
	Address   string
	Phone     string
}

type Line struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Total     int64  `json:"total"`
}

// Receipt is a laid out sale. A provisional receipt belongs to a queued
// sale and carries its queue id instead of a receipt number.
type Receipt struct {
	Header      Header             `json:"-"`
	Number      string             `json:"receipt_number,omitempty"`
	Provisional bool               `json:"provisional"`
	QueueID     int64              `json:"queue_id,omitempty"`
	Date        time.Time          `json:"date"`
	Cashier     string             `json:"cashier,omitempty"`
	Customer    string             `json:"customer,omitempty"`
	Payment     enum.PaymentMethod `json:"payment_method"`
	SoldFor     string             `json:"sold_for,omitempty"`
	Lines       []Line             `json:"lines"`
	TaxRate     decimal.Decimal    `json:"tax_rate"`
	Subtotal    int64              `json:"subtotal"`
	TaxAmount   int64              `json:"tax_amount"`
	Discount    int64              `json:"discount"`
	Total       int64              `json:"total"`
}

// Build lays out a committed sale.
func Build(h Header, sale contract.Sale, items []contract.SaleItemInput) Receipt {
	r := Receipt{
		Header:    h,
		Number:    sale.ReceiptNumber,
		Date:      sale.CreatedAt,
		Customer:  sale.CustomerName,
		Payment:   sale.PaymentMethod,
		TaxRate:   sale.TaxRate,
		Subtotal:  sale.Subtotal,
		TaxAmount: sale.TaxAmount,
		Discount:  sale.Discount,
		Total:     sale.Total,
	}
	if sale.Attribution != nil {
		r.SoldFor = sale.Attribution.Name
	}
	for _, it := range items {
		r.Lines = append(r.Lines, Line{Name: it.ProductName, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total})
	}
	return r
}

// Provisional lays out a slip for a sale waiting in the offline queue.
func Provisional(h Header, p localstore.PendingSale) Receipt {
	t := p.Snapshot.Totals()
	r := Receipt{
		Header:      h,
		Provisional: true,
		QueueID:     p.ID,
		Date:        p.CreatedAt,
		Customer:    p.Snapshot.CustomerName,
		Payment:     p.PaymentMethod,
		TaxRate:     p.Snapshot.TaxRate,
		Subtotal:    t.Subtotal,
		TaxAmount:   t.TaxAmount,
		Discount:    t.Discount,
		Total:       t.Total,
	}
	if p.Snapshot.Attribution != nil {
		r.SoldFor = p.Snapshot.Attribution.Name
	}
	r.Lines = linesOf(p.Snapshot.Lines)
	return r
}

func linesOf(lines []cart.SnapshotLine) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice, Total: l.Total()})
	}
	return out
}

// Text renders r as plain text width characters wide.
func (r Receipt) Text(width int) string {
	doc := printer.NewTextDocument(width)
	r.render(doc)
	return doc.String()
}

// ESCPOS renders r for a thermal printer and cuts the paper.
func (r Receipt) ESCPOS(width int) []byte {
	doc := printer.NewDocument(width)
	r.render(doc)
	doc.FeedLines(3).PartialCut()
	return doc.Bytes()
}

func (r Receipt) render(doc *printer.Document) {
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)
	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	if r.Provisional {
		doc.SetBold(true).Text("PENDING SYNC").SetBold(false)
	}
	doc.SetAlign(printer.AlignLeft).Separator('-')

	if r.Provisional {
		doc.KeyValue("Queue #:", fmt.Sprint(r.QueueID))
	} else {
		doc.KeyValue("Receipt:", r.Number)
	}
	doc.KeyValue("Date:", r.Date.Format("2006-01-02 15:04"))
	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	doc.KeyValue("Payment:", r.Payment.String())
	if r.SoldFor != "" {
		doc.KeyValue("Sold for:", r.SoldFor)
	}
	doc.Separator('-')

	for _, l := range r.Lines {
		doc.ItemLine(l.Quantity, l.Name, Money(l.Total))
		if l.Quantity > 1 {
			doc.TextF("  @ %s each", Money(l.UnitPrice))
		}
	}
	doc.Separator('-')

	doc.KeyValue("Subtotal:", Money(r.Subtotal))
	if r.TaxAmount > 0 {
		doc.KeyValue(fmt.Sprintf("Tax (%s%%):", r.TaxRate.String()), Money(r.TaxAmount))
	}
	if r.Discount > 0 {
		doc.KeyValue("Discount:", "-"+Money(r.Discount))
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", Money(r.Total)).
		SetBold(false)
	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).LineFeed()
	if r.Provisional {
		doc.Text("Receipt number issued on sync")
	}
	doc.Text("Thank you for your business!").
		SetAlign(printer.AlignLeft)
}

// Money formats cents as 1,234.50.
func Money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := fmt.Sprint(cents / 100)
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}
	return fmt.Sprintf("%s%s.%02d", sign, whole, cents%100)
}
