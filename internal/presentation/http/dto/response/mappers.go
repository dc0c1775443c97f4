package response

import (
	"github.com/sangkips/investify-pos/internal/contract"
	"github.com/sangkips/investify-pos/internal/domain/entity"
)

// Mappers from store-of-record entities to the records terminals decode.

func Sale(s entity.Sale) contract.Sale {
	out := contract.Sale{
		ID:             s.ID,
		ReceiptNumber:  s.ReceiptNumber,
		IdempotencyKey: s.IdempotencyKey,
		ActorID:        s.ActorID,
		CustomerID:     s.CustomerID,
		CustomerName:   s.CustomerName,
		Subtotal:       s.Subtotal,
		TaxRate:        s.TaxRate,
		TaxAmount:      s.TaxAmount,
		Discount:       s.Discount,
		Total:          s.Total,
		Profit:         s.Profit,
		PaymentMethod:  s.PaymentMethod,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
	}
	if s.AttributedTo != nil {
		out.Attribution = &contract.Attribution{
			ProfileID:      *s.AttributedTo,
			Name:           s.AttributedName,
			CommissionRate: s.CommissionRate,
			Commission:     s.Commission,
		}
	}
	return out
}

func SaleItem(i entity.SaleItem) contract.SaleItem {
	return contract.SaleItem{
		ID: i.ID,
		SaleItemInput: contract.SaleItemInput{
			SaleID:      i.SaleID,
			ProductID:   i.ProductID,
			ProductName: i.ProductName,
			Quantity:    i.Quantity,
			UnitPrice:   i.UnitPrice,
			BuyingPrice: i.BuyingPrice,
			Total:       i.Total,
			Profit:      i.Profit,
		},
	}
}

func CashEntry(e entity.CashBoxEntry) contract.CashEntry {
	return contract.CashEntry{
		ID:        e.ID,
		SaleID:    e.SaleID,
		ActorID:   e.ActorID,
		Amount:    e.Amount,
		Type:      e.Type,
		CreatedAt: e.CreatedAt,
	}
}

func CreditRecord(c entity.CreditRecord) contract.CreditRecord {
	return contract.CreditRecord{
		ID:           c.ID,
		SaleID:       c.SaleID,
		CustomerName: c.CustomerName,
		TotalOwed:    c.TotalOwed,
		AmountPaid:   c.AmountPaid,
		Balance:      c.Balance,
		Status:       c.Status,
		PaidAt:       c.PaidAt,
		CreatedAt:    c.CreatedAt,
	}
}

func Product(p entity.Product) contract.Product {
	return contract.Product{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		CategoryID:    p.CategoryID,
		Quantity:      p.Quantity,
		QuantityAlert: p.QuantityAlert,
		BuyingPrice:   p.BuyingPrice,
		SellingPrice:  p.SellingPrice,
	}
}

func Category(c entity.Category) contract.Category {
	return contract.Category{ID: c.ID, Name: c.Name}
}

func Customer(c entity.Customer) contract.Customer {
	return contract.Customer{ID: c.ID, Name: c.Name, Phone: deref(c.Phone), Email: deref(c.Email)}
}

func Supplier(s entity.Supplier) contract.Supplier {
	return contract.Supplier{ID: s.ID, Name: s.Name, Phone: deref(s.Phone), Email: deref(s.Email)}
}

func Profile(u entity.User) contract.Profile {
	return contract.Profile{ID: u.ID, Name: u.FullName(), Email: u.Email, Roles: u.RoleNames()}
}

// List maps every element of in. A nil input yields an empty slice so the
// JSON data field is always an array.
func List[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
