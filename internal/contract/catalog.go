package contract

import (
	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/pkg/apperror"
)

// Record is implemented by every cacheable entity.
type Record interface {
	Key() string
	Validate() error
}

type Product struct {
	ID            uuid.UUID  `json:"id"`
	SKU           string     `json:"sku"`
	Name          string     `json:"name"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	Quantity      int        `json:"quantity"`
	QuantityAlert int        `json:"quantity_alert"`
	BuyingPrice   int64      `json:"buying_price"`
	SellingPrice  int64      `json:"selling_price"`
}

func (p Product) Key() string { return p.ID.String() }

func (p Product) Validate() error {
	var errs []apperror.FieldError
	if p.ID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "id", Message: "is required"})
	}
	if p.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if p.BuyingPrice < 0 || p.SellingPrice < 0 {
		errs = append(errs, apperror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// LowStock reports whether the on-hand quantity reached the alert level.
func (p Product) LowStock() bool {
	return p.Quantity <= p.QuantityAlert
}

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (c Category) Key() string { return c.ID.String() }

func (c Category) Validate() error {
	return requireIdentity(c.ID, c.Name)
}

type Customer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone,omitempty"`
	Email string    `json:"email,omitempty"`
}

func (c Customer) Key() string { return c.ID.String() }

func (c Customer) Validate() error {
	return requireIdentity(c.ID, c.Name)
}

type Supplier struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone,omitempty"`
	Email string    `json:"email,omitempty"`
}

func (s Supplier) Key() string { return s.ID.String() }

func (s Supplier) Validate() error {
	return requireIdentity(s.ID, s.Name)
}

// Profile is a staff member. The authenticated profile is the actor of a sale.
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Roles []string  `json:"roles,omitempty"`
}

func (p Profile) Key() string { return p.ID.String() }

func (p Profile) Validate() error {
	return requireIdentity(p.ID, p.Name)
}

func requireIdentity(id uuid.UUID, name string) error {
	var errs []apperror.FieldError
	if id == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "id", Message: "is required"})
	}
	if name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
