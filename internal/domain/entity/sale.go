package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is a committed sale header. All money fields are cents.
type Sale struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptNumber  string             `gorm:"size:50;uniqueIndex;not null" json:"receipt_number"`
	IdempotencyKey string             `gorm:"size:64;uniqueIndex;not null" json:"idempotency_key"`
	ActorID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"actor_id"`
	CustomerID     *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName   string             `gorm:"size:255" json:"customer_name,omitempty"`
	Subtotal       int64              `gorm:"not null;default:0" json:"subtotal"`
	TaxRate        decimal.Decimal    `gorm:"type:numeric(7,3);not null;default:0" json:"tax_rate"`
	TaxAmount      int64              `gorm:"not null;default:0" json:"tax_amount"`
	Discount       int64              `gorm:"not null;default:0" json:"discount"`
	Total          int64              `gorm:"not null;default:0" json:"total"`
	Profit         int64              `gorm:"not null;default:0" json:"profit"`
	PaymentMethod  enum.PaymentMethod `gorm:"not null;default:0" json:"payment_method"`
	Status         enum.SaleStatus    `gorm:"not null;default:0;index" json:"status"`
	AttributedTo   *uuid.UUID         `gorm:"type:uuid;index" json:"attributed_to,omitempty"`
	AttributedName string             `gorm:"size:255" json:"attributed_name,omitempty"`
	CommissionRate decimal.Decimal    `gorm:"type:numeric(7,3);not null;default:0" json:"commission_rate"`
	Commission     int64              `gorm:"not null;default:0" json:"commission"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`

	// Relationships
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"-"`
	Items    []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line of a sale with the prices in force at the time.
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string    `gorm:"size:255;not null" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	BuyingPrice int64     `gorm:"not null" json:"buying_price"`
	Total       int64     `gorm:"not null" json:"total"`
	Profit      int64     `gorm:"not null" json:"profit"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (SaleItem) TableName() string {
	return "sale_items"
}
