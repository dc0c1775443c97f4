package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/investify-pos/internal/domain/enum"
	"gorm.io/gorm"
)

// CashBoxEntry records money entering the till.
type CashBoxEntry struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"sale_id"`
	ActorID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"actor_id"`
	Amount    int64              `gorm:"not null" json:"amount"` // Stored in cents
	Type      enum.CashEntryType `gorm:"not null;default:0" json:"type"`
	Reference *string            `gorm:"size:255;uniqueIndex" json:"reference,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func (c *CashBoxEntry) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CashBoxEntry) TableName() string {
	return "cash_box_entries"
}

// CreditRecord tracks the amount a customer owes for a credit sale.
type CreditRecord struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	SaleID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"sale_id"`
	CustomerName string            `gorm:"size:255;not null" json:"customer_name"`
	TotalOwed    int64             `gorm:"not null" json:"total_owed"`
	AmountPaid   int64             `gorm:"not null;default:0" json:"amount_paid"`
	Balance      int64             `gorm:"not null" json:"balance"`
	Status       enum.CreditStatus `gorm:"not null;default:0;index" json:"status"`
	PaidAt       *time.Time        `json:"paid_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	Sale Sale `gorm:"foreignKey:SaleID" json:"-"`
}

func (c *CreditRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CreditRecord) TableName() string {
	return "credit_records"
}
