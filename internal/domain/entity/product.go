package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a sellable item. Quantity is changed only through stock
// movements and may go negative when terminals oversell.
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID    *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	SKU           string         `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Quantity      int            `gorm:"not null;default:0" json:"quantity"`
	QuantityAlert int            `gorm:"not null;default:0" json:"quantity_alert"`
	BuyingPrice   int64          `gorm:"not null;default:0" json:"buying_price"`  // cents
	SellingPrice  int64          `gorm:"not null;default:0" json:"selling_price"` // cents
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Category  *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Movements []StockMovement `gorm:"foreignKey:ProductID" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

// Category groups products on the terminal's product picker.
type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Category) TableName() string {
	return "categories"
}

// StockMovement is an applied stock adjustment. Reference is unique so a
// replayed adjustment is recognised and skipped.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Delta     int       `gorm:"not null" json:"delta"`
	Reference string    `gorm:"size:255;uniqueIndex;not null" json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
