package entity

import "time"

// ReceiptSequence holds the last receipt number issued for a day (YYYYMMDD).
type ReceiptSequence struct {
	Day       string `gorm:"primaryKey;size:8"`
	LastValue int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (ReceiptSequence) TableName() string {
	return "receipt_sequences"
}
