package utils

import (
	"fmt"
	"time"
)

// ReceiptDay is the sequence key of the day t falls on.
func ReceiptDay(t time.Time) string {
	return t.Format("20060102")
}

// FormatReceiptNumber renders RCP-YYYYMMDD-NNNN. Values above 9999 keep
// their full width.
func FormatReceiptNumber(day string, seq int64) string {
	return fmt.Sprintf("RCP-%s-%04d", day, seq)
}
