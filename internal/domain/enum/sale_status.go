package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SaleStatus is the lifecycle state of a committed sale
type SaleStatus int

const (
	SaleStatusCompleted SaleStatus = 0
	SaleStatusCredit    SaleStatus = 1
	SaleStatusVoided    SaleStatus = 2
)

var saleStatusNames = [...]string{"completed", "credit", "voided"}

func (s SaleStatus) String() string {
	if int(s) < 0 || int(s) >= len(saleStatusNames) {
		return "completed"
	}
	return saleStatusNames[s]
}

// ParseSaleStatus maps a canonical name back to its status.
func ParseSaleStatus(s string) (SaleStatus, error) {
	for i, name := range saleStatusNames {
		if name == s {
			return SaleStatus(i), nil
		}
	}
	return SaleStatusCompleted, fmt.Errorf("unknown sale status %q", s)
}

// CanTransitionTo reports whether a sale may move from s to next.
// Voided is terminal; completed sales can only be voided.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case SaleStatusCredit:
		return next == SaleStatusCompleted || next == SaleStatusVoided
	case SaleStatusCompleted:
		return next == SaleStatusVoided
	}
	return false
}

func (s SaleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = SaleStatus(i)
		return nil
	}
	v, err := ParseSaleStatus(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s SaleStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	if value == nil {
		*s = SaleStatusCompleted
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = SaleStatus(v)
	case int:
		*s = SaleStatus(v)
	}
	return nil
}
