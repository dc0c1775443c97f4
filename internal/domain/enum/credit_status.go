package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CreditStatus is the state of a credit record
type CreditStatus int

const (
	CreditStatusPending  CreditStatus = 0
	CreditStatusPaid     CreditStatus = 1
	CreditStatusReturned CreditStatus = 2
)

var creditStatusNames = [...]string{"pending", "paid", "returned"}

func (s CreditStatus) String() string {
	if int(s) < 0 || int(s) >= len(creditStatusNames) {
		return "pending"
	}
	return creditStatusNames[s]
}

func ParseCreditStatus(s string) (CreditStatus, error) {
	for i, name := range creditStatusNames {
		if name == s {
			return CreditStatus(i), nil
		}
	}
	return CreditStatusPending, fmt.Errorf("unknown credit status %q", s)
}

// IsTerminal reports whether no further transitions are allowed.
func (s CreditStatus) IsTerminal() bool {
	return s == CreditStatusPaid || s == CreditStatusReturned
}

func (s CreditStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CreditStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CreditStatus(i)
		return nil
	}
	v, err := ParseCreditStatus(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s CreditStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *CreditStatus) Scan(value interface{}) error {
	if value == nil {
		*s = CreditStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = CreditStatus(v)
	case int:
		*s = CreditStatus(v)
	}
	return nil
}
