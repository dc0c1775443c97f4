package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CashEntryType classifies a cash box movement
type CashEntryType int

const (
	CashEntrySale          CashEntryType = 0
	CashEntryCreditPayment CashEntryType = 1
)

var cashEntryTypeNames = [...]string{"sale", "credit_payment"}

func (t CashEntryType) String() string {
	if int(t) < 0 || int(t) >= len(cashEntryTypeNames) {
		return "sale"
	}
	return cashEntryTypeNames[t]
}

func ParseCashEntryType(s string) (CashEntryType, error) {
	for i, name := range cashEntryTypeNames {
		if name == s {
			return CashEntryType(i), nil
		}
	}
	return CashEntrySale, fmt.Errorf("unknown cash entry type %q", s)
}

func (t CashEntryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *CashEntryType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = CashEntryType(i)
		return nil
	}
	v, err := ParseCashEntryType(str)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t CashEntryType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *CashEntryType) Scan(value interface{}) error {
	if value == nil {
		*t = CashEntrySale
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = CashEntryType(v)
	case int:
		*t = CashEntryType(v)
	}
	return nil
}
