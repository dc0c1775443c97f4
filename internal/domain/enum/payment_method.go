package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentMethod is how a sale was tendered
type PaymentMethod int

const (
	PaymentMethodCash   PaymentMethod = 0
	PaymentMethodCredit PaymentMethod = 1
	PaymentMethodMobile PaymentMethod = 2
	PaymentMethodCard   PaymentMethod = 3
)

var paymentMethodNames = [...]string{"cash", "credit", "mobile", "card"}

func (p PaymentMethod) String() string {
	if int(p) < 0 || int(p) >= len(paymentMethodNames) {
		return "cash"
	}
	return paymentMethodNames[p]
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for i, name := range paymentMethodNames {
		if name == s {
			return PaymentMethod(i), nil
		}
	}
	return PaymentMethodCash, fmt.Errorf("unknown payment method %q", s)
}

// SaleStatus is the status a fresh sale paid this way starts in.
func (p PaymentMethod) SaleStatus() SaleStatus {
	if p == PaymentMethodCredit {
		return SaleStatusCredit
	}
	return SaleStatusCompleted
}

func (p PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*p = PaymentMethod(i)
		return nil
	}
	v, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalYAML and UnmarshalYAML let cart files spell methods by name.
func (p PaymentMethod) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *PaymentMethod) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	v, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p PaymentMethod) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*p = PaymentMethod(v)
	case int:
		*p = PaymentMethod(v)
	}
	return nil
}
