package shopify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type priceRulePayload struct {
	Title            string `json:"title"`
	TargetType       string `json:"target_type"`
	TargetSelection  string `json:"target_selection"`
	AllocationMethod string `json:"allocation_method"`
	ValueType        string `json:"value_type"`
	Value            string `json:"value"`
	CustomerSel      string `json:"customer_selection"`
	StartsAt         string `json:"starts_at"`
}

type priceRuleRequest struct {
	PriceRule priceRulePayload `json:"price_rule"`
}

type priceRuleResponse struct {
	PriceRule struct {
		ID int64 `json:"id"`
	} `json:"price_rule"`
}

type discountCodePayload struct {
	Code string `json:"code"`
}

type discountCodeRequest struct {
	DiscountCode discountCodePayload `json:"discount_code"`
}

type discountCodeResponse struct {
	DiscountCode struct {
		ID int64 `json:"id"`
	} `json:"discount_code"`
}

// Money is a decimal amount the Admin API serializes as a string.
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*m = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid money value %q: %w", s, err)
		}
		*m = Money(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Money(f)
	return nil
}

// DiscountCode is a code applied to an order.
type DiscountCode struct {
	Code string `json:"code"`
}

// Order is the slice of a Shopify order the commission pipeline needs.
type Order struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	TotalPrice    Money          `json:"total_price"`
	Currency      string         `json:"currency"`
	DiscountCodes []DiscountCode `json:"discount_codes"`
	CreatedAt     time.Time      `json:"created_at"`
}

// OrderID is the stable string form used as the commission dedupe key.
func (o *Order) OrderID() string {
	return strconv.FormatInt(o.ID, 10)
}

type orderResponse struct {
	Order Order `json:"order"`
}

// ParseOrder decodes an order webhook payload.
func ParseOrder(body []byte) (*Order, error) {
	var o Order
	if err := json.Unmarshal(body, &o); err != nil {
		return nil, fmt.Errorf("failed to parse order payload: %w", err)
	}
	if o.ID == 0 {
		return nil, fmt.Errorf("order payload missing id")
	}
	return &o, nil
}
