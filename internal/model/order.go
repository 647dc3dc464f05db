package model

import (
	"encoding/json"
	"time"
)

// Order is the checkout payload submitted to the remote order endpoint.
type Order struct {
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Phone   string      `json:"phone"`
	Address string      `json:"address"`
	Total   float64     `json:"total"`
	Items   []OrderItem `json:"items"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// Contact holds the checkout form fields.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CheckoutResponse is the remote reply to an order submission.
type CheckoutResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CheckoutStatusSuccess marks an accepted order submission.
const CheckoutStatusSuccess = "success"

// OrderSummary is an order as listed by the remote orders endpoint.
type OrderSummary struct {
	ID        string      `json:"_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Address   string      `json:"address"`
	Total     float64     `json:"total"`
	Items     []OrderItem `json:"items"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

// UnmarshalJSON tolerates string totals and missing or malformed timestamps.
func (o *OrderSummary) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID   json.RawMessage `json:"_id"`
		ID        json.RawMessage `json:"id"`
		Name      string          `json:"name"`
		Email     string          `json:"email"`
		Phone     json.RawMessage `json:"phone"`
		Address   string          `json:"address"`
		Total     json.RawMessage `json:"total"`
		Items     []OrderItem     `json:"items"`
		CreatedAt string          `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := flexibleID(raw.MongoID)
	if id == "" {
		id = flexibleID(raw.ID)
	}

	*o = OrderSummary{
		ID:      id,
		Name:    raw.Name,
		Email:   raw.Email,
		Phone:   flexibleID(raw.Phone),
		Address: raw.Address,
		Total:   CoerceAmount(raw.Total),
		Items:   raw.Items,
	}

	if raw.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, raw.CreatedAt); err == nil {
			o.CreatedAt = &ts
		}
	}
	return nil
}
