package notification

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindOrderConfirmation Kind = "order_confirmation"
	KindOrderStatus       Kind = "order_status"
	KindPasswordReset     Kind = "password_reset"
)

type Item struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Event はメール送信のきっかけ（Kafkaにもこの形でJSONで流す）
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	To         string    `json:"to"`
	UserName   string    `json:"userName,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`

	OrderID         int64           `json:"orderId,omitempty"`
	Status          string          `json:"status,omitempty"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	Items           []Item          `json:"items,omitempty"`

	ResetToken string `json:"resetToken,omitempty"`
}

func NewEvent(kind Kind, to string) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		To:         to,
		OccurredAt: time.Now().UTC(),
	}
}

// Key はパーティションキー（同じ注文のイベントは同じパーティションへ）
func (e Event) Key() string {
	if e.OrderID > 0 {
		return "order-" + strconv.FormatInt(e.OrderID, 10)
	}
	return e.To
}

func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Kind == "" || ev.To == "" {
		return Event{}, fmt.Errorf("decode event: kind and to are required")
	}
	return ev, nil
}
