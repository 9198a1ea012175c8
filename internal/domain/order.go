package domain

import (
	"errors"
	"time"
)

// OrderStatus is the fulfillment stage of an order. The wire values are the
// Indonesian labels shown to customers.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPickedUp  OrderStatus = "DIJEMPUT"
	StatusWashing   OrderStatus = "DICUCI"
	StatusIroning   OrderStatus = "DISETRIKA"
	StatusReady     OrderStatus = "SIAP ANTAR"
	StatusCompleted OrderStatus = "SELESAI"
)

// statusSteps lists the lifecycle stages in fulfillment order, pending first.
var statusSteps = []OrderStatus{
	StatusPending,
	StatusPickedUp,
	StatusWashing,
	StatusIroning,
	StatusReady,
	StatusCompleted,
}

// OrderStatuses returns the lifecycle stages in fulfillment order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(statusSteps))
	copy(out, statusSteps)
	return out
}

var ErrInvalidStatus = errors.New("invalid order status")

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if status.StepIndex() < 0 {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// StepIndex returns the position of the status in the lifecycle sequence,
// or -1 if the value is not a known status.
func (s OrderStatus) StepIndex() int {
	for i, step := range statusSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// Progress reports the fulfillment fraction in [0,1] for display purposes.
// It is not a gating condition: staff may reassign status to any stage.
func (s OrderStatus) Progress() float64 {
	i := s.StepIndex()
	if i < 0 {
		return 0
	}
	return float64(i) / float64(len(statusSteps)-1)
}

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "PAID"
	PaymentUnpaid PaymentStatus = "UNPAID"
)

// PaymentMethodCash marks orders settled over the counter when no payment
// gateway is configured.
const PaymentMethodCash = "Tunai"

type OrderItem struct {
	ServiceID string `json:"serviceId"`
	Quantity  int    `json:"quantity"`
	Subtotal  int    `json:"subtotal"`
}

// Order is a customer's laundry request. ID and CreatedAt are assigned by the
// store at creation; Items and TotalPrice are immutable afterwards.
type Order struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customerId"`
	CustomerName  string        `json:"customerName"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
	Items         []OrderItem   `json:"items"`
	TotalPrice    int           `json:"totalPrice"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// OrderDraft is the order payload before the store assigns ID and CreatedAt.
type OrderDraft struct {
	CustomerID    string        `json:"customerId"`
	CustomerName  string        `json:"customerName"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	Items         []OrderItem   `json:"items"`
	TotalPrice    int           `json:"totalPrice"`
	Notes         string        `json:"notes,omitempty"`
}
