package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/altamedia51-bot/LaundryMate/internal/clock"
	"github.com/altamedia51-bot/LaundryMate/internal/domain"
	"github.com/altamedia51-bot/LaundryMate/internal/gateway"
	"github.com/altamedia51-bot/LaundryMate/internal/store"
)

// Selection is one cart line as submitted by the customer.
type Selection struct {
	ServiceID string `json:"serviceId"`
	Quantity  int    `json:"quantity"`
}

type OrderService struct {
	Store   store.Store
	Gateway gateway.Gateway
	Clock   clock.Clock
	// ConfirmDelay is how long the simulated webhook waits before
	// confirming payment. Defaults to 3s.
	ConfirmDelay time.Duration
	Logger       *slog.Logger
}

// PlaceOrder runs the order-creation workflow: validate the selections,
// price them against the current catalog, persist the order in
// PENDING/UNPAID, then initiate a gateway transaction. A gateway failure
// aborts the flow with ErrGateway; the already-created order stays behind in
// PENDING/UNPAID and can be settled in cash.
func (s *OrderService) PlaceOrder(ctx context.Context, customer domain.User, selections []Selection, notes string) (*PaymentSession, error) {
	settings, err := s.Store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var items []domain.OrderItem
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			continue
		}
		svc, ok := settings.ServiceByID(sel.ServiceID)
		if !ok {
			s.Logger.Warn("selection references unknown service", "serviceId", sel.ServiceID)
		}
		items = append(items, domain.OrderItem{
			ServiceID: sel.ServiceID,
			Quantity:  sel.Quantity,
			Subtotal:  svc.Price * sel.Quantity,
		})
	}
	if len(items) == 0 {
		return nil, ErrEmptySelection("pilih minimal satu layanan")
	}

	method := domain.PaymentMethodCash
	if settings.Payment.IsActive {
		method = settings.Payment.Provider
	}
	draft := domain.OrderDraft{
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentUnpaid,
		PaymentMethod: method,
		Items:         items,
		TotalPrice:    lo.SumBy(items, func(it domain.OrderItem) int { return it.Subtotal }),
		Notes:         notes,
	}
	id, err := s.Store.CreateOrder(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read back order %s: %w", id, err)
	}

	paymentURL, err := s.Gateway.CreateTransaction(ctx, order)
	if err != nil {
		s.Logger.Error("payment transaction failed", "order", id, "err", err)
		return nil, ErrGateway("gagal membuat transaksi pembayaran")
	}
	order.PaymentURL = paymentURL

	return s.newSession(order), nil
}

// UpdateStatus validates the status value and writes it. Transitions are
// deliberately unrestricted: staff may reassign an order to any stage,
// including backwards. The store rejects unknown order ids.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	parsed, err := domain.ParseOrderStatus(status)
	if err != nil {
		return err
	}
	return s.Store.UpdateOrderStatus(ctx, orderID, parsed)
}

// RevenueSummary totals paid and outstanding order values for the admin
// dashboard.
func RevenueSummary(orders []domain.Order) (paid, unpaid int) {
	for _, o := range orders {
		if o.PaymentStatus == domain.PaymentPaid {
			paid += o.TotalPrice
		} else {
			unpaid += o.TotalPrice
		}
	}
	return paid, unpaid
}

type ErrEmptySelection string

func (e ErrEmptySelection) Error() string { return string(e) }

type ErrGateway string

func (e ErrGateway) Error() string { return string(e) }

func randomID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
