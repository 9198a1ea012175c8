package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/altamedia51-bot/LaundryMate/internal/domain"
)

// Blob names under the data directory. The order list is one JSON array and
// the settings one JSON object, mirroring the layout the store would use in
// any other same-device persistence.
const (
	ordersBlob   = "mock_orders.json"
	settingsBlob = "site_settings.json"
)

// Local is the local-simulation backend. "Realtime" is simulated by
// re-reading the blobs and broadcasting to every same-process subscriber on
// each write; cross-process propagation is best-effort only.
type Local struct {
	dir    string
	logger *slog.Logger
	feed   *feed

	mu sync.Mutex // serializes blob reads and writes
}

func NewLocal(dir string, logger *slog.Logger) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Local{dir: dir, logger: logger, feed: newFeed()}, nil
}

func (l *Local) Close() error { return nil }

func (l *Local) CreateOrder(_ context.Context, draft domain.OrderDraft) (string, error) {
	l.mu.Lock()
	orders := l.loadOrders()
	order := domain.Order{
		ID:            newOrderID(),
		CustomerID:    draft.CustomerID,
		CustomerName:  draft.CustomerName,
		Status:        draft.Status,
		PaymentStatus: draft.PaymentStatus,
		PaymentMethod: draft.PaymentMethod,
		Items:         draft.Items,
		TotalPrice:    draft.TotalPrice,
		Notes:         draft.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	// prepend keeps the stored blob newest-first
	orders = append([]domain.Order{order}, orders...)
	if err := l.saveOrders(orders); err != nil {
		l.mu.Unlock()
		return "", err
	}
	l.mu.Unlock()

	l.feed.publishOrders(orders)
	return order.ID, nil
}

func (l *Local) GetOrder(_ context.Context, id string) (domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range l.loadOrders() {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, ErrNotFound("order")
}

func (l *Local) ListOrders(_ context.Context) ([]domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadOrders(), nil
}

func (l *Local) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	return l.mutateOrder(id, func(o *domain.Order) { o.Status = status })
}

func (l *Local) UpdatePaymentStatus(_ context.Context, id string, status domain.PaymentStatus) error {
	return l.mutateOrder(id, func(o *domain.Order) { o.PaymentStatus = status })
}

func (l *Local) mutateOrder(id string, mutate func(*domain.Order)) error {
	l.mu.Lock()
	orders := l.loadOrders()
	found := false
	for i := range orders {
		if orders[i].ID == id {
			mutate(&orders[i])
			found = true
			break
		}
	}
	if !found {
		l.mu.Unlock()
		return ErrNotFound("order")
	}
	if err := l.saveOrders(orders); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	l.feed.publishOrders(orders)
	return nil
}

func (l *Local) SubscribeOrders(fn func([]domain.Order)) func() {
	l.mu.Lock()
	orders := l.loadOrders()
	l.mu.Unlock()
	return l.feed.subscribeOrders("", fn, orders)
}

func (l *Local) SubscribeCustomerOrders(customerID string, fn func([]domain.Order)) func() {
	l.mu.Lock()
	orders := l.loadOrders()
	l.mu.Unlock()
	return l.feed.subscribeOrders(customerID, fn, orders)
}

func (l *Local) Settings(_ context.Context) (domain.SiteSettings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadSettings(), nil
}

func (l *Local) UpdateSettings(_ context.Context, settings domain.SiteSettings) error {
	l.mu.Lock()
	if err := l.saveBlob(settingsBlob, settings); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	l.feed.publishSettings(settings)
	return nil
}

func (l *Local) SubscribeSettings(fn func(domain.SiteSettings)) func() {
	l.mu.Lock()
	settings := l.loadSettings()
	l.mu.Unlock()
	return l.feed.subscribeSettings(fn, settings)
}

func (l *Local) loadOrders() []domain.Order {
	raw, err := os.ReadFile(filepath.Join(l.dir, ordersBlob))
	if err != nil {
		return nil
	}
	var orders []domain.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		l.logger.Error("orders blob corrupt, treating as empty", "err", err)
		return nil
	}
	return orders
}

func (l *Local) loadSettings() domain.SiteSettings {
	raw, err := os.ReadFile(filepath.Join(l.dir, settingsBlob))
	if err != nil {
		return domain.DefaultSiteSettings()
	}
	var settings domain.SiteSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		l.logger.Error("settings blob corrupt, using defaults", "err", err)
		return domain.DefaultSiteSettings()
	}
	return settings
}

func (l *Local) saveOrders(orders []domain.Order) error {
	return l.saveBlob(ordersBlob, orders)
}

func (l *Local) saveBlob(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, name), raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
