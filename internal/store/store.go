// Package store persists orders and site settings and feeds live snapshots
// to subscribers. Two interchangeable backends exist: a Postgres-backed
// remote store and a local file-backed simulation. The backend is selected
// once at startup by Open and never revisited.
package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/altamedia51-bot/LaundryMate/internal/domain"
)

type ErrNotFound string

func (e ErrNotFound) Error() string { return string(e) + " not found" }

type ErrBackendUnavailable string

func (e ErrBackendUnavailable) Error() string { return string(e) }

// OrderStore is a dumb writer: it does not validate lifecycle transitions.
// Snapshots delivered to subscribers are ordered newest-first by CreatedAt.
type OrderStore interface {
	// CreateOrder assigns the ID and CreatedAt. The new order is visible
	// to reads and delivered at the head of all active subscriptions
	// before CreateOrder returns to same-process callers.
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (string, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error

	// SubscribeOrders emits the full current snapshot immediately and
	// again on every change. The returned disposer stops further
	// deliveries and releases the underlying listener.
	SubscribeOrders(fn func([]domain.Order)) (cancel func())
	SubscribeCustomerOrders(customerID string, fn func([]domain.Order)) (cancel func())
}

type SettingsStore interface {
	Settings(ctx context.Context) (domain.SiteSettings, error)
	UpdateSettings(ctx context.Context, settings domain.SiteSettings) error
	SubscribeSettings(fn func(domain.SiteSettings)) (cancel func())
}

type Store interface {
	OrderStore
	SettingsStore
	Close() error
}

// Open picks the backend from the database URL. A blank or placeholder URL
// selects the local simulation; an unreachable database logs the fault and
// degrades to local mode rather than surfacing it to the user.
func Open(databaseURL, dataDir string, logger *slog.Logger) (Store, error) {
	dsn := strings.TrimSpace(databaseURL)
	if dsn == "" || strings.Contains(dsn, "PLACEHOLDER") {
		logger.Warn("database url absent or placeholder, running in local mode", "dataDir", dataDir)
		return NewLocal(dataDir, logger)
	}
	pg, err := NewPostgres(dsn, logger)
	if err != nil {
		logger.Error("postgres unreachable, falling back to local mode", "err", err)
		return NewLocal(dataDir, logger)
	}
	logger.Info("store running in cloud mode")
	return pg, nil
}

// newOrderID builds a short human-readable order reference.
func newOrderID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return "ORD-" + strings.ToUpper(hex.EncodeToString(b))[:6]
}
