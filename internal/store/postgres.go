package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/altamedia51-bot/LaundryMate/internal/domain"
)

const (
	ordersChannel   = "laundry_orders"
	settingsChannel = "laundry_settings"

	settingsKey = "global_config"
)

// Postgres is the cloud backend. Writes issue pg_notify so that every
// process listening on the channels re-reads and re-broadcasts; same-process
// subscribers additionally get the fresh snapshot synchronously on each
// write, before the notification round-trips through the database.
type Postgres struct {
	db       *sql.DB
	listener *pq.Listener
	logger   *slog.Logger
	feed     *feed
	done     chan struct{}
}

func NewPostgres(dsn string, logger *slog.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, ErrBackendUnavailable("postgres ping: " + err.Error())
	}
	p := &Postgres{
		db:     db,
		logger: logger,
		feed:   newFeed(),
		done:   make(chan struct{}),
	}
	if err := p.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	p.listener = pq.NewListener(dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("postgres listener event", "event", int(ev), "err", err)
		}
	})
	if err := p.listener.Listen(ordersChannel); err != nil {
		_ = p.listener.Close()
		_ = db.Close()
		return nil, fmt.Errorf("listen %s: %w", ordersChannel, err)
	}
	if err := p.listener.Listen(settingsChannel); err != nil {
		_ = p.listener.Close()
		_ = db.Close()
		return nil, fmt.Errorf("listen %s: %w", settingsChannel, err)
	}
	go p.listen()
	return p, nil
}

func (p *Postgres) init() error {
	_, err := p.db.Exec(`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		status TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		payment_method TEXT NOT NULL DEFAULT '',
		payment_url TEXT NOT NULL DEFAULT '',
		items TEXT NOT NULL,
		total_price INT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(`CREATE TABLE IF NOT EXISTS site_settings (
		key TEXT PRIMARY KEY,
		data TEXT NOT NULL
	);`)
	return err
}

func (p *Postgres) Close() error {
	close(p.done)
	_ = p.listener.Close()
	return p.db.Close()
}

// listen re-broadcasts snapshots when any process writes. A nil notification
// signals a reconnect, after which both snapshots may be stale.
func (p *Postgres) listen() {
	for {
		select {
		case <-p.done:
			return
		case n, ok := <-p.listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				p.broadcastOrders()
				p.broadcastSettings()
				continue
			}
			switch n.Channel {
			case ordersChannel:
				p.broadcastOrders()
			case settingsChannel:
				p.broadcastSettings()
			}
		}
	}
}

func (p *Postgres) broadcastOrders() {
	orders, err := p.ListOrders(context.Background())
	if err != nil {
		p.logger.Error("order snapshot query failed", "err", err)
		return
	}
	p.feed.publishOrders(orders)
}

func (p *Postgres) broadcastSettings() {
	settings, err := p.Settings(context.Background())
	if err != nil {
		p.logger.Error("settings snapshot query failed", "err", err)
		return
	}
	p.feed.publishSettings(settings)
}

func (p *Postgres) CreateOrder(ctx context.Context, draft domain.OrderDraft) (string, error) {
	items, err := json.Marshal(draft.Items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	id := newOrderID()
	_, err = p.db.ExecContext(ctx, `INSERT INTO orders
		(id, customer_id, customer_name, status, payment_status, payment_method, items, total_price, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		id, draft.CustomerID, draft.CustomerName, string(draft.Status), string(draft.PaymentStatus),
		draft.PaymentMethod, string(items), draft.TotalPrice, draft.Notes)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	p.notify(ctx, ordersChannel)
	p.broadcastOrders()
	return id, nil
}

func (p *Postgres) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	row := p.db.QueryRowContext(ctx, `SELECT id, customer_id, customer_name, status, payment_status,
		payment_method, payment_url, items, total_price, notes, created_at
		FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, ErrNotFound("order")
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (p *Postgres) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, customer_id, customer_name, status, payment_status,
		payment_method, payment_url, items, total_price, notes, created_at
		FROM orders ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return p.updateColumn(ctx, "status", id, string(status))
}

func (p *Postgres) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	return p.updateColumn(ctx, "payment_status", id, string(status))
}

func (p *Postgres) updateColumn(ctx context.Context, column, id, value string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE orders SET `+column+` = $2 WHERE id = $1`, id, value)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound("order")
	}
	p.notify(ctx, ordersChannel)
	p.broadcastOrders()
	return nil
}

func (p *Postgres) SubscribeOrders(fn func([]domain.Order)) func() {
	orders, err := p.ListOrders(context.Background())
	if err != nil {
		p.logger.Error("initial order snapshot failed", "err", err)
	}
	return p.feed.subscribeOrders("", fn, orders)
}

func (p *Postgres) SubscribeCustomerOrders(customerID string, fn func([]domain.Order)) func() {
	orders, err := p.ListOrders(context.Background())
	if err != nil {
		p.logger.Error("initial order snapshot failed", "err", err)
	}
	return p.feed.subscribeOrders(customerID, fn, orders)
}

func (p *Postgres) Settings(ctx context.Context) (domain.SiteSettings, error) {
	var raw string
	err := p.db.QueryRowContext(ctx, `SELECT data FROM site_settings WHERE key = $1`, settingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSiteSettings(), nil
	}
	if err != nil {
		return domain.SiteSettings{}, fmt.Errorf("get settings: %w", err)
	}
	var settings domain.SiteSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return domain.SiteSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

func (p *Postgres) UpdateSettings(ctx context.Context, settings domain.SiteSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO site_settings (key, data) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET data = $2`, settingsKey, string(raw))
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	p.notify(ctx, settingsChannel)
	p.feed.publishSettings(settings)
	return nil
}

func (p *Postgres) SubscribeSettings(fn func(domain.SiteSettings)) func() {
	settings, err := p.Settings(context.Background())
	if err != nil {
		p.logger.Error("initial settings snapshot failed", "err", err)
		settings = domain.DefaultSiteSettings()
	}
	return p.feed.subscribeSettings(fn, settings)
}

func (p *Postgres) notify(ctx context.Context, channel string) {
	if _, err := p.db.ExecContext(ctx, `SELECT pg_notify($1, '')`, channel); err != nil {
		p.logger.Warn("pg_notify failed", "channel", channel, "err", err)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	var items string
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, (*string)(&o.Status), (*string)(&o.PaymentStatus),
		&o.PaymentMethod, &o.PaymentURL, &items, &o.TotalPrice, &o.Notes, &o.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode items: %w", err)
	}
	return o, nil
}
