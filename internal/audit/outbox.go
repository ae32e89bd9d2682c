package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kinfolk/pkg/platform/tx"
)

// Outbox stores events in Postgres for the Relay to forward. When ctx holds
// a transaction the row commits or rolls back with it.
type Outbox struct {
	db *sql.DB
}

func NewOutbox(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (o *Outbox) execer(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return o.db
}

func (o *Outbox) Emit(ctx context.Context, e Event) error {
	e = Enrich(ctx, e)
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	_, err = o.execer(ctx).ExecContext(ctx,
		`INSERT INTO audit_outbox (action, subject, payload, created_at) VALUES ($1, $2, $3, $4)`,
		string(e.Action), e.Subject, payload, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit outbox row: %w", err)
	}
	return nil
}

// Close is a no-op; the database handle belongs to the caller.
func (o *Outbox) Close(context.Context) error {
	return nil
}

// Producer delivers one event and reports whether the broker accepted it.
type Producer interface {
	PublishSync(ctx context.Context, e Event) error
}

const (
	DefaultRelayInterval = time.Second
	DefaultRelayBatch    = 100
)

// Relay forwards pending outbox rows in insertion order. Rows are locked
// with SKIP LOCKED so several server replicas can relay concurrently.
type Relay struct {
	db       *sql.DB
	producer Producer
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

type RelayOption func(*Relay)

func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithRelayInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithRelayBatch(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func NewRelay(db *sql.DB, producer Producer, opts ...RelayOption) *Relay {
	r := &Relay{
		db:       db,
		producer: producer,
		logger:   slog.Default(),
		interval: DefaultRelayInterval,
		batch:    DefaultRelayBatch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drains the outbox every interval until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				n, err := r.Drain(ctx)
				if err != nil {
					r.logger.WarnContext(ctx, "audit outbox relay stalled", "error", err)
					break
				}
				if n < r.batch {
					break
				}
			}
		}
	}
}

// Drain forwards at most one batch and returns how many rows it published.
// It stops at the first delivery failure so later events never overtake
// earlier ones.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	rows, err := sqlTx.QueryContext(ctx,
		`SELECT id, payload FROM audit_outbox
		 WHERE published_at IS NULL
		 ORDER BY id
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`, r.batch)
	if err != nil {
		return 0, fmt.Errorf("select outbox rows: %w", err)
	}
	type pending struct {
		id    int64
		event Event
	}
	var batch []pending
	for rows.Next() {
		var (
			p       pending
			payload []byte
		)
		if err := rows.Scan(&p.id, &payload); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox row: %w", err)
		}
		if err := json.Unmarshal(payload, &p.event); err != nil {
			rows.Close()
			return 0, fmt.Errorf("decode outbox row %d: %w", p.id, err)
		}
		batch = append(batch, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox rows: %w", err)
	}

	published := 0
	var deliveryErr error
	for _, p := range batch {
		if err := r.producer.PublishSync(ctx, p.event); err != nil {
			deliveryErr = fmt.Errorf("publish outbox row %d: %w", p.id, err)
			break
		}
		if _, err := sqlTx.ExecContext(ctx,
			`UPDATE audit_outbox SET published_at = now() WHERE id = $1`, p.id); err != nil {
			return 0, fmt.Errorf("mark outbox row %d: %w", p.id, err)
		}
		published++
	}
	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox tx: %w", err)
	}
	return published, deliveryErr
}
