// Package ledger reads internal orders from the upstream sales ledger. The
// ledger belongs to the storefront; this package only ever selects from it.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dispatch/internal/adapters/out/itemsummary"
	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"

	"github.com/lib/pq"
)

// Config names the upstream table and the status values that mean
// "ready for dispatch" and "canceled". The table must expose the columns
// reference, customer_name, customer_phone, address, memo, status and
// item_summary.
type Config struct {
	Table          string
	ReadyStatus    string
	CanceledStatus string
}

// Reader implements ports.OrderFeed for the internal intake path.
type Reader struct {
	db    *sql.DB
	query string
	cfg   Config
}

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}
	return db, nil
}

func NewReader(db *sql.DB, cfg Config) (*Reader, error) {
	cfg.Table = strings.TrimSpace(cfg.Table)
	if cfg.Table == "" {
		return nil, errs.NewValueIsRequiredError("ledger table")
	}
	if cfg.ReadyStatus == "" {
		return nil, errs.NewValueIsRequiredError("ledger ready status")
	}
	if cfg.CanceledStatus == "" {
		return nil, errs.NewValueIsRequiredError("ledger canceled status")
	}

	query := fmt.Sprintf(`
		SELECT
			reference,
			customer_name,
			customer_phone,
			address,
			memo,
			item_summary
		FROM %s
		WHERE status = $1
		ORDER BY reference`, quoteTable(cfg.Table))

	return &Reader{db: db, query: query, cfg: cfg}, nil
}

func (r *Reader) Source() task.Source {
	return task.SourceInternal
}

func (r *Reader) ReadyOrders(ctx context.Context) ([]feed.Order, error) {
	return r.read(ctx, r.cfg.ReadyStatus, feed.StatusReadyForDispatch)
}

func (r *Reader) CanceledOrders(ctx context.Context) ([]feed.Order, error) {
	return r.read(ctx, r.cfg.CanceledStatus, feed.StatusCanceled)
}

func (r *Reader) read(ctx context.Context, upstreamStatus string, status feed.Status) ([]feed.Order, error) {
	rows, err := r.db.QueryContext(ctx, r.query, upstreamStatus)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	orders := make([]feed.Order, 0)
	for rows.Next() {
		var (
			reference, name, address string
			phone, memo, summary     sql.NullString
		)
		if err = rows.Scan(&reference, &name, &phone, &address, &memo, &summary); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}

		o := feed.Order{
			Reference: strings.TrimSpace(reference),
			Recipient: task.Recipient{
				Name:    strings.TrimSpace(name),
				Phone:   strings.TrimSpace(phone.String),
				Address: strings.TrimSpace(address),
				Memo:    strings.TrimSpace(memo.String),
			},
			Status: status,
			Source: task.SourceInternal,
		}
		if status == feed.StatusReadyForDispatch {
			o.Blocks, o.Issues = itemsummary.Parse(summary.String)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	return orders, nil
}

// quoteTable quotes each part of an optionally schema-qualified name.
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
