package output

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/chrisdamba/foodmarket/internal/accounting"
	"github.com/chrisdamba/foodmarket/internal/repositories"
)

const createInvoiceArchive = `CREATE TABLE IF NOT EXISTS invoice_archive (
	id TEXT PRIMARY KEY,
	restaurant_id TEXT NOT NULL,
	week TEXT NOT NULL,
	week_start TIMESTAMPTZ NOT NULL,
	week_end TIMESTAMPTZ NOT NULL,
	grace_deadline TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	order_count INTEGER NOT NULL,
	gross_revenue DOUBLE PRECISION NOT NULL,
	coupons_used DOUBLE PRECISION NOT NULL,
	net_commission DOUBLE PRECISION NOT NULL,
	pending_commission DOUBLE PRECISION NOT NULL,
	order_ids TEXT[] NOT NULL,
	archived_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertInvoice = `INSERT INTO invoice_archive (
	id, restaurant_id, week, week_start, week_end, grace_deadline, status,
	order_count, gross_revenue, coupons_used, net_commission, pending_commission, order_ids
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	order_count = EXCLUDED.order_count,
	gross_revenue = EXCLUDED.gross_revenue,
	coupons_used = EXCLUDED.coupons_used,
	net_commission = EXCLUDED.net_commission,
	pending_commission = EXCLUDED.pending_commission,
	order_ids = EXCLUDED.order_ids,
	archived_at = now()`

const selectInvoices = `SELECT id, restaurant_id, week, week_start, week_end, grace_deadline, status,
	order_count, gross_revenue, coupons_used, net_commission, pending_commission, order_ids
FROM invoice_archive WHERE restaurant_id = $1 ORDER BY week_start DESC`

// PostgresArchive keeps an audit copy of computed invoices. It implements
// repositories.InvoiceRepository over database/sql with the lib/pq driver.
type PostgresArchive struct {
	db *sql.DB
}

func OpenPostgresArchive(ctx context.Context, dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	archive := NewPostgresArchive(db)
	if err := archive.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return archive, nil
}

func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{db: db}
}

func (p *PostgresArchive) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createInvoiceArchive); err != nil {
		return fmt.Errorf("create invoice_archive: %w", err)
	}
	return nil
}

func (p *PostgresArchive) UpsertInvoices(ctx context.Context, invoices []accounting.InvoiceRecord) error {
	if len(invoices) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return repositories.Unavailable("upsert invoices", err)
	}
	defer tx.Rollback()

	for _, inv := range invoices {
		_, err := tx.ExecContext(ctx, upsertInvoice,
			inv.ID,
			inv.RestaurantID,
			inv.Period.Key.String(),
			inv.Period.WeekStart,
			inv.Period.WeekEnd,
			inv.Period.GraceDeadline,
			string(inv.Status),
			inv.OrderCount,
			inv.Period.GrossRevenue,
			inv.Period.CouponsUsed,
			inv.Period.NetCommission,
			inv.PendingCommission,
			pq.Array(inv.Period.OrderIDs),
		)
		if err != nil {
			return repositories.Unavailable("upsert invoices", fmt.Errorf("invoice %s: %w", inv.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return repositories.Unavailable("upsert invoices", err)
	}
	return nil
}

func (p *PostgresArchive) ListInvoices(ctx context.Context, restaurantID string) ([]accounting.InvoiceRecord, error) {
	rows, err := p.db.QueryContext(ctx, selectInvoices, restaurantID)
	if err != nil {
		return nil, repositories.Unavailable("list invoices", err)
	}
	defer rows.Close()

	var invoices []accounting.InvoiceRecord
	for rows.Next() {
		var (
			inv                          accounting.InvoiceRecord
			week, status                 string
			weekStart, weekEnd, deadline time.Time
		)
		err := rows.Scan(
			&inv.ID,
			&inv.RestaurantID,
			&week,
			&weekStart,
			&weekEnd,
			&deadline,
			&status,
			&inv.OrderCount,
			&inv.Period.GrossRevenue,
			&inv.Period.CouponsUsed,
			&inv.Period.NetCommission,
			&inv.PendingCommission,
			pq.Array(&inv.Period.OrderIDs),
		)
		if err != nil {
			return nil, repositories.Unavailable("list invoices", err)
		}
		key, err := accounting.ParseWeekKey(week)
		if err != nil {
			return nil, repositories.Unavailable("list invoices", fmt.Errorf("invoice %s: %w", inv.ID, err))
		}
		inv.Period.Key = key
		inv.Period.WeekStart = weekStart
		inv.Period.WeekEnd = weekEnd
		inv.Period.GraceDeadline = deadline
		inv.Status = accounting.InvoiceStatus(status)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Unavailable("list invoices", err)
	}
	return invoices, nil
}

func (p *PostgresArchive) Close() error {
	return p.db.Close()
}
