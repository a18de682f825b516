// Package reports computes the owner dashboard figures with hand-built SQL.
package reports

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Emma781227/Ble-dor/internal/models"
)

// StatusRow is the order count and value for one status in a window.
type StatusRow struct {
	Status models.OrderStatus `db:"status" json:"status"`
	Orders int64              `db:"orders" json:"orders"`
	Total  decimal.Decimal    `db:"total" json:"total"`
}

// ProductRow is how much of one product was sold.
type ProductRow struct {
	ProductID   string          `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	Revenue     decimal.Decimal `db:"revenue" json:"revenue"`
}

type ProductSummary struct {
	Total       int64 `db:"total" json:"total"`
	Available   int64 `db:"available" json:"available"`
	Unavailable int64 `db:"-" json:"unavailable"`
}

type Store struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// salesStatuses are the statuses that count as revenue.
func salesStatuses() []string {
	var out []string
	for _, s := range models.OrderStatuses {
		if s.CountsTowardRevenue() {
			out = append(out, string(s))
		}
	}
	return out
}

// StatusBreakdown groups the orders created in [from, to) by status.
func (s *Store) StatusBreakdown(ctx context.Context, from, to time.Time) ([]StatusRow, error) {
	query, args, err := s.qb.
		Select("status", "COUNT(*) AS orders", "COALESCE(SUM(total), 0) AS total").
		From("orders").
		Where(sq.GtOrEq{"created_at": from}).
		Where(sq.Lt{"created_at": to}).
		GroupBy("status").
		OrderBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build status breakdown: %w", err)
	}
	var rows []StatusRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	return rows, nil
}

// TopProducts ranks products by revenue over sold orders in [from, to).
func (s *Store) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductRow, error) {
	if limit <= 0 {
		limit = 5
	}
	query, args, err := s.qb.
		Select(
			"oi.product_id",
			"MAX(oi.product_name) AS product_name",
			"SUM(oi.quantity) AS quantity",
			"SUM(oi.quantity * oi.unit_price) AS revenue",
		).
		From("order_items oi").
		Join("orders o ON o.id = oi.order_id").
		Where(sq.Eq{"o.status": salesStatuses()}).
		Where(sq.GtOrEq{"o.created_at": from}).
		Where(sq.Lt{"o.created_at": to}).
		GroupBy("oi.product_id").
		OrderBy("revenue DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top products: %w", err)
	}
	var rows []ProductRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return rows, nil
}

func (s *Store) ProductSummary(ctx context.Context) (ProductSummary, error) {
	query, args, err := s.qb.
		Select("COUNT(*) AS total", "COALESCE(SUM(CASE WHEN is_available THEN 1 ELSE 0 END), 0) AS available").
		From("products").
		ToSql()
	if err != nil {
		return ProductSummary{}, fmt.Errorf("build product summary: %w", err)
	}
	var out ProductSummary
	if err := s.db.GetContext(ctx, &out, query, args...); err != nil {
		return ProductSummary{}, fmt.Errorf("product summary: %w", err)
	}
	out.Unavailable = out.Total - out.Available
	return out, nil
}
