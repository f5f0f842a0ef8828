package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
)

var _ repository.SourcedItemRepository = (*SourcedItemRepo)(nil)

// SourcedItemRepo registros de ítems surtidos (pool o tx).
type SourcedItemRepo struct {
	q Querier
}

// NewSourcedItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSourcedItemRepository(q Querier) *SourcedItemRepo {
	return &SourcedItemRepo{q: q}
}

// Create persiste un registro surtido.
func (r *SourcedItemRepo) Create(ctx context.Context, it *entity.SourcedItem) error {
	query := `
		INSERT INTO sourced_items (id, store_id, sale_id, sale_number, product_id, quantity, sourced_cost, sale_price, profit, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.StoreID, it.SaleID, it.SaleNumber, it.ProductID, it.Quantity,
		it.SourcedCost, it.SalePrice, it.Profit, it.RecordedBy, it.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sourced item: %w", err)
	}
	return nil
}

// List registros por tienda, producto y rango de fechas, en orden cronológico.
func (r *SourcedItemRepo) List(ctx context.Context, f repository.SourcedItemFilter) ([]*entity.SourcedItem, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.StoreID != "" {
		add("store_id = $%d", f.StoreID)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.From != nil {
		add("recorded_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("recorded_at < $%d", *f.To)
	}
	query := `SELECT id, store_id, sale_id, sale_number, product_id, quantity, sourced_cost, sale_price, profit, recorded_by, recorded_at
		FROM sourced_items`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY recorded_at`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sourced items: %w", err)
	}
	defer rows.Close()
	out := []*entity.SourcedItem{}
	for rows.Next() {
		var it entity.SourcedItem
		if err := rows.Scan(&it.ID, &it.StoreID, &it.SaleID, &it.SaleNumber, &it.ProductID, &it.Quantity,
			&it.SourcedCost, &it.SalePrice, &it.Profit, &it.RecordedBy, &it.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan sourced item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
