package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, number, store_id, customer_id, cashier_id, idempotency_key, items, payments,
	subtotal, discount, tax, total, paid_amount, due_amount, change_amount, status, created_at, updated_at`

// SaleRepo documento de venta con líneas y pagos embebidos en JSONB (pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la venta completa en una sola fila.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	payments, err := json.Marshal(sale.Payments)
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}
	if sale.Payments == nil {
		payments = []byte("[]")
	}
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = r.q.Exec(ctx, query,
		sale.ID, sale.Number, sale.StoreID, nullIfEmpty(sale.CustomerID), sale.CashierID, nullIfEmpty(sale.IdempotencyKey),
		items, payments,
		sale.Subtotal, sale.Discount, sale.Tax, sale.Total, sale.PaidAmount, sale.DueAmount, sale.ChangeAmount,
		sale.Status, sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			switch violatedConstraint(err) {
			case constraintSaleIdempotency:
				return fmt.Errorf("idempotency key %q: %w", sale.IdempotencyKey, domain.ErrDuplicate)
			default:
				return &domain.DuplicateSaleNumberError{Number: sale.Number}
			}
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetByIdempotencyKey obtiene la venta registrada con la clave en la tienda.
func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, storeID, key string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE store_id = $1 AND idempotency_key = $2`, storeID, key)
}

func (r *SaleRepo) get(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// List ventas filtradas, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
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
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, number DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	out := []*entity.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus cambia el estado solo si el actual es from (compare-and-set).
func (r *SaleRepo) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`, id, from, to, at)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s          entity.Sale
		customerID *string
		idemKey    *string
		items      []byte
		payments   []byte
	)
	err := row.Scan(
		&s.ID, &s.Number, &s.StoreID, &customerID, &s.CashierID, &idemKey, &items, &payments,
		&s.Subtotal, &s.Discount, &s.Tax, &s.Total, &s.PaidAmount, &s.DueAmount, &s.ChangeAmount,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CustomerID = emptyIfNull(customerID)
	s.IdempotencyKey = emptyIfNull(idemKey)
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(payments, &s.Payments); err != nil {
		return nil, fmt.Errorf("unmarshal payments: %w", err)
	}
	return &s, nil
}
