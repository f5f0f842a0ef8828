package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const inventoryColumns = `id, product_id, store_id, quantity, reserved, min_stock, max_stock,
	location, batch_number, serial_numbers, expiry_date, updated_at`

// InventoryRepo stock por (producto, tienda) sobre PostgreSQL (pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Get obtiene el registro; (nil, nil) si el par producto/tienda no tiene inventario.
func (r *InventoryRepo) Get(ctx context.Context, productID, storeID string) (*entity.Inventory, error) {
	return r.get(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE product_id = $1 AND store_id = $2`, productID, storeID)
}

// GetForUpdate obtiene el registro con bloqueo de fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.Inventory, error) {
	return r.get(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE product_id = $1 AND store_id = $2 FOR UPDATE`, productID, storeID)
}

func (r *InventoryRepo) get(ctx context.Context, query string, args ...any) (*entity.Inventory, error) {
	inv, err := scanInventory(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return inv, nil
}

// UpdateQuantity fija la cantidad en mano de un registro existente.
func (r *InventoryRepo) UpdateQuantity(ctx context.Context, productID, storeID string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory SET quantity = $3, updated_at = now() WHERE product_id = $1 AND store_id = $2`,
		productID, storeID, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update inventory quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInventory(row pgx.Row) (*entity.Inventory, error) {
	var (
		inv      entity.Inventory
		location *string
		batch    *string
	)
	err := row.Scan(
		&inv.ID, &inv.ProductID, &inv.StoreID, &inv.Quantity, &inv.Reserved, &inv.MinStock, &inv.MaxStock,
		&location, &batch, &inv.SerialNumbers, &inv.ExpiryDate, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Location = emptyIfNull(location)
	inv.BatchNumber = emptyIfNull(batch)
	return &inv, nil
}
