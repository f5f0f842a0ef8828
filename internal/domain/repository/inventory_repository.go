package repository

import (
	"context"

	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryRepository define el puerto para el stock por (producto, tienda).
// La ausencia de registro no es error: Get y GetForUpdate devuelven (nil, nil).
type InventoryRepository interface {
	Get(ctx context.Context, productID, storeID string) (*entity.Inventory, error)
	GetForUpdate(ctx context.Context, productID, storeID string) (*entity.Inventory, error)
	UpdateQuantity(ctx context.Context, productID, storeID string, quantity decimal.Decimal) error
}
