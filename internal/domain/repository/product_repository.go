package repository

import (
	"context"

	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStock fija el contador desnormalizado. Solo el ledger de stock lo usa en una venta.
	UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error
}
