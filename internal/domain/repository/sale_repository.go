package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
)

// SaleFilter filtros de listado de ventas.
type SaleFilter struct {
	StoreID string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// SaleRepository define el puerto de persistencia del documento de venta.
// Create devuelve *domain.DuplicateSaleNumberError si el número ya existe y
// domain.ErrDuplicate si la clave de idempotencia ya fue usada en la tienda.
// UpdateStatus solo aplica si el estado actual es from; si no, domain.ErrConflict.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetByIdempotencyKey(ctx context.Context, storeID, key string) (*entity.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) error
}
