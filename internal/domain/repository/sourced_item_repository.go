package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
)

// SourcedItemFilter filtros para el reporte de utilidad de ítems surtidos.
type SourcedItemFilter struct {
	StoreID   string
	ProductID string
	From      *time.Time
	To        *time.Time
}

// SourcedItemRepository colección independiente de registros surtidos (store/fecha/producto).
type SourcedItemRepository interface {
	Create(ctx context.Context, item *entity.SourcedItem) error
	List(ctx context.Context, f SourcedItemFilter) ([]*entity.SourcedItem, error)
}
