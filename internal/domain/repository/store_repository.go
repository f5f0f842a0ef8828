package repository

import (
	"context"

	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
)

// StoreRepository lectura de tiendas (CRUD fuera del núcleo).
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Store, error)
}
