package repository

import (
	"context"

	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
)

// UserRepository lectura de usuarios (cajeros) para expandir la venta.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
