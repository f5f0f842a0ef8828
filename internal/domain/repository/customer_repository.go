package repository

import (
	"context"

	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
)

// CustomerRepository lectura de clientes para expandir la venta.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}
