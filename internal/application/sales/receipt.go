package sales

import (
	"context"

	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
)

// Receipt datos que necesita el generador del comprobante.
type Receipt struct {
	Sale     *entity.Sale
	Store    *entity.Store
	Customer *entity.Customer // nil si la venta no tiene cliente
	Cashier  *entity.User
}

// ReceiptUseCase arma y genera el comprobante PDF de una venta.
type ReceiptUseCase struct {
	sales     repository.SaleRepository
	stores    repository.StoreRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	renderer  ReceiptRenderer
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(d Deps, renderer ReceiptRenderer) *ReceiptUseCase {
	return &ReceiptUseCase{
		sales:     d.Sales,
		stores:    d.Stores,
		customers: d.Customers,
		users:     d.Users,
		renderer:  renderer,
	}
}

// Render devuelve el PDF de la venta. domain.ErrNotFound si no existe.
func (uc *ReceiptUseCase) Render(ctx context.Context, saleID string) ([]byte, string, error) {
	s, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	if s == nil {
		return nil, "", domain.ErrNotFound
	}
	r := Receipt{Sale: s}
	if r.Store, err = uc.stores.GetByID(ctx, s.StoreID); err != nil {
		return nil, "", err
	}
	if s.CustomerID != "" {
		if r.Customer, err = uc.customers.GetByID(ctx, s.CustomerID); err != nil {
			return nil, "", err
		}
	}
	if r.Cashier, err = uc.users.GetByID(ctx, s.CashierID); err != nil {
		return nil, "", err
	}
	pdf, err := uc.renderer.RenderReceipt(r)
	if err != nil {
		return nil, "", err
	}
	return pdf, s.Number + ".pdf", nil
}
