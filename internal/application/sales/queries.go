package sales

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ventas-api/internal/application/dto"
	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
	"github.com/jhoicas/pos-ventas-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// QueryUseCase lecturas de ventas, cambio de estado post-venta y reporte de surtidos.
type QueryUseCase struct {
	txRunner  SalesTxRunner
	sales     repository.SaleRepository
	sourced   repository.SourcedItemRepository
	stores    repository.StoreRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	publisher EventPublisher
	log       *logger.Logger
}

// NewQueryUseCase construye el caso de uso a partir de las mismas dependencias del coordinador.
func NewQueryUseCase(d Deps, sourced repository.SourcedItemRepository) *QueryUseCase {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &QueryUseCase{
		txRunner:  d.TxRunner,
		sales:     d.Sales,
		sourced:   sourced,
		stores:    d.Stores,
		customers: d.Customers,
		users:     d.Users,
		publisher: d.Publisher,
		log:       log.Named("sales_query"),
	}
}

// GetSale obtiene una venta expandida. domain.ErrNotFound si no existe.
func (uc *QueryUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	s, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return uc.expand(ctx, s), nil
}

// ListSales lista ventas por tienda y rango de fechas, más recientes primero.
func (uc *QueryUseCase) ListSales(ctx context.Context, in dto.SaleListRequest) (*dto.SaleListResponse, error) {
	in.DefaultPage()
	list, err := uc.sales.List(ctx, repository.SaleFilter{
		StoreID: in.StoreID,
		From:    in.From,
		To:      in.To,
		Limit:   in.Limit,
		Offset:  in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.SaleListResponse{
		Items: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, *ToSaleResponse(s, nil, nil, nil))
	}
	return out, nil
}

// ChangeStatus aplica una transición post-venta. No toca stock: el reintegro es otra operación.
func (uc *QueryUseCase) ChangeStatus(ctx context.Context, id, status string) (*dto.SaleResponse, error) {
	if !entity.ValidStatus(status) {
		return nil, &domain.ValidationError{Field: "status", Reason: "estado desconocido"}
	}
	now := time.Now().UTC()
	var updated *entity.Sale
	err := uc.txRunner.RunSale(ctx, func(repos TxRepos) error {
		s, err := repos.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if !s.CanTransitionTo(status) {
			return domain.ErrConflict
		}
		if err := repos.Sales.UpdateStatus(ctx, id, s.Status, status, now); err != nil {
			return err
		}
		s.Status = status
		s.UpdatedAt = now
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_id", id).Str("status", status).Msg("estado de venta actualizado")
	if uc.publisher != nil {
		if err := uc.publisher.Publish(SaleEvent{
			Type: EventSaleStatusChanged, SaleID: updated.ID, SaleNumber: updated.Number,
			StoreID: updated.StoreID, Status: updated.Status, Total: updated.Total, At: now,
		}); err != nil {
			uc.log.Warn().Err(err).Str("sale_id", id).Msg("no se pudo publicar evento de estado")
		}
	}
	return uc.expand(ctx, updated), nil
}

// SourcedReport registros surtidos filtrados con totales de costo, venta y utilidad.
func (uc *QueryUseCase) SourcedReport(ctx context.Context, in dto.SourcedReportRequest) (*dto.SourcedReportResponse, error) {
	list, err := uc.sourced.List(ctx, repository.SourcedItemFilter{
		StoreID:   in.StoreID,
		ProductID: in.ProductID,
		From:      in.From,
		To:        in.To,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.SourcedReportResponse{
		Items:       make([]dto.SourcedItemResponse, 0, len(list)),
		TotalCost:   decimal.Zero,
		TotalSales:  decimal.Zero,
		TotalProfit: decimal.Zero,
	}
	for _, it := range list {
		out.Items = append(out.Items, toSourcedItemResponse(it))
		out.TotalCost = out.TotalCost.Add(it.SourcedCost.Mul(it.Quantity))
		out.TotalSales = out.TotalSales.Add(it.SalePrice.Mul(it.Quantity))
		out.TotalProfit = out.TotalProfit.Add(it.Profit)
	}
	return out, nil
}

func (uc *QueryUseCase) expand(ctx context.Context, s *entity.Sale) *dto.SaleResponse {
	store, _ := uc.stores.GetByID(ctx, s.StoreID)
	var customer *entity.Customer
	if s.CustomerID != "" {
		customer, _ = uc.customers.GetByID(ctx, s.CustomerID)
	}
	cashier, _ := uc.users.GetByID(ctx, s.CashierID)
	return ToSaleResponse(s, store, customer, cashier)
}
