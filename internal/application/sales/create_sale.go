package sales

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-ventas-api/internal/application/dto"
	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
	domainsales "github.com/jhoicas/pos-ventas-api/internal/domain/sales"
	"github.com/jhoicas/pos-ventas-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	defaultTxTimeout     = 10 * time.Second
	maxIdempotencyKeyLen = 128
)

// LineRequest línea del carrito ya normalizada.
type LineRequest struct {
	ProductID     string
	VariantSKU    string
	Quantity      decimal.Decimal
	Discount      decimal.Decimal
	Sourced       bool
	SourcingCost  *decimal.Decimal
	OverridePrice *decimal.Decimal
}

// Deps colaboradores del caso de uso. Los repos sin tx se usan para lecturas previas y la expansión.
type Deps struct {
	TxRunner  SalesTxRunner
	Numbers   NumberGenerator
	Publisher EventPublisher // opcional
	Sales     repository.SaleRepository
	Stores    repository.StoreRepository
	Customers repository.CustomerRepository
	Users     repository.UserRepository
	Logger    *logger.Logger
	TxTimeout time.Duration
	Now       func() time.Time // opcional, para tests
}

// CreateSaleUseCase coordinador de la venta: precio, stock, numeración y registro en una sola transacción.
type CreateSaleUseCase struct {
	txRunner  SalesTxRunner
	numbers   NumberGenerator
	publisher EventPublisher
	sales     repository.SaleRepository
	stores    repository.StoreRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	ledger    *StockLedger
	recorder  SourcedRecorder
	log       *logger.Logger
	txTimeout time.Duration
	now       func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(d Deps) *CreateSaleUseCase {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	timeout := d.TxTimeout
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	now := d.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &CreateSaleUseCase{
		txRunner:  d.TxRunner,
		numbers:   d.Numbers,
		publisher: d.Publisher,
		sales:     d.Sales,
		stores:    d.Stores,
		customers: d.Customers,
		users:     d.Users,
		ledger:    NewStockLedger(log.Named("stock_ledger")),
		log:       log.Named("create_sale"),
		txTimeout: timeout,
		now:       now,
	}
}

// CreateSale registra la venta. Ante cualquier error no queda venta ni descuento de stock.
// Reintentar con la misma idempotency_key devuelve la venta original con Duplicate=true.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, cashierID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	lines, payments, err := normalizeRequest(in)
	if err != nil {
		return nil, err
	}
	if cashierID == "" {
		return nil, &domain.ValidationError{Field: "cashier", Reason: "sesión sin usuario"}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	if in.IdempotencyKey != "" {
		if prev, err := uc.sales.GetByIdempotencyKey(ctx, in.StoreID, in.IdempotencyKey); err != nil {
			return nil, &domain.TransactionAbortError{Cause: err}
		} else if prev != nil {
			uc.log.Info().Str("sale_id", prev.ID).Str("idempotency_key", in.IdempotencyKey).Msg("venta repetida por idempotency_key")
			return uc.expand(ctx, prev, nil, nil, true), nil
		}
	}

	store, err := uc.stores.GetByID(ctx, in.StoreID)
	if err != nil {
		return nil, &domain.TransactionAbortError{Cause: err}
	}
	if store == nil || !store.Active {
		return nil, &domain.ValidationError{Field: "store_id", Reason: "tienda inexistente o inactiva"}
	}
	var customer *entity.Customer
	if in.CustomerID != "" {
		customer, err = uc.customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, &domain.TransactionAbortError{Cause: err}
		}
		if customer == nil {
			return nil, &domain.ValidationError{Field: "customer_id", Reason: "cliente inexistente"}
		}
	}

	now := uc.now()
	var (
		sale       *entity.Sale
		decrements []StockDecrement
	)
	err = uc.txRunner.RunSale(ctx, func(repos TxRepos) error {
		// 1) Bloquear y verificar stock de todas las líneas antes de escribir.
		plan, err := uc.ledger.Check(ctx, repos, in.StoreID, AggregateDemands(lines))
		if err != nil {
			return err
		}
		products, err := loadRemaining(ctx, repos, plan.Products, lines)
		if err != nil {
			return err
		}

		// 2) Precio, descuento e impuesto por línea, en el orden del carrito.
		items := make([]entity.SaleItem, 0, len(lines))
		for _, l := range lines {
			item, err := domainsales.ComputeLine(domainsales.LineInput{
				Product:       products[l.ProductID],
				VariantSKU:    l.VariantSKU,
				Quantity:      l.Quantity,
				Discount:      l.Discount,
				Sourced:       l.Sourced,
				SourcedCost:   l.SourcingCost,
				OverridePrice: l.OverridePrice,
			})
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		totals := domainsales.Summarize(items)
		settle, err := settlePayments(totals.Total, payments)
		if err != nil {
			return err
		}

		// 3) Descontar ambos ledgers.
		decrements, err = uc.ledger.Apply(ctx, repos, plan, now)
		if err != nil {
			return err
		}

		// 4) Número y cabecera.
		number, err := uc.numbers.Next(ctx, in.StoreID, now)
		if err != nil {
			return err
		}
		sale = &entity.Sale{
			ID:             uuid.New().String(),
			Number:         number,
			StoreID:        in.StoreID,
			CustomerID:     in.CustomerID,
			CashierID:      cashierID,
			IdempotencyKey: in.IdempotencyKey,
			Items:          items,
			Payments:       payments,
			Subtotal:       totals.Subtotal,
			Discount:       totals.Discount,
			Tax:            totals.Tax,
			Total:          totals.Total,
			PaidAmount:     settle.paid,
			DueAmount:      settle.due,
			ChangeAmount:   settle.change,
			Status:         settle.status,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}

		// 5) Registros surtidos con referencia a la venta.
		_, err = uc.recorder.Record(ctx, repos, sale, cashierID, now)
		return err
	})
	if err != nil {
		if in.IdempotencyKey != "" && errors.Is(err, domain.ErrDuplicate) {
			// Otra petición con la misma clave confirmó primero.
			if prev, gerr := uc.sales.GetByIdempotencyKey(context.WithoutCancel(ctx), in.StoreID, in.IdempotencyKey); gerr == nil && prev != nil {
				return uc.expand(context.WithoutCancel(ctx), prev, store, customer, true), nil
			}
		}
		return nil, uc.reject(in.StoreID, err)
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("sale_number", sale.Number).
		Str("store_id", sale.StoreID).
		Str("total", sale.Total.String()).
		Int("lines", len(sale.Items)).
		Msg("venta confirmada")

	uc.publish(SaleEvent{
		Type:       EventSaleCommitted,
		SaleID:     sale.ID,
		SaleNumber: sale.Number,
		StoreID:    sale.StoreID,
		Status:     sale.Status,
		Total:      sale.Total,
		Decrements: decrements,
		At:         now,
	})
	return uc.expand(context.WithoutCancel(ctx), sale, store, customer, false), nil
}

// reject clasifica el error: reglas de negocio tal cual, el resto como TransactionAbortError.
func (uc *CreateSaleUseCase) reject(storeID string, err error) error {
	if domain.IsBusinessError(err) {
		var coded domain.CodedError
		errors.As(err, &coded)
		uc.log.Info().Str("store_id", storeID).Str("code", coded.Code()).Err(err).Msg("venta rechazada")
		return err
	}
	var abort *domain.TransactionAbortError
	if !errors.As(err, &abort) {
		abort = &domain.TransactionAbortError{Cause: err}
	}
	uc.log.Error().Str("store_id", storeID).Err(err).Msg("venta abortada")
	return abort
}

func (uc *CreateSaleUseCase) publish(evt SaleEvent) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(evt); err != nil {
		uc.log.Warn().Err(err).Str("sale_id", evt.SaleID).Msg("no se pudo publicar evento de venta")
	}
}

// expand arma la respuesta con tienda, cliente y cajero. Si alguna lectura falla se deja solo el ID.
func (uc *CreateSaleUseCase) expand(ctx context.Context, s *entity.Sale, store *entity.Store, customer *entity.Customer, duplicate bool) *dto.SaleResponse {
	if store == nil {
		store, _ = uc.stores.GetByID(ctx, s.StoreID)
	}
	if customer == nil && s.CustomerID != "" {
		customer, _ = uc.customers.GetByID(ctx, s.CustomerID)
	}
	cashier, _ := uc.users.GetByID(ctx, s.CashierID)
	resp := ToSaleResponse(s, store, customer, cashier)
	resp.Duplicate = duplicate
	return resp
}

// loadRemaining completa el mapa con los productos que solo aparecen en líneas surtidas (sin bloqueo).
func loadRemaining(ctx context.Context, repos TxRepos, locked map[string]*entity.Product, lines []LineRequest) (map[string]*entity.Product, error) {
	products := make(map[string]*entity.Product, len(locked))
	for id, p := range locked {
		products[id] = p
	}
	var missing []string
	for _, l := range lines {
		if _, ok := products[l.ProductID]; !ok {
			missing = append(missing, l.ProductID)
			products[l.ProductID] = nil
		}
	}
	sort.Strings(missing)
	for _, id := range missing {
		p, err := loadSellableProduct(ctx, repos.Products, id, false)
		if err != nil {
			return nil, err
		}
		products[id] = p
	}
	return products, nil
}

type settlement struct {
	paid, due, change decimal.Decimal
	status            string
}

// settlePayments deriva el estado de los pagos: completed si cubren el total, due si no.
// El sobrepago solo se acepta como vuelto en efectivo.
func settlePayments(total decimal.Decimal, payments []entity.Payment) (settlement, error) {
	var paid, cash decimal.Decimal
	for _, p := range payments {
		paid = paid.Add(p.Amount)
		if p.Method == entity.PaymentMethodCash {
			cash = cash.Add(p.Amount)
		}
	}
	s := settlement{paid: paid, status: entity.SaleStatusDue}
	if paid.GreaterThanOrEqual(total) {
		s.status = entity.SaleStatusCompleted
		s.change = paid.Sub(total)
		if s.change.GreaterThan(cash) {
			return settlement{}, &domain.ValidationError{Field: "payments", Reason: "el sobrepago solo se admite en efectivo"}
		}
		return s, nil
	}
	s.due = total.Sub(paid)
	return s, nil
}

// normalizeRequest valida la entrada sin tocar estado.
func normalizeRequest(in dto.CreateSaleRequest) ([]LineRequest, []entity.Payment, error) {
	if in.StoreID == "" {
		return nil, nil, &domain.ValidationError{Field: "store_id", Reason: "requerido"}
	}
	if len(in.Items) == 0 {
		return nil, nil, &domain.ValidationError{Field: "items", Reason: "el carrito está vacío"}
	}
	if len(in.IdempotencyKey) > maxIdempotencyKeyLen {
		return nil, nil, &domain.ValidationError{Field: "idempotency_key", Reason: "demasiado larga"}
	}
	lines := make([]LineRequest, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" {
			return nil, nil, &domain.ValidationError{Field: "items.product_id", Reason: "requerido"}
		}
		if !it.Quantity.IsPositive() {
			return nil, nil, &domain.ValidationError{Field: "items.quantity", Reason: "debe ser positiva"}
		}
		if exceedsScale(it.Quantity, domainsales.QuantityPlaces) {
			return nil, nil, &domain.ValidationError{Field: "items.quantity", Reason: "máximo 3 decimales"}
		}
		if it.Discount.IsNegative() {
			return nil, nil, &domain.ValidationError{Field: "items.discount", Reason: "no puede ser negativo"}
		}
		if exceedsScale(it.Discount, domainsales.MoneyPlaces) {
			return nil, nil, &domain.ValidationError{Field: "items.discount", Reason: "máximo 2 decimales"}
		}
		if it.SourcingCost != nil && exceedsScale(*it.SourcingCost, domainsales.MoneyPlaces) {
			return nil, nil, &domain.ValidationError{Field: "items.sourcing_cost", Reason: "máximo 2 decimales"}
		}
		if it.OverridePrice != nil && exceedsScale(*it.OverridePrice, domainsales.MoneyPlaces) {
			return nil, nil, &domain.ValidationError{Field: "items.override_price", Reason: "máximo 2 decimales"}
		}
		if it.OverridePrice != nil && !it.Sourced {
			return nil, nil, &domain.ValidationError{Field: "items.override_price", Reason: "solo aplica a ítems surtidos"}
		}
		if it.Sourced && it.SourcingCost == nil {
			return nil, nil, &domain.ValidationError{Field: "items.sourcing_cost", Reason: "requerido para ítems surtidos"}
		}
		lines = append(lines, LineRequest{
			ProductID:     it.ProductID,
			VariantSKU:    it.VariantSKU,
			Quantity:      it.Quantity,
			Discount:      it.Discount,
			Sourced:       it.Sourced,
			SourcingCost:  it.SourcingCost,
			OverridePrice: it.OverridePrice,
		})
	}
	payments := make([]entity.Payment, 0, len(in.Payments))
	for _, p := range in.Payments {
		if !entity.ValidPaymentMethod(p.Method) {
			return nil, nil, &domain.ValidationError{Field: "payments.method", Reason: "método no soportado: " + p.Method}
		}
		if !p.Amount.IsPositive() {
			return nil, nil, &domain.ValidationError{Field: "payments.amount", Reason: "debe ser positivo"}
		}
		if exceedsScale(p.Amount, domainsales.MoneyPlaces) {
			return nil, nil, &domain.ValidationError{Field: "payments.amount", Reason: "máximo 2 decimales"}
		}
		payments = append(payments, entity.Payment{
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}
	return lines, payments, nil
}

// exceedsScale indica si d tiene más decimales significativos que places.
func exceedsScale(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Round(places))
}
