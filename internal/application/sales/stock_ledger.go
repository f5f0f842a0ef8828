package sales

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
	"github.com/jhoicas/pos-ventas-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// StockDemand cantidad total pedida de un producto (líneas no surtidas agregadas).
type StockDemand struct {
	ProductID string
	Quantity  decimal.Decimal
}

// StockDecrement resultado aplicado sobre los dos contadores.
// ProductStock/InventoryQty son nil cuando el ledger correspondiente no existe para el producto.
type StockDecrement struct {
	ProductID    string           `json:"product_id"`
	Quantity     decimal.Decimal  `json:"quantity"`
	ProductStock *decimal.Decimal `json:"product_stock,omitempty"`
	InventoryQty *decimal.Decimal `json:"inventory_quantity,omitempty"`
}

// StockPlan filas ya bloqueadas y verificadas, pendientes de escritura.
type StockPlan struct {
	StoreID  string
	Products map[string]*entity.Product
	entries  []planEntry
}

type planEntry struct {
	product   *entity.Product
	inventory *entity.Inventory // nil si el producto no está particionado por tienda
	quantity  decimal.Decimal
}

// StockLedger dueño de los dos contadores: product.stock e inventory.quantity por tienda.
// Check y Apply juntos forman el decremento: primero se verifican todas las filas y
// solo después se escribe, de modo que ninguna línea descuenta si otra no alcanza.
type StockLedger struct {
	log *logger.Logger
}

// NewStockLedger construye el ledger.
func NewStockLedger(log *logger.Logger) *StockLedger {
	if log == nil {
		log = logger.Nop()
	}
	return &StockLedger{log: log}
}

// AggregateDemands suma las cantidades por producto y las ordena por ID.
// El orden fijo de bloqueo evita deadlocks entre ventas concurrentes.
func AggregateDemands(lines []LineRequest) []StockDemand {
	totals := make(map[string]decimal.Decimal)
	for _, l := range lines {
		if l.Sourced {
			continue
		}
		totals[l.ProductID] = totals[l.ProductID].Add(l.Quantity)
	}
	out := make([]StockDemand, 0, len(totals))
	for id, qty := range totals {
		out = append(out, StockDemand{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Check bloquea (SELECT FOR UPDATE) producto e inventario de cada demanda y verifica ambos ledgers.
// No escribe nada.
func (l *StockLedger) Check(ctx context.Context, repos TxRepos, storeID string, demands []StockDemand) (*StockPlan, error) {
	plan := &StockPlan{StoreID: storeID, Products: make(map[string]*entity.Product, len(demands))}
	for _, d := range demands {
		product, err := loadSellableProduct(ctx, repos.Products, d.ProductID, true)
		if err != nil {
			return nil, err
		}
		plan.Products[d.ProductID] = product

		if product.TracksStock() && product.Stock.LessThan(d.Quantity) {
			return nil, &domain.InsufficientStockError{
				ProductID: d.ProductID, StoreID: storeID, Ledger: domain.LedgerProduct,
				Available: *product.Stock, Requested: d.Quantity,
			}
		}

		inv, err := repos.Inventory.GetForUpdate(ctx, d.ProductID, storeID)
		if err != nil {
			return nil, err
		}
		if inv != nil && !inv.Sufficient(d.Quantity) {
			return nil, &domain.InsufficientStockError{
				ProductID: d.ProductID, StoreID: storeID, Ledger: domain.LedgerInventory,
				Available: inv.Quantity, Requested: d.Quantity,
			}
		}
		if inv != nil && product.TracksStock() && product.Stock.LessThan(inv.Quantity) {
			// Los contadores se descuentan por separado; solo se reporta la divergencia.
			l.log.Warn().
				Str("product_id", d.ProductID).
				Str("store_id", storeID).
				Str("product_stock", product.Stock.String()).
				Str("inventory_quantity", inv.Quantity.String()).
				Msg("stock de producto menor que el inventario de una sola tienda")
		}
		plan.entries = append(plan.entries, planEntry{product: product, inventory: inv, quantity: d.Quantity})
	}
	return plan, nil
}

// Apply escribe los decrementos de un plan verificado por Check en la misma unidad de trabajo.
func (l *StockLedger) Apply(ctx context.Context, repos TxRepos, plan *StockPlan, now time.Time) ([]StockDecrement, error) {
	out := make([]StockDecrement, 0, len(plan.entries))
	for _, e := range plan.entries {
		dec := StockDecrement{ProductID: e.product.ID, Quantity: e.quantity}
		if e.product.TracksStock() {
			next := e.product.Stock.Sub(e.quantity)
			if err := repos.Products.UpdateStock(ctx, e.product.ID, next); err != nil {
				return nil, err
			}
			e.product.Stock = &next
			dec.ProductStock = &next
		}
		if e.inventory != nil {
			next := e.inventory.Quantity.Sub(e.quantity)
			if err := repos.Inventory.UpdateQuantity(ctx, e.product.ID, plan.StoreID, next); err != nil {
				return nil, err
			}
			e.inventory.Quantity = next
			e.inventory.UpdatedAt = now
			dec.InventoryQty = &next
		}
		out = append(out, dec)
	}
	return out, nil
}

// loadSellableProduct lee el producto (con bloqueo si lock) y exige que exista y esté activo.
func loadSellableProduct(ctx context.Context, repo repository.ProductRepository, id string, lock bool) (*entity.Product, error) {
	var (
		p   *entity.Product
		err error
	)
	if lock {
		p, err = repo.GetForUpdate(ctx, id)
	} else {
		p, err = repo.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	if !p.Active {
		return nil, &domain.InactiveProductError{ProductID: id}
	}
	return p, nil
}
