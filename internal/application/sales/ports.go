package sales

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TxRepos repositorios atados a una misma unidad de trabajo.
type TxRepos struct {
	Products     repository.ProductRepository
	Inventory    repository.InventoryRepository
	Sales        repository.SaleRepository
	SourcedItems repository.SourcedItemRepository
}

// SalesTxRunner ejecuta fn dentro de una transacción.
// Si fn retorna error se descartan todas las escrituras; si retorna nil se confirman juntas.
// Un fallo de commit o un conflicto de aislamiento se devuelve como *domain.TransactionAbortError.
type SalesTxRunner interface {
	RunSale(ctx context.Context, fn func(repos TxRepos) error) error
}

// NumberGenerator produce números de venta únicos y legibles.
type NumberGenerator interface {
	Next(ctx context.Context, storeID string, at time.Time) (string, error)
}

// EventPublisher recibe eventos de ventas ya confirmadas (feed en vivo).
type EventPublisher interface {
	Publish(evt SaleEvent) error
}

// Tipos de evento.
const (
	EventSaleCommitted     = "sale_committed"
	EventSaleStatusChanged = "sale_status_changed"
)

// SaleEvent notificación post-commit. Decrements lista lo descontado por producto.
type SaleEvent struct {
	Type       string           `json:"type"`
	SaleID     string           `json:"sale_id"`
	SaleNumber string           `json:"sale_number"`
	StoreID    string           `json:"store_id"`
	Status     string           `json:"status"`
	Total      decimal.Decimal  `json:"total"`
	Decrements []StockDecrement `json:"decrements,omitempty"`
	At         time.Time        `json:"at"`
}

// ReceiptRenderer genera el comprobante imprimible de una venta.
type ReceiptRenderer interface {
	RenderReceipt(r Receipt) ([]byte, error)
}
