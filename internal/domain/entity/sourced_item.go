package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourcedItem registro secundario para líneas surtidas por fuera del inventario propio
// (drop-shipping). Solo sirve para analítica de costo/utilidad; no afecta stock.
type SourcedItem struct {
	ID          string
	StoreID     string
	SaleID      string
	SaleNumber  string
	ProductID   string
	Quantity    decimal.Decimal
	SourcedCost decimal.Decimal // costo unitario de abastecimiento
	SalePrice   decimal.Decimal // precio unitario de venta
	Profit      decimal.Decimal // (SalePrice - SourcedCost) × Quantity
	RecordedBy  string
	RecordedAt  time.Time
}
