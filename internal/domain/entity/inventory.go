package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory representa la posición de stock de un producto en una tienda.
// Se crea de forma diferida en el primer ajuste para el par (producto, tienda).
// Invariante: Quantity >= 0.
type Inventory struct {
	ID            string
	ProductID     string
	StoreID       string
	Quantity      decimal.Decimal // disponible en mano
	Reserved      decimal.Decimal
	MinStock      decimal.Decimal
	MaxStock      decimal.Decimal
	Location      string
	BatchNumber   string
	SerialNumbers []string
	ExpiryDate    *time.Time // productos regulados
	UpdatedAt     time.Time
}

// Sufficient verifica si hay al menos qty en mano.
func (i *Inventory) Sufficient(qty decimal.Decimal) bool {
	return i.Quantity.GreaterThanOrEqual(qty)
}
