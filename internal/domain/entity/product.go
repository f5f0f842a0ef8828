package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Nunca se elimina, solo se desactiva.
// Stock es el contador desnormalizado: nil si el producto no lleva stock directo
// (en ese caso el stock vive únicamente en Inventory por tienda).
type Product struct {
	ID        string
	SKU       string
	Name      string
	Price     decimal.Decimal // precio base de venta
	Cost      decimal.Decimal // costo base
	TaxRate   decimal.Decimal // porcentaje: 0, 5, 19...
	Active    bool
	Variants  []Variant
	Stock     *decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Variant sub-SKU con precio/costo/stock propios (talla, color...).
type Variant struct {
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Cost  decimal.Decimal `json:"cost"`
	Stock decimal.Decimal `json:"stock"`
}

// TracksStock indica si el producto lleva el contador desnormalizado.
func (p *Product) TracksStock() bool { return p.Stock != nil }

// FindVariant busca una variante por SKU.
func (p *Product) FindVariant(sku string) (*Variant, bool) {
	if sku == "" {
		return nil, false
	}
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i], true
		}
	}
	return nil, false
}
