package entity

import "github.com/shopspring/decimal"

// SaleItem línea de una venta; pertenece en exclusiva a su Sale.
type SaleItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	VariantSKU  string          `json:"variant_sku,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"` // UnitPrice × Quantity
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Sourced     bool            `json:"sourced"`
	SourcedCost decimal.Decimal `json:"sourced_cost,omitempty"`
}
