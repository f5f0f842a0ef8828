// Package sales contiene el resolvedor de precio e impuesto de la venta (servicio de dominio).
// No tiene dependencias de infraestructura: recibe entidades ya cargadas y devuelve montos.
package sales

import (
	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MoneyPlaces precisión decimal fija de todos los montos.
const MoneyPlaces int32 = 2

// QuantityPlaces precisión máxima de cantidades y existencias.
const QuantityPlaces int32 = 3

var hundred = decimal.NewFromInt(100)

// LineInput datos de una línea del carrito con el producto ya cargado.
type LineInput struct {
	Product       *entity.Product
	VariantSKU    string
	Quantity      decimal.Decimal
	Discount      decimal.Decimal
	Sourced       bool
	SourcedCost   *decimal.Decimal
	OverridePrice *decimal.Decimal
}

// Totals agregados de la venta.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ResolveUnitPrice aplica el orden: precio pactado del surtido, precio de variante, precio base.
// Devuelve la variante resuelta (nil si no aplica). Un precio cero o negativo es PricingError.
func ResolveUnitPrice(p *entity.Product, variantSKU string, sourced bool, override *decimal.Decimal) (decimal.Decimal, *entity.Variant, error) {
	variant, hasVariant := p.FindVariant(variantSKU)

	var price decimal.Decimal
	switch {
	case sourced && override != nil:
		price = *override
	case hasVariant:
		price = variant.Price
	default:
		price = p.Price
	}
	if !price.GreaterThan(decimal.Zero) {
		return decimal.Zero, nil, &domain.PricingError{ProductID: p.ID, Variant: variantSKU}
	}
	if !hasVariant {
		variant = nil
	}
	return price, variant, nil
}

// TaxRate tasa (porcentaje) vigente del producto al momento de la venta; 0 si no tiene.
func TaxRate(p *entity.Product) decimal.Decimal {
	if p.TaxRate.IsNegative() {
		return decimal.Zero
	}
	return p.TaxRate
}

// ComputeLine resuelve precio, descuento, impuesto y total de una línea.
func ComputeLine(in LineInput) (entity.SaleItem, error) {
	p := in.Product
	unitPrice, variant, err := ResolveUnitPrice(p, in.VariantSKU, in.Sourced, in.OverridePrice)
	if err != nil {
		return entity.SaleItem{}, err
	}

	subtotal := unitPrice.Mul(in.Quantity).Round(MoneyPlaces)
	if !subtotal.IsPositive() {
		// una línea que redondea a cero sería una venta gratis
		return entity.SaleItem{}, &domain.PricingError{ProductID: p.ID, Variant: in.VariantSKU}
	}
	discount := in.Discount.Round(MoneyPlaces)
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return entity.SaleItem{}, &domain.ValidationError{Field: "discount", Reason: "debe estar entre 0 y el subtotal de la línea"}
	}
	rate := TaxRate(p)
	tax := subtotal.Sub(discount).Mul(rate).Div(hundred).Round(MoneyPlaces)

	item := entity.SaleItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    in.Quantity,
		UnitPrice:   unitPrice,
		Subtotal:    subtotal,
		Discount:    discount,
		TaxRate:     rate,
		Tax:         tax,
		Total:       subtotal.Sub(discount).Add(tax),
		Sourced:     in.Sourced,
	}
	if variant != nil {
		item.VariantSKU = variant.SKU
		item.ProductName = p.Name + " / " + variant.Name
	}
	if in.Sourced {
		if in.SourcedCost == nil || in.SourcedCost.IsNegative() {
			return entity.SaleItem{}, &domain.ValidationError{Field: "sourcing_cost", Reason: "requerido y no negativo para ítems surtidos"}
		}
		item.SourcedCost = *in.SourcedCost
	}
	return item, nil
}

// Summarize suma subtotales, descuentos e impuestos de las líneas.
func Summarize(items []entity.SaleItem) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal = t.Subtotal.Add(it.Subtotal)
		t.Discount = t.Discount.Add(it.Discount)
		t.Tax = t.Tax.Add(it.Tax)
	}
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Tax)
	return t
}

// SourcedProfit utilidad de una línea surtida: (precio - costo) × cantidad.
func SourcedProfit(salePrice, cost, qty decimal.Decimal) decimal.Decimal {
	return salePrice.Sub(cost).Mul(qty).Round(MoneyPlaces)
}
