package sales_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/domain/sales"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testProduct() *entity.Product {
	return &entity.Product{
		ID:      "p-1",
		Name:    "Camiseta",
		Price:   dec("20.00"),
		Cost:    dec("9.00"),
		TaxRate: dec("5"),
		Active:  true,
		Variants: []entity.Variant{
			{SKU: "CAM-L", Name: "L", Price: dec("22.50")},
			{SKU: "CAM-GRATIS", Name: "Promo", Price: decimal.Zero},
		},
	}
}

func TestResolveUnitPrice_Orden(t *testing.T) {
	p := testProduct()
	cases := []struct {
		name     string
		variant  string
		sourced  bool
		override *decimal.Decimal
		want     string
	}{
		{"precio base", "", false, nil, "20"},
		{"variante existente", "CAM-L", false, nil, "22.5"},
		{"variante inexistente cae al base", "CAM-XXL", false, nil, "20"},
		{"surtido con precio pactado", "CAM-L", true, decPtr("15.00"), "15"},
		{"override ignorado si no es surtido", "", false, decPtr("15.00"), "20"},
		{"surtido sin override usa variante", "CAM-L", true, nil, "22.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, _, err := sales.ResolveUnitPrice(p, tc.variant, tc.sourced, tc.override)
			require.NoError(t, err)
			assert.True(t, dec(tc.want).Equal(price), "got %s", price)
		})
	}
}

func TestResolveUnitPrice_PrecioCeroEsPricingError(t *testing.T) {
	p := testProduct()

	_, _, err := sales.ResolveUnitPrice(p, "CAM-GRATIS", false, nil)
	var perr *domain.PricingError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "p-1", perr.ProductID)
	assert.ErrorIs(t, err, domain.ErrPricing)

	p.Price = decimal.Zero
	_, _, err = sales.ResolveUnitPrice(p, "", false, nil)
	assert.ErrorIs(t, err, domain.ErrPricing)
}

func TestComputeLine_CaminoFeliz(t *testing.T) {
	item, err := sales.ComputeLine(sales.LineInput{Product: testProduct(), Quantity: dec("3")})
	require.NoError(t, err)

	assert.True(t, dec("60.00").Equal(item.Subtotal))
	assert.True(t, dec("3.00").Equal(item.Tax))
	assert.True(t, dec("63.00").Equal(item.Total))
	assert.Empty(t, item.VariantSKU)
}

func TestComputeLine_ImpuestoSobreBaseDescontada(t *testing.T) {
	item, err := sales.ComputeLine(sales.LineInput{
		Product:  testProduct(),
		Quantity: dec("2"),
		Discount: dec("10.00"),
	})
	require.NoError(t, err)

	// (40 - 10) × 5% = 1.50
	assert.True(t, dec("1.50").Equal(item.Tax))
	assert.True(t, dec("31.50").Equal(item.Total))
}

func TestComputeLine_DescuentoFueraDeRango(t *testing.T) {
	_, err := sales.ComputeLine(sales.LineInput{Product: testProduct(), Quantity: dec("1"), Discount: dec("25")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = sales.ComputeLine(sales.LineInput{Product: testProduct(), Quantity: dec("1"), Discount: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComputeLine_SubtotalRedondeadoACeroEsPricingError(t *testing.T) {
	p := testProduct()
	p.Price = dec("0.01")

	_, err := sales.ComputeLine(sales.LineInput{Product: p, Quantity: dec("0.001")})
	var perr *domain.PricingError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "p-1", perr.ProductID)

	item, err := sales.ComputeLine(sales.LineInput{Product: p, Quantity: dec("0.5")})
	require.NoError(t, err)
	assert.True(t, dec("0.01").Equal(item.Subtotal), "got %s", item.Subtotal)
}

func TestComputeLine_SinTasaEsCero(t *testing.T) {
	p := testProduct()
	p.TaxRate = decimal.Zero
	item, err := sales.ComputeLine(sales.LineInput{Product: p, Quantity: dec("1")})
	require.NoError(t, err)
	assert.True(t, item.Tax.IsZero())
}

func TestComputeLine_SurtidoRequiereCosto(t *testing.T) {
	_, err := sales.ComputeLine(sales.LineInput{
		Product: testProduct(), Quantity: dec("2"), Sourced: true, OverridePrice: decPtr("15"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	item, err := sales.ComputeLine(sales.LineInput{
		Product: testProduct(), Quantity: dec("2"), Sourced: true,
		OverridePrice: decPtr("15.00"), SourcedCost: decPtr("8.00"),
	})
	require.NoError(t, err)
	assert.True(t, item.Sourced)
	assert.True(t, dec("15.00").Equal(item.UnitPrice))
	assert.True(t, dec("8.00").Equal(item.SourcedCost))
}

func TestSummarize_TotalCuadra(t *testing.T) {
	p := testProduct()
	a, err := sales.ComputeLine(sales.LineInput{Product: p, Quantity: dec("3"), Discount: dec("1.10")})
	require.NoError(t, err)
	b, err := sales.ComputeLine(sales.LineInput{Product: p, VariantSKU: "CAM-L", Quantity: dec("1.5")})
	require.NoError(t, err)

	totals := sales.Summarize([]entity.SaleItem{a, b})

	sumLines := a.UnitPrice.Mul(a.Quantity).Add(b.UnitPrice.Mul(b.Quantity)).Round(sales.MoneyPlaces)
	assert.True(t, sumLines.Equal(totals.Subtotal))
	assert.True(t, totals.Subtotal.Sub(totals.Discount).Add(totals.Tax).Equal(totals.Total))
	assert.True(t, a.Total.Add(b.Total).Equal(totals.Total))
}

func TestSourcedProfit(t *testing.T) {
	assert.True(t, dec("14.00").Equal(sales.SourcedProfit(dec("15.00"), dec("8.00"), dec("2"))))
}
