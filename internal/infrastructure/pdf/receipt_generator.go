// Package pdf genera el comprobante de venta del punto de venta.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda + código      │  N° Venta + Fecha + Estado   │
//	│  CAJERO / CLIENTE                                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Desc. | IVA | Total    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / Impuestos / TOTAL           │
//	│  PAGOS: método + monto, pagado / saldo / vuelto              │
//	│  FOOTER: QR con el número de venta                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
)

var _ appsales.ReceiptRenderer = (*ReceiptGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var paymentLabels = map[string]string{
	entity.PaymentMethodCash:     "Efectivo",
	entity.PaymentMethodCard:     "Tarjeta",
	entity.PaymentMethodTransfer: "Transferencia",
	entity.PaymentMethodWallet:   "Billetera",
	entity.PaymentMethodCredit:   "Crédito",
}

// ReceiptGenerator implementa sales.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// RenderReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) RenderReceipt(r appsales.Receipt) ([]byte, error) {
	if r.Sale == nil {
		return nil, fmt.Errorf("pdf: venta vacía")
	}
	storeName := "Tienda"
	if r.Store != nil {
		storeName = r.Store.Name
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta "+r.Sale.Number, true).
		WithAuthor(storeName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(r))
	m.AddRows(partiesRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(r.Sale.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(r.Sale)...)
	m.AddRows(paymentRows(r.Sale)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(r.Sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(r appsales.Receipt) core.Row {
	name, codeLabel := "Tienda", r.Sale.StoreID
	if r.Store != nil {
		name = r.Store.Name
		codeLabel = nonEmpty(r.Store.Code, r.Store.ID)
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Tienda: "+codeLabel, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(r.Sale.Number, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7}),
			text.New(r.Sale.CreatedAt.Format("02/01/2006 15:04")+"  |  "+strings.ToUpper(r.Sale.Status),
				props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func partiesRow(r appsales.Receipt) core.Row {
	cashier := r.Sale.CashierID
	if r.Cashier != nil {
		cashier = nonEmpty(r.Cashier.Name, r.Cashier.Email)
	}
	customer := "Consumidor final"
	if r.Customer != nil {
		customer = r.Customer.Name
	}
	return row.New(10).Add(
		col.New(6).Add(text.New("Cajero: "+cashier, props.Text{Size: 8, Top: 2, Color: colorGray})),
		col.New(6).Add(text.New("Cliente: "+customer, props.Text{Size: 8, Top: 2, Align: align.Right, Color: colorGray})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unit", 2, align.Right),
		h("Desc.", 1, align.Right),
		h("IVA%", 1, align.Center),
		h("Total", 2, align.Right),
	)
}

func itemRows(items []entity.SaleItem) []core.Row {
	out := make([]core.Row, 0, len(items))
	for _, it := range items {
		name := it.ProductName
		if it.Sourced {
			name += " (surtido)"
		}
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(it.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(FormatMoney(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(FormatMoney(it.Discount), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(it.TaxRate.StringFixed(0)+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(FormatMoney(it.Total), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return out
}

func totalsRows(s *entity.Sale) []core.Row {
	entry := func(label string, v decimal.Decimal, grand bool) core.Row {
		p := props.Text{Size: 9, Align: align.Right, Right: 1, Top: 1}
		if grand {
			p.Style, p.Size, p.Color = fontstyle.Bold, 10, colorPrimary
		}
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, p)),
			col.New(3).Add(text.New(FormatMoney(v), p)),
		)
	}
	return []core.Row{
		entry("Subtotal:", s.Subtotal, false),
		entry("Descuento:", s.Discount, false),
		entry("Impuestos:", s.Tax, false),
		entry("TOTAL:", s.Total, true),
	}
}

func paymentRows(s *entity.Sale) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(text.New("PAGOS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}))),
	}
	for _, p := range s.Payments {
		label := nonEmpty(paymentLabels[p.Method], p.Method)
		if p.Reference != "" {
			label += " (" + p.Reference + ")"
		}
		rows = append(rows, row.New(5).Add(
			col.New(9).Add(text.New(label, props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(FormatMoney(p.Amount), props.Text{Size: 8, Align: align.Right, Right: 1, Top: 1})),
		))
	}
	summary := fmt.Sprintf("Pagado: %s   |   Saldo: %s   |   Vuelto: %s",
		FormatMoney(s.PaidAmount), FormatMoney(s.DueAmount), FormatMoney(s.ChangeAmount))
	rows = append(rows, row.New(6).Add(col.New(12).Add(text.New(summary, props.Text{Size: 8, Align: align.Right, Right: 1, Top: 1, Color: colorGray}))))
	return rows
}

func footerRow(s *entity.Sale) core.Row {
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(s.Number, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Gracias por su compra.", props.Text{Style: fontstyle.Bold, Size: 10, Top: 6, Left: 3, Color: colorPrimary}),
			text.New("Presente este comprobante para cambios o devoluciones.", props.Text{Size: 8, Top: 14, Left: 3, Color: colorGray}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatMoney formatea con separador de miles "." y dos decimales tras ",".
// Ej: 1234567.5 → "$1.234.567,50"
func FormatMoney(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + "$" + string(buf) + "," + frac
}
