package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/sales.
// El cajero no viaja en el body: se toma de la sesión autenticada.
type CreateSaleRequest struct {
	StoreID        string            `json:"store_id" validate:"required"`
	CustomerID     string            `json:"customer_id,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty" validate:"omitempty,max=128"`
	Items          []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Payments       []PaymentRequest  `json:"payments" validate:"dive"`
}

// SaleItemRequest línea del carrito.
// SourcingCost y OverridePrice solo aplican cuando Sourced es true.
type SaleItemRequest struct {
	ProductID     string           `json:"product_id" validate:"required"`
	Quantity      decimal.Decimal  `json:"quantity" validate:"dec_positive"`
	VariantSKU    string           `json:"variant_sku,omitempty"`
	Discount      decimal.Decimal  `json:"discount" validate:"dec_nonneg"`
	Sourced       bool             `json:"sourced"`
	SourcingCost  *decimal.Decimal `json:"sourcing_cost,omitempty"`
	OverridePrice *decimal.Decimal `json:"override_price,omitempty"`
}

// PaymentRequest asignación de pago.
type PaymentRequest struct {
	Method    string          `json:"method" validate:"required,oneof=cash card transfer wallet credit"`
	Amount    decimal.Decimal `json:"amount" validate:"dec_positive"`
	Reference string          `json:"reference,omitempty" validate:"omitempty,max=128"`
}

// ChangeSaleStatusRequest body para PATCH /api/sales/:id/status.
type ChangeSaleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed due refunded partially_refunded"`
}

// SaleResponse venta persistida con entidades referenciadas expandidas.
type SaleResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	Status         string             `json:"status"`
	Store          StoreSummary       `json:"store"`
	Customer       *CustomerSummary   `json:"customer,omitempty"`
	Cashier        CashierSummary     `json:"cashier"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
	Items          []SaleItemResponse `json:"items"`
	Payments       []PaymentResponse  `json:"payments"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Discount       decimal.Decimal    `json:"discount"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
	PaidAmount     decimal.Decimal    `json:"paid_amount"`
	DueAmount      decimal.Decimal    `json:"due_amount"`
	ChangeAmount   decimal.Decimal    `json:"change_amount"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Duplicate      bool               `json:"duplicate,omitempty"` // true si se devolvió una venta previa por idempotency_key
}

// SaleItemResponse línea resuelta de la venta.
type SaleItemResponse struct {
	ProductID    string           `json:"product_id"`
	ProductName  string           `json:"product_name"`
	VariantSKU   string           `json:"variant_sku,omitempty"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Discount     decimal.Decimal  `json:"discount"`
	TaxRate      decimal.Decimal  `json:"tax_rate"`
	Tax          decimal.Decimal  `json:"tax"`
	Total        decimal.Decimal  `json:"total"`
	Sourced      bool             `json:"sourced"`
	SourcingCost *decimal.Decimal `json:"sourcing_cost,omitempty"`
}

// PaymentResponse pago registrado.
type PaymentResponse struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// StoreSummary tienda expandida.
type StoreSummary struct {
	ID   string `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// CustomerSummary cliente expandido.
type CustomerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CashierSummary cajero expandido.
type CashierSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// SaleListRequest filtros de GET /api/sales.
type SaleListRequest struct {
	StoreID string     `query:"store_id"`
	From    *time.Time `query:"-"`
	To      *time.Time `query:"-"`
	PageRequest
}

// SaleListResponse página de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// SourcedReportRequest filtros de GET /api/sourced-items.
type SourcedReportRequest struct {
	StoreID   string
	ProductID string
	From      *time.Time
	To        *time.Time
}

// SourcedItemResponse registro surtido en el reporte.
type SourcedItemResponse struct {
	ID           string          `json:"id"`
	StoreID      string          `json:"store_id"`
	SaleID       string          `json:"sale_id"`
	SaleNumber   string          `json:"sale_number"`
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	SourcingCost decimal.Decimal `json:"sourcing_cost"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	Profit       decimal.Decimal `json:"profit"`
	RecordedBy   string          `json:"recorded_by"`
	RecordedAt   time.Time       `json:"recorded_at"`
}

// SourcedReportResponse registros surtidos con totales de costo, venta y utilidad.
type SourcedReportResponse struct {
	Items       []SourcedItemResponse `json:"items"`
	TotalCost   decimal.Decimal       `json:"total_cost"`
	TotalSales  decimal.Decimal       `json:"total_sales"`
	TotalProfit decimal.Decimal       `json:"total_profit"`
}
