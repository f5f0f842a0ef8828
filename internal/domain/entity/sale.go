package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusCompleted         = "completed"
	SaleStatusDue               = "due" // pagos por debajo del total
	SaleStatusRefunded          = "refunded"
	SaleStatusPartiallyRefunded = "partially_refunded"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodWallet   = "wallet"
	PaymentMethodCredit   = "credit"
)

var saleTransitions = map[string][]string{
	SaleStatusCompleted: {SaleStatusRefunded, SaleStatusPartiallyRefunded},
	SaleStatusDue:       {SaleStatusCompleted, SaleStatusRefunded},
}

// Sale documento inmutable de una venta confirmada. Items y Payments van embebidos.
// Invariantes: Total = Subtotal - Discount + Tax; Subtotal = Σ UnitPrice × Quantity.
type Sale struct {
	ID             string
	Number         string
	StoreID        string
	CustomerID     string // vacío si no hay cliente
	CashierID      string
	IdempotencyKey string
	Items          []SaleItem
	Payments       []Payment
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	PaidAmount     decimal.Decimal
	DueAmount      decimal.Decimal
	ChangeAmount   decimal.Decimal
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Payment asignación de pago de la venta.
type Payment struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// CanTransitionTo aplica la máquina de estados post-venta.
func (s *Sale) CanTransitionTo(next string) bool {
	for _, allowed := range saleTransitions[s.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidStatus indica si status es un estado conocido.
func ValidStatus(status string) bool {
	switch status {
	case SaleStatusCompleted, SaleStatusDue, SaleStatusRefunded, SaleStatusPartiallyRefunded:
		return true
	}
	return false
}

// ValidPaymentMethod indica si el método de pago es aceptado.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodWallet, PaymentMethodCredit:
		return true
	}
	return false
}
