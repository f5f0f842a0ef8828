package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrInactiveProduct     = errors.New("producto inactivo")
	ErrPricing             = errors.New("precio no resoluble")
	ErrDuplicateSaleNumber = errors.New("número de venta duplicado")
	ErrTransactionAborted  = errors.New("transacción abortada")
)

// Códigos estables expuestos al cliente.
const (
	CodeValidation          = "VALIDATION"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeInactiveProduct     = "INACTIVE_PRODUCT"
	CodePricing             = "PRICING"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeDuplicateSaleNumber = "DUPLICATE_SALE_NUMBER"
	CodeTransactionAborted  = "TRANSACTION_ABORTED"
)

// Ledgers de stock.
const (
	LedgerProduct   = "product"
	LedgerInventory = "inventory"
)

// ValidationError entrada rechazada antes de cualquier trabajo con estado.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Reason
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }
func (e *ValidationError) Code() string         { return CodeValidation }

// ProductNotFoundError el producto referenciado no existe.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %s no encontrado", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound || target == ErrNotFound
}
func (e *ProductNotFoundError) Code() string { return CodeProductNotFound }

// InactiveProductError el producto existe pero está desactivado.
type InactiveProductError struct {
	ProductID string
}

func (e *InactiveProductError) Error() string {
	return fmt.Sprintf("producto %s inactivo", e.ProductID)
}

func (e *InactiveProductError) Is(target error) bool { return target == ErrInactiveProduct }
func (e *InactiveProductError) Code() string         { return CodeInactiveProduct }

// PricingError no hay precio unitario distinto de cero para la línea.
type PricingError struct {
	ProductID string
	Variant   string
}

func (e *PricingError) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("producto %s (variante %s) sin precio", e.ProductID, e.Variant)
	}
	return fmt.Sprintf("producto %s sin precio", e.ProductID)
}

func (e *PricingError) Is(target error) bool { return target == ErrPricing }
func (e *PricingError) Code() string         { return CodePricing }

// InsufficientStockError la cantidad pedida supera la disponible en alguno de los ledgers.
type InsufficientStockError struct {
	ProductID string
	StoreID   string
	Ledger    string // product | inventory
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s (%s): disponible %s, requerido %s",
		e.ProductID, e.Ledger, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
func (e *InsufficientStockError) Code() string         { return CodeInsufficientStock }

// DuplicateSaleNumberError colisión del número de venta al confirmar.
type DuplicateSaleNumberError struct {
	Number string
}

func (e *DuplicateSaleNumberError) Error() string {
	return fmt.Sprintf("número de venta %s ya existe", e.Number)
}

func (e *DuplicateSaleNumberError) Is(target error) bool { return target == ErrDuplicateSaleNumber }
func (e *DuplicateSaleNumberError) Code() string         { return CodeDuplicateSaleNumber }

// TransactionAbortError fallo de almacenamiento o conflicto dentro de la unidad de trabajo.
type TransactionAbortError struct {
	Cause error
}

func (e *TransactionAbortError) Error() string {
	if e.Cause == nil {
		return ErrTransactionAborted.Error()
	}
	return ErrTransactionAborted.Error() + ": " + e.Cause.Error()
}

func (e *TransactionAbortError) Is(target error) bool { return target == ErrTransactionAborted }
func (e *TransactionAbortError) Unwrap() error        { return e.Cause }
func (e *TransactionAbortError) Code() string         { return CodeTransactionAborted }

// CodedError lo implementan todos los errores estructurados de la venta.
type CodedError interface {
	error
	Code() string
}

// IsBusinessError indica si err es una regla de negocio (no un fallo de infraestructura).
func IsBusinessError(err error) bool {
	var c CodedError
	if !errors.As(err, &c) {
		return false
	}
	var abort *TransactionAbortError
	return !errors.As(err, &abort)
}
