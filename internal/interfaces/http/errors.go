package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ventas-api/internal/application/dto"
	"github.com/jhoicas/pos-ventas-api/internal/domain"
)

// writeError traduce los errores del dominio a status HTTP y dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var (
		verr     *domain.ValidationError
		notFound *domain.ProductNotFoundError
		inactive *domain.InactiveProductError
		pricing  *domain.PricingError
		stock    *domain.InsufficientStockError
		dupNum   *domain.DuplicateSaleNumberError
		abort    *domain.TransactionAbortError
	)
	switch {
	case errors.As(err, &verr):
		var details map[string]string
		if verr.Field != "" {
			details = map[string]string{"field": verr.Field}
		}
		return http.StatusBadRequest, dto.ErrorResponse{Code: verr.Code(), Message: verr.Error(), Details: details}
	case errors.As(err, &notFound):
		return http.StatusNotFound, dto.ErrorResponse{Code: notFound.Code(), Message: notFound.Error(),
			Details: map[string]string{"product_id": notFound.ProductID}}
	case errors.As(err, &inactive):
		return http.StatusUnprocessableEntity, dto.ErrorResponse{Code: inactive.Code(), Message: inactive.Error(),
			Details: map[string]string{"product_id": inactive.ProductID}}
	case errors.As(err, &pricing):
		details := map[string]string{"product_id": pricing.ProductID}
		if pricing.Variant != "" {
			details["variant_sku"] = pricing.Variant
		}
		return http.StatusUnprocessableEntity, dto.ErrorResponse{Code: pricing.Code(), Message: pricing.Error(), Details: details}
	case errors.As(err, &stock):
		return http.StatusConflict, dto.ErrorResponse{Code: stock.Code(), Message: stock.Error(), Details: map[string]string{
			"product_id": stock.ProductID,
			"ledger":     stock.Ledger,
			"available":  stock.Available.String(),
			"requested":  stock.Requested.String(),
		}}
	case errors.As(err, &dupNum):
		return http.StatusConflict, dto.ErrorResponse{Code: dupNum.Code(), Message: dupNum.Error(),
			Details: map[string]string{"number": dupNum.Number}}
	case errors.As(err, &abort):
		// No se filtra la causa de infraestructura al cliente.
		return http.StatusServiceUnavailable, dto.ErrorResponse{Code: abort.Code(), Message: "la venta no se pudo confirmar, reintente"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, dto.ErrorResponse{Code: domain.CodeValidation, Message: err.Error()}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}
