package http

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ventas-api/internal/application/dto"
	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/pkg/validator"
)

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	create   *appsales.CreateSaleUseCase
	queries  *appsales.QueryUseCase
	receipts *appsales.ReceiptUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(create *appsales.CreateSaleUseCase, queries *appsales.QueryUseCase, receipts *appsales.ReceiptUseCase) *SaleHandler {
	return &SaleHandler{create: create, queries: queries, receipts: receipts}
}

// Create registra una venta y descuenta stock.
// POST /api/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateSaleRequest
	if err := decodeStrict(c.Body(), &in); err != nil {
		return writeError(c, err)
	}
	if in.StoreID == "" {
		in.StoreID = GetStoreID(c)
	}
	if err := validateBody(in); err != nil {
		return writeError(c, err)
	}
	sale, err := h.create.CreateSale(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	if sale.Duplicate {
		return c.Status(fiber.StatusOK).JSON(sale)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// GetByID detalle de una venta con tienda, cliente y cajero expandidos.
// GET /api/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.queries.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sale)
}

// List ventas por tienda y rango de fechas.
// GET /api/sales?store_id=&from=&to=&limit=&offset=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var in dto.SaleListRequest
	if err := c.QueryParser(&in); err != nil {
		return writeError(c, &domain.ValidationError{Field: "query", Reason: "parámetros inválidos"})
	}
	if in.StoreID == "" {
		in.StoreID = GetStoreID(c)
	}
	var err error
	if in.From, err = parseTimeQuery(c, "from"); err != nil {
		return writeError(c, err)
	}
	if in.To, err = parseTimeQuery(c, "to"); err != nil {
		return writeError(c, err)
	}
	if err := validateBody(in.PageRequest); err != nil {
		return writeError(c, err)
	}
	out, err := h.queries.ListSales(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus transición post-venta (reembolso, cobro de saldo).
// PATCH /api/sales/:id/status
func (h *SaleHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeSaleStatusRequest
	if err := decodeStrict(c.Body(), &in); err != nil {
		return writeError(c, err)
	}
	if err := validateBody(in); err != nil {
		return writeError(c, err)
	}
	sale, err := h.queries.ChangeStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sale)
}

// Receipt comprobante PDF.
// GET /api/sales/:id/receipt
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.receipts.Render(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// decodeStrict rechaza campos desconocidos y contenido sobrante tras el objeto.
func decodeStrict(body []byte, out interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &domain.ValidationError{Field: "body", Reason: "cuerpo vacío"}
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		reason := "JSON inválido"
		if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field") {
			reason = strings.TrimPrefix(msg, "json: ")
		}
		return &domain.ValidationError{Field: "body", Reason: reason}
	}
	if dec.More() {
		return &domain.ValidationError{Field: "body", Reason: "contenido extra tras el objeto JSON"}
	}
	return nil
}

// validateBody aplica las etiquetas validate y reporta el primer campo rechazado.
func validateBody(in interface{}) error {
	errs := validator.ValidateStruct(in)
	if len(errs) == 0 {
		return nil
	}
	fe := errs[0]
	reason := "regla " + fe.Tag
	if fe.Param != "" {
		reason += "=" + fe.Param
	}
	return &domain.ValidationError{Field: fe.Field, Reason: reason}
}

// parseTimeQuery acepta RFC3339 o fecha (2006-01-02, inicio del día UTC).
func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &domain.ValidationError{Field: key, Reason: "fecha inválida, use RFC3339 o AAAA-MM-DD"}
}
