package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ventas-api/internal/application/dto"
	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
)

// SourcedHandler reporte de ítems surtidos.
type SourcedHandler struct {
	queries *appsales.QueryUseCase
}

// NewSourcedHandler construye el handler.
func NewSourcedHandler(queries *appsales.QueryUseCase) *SourcedHandler {
	return &SourcedHandler{queries: queries}
}

// Report GET /api/sourced-items?store_id=&product_id=&from=&to=
func (h *SourcedHandler) Report(c *fiber.Ctx) error {
	in := dto.SourcedReportRequest{
		StoreID:   c.Query("store_id", GetStoreID(c)),
		ProductID: c.Query("product_id"),
	}
	var err error
	if in.From, err = parseTimeQuery(c, "from"); err != nil {
		return writeError(c, err)
	}
	if in.To, err = parseTimeQuery(c, "to"); err != nil {
		return writeError(c, err)
	}
	out, err := h.queries.SourcedReport(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
