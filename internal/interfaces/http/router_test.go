package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ventas-api/internal/application/dto"
	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
	"github.com/jhoicas/pos-ventas-api/internal/domain/auth"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/ws"
	apphttp "github.com/jhoicas/pos-ventas-api/internal/interfaces/http"
)

var allCaps = []auth.Capability{auth.CapSalesCreate, auth.CapSalesRead, auth.CapSalesRefund, auth.CapReportsRead}

// buildApp API completa sobre el almacenamiento en memoria con el catálogo de demostración.
func buildApp(t *testing.T) *fiber.App {
	t.Helper()
	s := memory.NewSeeded()
	deps := appsales.Deps{
		TxRunner:  s,
		Numbers:   appsales.NewLocalNumberGenerator("SL"),
		Sales:     s.Repos().Sales,
		Stores:    s.Stores(),
		Customers: s.Customers(),
		Users:     s.Users(),
	}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CreateSale: appsales.NewCreateSaleUseCase(deps),
		Queries:    appsales.NewQueryUseCase(deps, s.Repos().SourcedItems),
		Receipts:   appsales.NewReceiptUseCase(deps, pdf.NewReceiptGenerator()),
		Hub:        ws.NewHub(nil, 8),
		JWTSecret:  testJWTSecret,
	})
	return app
}

// upgradeRequest GET /ws/sales con las cabeceras de un handshake WebSocket.
func upgradeRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func send(t *testing.T, app *fiber.App, method, path, body, authHeader string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

const coffeeSale = `{
	"store_id": "store-main",
	"items": [{"product_id": "prod-coffee", "quantity": "3"}],
	"payments": [{"method": "cash", "amount": "100"}]
}`

func TestHealth(t *testing.T) {
	resp := send(t, buildApp(t), http.MethodGet, "/health", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateSale_Retorna201ConTotales(t *testing.T) {
	app := buildApp(t)
	resp := send(t, app, http.MethodPost, "/api/sales", coffeeSale, bearer(t, allCaps...))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sale := decodeJSON[dto.SaleResponse](t, resp)
	assert.NotEmpty(t, sale.ID)
	assert.True(t, strings.HasPrefix(sale.Number, "SL-"))
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("63")), "total %s", sale.Total)
	assert.True(t, sale.ChangeAmount.Equal(decimal.RequireFromString("37")))
	assert.Equal(t, "completed", sale.Status)
	assert.Equal(t, "Tienda principal", sale.Store.Name)
	assert.Equal(t, "Cajero Demo", sale.Cashier.Name)
}

func TestCreateSale_TiendaPorDefectoDelToken(t *testing.T) {
	body := `{"items": [{"product_id": "prod-coffee", "quantity": "1"}]}`
	resp := send(t, buildApp(t), http.MethodPost, "/api/sales", body, bearer(t, allCaps...))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sale := decodeJSON[dto.SaleResponse](t, resp)
	assert.Equal(t, testStoreID, sale.Store.ID)
	assert.Equal(t, "due", sale.Status)
}

func TestCreateSale_CampoDesconocidoRetorna400(t *testing.T) {
	body := `{"store_id": "store-main", "items": [{"product_id": "prod-coffee", "quantity": "1"}], "price": "1"}`
	resp := send(t, buildApp(t), http.MethodPost, "/api/sales", body, bearer(t, allCaps...))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	e := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", e.Code)
}

func TestCreateSale_CantidadCeroRetorna400(t *testing.T) {
	body := `{"store_id": "store-main", "items": [{"product_id": "prod-coffee", "quantity": "0"}]}`
	resp := send(t, buildApp(t), http.MethodPost, "/api/sales", body, bearer(t, allCaps...))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	e := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Equal(t, "items[0].quantity", e.Details["field"])
}

func TestCreateSale_StockInsuficienteRetorna409ConDetalle(t *testing.T) {
	body := `{"store_id": "store-main", "items": [{"product_id": "prod-coffee", "quantity": "41"}]}`
	resp := send(t, buildApp(t), http.MethodPost, "/api/sales", body, bearer(t, allCaps...))
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	e := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	assert.Equal(t, "prod-coffee", e.Details["product_id"])
	assert.Equal(t, "inventory", e.Details["ledger"])
	assert.Equal(t, "40", e.Details["available"])
	assert.Equal(t, "41", e.Details["requested"])
}

func TestCreateSale_ProductoInexistenteRetorna404(t *testing.T) {
	body := `{"store_id": "store-main", "items": [{"product_id": "nope", "quantity": "1"}]}`
	resp := send(t, buildApp(t), http.MethodPost, "/api/sales", body, bearer(t, allCaps...))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	e := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Equal(t, "PRODUCT_NOT_FOUND", e.Code)
	assert.Equal(t, "nope", e.Details["product_id"])
}

func TestCreateSale_SinCapacidadRetorna403(t *testing.T) {
	resp := send(t, buildApp(t), http.MethodPost, "/api/sales", coffeeSale, bearer(t, auth.CapSalesRead))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateSale_IdempotencyKeyDevuelveLaMismaVenta(t *testing.T) {
	app := buildApp(t)
	body := `{"store_id": "store-main", "idempotency_key": "pos-7:42", "items": [{"product_id": "prod-coffee", "quantity": "1"}]}`

	first := send(t, app, http.MethodPost, "/api/sales", body, bearer(t, allCaps...))
	require.Equal(t, http.StatusCreated, first.StatusCode)
	a := decodeJSON[dto.SaleResponse](t, first)

	second := send(t, app, http.MethodPost, "/api/sales", body, bearer(t, allCaps...))
	require.Equal(t, http.StatusOK, second.StatusCode)
	b := decodeJSON[dto.SaleResponse](t, second)

	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.Duplicate)
}

func TestSale_ConsultaComprobanteYEstado(t *testing.T) {
	app := buildApp(t)
	created := decodeJSON[dto.SaleResponse](t, send(t, app, http.MethodPost, "/api/sales", coffeeSale, bearer(t, allCaps...)))

	got := send(t, app, http.MethodGet, "/api/sales/"+created.ID, "", bearer(t, auth.CapSalesRead))
	require.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, created.Number, decodeJSON[dto.SaleResponse](t, got).Number)

	receipt := send(t, app, http.MethodGet, "/api/sales/"+created.ID+"/receipt", "", bearer(t, auth.CapSalesRead))
	defer receipt.Body.Close()
	require.Equal(t, http.StatusOK, receipt.StatusCode)
	assert.Equal(t, "application/pdf", receipt.Header.Get("Content-Type"))
	raw, err := io.ReadAll(receipt.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))

	refund := send(t, app, http.MethodPatch, "/api/sales/"+created.ID+"/status", `{"status": "refunded"}`, bearer(t, auth.CapSalesRefund))
	require.Equal(t, http.StatusOK, refund.StatusCode)
	assert.Equal(t, "refunded", decodeJSON[dto.SaleResponse](t, refund).Status)

	again := send(t, app, http.MethodPatch, "/api/sales/"+created.ID+"/status", `{"status": "refunded"}`, bearer(t, auth.CapSalesRefund))
	defer again.Body.Close()
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestSale_InexistenteRetorna404(t *testing.T) {
	resp := send(t, buildApp(t), http.MethodGet, "/api/sales/no-existe", "", bearer(t, auth.CapSalesRead))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListSales_FiltraPorTienda(t *testing.T) {
	app := buildApp(t)
	for i := 0; i < 2; i++ {
		resp := send(t, app, http.MethodPost, "/api/sales", coffeeSale, bearer(t, allCaps...))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := send(t, app, http.MethodGet, "/api/sales?store_id=store-main&limit=10", "", bearer(t, auth.CapSalesRead))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeJSON[dto.SaleListResponse](t, resp)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 10, list.Page.Limit)

	bad := send(t, app, http.MethodGet, "/api/sales?from=ayer", "", bearer(t, auth.CapSalesRead))
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestSourcedReport_IncluyeVentaSurtida(t *testing.T) {
	app := buildApp(t)
	body := `{"store_id": "store-main", "items": [{"product_id": "prod-sofa", "quantity": "1", "sourced": true, "sourcing_cost": "600"}]}`
	created := send(t, app, http.MethodPost, "/api/sales", body, bearer(t, allCaps...))
	require.Equal(t, http.StatusCreated, created.StatusCode)
	created.Body.Close()

	resp := send(t, app, http.MethodGet, "/api/sourced-items?store_id=store-main", "", bearer(t, auth.CapReportsRead))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decodeJSON[dto.SourcedReportResponse](t, resp)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "prod-sofa", report.Items[0].ProductID)
	assert.True(t, report.TotalCost.Equal(decimal.RequireFromString("600")))
}

func TestWSSales_SinTokenRetorna401(t *testing.T) {
	resp := upgradeRequest(t, buildApp(t), "/ws/sales", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Equal(t, "MISSING_TOKEN", body.Code)
}

func TestWSSales_TokenInvalidoEnQueryRetorna401(t *testing.T) {
	resp := upgradeRequest(t, buildApp(t), "/ws/sales?access_token=no-es-un-jwt", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSSales_SinCapacidadDeLecturaRetorna403(t *testing.T) {
	token := strings.TrimPrefix(bearer(t, auth.CapSalesCreate), "Bearer ")
	resp := upgradeRequest(t, buildApp(t), "/ws/sales?access_token="+token, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWSSales_SinUpgradeRetorna426(t *testing.T) {
	resp := send(t, buildApp(t), http.MethodGet, "/ws/sales", "", bearer(t, allCaps...))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
