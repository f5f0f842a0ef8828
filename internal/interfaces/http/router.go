package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
	"github.com/jhoicas/pos-ventas-api/internal/domain/auth"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/ws"
	"github.com/jhoicas/pos-ventas-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateSale *appsales.CreateSaleUseCase
	Queries    *appsales.QueryUseCase
	Receipts   *appsales.ReceiptUseCase
	Hub        *ws.Hub // opcional: sin hub no se expone /ws/sales
	JWTSecret  string
	Logger     *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Sales
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.CreateSale, deps.Queries, deps.Receipts)
	sales.Post("/", RequireCapability(auth.CapSalesCreate), saleHandler.Create)
	sales.Get("/", RequireCapability(auth.CapSalesRead), saleHandler.List)
	sales.Get("/:id", RequireCapability(auth.CapSalesRead), saleHandler.GetByID)
	sales.Get("/:id/receipt", RequireCapability(auth.CapSalesRead), saleHandler.Receipt)
	sales.Patch("/:id/status", RequireCapability(auth.CapSalesRefund), saleHandler.ChangeStatus)

	// Reporte de surtidos
	sourcedHandler := NewSourcedHandler(deps.Queries)
	protected.Get("/sourced-items", RequireCapability(auth.CapReportsRead), sourcedHandler.Report)

	// Feed en vivo de ventas confirmadas. El navegador no puede fijar cabeceras en el
	// upgrade, por eso el token también se acepta como access_token en la query.
	if deps.Hub != nil {
		hub := deps.Hub
		app.Get("/ws/sales",
			func(c *fiber.Ctx) error {
				if websocket.IsWebSocketUpgrade(c) {
					return c.Next()
				}
				return c.SendStatus(fiber.StatusUpgradeRequired)
			},
			WebSocketAuthMiddleware(deps.JWTSecret),
			RequireCapability(auth.CapSalesRead),
			websocket.New(func(c *websocket.Conn) { hub.Serve(c) }),
		)
	}
}
