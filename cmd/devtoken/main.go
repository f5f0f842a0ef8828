// devtoken emite un JWT de desarrollo con todas las capacidades de ventas,
// firmado con JWT_SECRET de la configuración.
//
// Uso: go run ./cmd/devtoken [user_id] [store_id]
// Por defecto usa el cajero y la tienda del catálogo en memoria.
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/pos-ventas-api/internal/domain/auth"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-ventas-api/pkg/config"
	"github.com/jhoicas/pos-ventas-api/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	id := jwt.Identity{
		UserID:  memory.DemoCashierID,
		StoreID: memory.DemoStoreID,
		Capabilities: auth.NewCapabilitySet(
			string(auth.CapSalesCreate),
			string(auth.CapSalesRead),
			string(auth.CapSalesRefund),
			string(auth.CapReportsRead),
		).Strings(),
	}
	if len(os.Args) > 1 {
		id.UserID = os.Args[1]
	}
	if len(os.Args) > 2 {
		id.StoreID = os.Args[2]
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, id, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generar token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
