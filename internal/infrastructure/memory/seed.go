package memory

import (
	"time"

	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Identificadores del catálogo de demostración.
const (
	DemoStoreID   = "store-main"
	DemoCashierID = "user-cashier"
)

// NewSeeded crea un almacenamiento con una tienda, un cajero y un catálogo mínimo (modo desarrollo).
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()
	s.PutStore(entity.Store{ID: DemoStoreID, Code: "MAIN", Name: "Tienda principal", Active: true, CreatedAt: now, UpdatedAt: now})
	s.PutUser(entity.User{ID: DemoCashierID, Email: "cajero@pos.local", Name: "Cajero Demo", Status: "active", CreatedAt: now, UpdatedAt: now})
	s.PutCustomer(entity.Customer{ID: "customer-walkin", Name: "Cliente mostrador", CreatedAt: now, UpdatedAt: now})

	stock := func(n int64) *decimal.Decimal { d := decimal.NewFromInt(n); return &d }
	products := []entity.Product{
		{ID: "prod-coffee", SKU: "CAF-500", Name: "Café 500g", Price: decimal.RequireFromString("20.00"), Cost: decimal.RequireFromString("12.00"), TaxRate: decimal.NewFromInt(5), Active: true, Stock: stock(50)},
		{ID: "prod-tshirt", SKU: "TSH", Name: "Camiseta", Price: decimal.RequireFromString("35.00"), Cost: decimal.RequireFromString("15.00"), TaxRate: decimal.NewFromInt(19), Active: true, Stock: stock(30),
			Variants: []entity.Variant{
				{SKU: "TSH-M", Name: "M", Price: decimal.RequireFromString("35.00"), Cost: decimal.RequireFromString("15.00"), Stock: decimal.NewFromInt(15)},
				{SKU: "TSH-XL", Name: "XL", Price: decimal.RequireFromString("39.00"), Cost: decimal.RequireFromString("17.00"), Stock: decimal.NewFromInt(15)},
			}},
		{ID: "prod-sofa", SKU: "SOF-3", Name: "Sofá 3 puestos", Price: decimal.RequireFromString("900.00"), Cost: decimal.RequireFromString("600.00"), TaxRate: decimal.NewFromInt(19), Active: true},
	}
	for _, p := range products {
		p.CreatedAt, p.UpdatedAt = now, now
		s.PutProduct(p)
	}
	s.PutInventory(entity.Inventory{ID: "inv-coffee-main", ProductID: "prod-coffee", StoreID: DemoStoreID, Quantity: decimal.NewFromInt(40), UpdatedAt: now})
	s.PutInventory(entity.Inventory{ID: "inv-tshirt-main", ProductID: "prod-tshirt", StoreID: DemoStoreID, Quantity: decimal.NewFromInt(30), UpdatedAt: now})
	return s
}
