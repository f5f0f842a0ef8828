package entity

import "time"

// Customer representa un cliente de la tienda (opcional en la venta).
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
