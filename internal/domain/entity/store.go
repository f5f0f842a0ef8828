package entity

import "time"

// Store representa una tienda o sucursal donde se vende y se almacena inventario.
type Store struct {
	ID        string
	Code      string // prefijo corto usado en la numeración
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
