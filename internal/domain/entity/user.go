package entity

import "time"

// User representa un usuario del sistema; en la venta actúa como cajero.
// Las capacidades se resuelven fuera del núcleo (auth) y viajan en el token.
type User struct {
	ID        string
	Email     string
	Name      string
	Status    string // active, inactive, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}
