// Package auth modela la autorización por capacidades: cada actor trae un conjunto
// de capacidades concedidas y autorizar es una prueba de pertenencia.
package auth

// Capability permiso atómico concedido a un actor.
type Capability string

const (
	CapSalesCreate Capability = "sales:create"
	CapSalesRead   Capability = "sales:read"
	CapSalesRefund Capability = "sales:refund"
	CapReportsRead Capability = "reports:read"
)

// CapabilitySet conjunto de capacidades de un actor.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet construye el conjunto desde los strings del token.
func NewCapabilitySet(caps ...string) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		if c == "" {
			continue
		}
		set[Capability(c)] = struct{}{}
	}
	return set
}

// Has indica si el conjunto contiene la capacidad.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// HasAll indica si el conjunto contiene todas las capacidades pedidas.
func (s CapabilitySet) HasAll(caps ...Capability) bool {
	for _, c := range caps {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Strings devuelve las capacidades como strings (para serializar en el token).
func (s CapabilitySet) Strings() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, string(c))
	}
	return out
}
