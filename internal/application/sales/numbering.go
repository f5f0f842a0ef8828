package sales

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// LocalNumberGenerator genera {prefix}-{yyyymmddhhmmss}-{secuencia}{sufijo aleatorio}.
// La secuencia atómica separa llamadas concurrentes del mismo proceso; el sufijo
// aleatorio separa instancias distintas. La unicidad final la impone el almacenamiento.
type LocalNumberGenerator struct {
	prefix string
	seq    atomic.Uint64
}

// NewLocalNumberGenerator construye el generador en memoria.
func NewLocalNumberGenerator(prefix string) *LocalNumberGenerator {
	if prefix == "" {
		prefix = "SL"
	}
	return &LocalNumberGenerator{prefix: prefix}
}

// Next devuelve el siguiente número. storeID no participa: la secuencia es global al proceso.
func (g *LocalNumberGenerator) Next(_ context.Context, _ string, at time.Time) (string, error) {
	n := g.seq.Add(1) % 1_000_000
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("numeración: %w", err)
	}
	return fmt.Sprintf("%s-%s-%06d%s", g.prefix, at.UTC().Format("20060102150405"), n, hex.EncodeToString(buf)), nil
}
