// Package redis secuencia de numeración de ventas compartida entre instancias.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
)

var _ appsales.NumberGenerator = (*SaleSequence)(nil)

// La clave diaria vive lo suficiente para cubrir cambios de zona horaria.
const keyTTL = 48 * time.Hour

// SaleSequence genera {prefix}-{yyyymmdd}-{secuencia diaria} con INCR atómico.
type SaleSequence struct {
	client *goredis.Client
	prefix string
}

// NewSaleSequence crea el cliente Redis de la secuencia.
func NewSaleSequence(addr, password string, db int, prefix string) *SaleSequence {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if prefix == "" {
		prefix = "SL"
	}
	return &SaleSequence{client: client, prefix: prefix}
}

// Ping verifica la conexión.
func (s *SaleSequence) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (s *SaleSequence) Close() error {
	return s.client.Close()
}

// Next incrementa la secuencia del día. La secuencia es global: el número no depende de la tienda.
func (s *SaleSequence) Next(ctx context.Context, _ string, at time.Time) (string, error) {
	day := at.UTC().Format("20060102")
	key := sequenceKey(s.prefix, day)

	var incr *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, keyTTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("secuencia redis: %w", err)
	}
	return formatNumber(s.prefix, day, incr.Val()), nil
}

func sequenceKey(prefix, day string) string {
	return "sale_seq:" + prefix + ":" + day
}

func formatNumber(prefix, day string, seq int64) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, day, seq)
}
