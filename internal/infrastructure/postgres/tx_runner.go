package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
	"github.com/jhoicas/pos-ventas-api/internal/domain"
)

// Ensure TxRunner implements sales.SalesTxRunner.
var _ appsales.SalesTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSale inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los bloqueos de fila (SELECT FOR UPDATE) serializan ventas concurrentes sobre el mismo producto.
func (r *TxRunner) RunSale(ctx context.Context, fn func(repos appsales.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return &domain.TransactionAbortError{Cause: fmt.Errorf("begin transaction: %w", err)}
	}
	// Rollback tras un Commit exitoso es no-op; con ctx vencido libera la tx igual.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	repos := appsales.TxRepos{
		Products:     NewProductRepository(tx),
		Inventory:    NewInventoryRepository(tx),
		Sales:        NewSaleRepository(tx),
		SourcedItems: NewSourcedItemRepository(tx),
	}
	if err := fn(repos); err != nil {
		if isSerializationFailure(err) {
			return &domain.TransactionAbortError{Cause: err}
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxCommitRollback) || isSerializationFailure(err) {
			return &domain.TransactionAbortError{Cause: err}
		}
		return &domain.TransactionAbortError{Cause: fmt.Errorf("commit transaction: %w", err)}
	}
	return nil
}
