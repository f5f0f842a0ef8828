package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, s *memory.Store, id string, stock int64) {
	t.Helper()
	st := decimal.NewFromInt(stock)
	s.PutProduct(entity.Product{ID: id, Name: id, Price: decimal.NewFromInt(10), Active: true, Stock: &st})
}

func TestRunSale_CommitPublicaEscrituras(t *testing.T) {
	s := memory.New()
	seedProduct(t, s, "p1", 10)
	ctx := context.Background()

	err := s.RunSale(ctx, func(repos appsales.TxRepos) error {
		require.NoError(t, repos.Products.UpdateStock(ctx, "p1", decimal.NewFromInt(7)))
		// Dentro de la unidad de trabajo se ve lo escrito.
		p, err := repos.Products.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.True(t, p.Stock.Equal(decimal.NewFromInt(7)))
		return repos.Sales.Create(ctx, &entity.Sale{ID: "s1", Number: "SL-1", StoreID: "st"})
	})
	require.NoError(t, err)

	p, _ := s.Repos().Products.GetByID(ctx, "p1")
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(7)))
	sale, _ := s.Repos().Sales.GetByID(ctx, "s1")
	require.NotNil(t, sale)
}

func TestRunSale_ErrorDescartaTodo(t *testing.T) {
	s := memory.New()
	seedProduct(t, s, "p1", 10)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunSale(ctx, func(repos appsales.TxRepos) error {
		require.NoError(t, repos.Products.UpdateStock(ctx, "p1", decimal.NewFromInt(3)))
		require.NoError(t, repos.Sales.Create(ctx, &entity.Sale{ID: "s1", Number: "SL-1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, _ := s.Repos().Products.GetByID(ctx, "p1")
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10)))
	sale, _ := s.Repos().Sales.GetByID(ctx, "s1")
	assert.Nil(t, sale)
}

func TestSaleRepo_NumeroDuplicado(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Repos().Sales.Create(ctx, &entity.Sale{ID: "s1", Number: "SL-1"}))

	err := s.RunSale(ctx, func(repos appsales.TxRepos) error {
		return repos.Sales.Create(ctx, &entity.Sale{ID: "s2", Number: "SL-1"})
	})
	var dup *domain.DuplicateSaleNumberError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "SL-1", dup.Number)
}

func TestSaleRepo_IdempotencyKeyPorTienda(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	repo := s.Repos().Sales
	require.NoError(t, repo.Create(ctx, &entity.Sale{ID: "s1", Number: "SL-1", StoreID: "a", IdempotencyKey: "k"}))

	assert.ErrorIs(t, repo.Create(ctx, &entity.Sale{ID: "s2", Number: "SL-2", StoreID: "a", IdempotencyKey: "k"}), domain.ErrDuplicate)
	// Otra tienda puede reutilizar la clave.
	assert.NoError(t, repo.Create(ctx, &entity.Sale{ID: "s3", Number: "SL-3", StoreID: "b", IdempotencyKey: "k"}))

	got, err := repo.GetByIdempotencyKey(ctx, "a", "k")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
}

func TestRunSale_ContextoCanceladoNoConfirma(t *testing.T) {
	s := memory.New()
	seedProduct(t, s, "p1", 10)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.RunSale(ctx, func(repos appsales.TxRepos) error {
		require.NoError(t, repos.Products.UpdateStock(ctx, "p1", decimal.NewFromInt(1)))
		cancel()
		return nil
	})
	var abort *domain.TransactionAbortError
	require.ErrorAs(t, err, &abort)

	p, _ := s.Repos().Products.GetByID(context.Background(), "p1")
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10)))
}

func TestSaleRepo_UpdateStatusConflicto(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	repo := s.Repos().Sales
	require.NoError(t, repo.Create(ctx, &entity.Sale{ID: "s1", Number: "SL-1", Status: entity.SaleStatusCompleted}))

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "s1", entity.SaleStatusDue, entity.SaleStatusRefunded, time.Now()), domain.ErrConflict)
	assert.NoError(t, repo.UpdateStatus(ctx, "s1", entity.SaleStatusCompleted, entity.SaleStatusRefunded, time.Now()))
	got, _ := repo.GetByID(ctx, "s1")
	assert.Equal(t, entity.SaleStatusRefunded, got.Status)
}

func TestUpdateStock_FueraDeTransaccionEsperaALaVenta(t *testing.T) {
	s := memory.New()
	seedProduct(t, s, "p1", 10)
	ctx := context.Background()

	done := make(chan error, 1)
	err := s.RunSale(ctx, func(repos appsales.TxRepos) error {
		require.NoError(t, repos.Products.UpdateStock(ctx, "p1", decimal.NewFromInt(9)))
		go func() { done <- s.Repos().Products.UpdateStock(ctx, "p1", decimal.NewFromInt(25)) }()
		select {
		case err := <-done:
			t.Fatalf("el ajuste no esperó a la unidad de trabajo: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, <-done)

	p, _ := s.Repos().Products.GetByID(ctx, "p1")
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(25)), "got %s", p.Stock)
}

func TestUpdateStock_ContextoVencidoNoEscribe(t *testing.T) {
	s := memory.New()
	seedProduct(t, s, "p1", 10)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = s.RunSale(context.Background(), func(appsales.TxRepos) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Repos().Products.UpdateStock(ctx, "p1", decimal.NewFromInt(1))
	close(release)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	p, _ := s.Repos().Products.GetByID(context.Background(), "p1")
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10)))
}

func TestInventory_UpdateQuantity(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	repo := s.Repos().Inventory

	assert.ErrorIs(t, repo.UpdateQuantity(ctx, "p1", "st", decimal.NewFromInt(3)), domain.ErrNotFound)

	s.PutInventory(entity.Inventory{ID: "inv-1", ProductID: "p1", StoreID: "st", Quantity: decimal.NewFromInt(8)})
	require.NoError(t, repo.UpdateQuantity(ctx, "p1", "st", decimal.NewFromInt(3)))
	assert.ErrorIs(t, repo.UpdateQuantity(ctx, "p1", "st", decimal.NewFromInt(-1)), domain.ErrInsufficientStock)

	inv, err := repo.Get(ctx, "p1", "st")
	require.NoError(t, err)
	assert.True(t, inv.Quantity.Equal(decimal.NewFromInt(3)))
}
