// Package memory almacenamiento transaccional en memoria para desarrollo y tests.
// Las unidades de trabajo se serializan; las escrituras quedan en un área temporal
// y se publican juntas al confirmar, o se descartan si fn falla.
package memory

import (
	"context"
	"fmt"
	"sync"

	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
)

var _ appsales.SalesTxRunner = (*Store)(nil)

type invKey struct{ productID, storeID string }

type idemKey struct{ storeID, key string }

// Store estado compartido. mu protege los mapas; writer serializa las unidades de trabajo.
type Store struct {
	mu     sync.RWMutex
	writer chan struct{}

	products      map[string]entity.Product
	inventory     map[invKey]entity.Inventory
	sales         map[string]entity.Sale
	salesByNumber map[string]string
	salesByIdem   map[idemKey]string
	sourced       []entity.SourcedItem
	stores        map[string]entity.Store
	customers     map[string]entity.Customer
	users         map[string]entity.User
}

// New crea un almacenamiento vacío.
func New() *Store {
	return &Store{
		writer:        make(chan struct{}, 1),
		products:      map[string]entity.Product{},
		inventory:     map[invKey]entity.Inventory{},
		sales:         map[string]entity.Sale{},
		salesByNumber: map[string]string{},
		salesByIdem:   map[idemKey]string{},
		stores:        map[string]entity.Store{},
		customers:     map[string]entity.Customer{},
		users:         map[string]entity.User{},
	}
}

// staging escrituras pendientes de una unidad de trabajo.
type staging struct {
	products  map[string]entity.Product
	inventory map[invKey]entity.Inventory
	sales     map[string]entity.Sale
	sourced   []entity.SourcedItem
}

func newStaging() *staging {
	return &staging{
		products:  map[string]entity.Product{},
		inventory: map[invKey]entity.Inventory{},
		sales:     map[string]entity.Sale{},
	}
}

// RunSale ejecuta fn con repos atados a una unidad de trabajo exclusiva.
func (s *Store) RunSale(ctx context.Context, fn func(repos appsales.TxRepos) error) error {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return &domain.TransactionAbortError{Cause: ctx.Err()}
	}
	defer func() { <-s.writer }()

	st := newStaging()
	v := &view{s: s, st: st}
	if err := fn(v.repos()); err != nil {
		return err
	}
	// Sin confirmación si el presupuesto de tiempo ya se agotó.
	if err := ctx.Err(); err != nil {
		return &domain.TransactionAbortError{Cause: err}
	}
	s.commit(st)
	return nil
}

func (s *Store) commit(st *staging) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range st.products {
		s.products[id] = p
	}
	for k, inv := range st.inventory {
		s.inventory[k] = inv
	}
	for id, sale := range st.sales {
		s.sales[id] = sale
		s.salesByNumber[sale.Number] = id
		if sale.IdempotencyKey != "" {
			s.salesByIdem[idemKey{sale.StoreID, sale.IdempotencyKey}] = id
		}
	}
	s.sourced = append(s.sourced, st.sourced...)
}

// Repos devuelve repositorios sin transacción (lecturas y altas directas).
func (s *Store) Repos() appsales.TxRepos {
	return (&view{s: s}).repos()
}

// Stores, Customers y Users lectura directa para la expansión de la venta.
func (s *Store) Stores() *StoreRepo       { return &StoreRepo{s: s} }
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s: s} }
func (s *Store) Users() *UserRepo         { return &UserRepo{s: s} }

// PutStore, PutCustomer y PutUser cargan datos maestros (CRUD fuera del núcleo).
func (s *Store) PutStore(st entity.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[st.ID] = st
}

func (s *Store) PutCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutProduct y PutInventory cargan catálogo y existencias; los ajustes viven fuera del núcleo.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = cloneProduct(p)
}

func (s *Store) PutInventory(inv entity.Inventory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory[invKey{inv.ProductID, inv.StoreID}] = cloneInventory(inv)
}

// view lecturas sobre el estado confirmado más el área temporal (si st != nil).
type view struct {
	s  *Store
	st *staging
}

func (v *view) repos() appsales.TxRepos {
	return appsales.TxRepos{
		Products:     &ProductRepo{v: v},
		Inventory:    &InventoryRepo{v: v},
		Sales:        &SaleRepo{v: v},
		SourcedItems: &SourcedItemRepo{v: v},
	}
}

func (v *view) inTx() bool { return v.st != nil }

func alive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory: %w", err)
	}
	return nil
}
