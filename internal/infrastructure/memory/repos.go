package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pos-ventas-api/internal/domain"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	"github.com/jhoicas/pos-ventas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository     = (*ProductRepo)(nil)
	_ repository.InventoryRepository   = (*InventoryRepo)(nil)
	_ repository.SaleRepository        = (*SaleRepo)(nil)
	_ repository.SourcedItemRepository = (*SourcedItemRepo)(nil)
	_ repository.StoreRepository       = (*StoreRepo)(nil)
	_ repository.CustomerRepository    = (*CustomerRepo)(nil)
	_ repository.UserRepository        = (*UserRepo)(nil)
)

// direct aplica una escritura fuera de transacción con la misma exclusión que RunSale.
func (v *view) direct(ctx context.Context, fn func() error) error {
	if v.inTx() {
		v.s.mu.RLock()
		defer v.s.mu.RUnlock()
		return fn()
	}
	select {
	case v.s.writer <- struct{}{}:
	case <-ctx.Done():
		return alive(ctx)
	}
	defer func() { <-v.s.writer }()
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn()
}

// ProductRepo productos.
type ProductRepo struct{ v *view }

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	if r.v.inTx() {
		if p, ok := r.v.st.products[id]; ok {
			c := cloneProduct(p)
			return &c, nil
		}
	}
	r.v.s.mu.RLock()
	defer r.v.s.mu.RUnlock()
	p, ok := r.v.s.products[id]
	if !ok {
		return nil, nil
	}
	c := cloneProduct(p)
	return &c, nil
}

// GetForUpdate la unidad de trabajo ya es exclusiva; equivale a GetByID.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error {
	if err := alive(ctx); err != nil {
		return err
	}
	if r.v.inTx() {
		cur, err := r.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		if stock.IsNegative() {
			return domain.ErrInsufficientStock
		}
		cur.Stock = &stock
		cur.UpdatedAt = time.Now().UTC()
		r.v.st.products[productID] = *cur
		return nil
	}
	// Lectura y escritura bajo la misma exclusión: una venta no puede colarse entre ambas.
	return r.v.direct(ctx, func() error {
		cur, ok := r.v.s.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		if stock.IsNegative() {
			return domain.ErrInsufficientStock
		}
		next := cloneProduct(cur)
		next.Stock = &stock
		next.UpdatedAt = time.Now().UTC()
		r.v.s.products[productID] = next
		return nil
	})
}

// InventoryRepo inventario por (producto, tienda).
type InventoryRepo struct{ v *view }

func (r *InventoryRepo) Get(ctx context.Context, productID, storeID string) (*entity.Inventory, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	k := invKey{productID, storeID}
	if r.v.inTx() {
		if inv, ok := r.v.st.inventory[k]; ok {
			c := cloneInventory(inv)
			return &c, nil
		}
	}
	r.v.s.mu.RLock()
	defer r.v.s.mu.RUnlock()
	inv, ok := r.v.s.inventory[k]
	if !ok {
		return nil, nil
	}
	c := cloneInventory(inv)
	return &c, nil
}

func (r *InventoryRepo) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.Inventory, error) {
	return r.Get(ctx, productID, storeID)
}

func (r *InventoryRepo) UpdateQuantity(ctx context.Context, productID, storeID string, qty decimal.Decimal) error {
	if err := alive(ctx); err != nil {
		return err
	}
	if qty.IsNegative() {
		return domain.ErrInsufficientStock
	}
	k := invKey{productID, storeID}
	if r.v.inTx() {
		cur, err := r.Get(ctx, productID, storeID)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		cur.Quantity = qty
		cur.UpdatedAt = time.Now().UTC()
		r.v.st.inventory[k] = *cur
		return nil
	}
	return r.v.direct(ctx, func() error {
		cur, ok := r.v.s.inventory[k]
		if !ok {
			return domain.ErrNotFound
		}
		next := cloneInventory(cur)
		next.Quantity = qty
		next.UpdatedAt = time.Now().UTC()
		r.v.s.inventory[k] = next
		return nil
	})
}

// SaleRepo ventas.
type SaleRepo struct{ v *view }

func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if err := alive(ctx); err != nil {
		return err
	}
	return r.v.direct(ctx, func() error {
		if _, ok := r.v.s.salesByNumber[sale.Number]; ok {
			return &domain.DuplicateSaleNumberError{Number: sale.Number}
		}
		if sale.IdempotencyKey != "" {
			if _, ok := r.v.s.salesByIdem[idemKey{sale.StoreID, sale.IdempotencyKey}]; ok {
				return domain.ErrDuplicate
			}
		}
		if !r.v.inTx() {
			r.v.s.sales[sale.ID] = cloneSale(*sale)
			r.v.s.salesByNumber[sale.Number] = sale.ID
			if sale.IdempotencyKey != "" {
				r.v.s.salesByIdem[idemKey{sale.StoreID, sale.IdempotencyKey}] = sale.ID
			}
			return nil
		}
		for _, staged := range r.v.st.sales {
			if staged.Number == sale.Number {
				return &domain.DuplicateSaleNumberError{Number: sale.Number}
			}
		}
		r.v.st.sales[sale.ID] = cloneSale(*sale)
		return nil
	})
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	if r.v.inTx() {
		if s, ok := r.v.st.sales[id]; ok {
			c := cloneSale(s)
			return &c, nil
		}
	}
	r.v.s.mu.RLock()
	defer r.v.s.mu.RUnlock()
	s, ok := r.v.s.sales[id]
	if !ok {
		return nil, nil
	}
	c := cloneSale(s)
	return &c, nil
}

func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, storeID, key string) (*entity.Sale, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.v.s.mu.RLock()
	id, ok := r.v.s.salesByIdem[idemKey{storeID, key}]
	r.v.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.v.s.mu.RLock()
	var out []*entity.Sale
	for _, s := range r.v.s.sales {
		if f.StoreID != "" && s.StoreID != f.StoreID {
			continue
		}
		if f.From != nil && s.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !s.CreatedAt.Before(*f.To) {
			continue
		}
		c := cloneSale(s)
		out = append(out, &c)
	}
	r.v.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number > out[j].Number
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Offset >= len(out) {
		return []*entity.Sale{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *SaleRepo) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) error {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return domain.ErrNotFound
	}
	if cur.Status != from {
		return domain.ErrConflict
	}
	cur.Status = to
	cur.UpdatedAt = at
	if r.v.inTx() {
		r.v.st.sales[id] = *cur
		return nil
	}
	return r.v.direct(ctx, func() error {
		r.v.s.sales[id] = *cur
		return nil
	})
}

// SourcedItemRepo registros surtidos.
type SourcedItemRepo struct{ v *view }

func (r *SourcedItemRepo) Create(ctx context.Context, it *entity.SourcedItem) error {
	if err := alive(ctx); err != nil {
		return err
	}
	if r.v.inTx() {
		r.v.st.sourced = append(r.v.st.sourced, *it)
		return nil
	}
	return r.v.direct(ctx, func() error {
		r.v.s.sourced = append(r.v.s.sourced, *it)
		return nil
	})
}

func (r *SourcedItemRepo) List(ctx context.Context, f repository.SourcedItemFilter) ([]*entity.SourcedItem, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.v.s.mu.RLock()
	defer r.v.s.mu.RUnlock()
	out := []*entity.SourcedItem{}
	for i := range r.v.s.sourced {
		it := r.v.s.sourced[i]
		if f.StoreID != "" && it.StoreID != f.StoreID {
			continue
		}
		if f.ProductID != "" && it.ProductID != f.ProductID {
			continue
		}
		if f.From != nil && it.RecordedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !it.RecordedAt.Before(*f.To) {
			continue
		}
		out = append(out, &it)
	}
	return out, nil
}

// StoreRepo tiendas.
type StoreRepo struct{ s *Store }

func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stores[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// CustomerRepo clientes.
type CustomerRepo struct{ s *Store }

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// UserRepo usuarios.
type UserRepo struct{ s *Store }

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func cloneProduct(p entity.Product) entity.Product {
	if p.Stock != nil {
		st := *p.Stock
		p.Stock = &st
	}
	p.Variants = append([]entity.Variant(nil), p.Variants...)
	return p
}

func cloneInventory(inv entity.Inventory) entity.Inventory {
	inv.SerialNumbers = append([]string(nil), inv.SerialNumbers...)
	if inv.ExpiryDate != nil {
		d := *inv.ExpiryDate
		inv.ExpiryDate = &d
	}
	return inv
}

func cloneSale(s entity.Sale) entity.Sale {
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	s.Payments = append([]entity.Payment(nil), s.Payments...)
	return s
}
