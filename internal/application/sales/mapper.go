package sales

import (
	"github.com/jhoicas/pos-ventas-api/internal/application/dto"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
)

// ToSaleResponse convierte la entidad en la respuesta expandida. store, customer y cashier pueden ser nil.
func ToSaleResponse(s *entity.Sale, store *entity.Store, customer *entity.Customer, cashier *entity.User) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:             s.ID,
		Number:         s.Number,
		Status:         s.Status,
		Store:          dto.StoreSummary{ID: s.StoreID},
		Cashier:        dto.CashierSummary{ID: s.CashierID},
		IdempotencyKey: s.IdempotencyKey,
		Items:          make([]dto.SaleItemResponse, 0, len(s.Items)),
		Payments:       make([]dto.PaymentResponse, 0, len(s.Payments)),
		Subtotal:       s.Subtotal,
		Discount:       s.Discount,
		Tax:            s.Tax,
		Total:          s.Total,
		PaidAmount:     s.PaidAmount,
		DueAmount:      s.DueAmount,
		ChangeAmount:   s.ChangeAmount,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if store != nil {
		resp.Store.Code = store.Code
		resp.Store.Name = store.Name
	}
	if s.CustomerID != "" {
		resp.Customer = &dto.CustomerSummary{ID: s.CustomerID}
		if customer != nil {
			resp.Customer.Name = customer.Name
			resp.Customer.Email = customer.Email
		}
	}
	if cashier != nil {
		resp.Cashier.Name = cashier.Name
		resp.Cashier.Email = cashier.Email
	}
	for _, it := range s.Items {
		item := dto.SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			VariantSKU:  it.VariantSKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
			Discount:    it.Discount,
			TaxRate:     it.TaxRate,
			Tax:         it.Tax,
			Total:       it.Total,
			Sourced:     it.Sourced,
		}
		if it.Sourced {
			cost := it.SourcedCost
			item.SourcingCost = &cost
		}
		resp.Items = append(resp.Items, item)
	}
	for _, p := range s.Payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{Method: p.Method, Amount: p.Amount, Reference: p.Reference})
	}
	return resp
}

func toSourcedItemResponse(it *entity.SourcedItem) dto.SourcedItemResponse {
	return dto.SourcedItemResponse{
		ID:           it.ID,
		StoreID:      it.StoreID,
		SaleID:       it.SaleID,
		SaleNumber:   it.SaleNumber,
		ProductID:    it.ProductID,
		Quantity:     it.Quantity,
		SourcingCost: it.SourcedCost,
		SalePrice:    it.SalePrice,
		Profit:       it.Profit,
		RecordedBy:   it.RecordedBy,
		RecordedAt:   it.RecordedAt,
	}
}
