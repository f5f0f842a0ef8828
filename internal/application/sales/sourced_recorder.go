package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-ventas-api/internal/domain/entity"
	domainsales "github.com/jhoicas/pos-ventas-api/internal/domain/sales"
)

// SourcedRecorder registra las líneas surtidas (drop-shipping) en su colección propia.
// No toca el ledger de stock. Requiere que la venta ya tenga ID y número.
type SourcedRecorder struct{}

// Record crea un registro por cada línea surtida de la venta.
func (SourcedRecorder) Record(ctx context.Context, repos TxRepos, sale *entity.Sale, recordedBy string, now time.Time) ([]*entity.SourcedItem, error) {
	var out []*entity.SourcedItem
	for _, it := range sale.Items {
		if !it.Sourced {
			continue
		}
		rec := &entity.SourcedItem{
			ID:          uuid.New().String(),
			StoreID:     sale.StoreID,
			SaleID:      sale.ID,
			SaleNumber:  sale.Number,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			SourcedCost: it.SourcedCost,
			SalePrice:   it.UnitPrice,
			Profit:      domainsales.SourcedProfit(it.UnitPrice, it.SourcedCost, it.Quantity),
			RecordedBy:  recordedBy,
			RecordedAt:  now,
		}
		if err := repos.SourcedItems.Create(ctx, rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
