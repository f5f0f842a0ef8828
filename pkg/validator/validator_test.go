package validator_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ventas-api/pkg/validator"
)

type line struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"dec_positive"`
}

type request struct {
	StoreID string `json:"store_id" validate:"required"`
	Items   []line `json:"items" validate:"required,min=1,dive"`
}

func TestValidateStruct_Valido(t *testing.T) {
	errs := validator.ValidateStruct(request{
		StoreID: "st",
		Items:   []line{{ProductID: "p1", Quantity: decimal.NewFromInt(2)}},
	})
	assert.Nil(t, errs)
}

func TestValidateStruct_RutasConNombreJSON(t *testing.T) {
	errs := validator.ValidateStruct(request{
		Items: []line{{Quantity: decimal.Zero}},
	})
	require.Len(t, errs, 3)

	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Tag
	}
	assert.Equal(t, "required", byField["store_id"])
	assert.Equal(t, "required", byField["items[0].product_id"])
	assert.Equal(t, "dec_positive", byField["items[0].quantity"])
}

func TestValidateStruct_ItemsVacios(t *testing.T) {
	errs := validator.ValidateStruct(request{StoreID: "st", Items: []line{}})
	require.Len(t, errs, 1)
	assert.Equal(t, "items", errs[0].Field)
	assert.Equal(t, "min", errs[0].Tag)
}
