package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/serviplus/repuestos-api/internal/domain/inventory"
)

func TestAverageCost_PromedioPonderado(t *testing.T) {
	// (10*100 + 5*130) / 15 = 110
	got := inventory.AverageCost(10, decimal.NewFromInt(100), 5, decimal.NewFromInt(130))
	assert.True(t, decimal.NewFromInt(110).Equal(got), "esperaba 110, obtuve %s", got)
}

func TestAverageCost_SinStockActual_TomaElCostoDeEntrada(t *testing.T) {
	got := inventory.AverageCost(0, decimal.Zero, 8, decimal.NewFromInt(42))
	assert.True(t, decimal.NewFromInt(42).Equal(got))
}

func TestAverageCost_TotalCero_DevuelveCero(t *testing.T) {
	got := inventory.AverageCost(0, decimal.NewFromInt(100), 0, decimal.NewFromInt(50))
	assert.True(t, got.IsZero())
}
