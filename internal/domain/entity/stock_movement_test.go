package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

func TestCheckConservation_TransferenciaSumaExacta(t *testing.T) {
	mov := &entity.StockMovement{Type: entity.MovementRequestFulfillment, TotalQty: 5}
	items := []*entity.MovementItem{
		{Qty: 3, Condition: entity.ConditionGood},
		{Qty: 2, Condition: entity.ConditionDefective},
	}
	assert.True(t, mov.CheckConservation(items))

	mov.TotalQty = 4
	assert.False(t, mov.CheckConservation(items), "total declarado distinto a la suma debe fallar")
}

func TestCheckConservation_AjusteUsaValorAbsoluto(t *testing.T) {
	mov := &entity.StockMovement{Type: entity.MovementAdjustment, TotalQty: 4}
	items := []*entity.MovementItem{
		{Qty: -2, Condition: entity.ConditionGood},
		{Qty: 2, Condition: entity.ConditionDefective},
	}
	assert.True(t, mov.CheckConservation(items),
		"en ajustes el total es la suma de valores absolutos de los deltas")
}

func TestTransfer_SoloTransferenciasTocanDosLados(t *testing.T) {
	assert.True(t, (&entity.StockMovement{Type: entity.MovementRequestFulfillment}).Transfer())
	assert.True(t, (&entity.StockMovement{Type: entity.MovementReturnReceipt}).Transfer())
	assert.False(t, (&entity.StockMovement{Type: entity.MovementAdjustment}).Transfer())
	assert.False(t, (&entity.StockMovement{Type: entity.MovementConsumption}).Transfer())
}

func TestInventoryRecord_ApplyNoPermiteNegativos(t *testing.T) {
	rec := &entity.InventoryRecord{QtyGood: 2, QtyDefective: 1}

	assert.True(t, rec.Apply(entity.ConditionGood, -2))
	assert.Zero(t, rec.QtyGood)

	assert.False(t, rec.Apply(entity.ConditionGood, -1), "no puede quedar negativo")
	assert.Zero(t, rec.QtyGood, "un Apply rechazado no muta el registro")

	assert.True(t, rec.Apply(entity.ConditionDefective, 3))
	assert.Equal(t, int64(4), rec.QtyDefective)
}

func TestLocation_Valid(t *testing.T) {
	assert.True(t, entity.Location{Type: entity.LocationTechnician, ID: "tec-1"}.Valid())
	assert.False(t, entity.Location{Type: entity.LocationTechnician}.Valid(), "id vacío")
	assert.False(t, entity.Location{Type: "satelite", ID: "x"}.Valid(), "tipo desconocido")
	assert.False(t, entity.Location{}.Valid())
}
