package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviplus/repuestos-api/internal/application/inventory"
	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
	"github.com/serviplus/repuestos-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	testBodega = entity.Location{Type: entity.LocationWarehouse, ID: "bod-1"}
	testCentro = entity.Location{Type: entity.LocationServiceCenter, ID: "cs-1"}
)

const testPartID = "part-1"

// recordFn adapta RecordInTx a la firma del runner y captura el movimiento.
func recordFn(rec *inventory.Recorder, in inventory.MovementInput, out **entity.StockMovement) func(
	repository.MovementRepository, repository.InventoryRepository, repository.PartRepository,
) error {
	return func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
	) error {
		mov, err := rec.RecordInTx(context.Background(), movRepo, invRepo, partRepo, in)
		if err != nil {
			return err
		}
		*out = mov
		return nil
	}
}

func newStore() *testutil.Store {
	store := testutil.NewStore()
	store.SeedPart(testPartID, "FLT-001", decimal.NewFromInt(10), 0)
	return store
}

// ──────────────────────────────────────────────────────────────────────────────
// Transferencias
// ──────────────────────────────────────────────────────────────────────────────

func TestRecorder_TransferenciaDebitaYAcredita(t *testing.T) {
	store := newStore()
	store.SeedStock(testBodega, testPartID, 10, 0)

	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement
	err := runner.Run(context.Background(), recordFn(rec, inventory.MovementInput{
		Type:        entity.MovementRequestFulfillment,
		Reference:   "req-1",
		Source:      testBodega,
		Destination: testCentro,
		Items:       []inventory.MovementItemInput{{PartID: testPartID, Qty: 4, Condition: entity.ConditionGood}},
		CreatedBy:   "user-1",
	}, &mov))
	require.NoError(t, err)
	require.NotNil(t, mov)

	good, _ := store.Stock(testBodega, testPartID)
	assert.Equal(t, int64(6), good, "el origen debe quedar debitado")
	good, _ = store.Stock(testCentro, testPartID)
	assert.Equal(t, int64(4), good, "el destino debe quedar acreditado")

	assert.Equal(t, entity.MovementStatusCommitted, mov.Status)
	assert.Equal(t, int64(4), mov.TotalQty)

	// El renglón queda valorizado al costo promedio vigente del repuesto
	items := store.MovementItems[mov.ID]
	require.Len(t, items, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(items[0].UnitCost))
	assert.True(t, decimal.NewFromInt(40).Equal(items[0].TotalCost))
}

func TestRecorder_DestinoSinFilaPrevia_SeCreaConElMovimiento(t *testing.T) {
	store := newStore()
	store.SeedStock(testBodega, testPartID, 0, 5)
	// testCentro no tiene fila para el repuesto

	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement
	err := runner.Run(context.Background(), recordFn(rec, inventory.MovementInput{
		Type:        entity.MovementReturnReceipt,
		Reference:   "ret-1",
		Source:      testBodega,
		Destination: testCentro,
		Items:       []inventory.MovementItemInput{{PartID: testPartID, Qty: 2, Condition: entity.ConditionDefective}},
		CreatedBy:   "user-1",
	}, &mov))
	require.NoError(t, err)

	_, defective := store.Stock(testCentro, testPartID)
	assert.Equal(t, int64(2), defective, "la fila del destino se crea con el primer movimiento")
	_, defective = store.Stock(testBodega, testPartID)
	assert.Equal(t, int64(3), defective)
}

func TestRecorder_StockInsuficiente_RevierteTodo(t *testing.T) {
	store := newStore()
	store.SeedStock(testBodega, testPartID, 2, 0)

	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement
	err := runner.Run(context.Background(), recordFn(rec, inventory.MovementInput{
		Type:        entity.MovementRequestFulfillment,
		Reference:   "req-2",
		Source:      testBodega,
		Destination: testCentro,
		Items:       []inventory.MovementItemInput{{PartID: testPartID, Qty: 5, Condition: entity.ConditionGood}},
		CreatedBy:   "user-1",
	}, &mov))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	good, _ := store.Stock(testBodega, testPartID)
	assert.Equal(t, int64(2), good, "tras el rollback el origen queda intacto")
	assert.Empty(t, store.Movements, "no debe persistir ningún movimiento")
}

func TestRecorder_ReferenciaDuplicada_NoAplicaDosVeces(t *testing.T) {
	store := newStore()
	store.SeedStock(testBodega, testPartID, 10, 0)

	in := inventory.MovementInput{
		Type:        entity.MovementRequestFulfillment,
		Reference:   "req-3",
		Source:      testBodega,
		Destination: testCentro,
		Items:       []inventory.MovementItemInput{{PartID: testPartID, Qty: 3, Condition: entity.ConditionGood}},
		CreatedBy:   "user-1",
	}

	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement
	require.NoError(t, runner.Run(context.Background(), recordFn(rec, in, &mov)))

	err := runner.Run(context.Background(), recordFn(rec, in, &mov))
	require.ErrorIs(t, err, domain.ErrDuplicate)

	good, _ := store.Stock(testBodega, testPartID)
	assert.Equal(t, int64(7), good, "el reintento no debe debitar de nuevo")
	assert.Len(t, store.Movements, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conservación y validaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRecorder_ConservacionDeclaradaInvalida(t *testing.T) {
	store := newStore()
	store.SeedStock(testBodega, testPartID, 10, 0)

	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement
	err := runner.Run(context.Background(), recordFn(rec, inventory.MovementInput{
		Type:        entity.MovementRequestFulfillment,
		Reference:   "req-4",
		Source:      testBodega,
		Destination: testCentro,
		TotalQty:    9, // declarado != suma de renglones (3)
		Items:       []inventory.MovementItemInput{{PartID: testPartID, Qty: 3, Condition: entity.ConditionGood}},
		CreatedBy:   "user-1",
	}, &mov))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.Movements)
}

func TestRecorder_EntradasMalformadas(t *testing.T) {
	store := newStore()
	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement

	cases := []struct {
		name string
		in   inventory.MovementInput
	}{
		{"sin referencia", inventory.MovementInput{
			Type: entity.MovementRequestFulfillment, Source: testBodega, Destination: testCentro,
			Items: []inventory.MovementItemInput{{PartID: testPartID, Qty: 1, Condition: entity.ConditionGood}},
		}},
		{"origen igual a destino", inventory.MovementInput{
			Type: entity.MovementRequestFulfillment, Reference: "r", Source: testBodega, Destination: testBodega,
			Items: []inventory.MovementItemInput{{PartID: testPartID, Qty: 1, Condition: entity.ConditionGood}},
		}},
		{"tipo desconocido", inventory.MovementInput{
			Type: "teleport", Reference: "r", Source: testBodega, Destination: testCentro,
			Items: []inventory.MovementItemInput{{PartID: testPartID, Qty: 1, Condition: entity.ConditionGood}},
		}},
		{"cantidad negativa en transferencia", inventory.MovementInput{
			Type: entity.MovementRequestFulfillment, Reference: "r", Source: testBodega, Destination: testCentro,
			Items: []inventory.MovementItemInput{{PartID: testPartID, Qty: -1, Condition: entity.ConditionGood}},
		}},
		{"condición desconocida", inventory.MovementInput{
			Type: entity.MovementRequestFulfillment, Reference: "r", Source: testBodega, Destination: testCentro,
			Items: []inventory.MovementItemInput{{PartID: testPartID, Qty: 1, Condition: "regular"}},
		}},
		{"ajuste con origen", inventory.MovementInput{
			Type: entity.MovementAdjustment, Reference: "r", Source: testBodega, Destination: testCentro,
			Items: []inventory.MovementItemInput{{PartID: testPartID, Qty: 1, Condition: entity.ConditionGood}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := runner.Run(context.Background(), recordFn(rec, tc.in, &mov))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes y consumo
// ──────────────────────────────────────────────────────────────────────────────

func TestRecorder_AjusteConDeltasFirmados(t *testing.T) {
	store := newStore()
	store.SeedStock(testCentro, testPartID, 5, 1)

	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement
	err := runner.Run(context.Background(), recordFn(rec, inventory.MovementInput{
		Type:        entity.MovementAdjustment,
		Reference:   "adj-1",
		Destination: testCentro,
		Items: []inventory.MovementItemInput{
			{PartID: testPartID, Qty: -2, Condition: entity.ConditionGood},
			{PartID: testPartID, Qty: 2, Condition: entity.ConditionDefective},
		},
		CreatedBy: "user-1",
	}, &mov))
	require.NoError(t, err)

	good, defective := store.Stock(testCentro, testPartID)
	assert.Equal(t, int64(3), good)
	assert.Equal(t, int64(3), defective)
	// Total declarado = suma de valores absolutos de los deltas
	assert.Equal(t, int64(4), mov.TotalQty)
}

func TestRecorder_AjusteNegativoMayorAlStock(t *testing.T) {
	store := newStore()
	store.SeedStock(testCentro, testPartID, 1, 0)

	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement
	err := runner.Run(context.Background(), recordFn(rec, inventory.MovementInput{
		Type:        entity.MovementAdjustment,
		Reference:   "adj-2",
		Destination: testCentro,
		Items:       []inventory.MovementItemInput{{PartID: testPartID, Qty: -3, Condition: entity.ConditionGood}},
		CreatedBy:   "user-1",
	}, &mov))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	good, _ := store.Stock(testCentro, testPartID)
	assert.Equal(t, int64(1), good)
}

func TestRecorder_ConsumoDebitaSinAcreditar(t *testing.T) {
	store := newStore()
	store.SeedStock(testCentro, testPartID, 4, 0)

	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement
	err := runner.Run(context.Background(), recordFn(rec, inventory.MovementInput{
		Type:      entity.MovementConsumption,
		Reference: "consume-1",
		Source:    testCentro,
		Items:     []inventory.MovementItemInput{{PartID: testPartID, Qty: 3, Condition: entity.ConditionGood}},
		CreatedBy: "user-1",
	}, &mov))
	require.NoError(t, err)

	good, _ := store.Stock(testCentro, testPartID)
	assert.Equal(t, int64(1), good, "el consumo solo debita el origen")
}

func TestRecorder_RepuestoInexistente(t *testing.T) {
	store := newStore()
	store.SeedStock(testBodega, "part-desconocido", 5, 0)

	rec := inventory.NewRecorder()
	runner := testutil.NewTxRunner(store)
	var mov *entity.StockMovement
	err := runner.Run(context.Background(), recordFn(rec, inventory.MovementInput{
		Type:        entity.MovementRequestFulfillment,
		Reference:   "req-5",
		Source:      testBodega,
		Destination: testCentro,
		Items:       []inventory.MovementItemInput{{PartID: "part-desconocido", Qty: 1, Condition: entity.ConditionGood}},
		CreatedBy:   "user-1",
	}, &mov))
	require.ErrorIs(t, err, domain.ErrNotFound)
}
