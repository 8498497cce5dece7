package returns_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviplus/repuestos-api/internal/application/inventory"
	"github.com/serviplus/repuestos-api/internal/application/returns"
	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	testTecnico = entity.Location{Type: entity.LocationTechnician, ID: "tec-1"}
	testCentro  = entity.Location{Type: entity.LocationServiceCenter, ID: "cs-1"}
)

func newFixture(t *testing.T) (*testutil.Store, *returns.UseCase) {
	t.Helper()
	store := testutil.NewStore()
	store.SeedPart("part-1", "FLT-001", decimal.NewFromInt(10), 0)
	uc := returns.NewUseCase(
		testutil.NewTxRunner(store),
		inventory.NewRecorder(),
		testutil.NewReturnRepo(store),
		testutil.NewInventoryRepo(store),
	)
	return store, uc
}

// createReturn crea una devolución con un renglón declarado (good, defective).
func createReturn(t *testing.T, uc *returns.UseCase, good, defective int64) string {
	t.Helper()
	id, err := uc.Create(context.Background(), returns.CreateInput{
		Technician:    testTecnico,
		ServiceCenter: testCentro,
		Reason:        "repuestos sin usar de la orden 1234",
		Items:         []returns.ItemInput{{PartID: "part-1", GoodQty: good, DefectiveQty: defective}},
		CreatedBy:     "tec-user",
	})
	require.NoError(t, err)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_QuedaPendiente(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 1)

	id := createReturn(t, uc, 2, 1)

	ret := store.Returns[id]
	require.NotNil(t, ret)
	assert.Equal(t, entity.ReturnPending, ret.Status)

	items := store.ReturnItems[id]
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].DeclaredGood)
	assert.Equal(t, int64(1), items[0].DeclaredDefective)
	assert.Nil(t, items[0].ReceivedGood, "sin recibir no hay conteo")

	// Crear no mueve inventario: el débito ocurre al recibir
	good, defective := store.Stock(testTecnico, "part-1")
	assert.Equal(t, int64(2), good)
	assert.Equal(t, int64(1), defective)
}

func TestCreate_DeclaraMasDeLoQueTiene(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 1, 0)

	_, err := uc.Create(context.Background(), returns.CreateInput{
		Technician:    testTecnico,
		ServiceCenter: testCentro,
		Items:         []returns.ItemInput{{PartID: "part-1", GoodQty: 5}},
		CreatedBy:     "tec-user",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_UbicacionesConTipoIncorrecto(t *testing.T) {
	_, uc := newFixture(t)

	_, err := uc.Create(context.Background(), returns.CreateInput{
		Technician:    testCentro, // no es un técnico
		ServiceCenter: testCentro,
		Items:         []returns.ItemInput{{PartID: "part-1", GoodQty: 1}},
		CreatedBy:     "tec-user",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Receive
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_DebitaTecnicoYAcreditaCentro(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 1)
	id := createReturn(t, uc, 2, 1)

	movementID, err := uc.Receive(context.Background(), id, nil, "bodega-user")
	require.NoError(t, err)
	require.NotEmpty(t, movementID)

	assert.Equal(t, entity.ReturnReceived, store.Returns[id].Status)

	good, defective := store.Stock(testTecnico, "part-1")
	assert.Zero(t, good)
	assert.Zero(t, defective)
	good, defective = store.Stock(testCentro, "part-1")
	assert.Equal(t, int64(2), good)
	assert.Equal(t, int64(1), defective)

	mov := store.Movements[movementID]
	require.NotNil(t, mov)
	assert.Equal(t, entity.MovementReturnReceipt, mov.Type)
	assert.Equal(t, id, mov.Reference)

	// Sin conteo explícito se toma lo declarado
	items := store.ReturnItems[id]
	require.NotNil(t, items[0].ReceivedGood)
	assert.Equal(t, int64(2), *items[0].ReceivedGood)
	assert.Equal(t, int64(1), *items[0].ReceivedDefective)
}

func TestReceive_ConteoExplicitoPrevalece(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 3, 0)
	id := createReturn(t, uc, 3, 0)
	itemID := store.ReturnItems[id][0].ID

	// Físicamente solo llegaron 2 buenos
	_, err := uc.Receive(context.Background(), id,
		[]returns.ReceiveItem{{ItemID: itemID, GoodQty: 2}}, "bodega-user")
	require.NoError(t, err)

	good, _ := store.Stock(testCentro, "part-1")
	assert.Equal(t, int64(2), good, "solo entra lo contado")
	good, _ = store.Stock(testTecnico, "part-1")
	assert.Equal(t, int64(1), good, "lo no entregado sigue con el técnico")
}

func TestReceive_ReintentoIdempotente(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 0)
	id := createReturn(t, uc, 2, 0)

	first, err := uc.Receive(context.Background(), id, nil, "bodega-user")
	require.NoError(t, err)

	second, err := uc.Receive(context.Background(), id, nil, "bodega-user")
	require.NoError(t, err)
	assert.Equal(t, first, second, "el reintento devuelve el movimiento previo")

	good, _ := store.Stock(testCentro, "part-1")
	assert.Equal(t, int64(2), good, "el reintento no acredita de nuevo")
	assert.Len(t, store.Movements, 1)
}

func TestReceive_TecnicoSinStock_Falla(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 0)
	id := createReturn(t, uc, 2, 0)

	// Entre crear y recibir, el stock del técnico se fue por otro camino
	store.SeedStock(testTecnico, "part-1", 0, 0)

	_, err := uc.Receive(context.Background(), id, nil, "bodega-user")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, entity.ReturnPending, store.Returns[id].Status,
		"el rollback deja la devolución en pending")
}

// ──────────────────────────────────────────────────────────────────────────────
// Verify
// ──────────────────────────────────────────────────────────────────────────────

func TestVerify_SinDiscrepancias_CierraSinAjuste(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 0)
	id := createReturn(t, uc, 2, 0)
	_, err := uc.Receive(context.Background(), id, nil, "bodega-user")
	require.NoError(t, err)

	status, err := uc.Verify(context.Background(), id, nil, "bodega-user")
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnCompleted, status)
	assert.Len(t, store.Movements, 1, "sin discrepancias no hay movimiento de ajuste")
}

func TestVerify_ReclasificacionGeneraAjuste(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 0)
	id := createReturn(t, uc, 2, 0)
	_, err := uc.Receive(context.Background(), id, nil, "bodega-user")
	require.NoError(t, err)
	itemID := store.ReturnItems[id][0].ID

	// En banco de pruebas uno de los dos resultó defectuoso
	status, err := uc.Verify(context.Background(), id,
		[]returns.VerifyItem{{ItemID: itemID, GoodQty: 1, DefectiveQty: 1}}, "bodega-user")
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnCompleted, status)

	good, defective := store.Stock(testCentro, "part-1")
	assert.Equal(t, int64(1), good)
	assert.Equal(t, int64(1), defective)

	adj := store.MovementByRef(entity.MovementAdjustment, "verify:"+id)
	require.NotNil(t, adj, "la discrepancia queda auditada como ajuste")
	assert.Equal(t, testCentro, adj.Destination)
}

func TestVerify_SoloDesdeReceived(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 0)
	id := createReturn(t, uc, 2, 0)

	_, err := uc.Verify(context.Background(), id, nil, "bodega-user")
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reject
// ──────────────────────────────────────────────────────────────────────────────

func TestReject_AntesDeRecibir_SoloCambiaEstado(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 0)
	id := createReturn(t, uc, 2, 0)

	err := uc.Reject(context.Background(), id, "renglones no corresponden a la orden", "bodega-user")
	require.NoError(t, err)

	ret := store.Returns[id]
	assert.Equal(t, entity.ReturnRejected, ret.Status)
	assert.Equal(t, "renglones no corresponden a la orden", ret.RejectReason)
	assert.Empty(t, store.Movements, "antes de recibir no hay inventario que compensar")
}

func TestReject_DespuesDeRecibir_Compensa(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 1)
	id := createReturn(t, uc, 2, 1)
	movementID, err := uc.Receive(context.Background(), id, nil, "bodega-user")
	require.NoError(t, err)

	err = uc.Reject(context.Background(), id, "el técnico debe conservar su kit", "bodega-user")
	require.NoError(t, err)

	assert.Equal(t, entity.ReturnRejected, store.Returns[id].Status)

	// El stock regresa al técnico
	good, defective := store.Stock(testTecnico, "part-1")
	assert.Equal(t, int64(2), good)
	assert.Equal(t, int64(1), defective)
	good, defective = store.Stock(testCentro, "part-1")
	assert.Zero(t, good)
	assert.Zero(t, defective)

	// El recibo original queda marcado reversed; la compensación es un movimiento nuevo
	assert.Equal(t, entity.MovementStatusReversed, store.Movements[movementID].Status)
	comp := store.MovementByRef(entity.MovementReturnReceipt, "reject:"+id)
	require.NotNil(t, comp)
	assert.Equal(t, entity.MovementStatusCommitted, comp.Status)
	assert.Equal(t, testCentro, comp.Source)
	assert.Equal(t, testTecnico, comp.Destination)
}

func TestReject_SinMotivo(t *testing.T) {
	_, uc := newFixture(t)
	err := uc.Reject(context.Background(), "ret-1", "", "bodega-user")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReject_EstadoTerminal(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testTecnico, "part-1", 2, 0)
	id := createReturn(t, uc, 2, 0)
	_, err := uc.Receive(context.Background(), id, nil, "bodega-user")
	require.NoError(t, err)
	_, err = uc.Verify(context.Background(), id, nil, "bodega-user")
	require.NoError(t, err)

	err = uc.Reject(context.Background(), id, "tarde", "bodega-user")
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}
