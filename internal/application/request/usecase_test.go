package request_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviplus/repuestos-api/internal/application/inventory"
	"github.com/serviplus/repuestos-api/internal/application/request"
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
	testBodega  = entity.Location{Type: entity.LocationWarehouse, ID: "bod-1"}
)

func newFixture(t *testing.T) (*testutil.Store, *request.UseCase) {
	t.Helper()
	store := testutil.NewStore()
	store.SeedPart("part-1", "FLT-001", decimal.NewFromInt(10), 0)
	store.SeedPart("part-2", "BRK-002", decimal.NewFromInt(25), 0)
	uc := request.NewUseCase(
		testutil.NewTxRunner(store),
		inventory.NewRecorder(),
		testutil.NewRequestRepo(store),
	)
	return store, uc
}

func createRequest(t *testing.T, uc *request.UseCase, items []request.ItemInput) string {
	t.Helper()
	id, err := uc.Create(context.Background(), request.CreateInput{
		Type:        entity.RequestTypeTechnicianIssue,
		Source:      testCentro,
		Destination: testTecnico,
		Reason:      "orden de servicio 1234",
		Items:       items,
		CreatedBy:   "tec-user",
	})
	require.NoError(t, err)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_QuedaPendienteConRenglones(t *testing.T) {
	store, uc := newFixture(t)

	id := createRequest(t, uc, []request.ItemInput{
		{PartID: "part-1", Qty: 2},
		{PartID: "part-2", Qty: 1},
	})

	req := store.Requests[id]
	require.NotNil(t, req)
	assert.Equal(t, entity.RequestPending, req.Status)
	assert.Equal(t, testCentro, req.Source)
	assert.Equal(t, testTecnico, req.Destination)

	items := store.RequestItems[id]
	require.Len(t, items, 2)
	assert.Nil(t, items[0].ApprovedQty, "sin decidir no hay cantidad aprobada")
}

func TestCreate_Validaciones(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   request.CreateInput
	}{
		{"tipo desconocido", request.CreateInput{
			Type: "prestamo", Source: testCentro, Destination: testTecnico,
			Items: []request.ItemInput{{PartID: "part-1", Qty: 1}}, CreatedBy: "u",
		}},
		{"origen igual a destino", request.CreateInput{
			Type: entity.RequestTypeTechnicianIssue, Source: testCentro, Destination: testCentro,
			Items: []request.ItemInput{{PartID: "part-1", Qty: 1}}, CreatedBy: "u",
		}},
		{"sin renglones", request.CreateInput{
			Type: entity.RequestTypeTechnicianIssue, Source: testCentro, Destination: testTecnico, CreatedBy: "u",
		}},
		{"cantidad cero", request.CreateInput{
			Type: entity.RequestTypeTechnicianIssue, Source: testCentro, Destination: testTecnico,
			Items: []request.ItemInput{{PartID: "part-1", Qty: 0}}, CreatedBy: "u",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Decide
// ──────────────────────────────────────────────────────────────────────────────

func TestDecide_AprobacionCompleta(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 10, 0)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 4}})

	result, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestAllocated, result.Status)
	require.NotEmpty(t, result.MovementID)

	good, _ := store.Stock(testCentro, "part-1")
	assert.Equal(t, int64(6), good, "el despachador queda debitado")
	good, _ = store.Stock(testTecnico, "part-1")
	assert.Equal(t, int64(4), good, "el receptor queda acreditado")

	mov := store.Movements[result.MovementID]
	require.NotNil(t, mov)
	assert.Equal(t, entity.MovementRequestFulfillment, mov.Type)
	assert.Equal(t, id, mov.Reference, "la referencia del movimiento es la solicitud")

	items := store.RequestItems[id]
	require.NotNil(t, items[0].ApprovedQty)
	assert.Equal(t, int64(4), *items[0].ApprovedQty)
}

func TestDecide_ParcialPorDisponibilidad(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 3, 0)
	store.SeedStock(testCentro, "part-2", 0, 0)
	id := createRequest(t, uc, []request.ItemInput{
		{PartID: "part-1", Qty: 5},
		{PartID: "part-2", Qty: 2},
	})

	result, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestAllocated, result.Status)

	// part-1 acotado a lo disponible; part-2 rechazado en cero sin tumbar el resto
	items := store.RequestItems[id]
	byPart := map[string]int64{}
	for _, it := range items {
		require.NotNil(t, it.ApprovedQty)
		byPart[it.PartID] = *it.ApprovedQty
	}
	assert.Equal(t, int64(3), byPart["part-1"])
	assert.Equal(t, int64(0), byPart["part-2"])

	good, _ := store.Stock(testCentro, "part-1")
	assert.Zero(t, good)
	good, _ = store.Stock(testTecnico, "part-2")
	assert.Zero(t, good, "un renglón en cero no mueve stock")
}

func TestDecide_DosRenglonesDelMismoRepuesto_CompartenDisponibilidad(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 10, 0)
	// Dos órdenes de servicio distintas piden el mismo repuesto en una sola
	// solicitud: el segundo renglón solo puede aprobar lo que dejó el primero.
	id := createRequest(t, uc, []request.ItemInput{
		{PartID: "part-1", Qty: 6},
		{PartID: "part-1", Qty: 6},
	})

	result, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestAllocated, result.Status)

	items := store.RequestItems[id]
	require.Len(t, items, 2)
	require.NotNil(t, items[0].ApprovedQty)
	require.NotNil(t, items[1].ApprovedQty)
	assert.Equal(t, int64(6), *items[0].ApprovedQty)
	assert.Equal(t, int64(4), *items[1].ApprovedQty, "el segundo renglón se acota a lo restante")

	good, _ := store.Stock(testCentro, "part-1")
	assert.Zero(t, good, "lo aprobado nunca excede lo disponible")
	good, _ = store.Stock(testTecnico, "part-1")
	assert.Equal(t, int64(10), good)
}

func TestDecide_DecisionDelAprobadorAcota(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 10, 0)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 5}})
	itemID := store.RequestItems[id][0].ID

	result, err := uc.Decide(context.Background(), id,
		[]request.ItemDecision{{ItemID: itemID, ApprovedQty: 2}}, "aprobador-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestAllocated, result.Status)

	items := store.RequestItems[id]
	assert.Equal(t, int64(2), *items[0].ApprovedQty,
		"la cantidad final es min(decidida, solicitada, disponible)")
}

func TestDecide_TodoEnCero_Rechaza(t *testing.T) {
	store, uc := newFixture(t)
	// sin stock en el despachador
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 3}})

	result, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestRejected, result.Status)
	assert.Empty(t, result.MovementID)
	assert.Empty(t, store.Movements, "una solicitud rechazada no genera movimiento")
}

func TestDecide_ReintentoIdempotente(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 10, 0)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 4}})

	first, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)

	second, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)
	assert.Equal(t, first.MovementID, second.MovementID, "el reintento devuelve el resultado previo")

	good, _ := store.Stock(testCentro, "part-1")
	assert.Equal(t, int64(6), good, "el reintento no debita de nuevo")
	assert.Len(t, store.Movements, 1)
}

func TestDecide_EstadoNoDecidible(t *testing.T) {
	store, uc := newFixture(t)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 1}})
	store.Requests[id].Status = entity.RequestRejected

	_, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestDecide_SolicitudInexistente(t *testing.T) {
	_, uc := newFixture(t)
	_, err := uc.Decide(context.Background(), "no-existe", nil, "aprobador-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecide_RenglonDesconocidoEnDecision(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 10, 0)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 1}})

	_, err := uc.Decide(context.Background(), id,
		[]request.ItemDecision{{ItemID: "item-ajeno", ApprovedQty: 1}}, "aprobador-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Forward
// ──────────────────────────────────────────────────────────────────────────────

func TestForward_CreaHijaYMarcaForwarded(t *testing.T) {
	store, uc := newFixture(t)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 2}})

	childID, err := uc.Forward(context.Background(), id, testBodega, "aprobador-1")
	require.NoError(t, err)
	require.NotEmpty(t, childID)

	assert.Equal(t, entity.RequestForwarded, store.Requests[id].Status)

	child := store.Requests[childID]
	require.NotNil(t, child)
	assert.Equal(t, entity.RequestPending, child.Status)
	assert.Equal(t, testBodega, child.Source, "upstream despacha la hija")
	assert.Equal(t, testCentro, child.Destination, "la despachadora original pasa a recibir")
	assert.Equal(t, id, child.ParentID)

	childItems := store.RequestItems[childID]
	require.Len(t, childItems, 1)
	assert.Equal(t, int64(2), childItems[0].RequestedQty, "los renglones se copian tal cual")
}

func TestForward_SoloEnPending(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 5, 0)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 1}})

	_, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)

	_, err = uc.Forward(context.Background(), id, testBodega, "aprobador-1")
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestForward_UpstreamIgualAlOrigen(t *testing.T) {
	_, uc := newFixture(t)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 1}})

	_, err := uc.Forward(context.Background(), id, testCentro, "aprobador-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Complete
// ──────────────────────────────────────────────────────────────────────────────

func TestComplete_ConConsumoDebitaAlReceptor(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 10, 0)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 4}})

	_, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)

	movementID, err := uc.Complete(context.Background(), id, true, "tec-user")
	require.NoError(t, err)
	require.NotEmpty(t, movementID)

	assert.Equal(t, entity.RequestCompleted, store.Requests[id].Status)
	good, _ := store.Stock(testTecnico, "part-1")
	assert.Zero(t, good, "el consumo debita lo aprobado del receptor")

	mov := store.Movements[movementID]
	require.NotNil(t, mov)
	assert.Equal(t, entity.MovementConsumption, mov.Type)
	assert.Equal(t, "consume:"+id, mov.Reference)
}

func TestComplete_SinConsumoSoloCambiaEstado(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 10, 0)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 4}})

	_, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)

	movementID, err := uc.Complete(context.Background(), id, false, "tec-user")
	require.NoError(t, err)
	assert.Empty(t, movementID)

	good, _ := store.Stock(testTecnico, "part-1")
	assert.Equal(t, int64(4), good, "sin consumo el receptor conserva lo recibido")
}

func TestComplete_ReintentoIdempotente(t *testing.T) {
	store, uc := newFixture(t)
	store.SeedStock(testCentro, "part-1", 10, 0)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 4}})

	_, err := uc.Decide(context.Background(), id, nil, "aprobador-1")
	require.NoError(t, err)

	first, err := uc.Complete(context.Background(), id, true, "tec-user")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := uc.Complete(context.Background(), id, true, "tec-user")
	require.NoError(t, err)
	assert.Equal(t, first, second, "el reintento devuelve el movimiento de consumo previo")

	good, _ := store.Stock(testTecnico, "part-1")
	assert.Zero(t, good, "el reintento no debita de nuevo")
	assert.Len(t, store.Movements, 2, "fulfillment y consumption, sin duplicados")
}

func TestComplete_SoloDesdeAllocated(t *testing.T) {
	_, uc := newFixture(t)
	id := createRequest(t, uc, []request.ItemInput{{PartID: "part-1", Qty: 1}})

	_, err := uc.Complete(context.Background(), id, false, "tec-user")
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}
