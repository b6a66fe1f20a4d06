package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// newLedgerApp arma la API completa sobre SQLite en memoria.
func newLedgerApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	items := sqlite.NewItemRepository(db)
	movements := sqlite.NewMovementRepository(db)
	history := sqlite.NewHistoryRepository(db)
	m := metrics.NewLedgerMetrics("test")

	runner := sqlite.NewTxRunner(db, time.Second)
	ledger := inventory.NewLedgerUseCase(runner, items, movements, history, inventory.WithMetrics(m))
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ItemUC:    usecase.NewItemUseCase(runner, items),
		Ledger:    ledger,
		Reports:   inventory.NewReportUseCase(runner, pdf.NewMarotoPDFGenerator(), logger.Nop()),
		JWTSecret: testJWTSecret,
		Logger:    logger.Nop(),
		Metrics:   m.Handler(),
	})
	return app
}

type apiCall struct {
	method, path, role, lang string
	body                     any
}

func call(t *testing.T, app *fiber.App, c apiCall) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.role != "" {
		req.Header.Set("Authorization", tokenForRole(t, c.role))
	}
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func registerItem(t *testing.T, app *fiber.App, name string) dto.ItemResponse {
	t.Helper()
	resp, raw := call(t, app, apiCall{method: http.MethodPost, path: "/api/items", role: "admin", body: dto.CreateItemRequest{Name: name}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return decode[dto.ItemResponse](t, raw)
}

func postMovement(t *testing.T, app *fiber.App, body map[string]any) (*http.Response, []byte) {
	t.Helper()
	return call(t, app, apiCall{method: http.MethodPost, path: "/api/inventory/movements", role: "bodeguero", body: body})
}

func TestAPI_FlujoCompletoDeMovimientos(t *testing.T) {
	app := newLedgerApp(t)
	item := registerItem(t, app, "Potato")
	assert.Equal(t, testUserID, item.StaffID)

	resp, raw := postMovement(t, app, map[string]any{"item_id": item.ID, "classification": "STORE", "quantity": 100, "unit_price": 1000})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	in := decode[map[string]any](t, raw)
	assert.Equal(t, "100000", in["total_price"])
	inID := in["id"].(string)

	resp, raw = postMovement(t, app, map[string]any{"item_id": item.ID, "classification": "RELEASE", "quantity": 30, "unit_price": 0})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	outID := decode[map[string]any](t, raw)["id"].(string)

	resp, raw = postMovement(t, app, map[string]any{"item_id": item.ID, "classification": "RELEASE", "quantity": 1000, "unit_price": 0})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apphttp.CodeStockUnderflow, decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = call(t, app, apiCall{method: http.MethodPut, path: "/api/inventory/movements/" + outID, role: "bodeguero",
		body: map[string]any{"classification": "RELEASE", "quantity": 50, "unit_price": 0}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	_, raw = call(t, app, apiCall{method: http.MethodGet, path: "/api/items/" + item.ID, role: "consulta"})
	got := decode[dto.ItemResponse](t, raw)
	assert.Equal(t, [3]int64{100, 50, 50}, [3]int64{got.Store, got.Release, got.TotalCount})

	resp, raw = call(t, app, apiCall{method: http.MethodDelete, path: "/api/inventory/movements/" + inID, role: "admin"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "borrar la entrada dejaría el total en negativo")
	assert.Equal(t, apphttp.CodeStockUnderflow, decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = call(t, app, apiCall{method: http.MethodGet, path: "/api/inventory/movements/" + outID + "/history", role: "consulta"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hist := decode[[]dto.HistoryRecordResponse](t, raw)
	require.Len(t, hist, 2)
	assert.Equal(t, int64(30), hist[0].Quantity)
	assert.Equal(t, int64(50), hist[1].Quantity)

	resp, _ = call(t, app, apiCall{method: http.MethodDelete, path: "/api/inventory/movements/" + outID, role: "admin"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(t, app, apiCall{method: http.MethodGet, path: "/api/inventory/movements/" + outID, role: "consulta"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = call(t, app, apiCall{method: http.MethodGet, path: "/api/items/" + item.ID + "/reconciliation", role: "consulta"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[dto.ReconciliationResponse](t, raw)
	assert.False(t, rec.Drift)
	assert.Equal(t, int64(100), rec.Recomputed.TotalCount)

	_, raw = call(t, app, apiCall{method: http.MethodGet, path: "/api/inventory/stats", role: "consulta"})
	stats := decode[dto.MovementStatsResponse](t, raw)
	assert.Equal(t, int64(1), stats.Count)
	assert.Equal(t, int64(100000), stats.StoreValue)
}

func TestAPI_RolConsultaNoEscribe(t *testing.T) {
	app := newLedgerApp(t)
	resp, _ := call(t, app, apiCall{method: http.MethodPost, path: "/api/items", role: "consulta", body: dto.CreateItemRequest{Name: "Onion"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, apiCall{method: http.MethodGet, path: "/api/items"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_MensajesLocalizados(t *testing.T) {
	app := newLedgerApp(t)
	item := registerItem(t, app, "Garlic")
	body := map[string]any{"item_id": item.ID, "classification": "RELEASE", "quantity": 1, "unit_price": 0}

	cases := map[string]string{
		"":               "la salida excede el total disponible",
		"en-US,en;q=0.9": "release exceeds total count",
		"ko":             "총 갯수보다 출고가 많습니다.",
		"fr":             "la salida excede el total disponible",
	}
	for lang, want := range cases {
		resp, raw := call(t, app, apiCall{method: http.MethodPost, path: "/api/inventory/movements", role: "admin", lang: lang, body: body})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, want, decode[dto.ErrorResponse](t, raw).Message, "Accept-Language %q", lang)
	}
}

func TestAPI_ValidacionesDeEntrada(t *testing.T) {
	app := newLedgerApp(t)
	item := registerItem(t, app, "Carrot")

	resp, raw := call(t, app, apiCall{method: http.MethodPost, path: "/api/items", role: "admin", body: dto.CreateItemRequest{Name: "Carrot"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apphttp.CodeDuplicate, decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = postMovement(t, app, map[string]any{"item_id": item.ID, "classification": "TRANSFER", "quantity": 1, "unit_price": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeValidation, decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = postMovement(t, app, map[string]any{"item_id": item.ID, "classification": "STORE", "quantity": 1, "unit_price": 1.5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))

	resp, raw = postMovement(t, app, map[string]any{"item_id": "no-existe", "classification": "STORE", "quantity": 1, "unit_price": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(raw))

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/movements", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	r, err := app.Test(req, -1)
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestAPI_ItemConMovimientosNoSeElimina(t *testing.T) {
	app := newLedgerApp(t)
	item := registerItem(t, app, "Leek")
	resp, _ := postMovement(t, app, map[string]any{"item_id": item.ID, "classification": "STORE", "quantity": 2, "unit_price": 10})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := call(t, app, apiCall{method: http.MethodDelete, path: "/api/items/" + item.ID, role: "admin"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apphttp.CodeConflict, decode[dto.ErrorResponse](t, raw).Code)

	empty := registerItem(t, app, "Empty")
	resp, _ = call(t, app, apiCall{method: http.MethodDelete, path: "/api/items/" + empty.ID, role: "admin"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_ListadoKardexYMetricas(t *testing.T) {
	app := newLedgerApp(t)
	item := registerItem(t, app, "Tomato")
	registerItem(t, app, "Pepper")
	for _, q := range []int{5, 7} {
		resp, _ := postMovement(t, app, map[string]any{"item_id": item.ID, "classification": "STORE", "quantity": q, "unit_price": 3})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	_, raw := call(t, app, apiCall{method: http.MethodGet, path: "/api/items?q=toma", role: "consulta"})
	list := decode[dto.ItemListResponse](t, raw)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Tomato", list.Items[0].Name)

	_, raw = call(t, app, apiCall{method: http.MethodGet, path: "/api/items/" + item.ID + "/movements?limit=1", role: "consulta"})
	movs := decode[dto.MovementListResponse](t, raw)
	require.Len(t, movs.Items, 1)
	assert.Equal(t, int64(5), movs.Items[0].Quantity)

	resp, raw := call(t, app, apiCall{method: http.MethodGet, path: "/api/items/" + item.ID + "/kardex.pdf", role: "consulta"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp, raw = call(t, app, apiCall{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `test_ledger_operations_total{classification="STORE",operation="create",outcome="ok"} 2`)

	resp, _ = call(t, app, apiCall{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_TokenDeOtroSecretoEsRechazado(t *testing.T) {
	app := newLedgerApp(t)
	tok, err := pkgjwt.Generate("otro-secreto", testUserID, "admin", testIssuer, testExpMin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
