package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sheikh-saqib/tripsync/internal/app"
	"github.com/sheikh-saqib/tripsync/internal/config"
	"github.com/sheikh-saqib/tripsync/internal/logging"
	"github.com/sheikh-saqib/tripsync/internal/schedule"
	"github.com/sheikh-saqib/tripsync/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *app.App) {
	t.Helper()
	a, err := app.New(context.Background(), config.Config{Store: config.StoreMemory, Currency: "EUR"},
		app.WithStore(memory.NewStore()), app.WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.WaitReady(context.Background()))
	return New(a), a
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, &buf))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rr := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestExpensesAndSettlement(t *testing.T) {
	s, _ := newTestServer(t)

	for _, name := range []string{"A", "B", "C"} {
		rr := do(t, s, http.MethodPost, "/squad", map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := do(t, s, http.MethodPost, "/expenses", map[string]any{"description": "Cabin", "amount": "60,00", "payer": "A"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[map[string]any](t, rr)
	assert.Equal(t, "Cabin", created["what"])
	assert.Equal(t, 60.0, created["cost"])

	rr = do(t, s, http.MethodGet, "/expenses", nil)
	list := decode[expensesResponse](t, rr)
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, 3, list.HeadCount)
	assert.Equal(t, "20.00 €", list.PerHead)

	rr = do(t, s, http.MethodGet, "/settlement", nil)
	plan := decode[settlementResponse](t, rr)
	assert.False(t, plan.Settled)
	assert.Equal(t, []string{"B → A: 20.00 €", "C → A: 20.00 €"}, plan.Lines)

	rr = do(t, s, http.MethodDelete, "/expenses/"+list.Expenses[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, s, http.MethodGet, "/settlement", nil)
	plan = decode[settlementResponse](t, rr)
	assert.True(t, plan.Settled)
	assert.Equal(t, []string{"Everyone is settled up!"}, plan.Lines)
}

func TestErrorMapping(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad amount", http.MethodPost, "/expenses", map[string]any{"description": "x", "amount": "abc", "payer": "A"}, http.StatusBadRequest},
		{"non-positive amount", http.MethodPost, "/expenses", map[string]any{"description": "x", "amount": 0, "payer": "A"}, http.StatusBadRequest},
		{"missing payer", http.MethodPost, "/expenses", map[string]any{"description": "x", "amount": 5}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/packing", map[string]any{"txt": "x"}, http.StatusBadRequest},
		{"unknown expense", http.MethodDelete, "/expenses/ghost", nil, http.StatusNotFound},
		{"unknown member", http.MethodPut, "/squad/ghost", map[string]string{"name": "x"}, http.StatusNotFound},
		{"unknown packing item", http.MethodPost, "/packing/ghost/toggle", nil, http.StatusNotFound},
		{"bad day", http.MethodDelete, "/schedule/x/items/y", nil, http.StatusBadRequest},
		{"missing day", http.MethodDelete, "/schedule/9/items/y", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.Contains(t, decode[map[string]string](t, rr), "error")
		})
	}
}

func TestSquadDefaults(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodPost, "/squad/defaults", nil)
	assert.JSONEq(t, `{"loaded":true}`, rr.Body.String())
	rr = do(t, s, http.MethodPost, "/squad/defaults", nil)
	assert.JSONEq(t, `{"loaded":false}`, rr.Body.String())

	rr = do(t, s, http.MethodGet, "/squad", nil)
	assert.Len(t, decode[[]map[string]string](t, rr), 4)

	rr = do(t, s, http.MethodDelete, "/squad/1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestPackingFlow(t *testing.T) {
	s, a := newTestServer(t)
	require.NoError(t, a.Seed(context.Background()))

	rr := do(t, s, http.MethodPost, "/packing", map[string]string{"text": "Tent"})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[map[string]any](t, rr)["id"].(string)

	rr = do(t, s, http.MethodPost, "/packing/"+id+"/toggle", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, s, http.MethodGet, "/packing", nil)
	got := decode[packingResponse](t, rr)
	assert.Equal(t, 1, got.Done)
	assert.Equal(t, len(a.Defaults.Packing)+1, got.Total)
}

func TestScheduleFlow(t *testing.T) {
	s, a := newTestServer(t)
	require.NoError(t, a.Seed(context.Background()))
	// a Saturday afternoon during the trip
	s.now = func() time.Time { return time.Date(2026, 10, 24, 16, 0, 0, 0, time.Local) }

	days := a.Planner.Days()
	first := days[0].Items[0].ID

	rr := do(t, s, http.MethodPut, "/schedule/notes/"+first, map[string]string{"text": "keys at desk", "height": "80px"})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, s, http.MethodPost, "/schedule/1/items", map[string]any{"item": map[string]string{"time": "14:30", "title": "Nap"}, "insert_at": 0})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, s, http.MethodGet, "/schedule", nil)
	view := decode[[]dayView](t, rr)
	require.Len(t, view, 3)
	assert.Equal(t, "keys at desk", view[0].Items[0].Note)
	assert.Equal(t, "80px", view[0].Items[0].NoteHeight)
	assert.Equal(t, schedule.StatusPast, view[0].Items[0].Status)
	assert.Equal(t, "Nap", view[1].Items[0].Title)
	assert.Equal(t, schedule.StatusPast, view[1].Items[0].Status)
	assert.Equal(t, schedule.StatusFuture, view[2].Items[0].Status)

	second := view[0].Items[1].ID
	rr = do(t, s, http.MethodPost, "/schedule/0/items/"+second+"/move", map[string]string{"to": first})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, second, a.Planner.Days()[0].Items[0].ID)

	rr = do(t, s, http.MethodPut, "/schedule/0/items/"+second+"/photos", map[string]any{"images": []string{"a.jpg"}})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"a.jpg"}, a.Planner.Days()[0].Items[0].Images)

	rr = do(t, s, http.MethodDelete, "/schedule/0/items/"+second, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, a := newTestServer(t)
	a.Ledger.AddParticipant("Ala")
	a.Flush()

	rr := do(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `tripsync_remote_writes_total{path="squad"} 1`)
}
