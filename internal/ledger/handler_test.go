package ledger

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/rgstore/rgstore-pos/internal/catalog"
)

func newTestRouter(repo *memoryRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func TestAdjustStockEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = catalog.Product{ID: 1, SKU: "BEV-001", Stock: 10, LowStockThreshold: 10}
	router := newTestRouter(repo)

	body := `{"quantity": 4, "type": "OUT", "reason": "Damaged"}`
	req := httptest.NewRequest(http.MethodPost, "/1/adjust-stock", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view catalog.ProductView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 6, view.Stock)
	require.True(t, view.IsLowStock)

	require.Len(t, repo.movements, 1)
	require.Equal(t, "Damaged", *repo.movements[0].Reason)
}

func TestAdjustStockEndpointRejections(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = catalog.Product{ID: 1, Stock: 2}
	router := newTestRouter(repo)

	cases := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"insufficient stock", "/1/adjust-stock", `{"quantity": 5, "type": "OUT"}`, http.StatusBadRequest},
		{"unknown product", "/99/adjust-stock", `{"quantity": 1, "type": "IN"}`, http.StatusNotFound},
		{"bad type", "/1/adjust-stock", `{"quantity": 1, "type": "LOST"}`, http.StatusBadRequest},
		{"zero quantity", "/1/adjust-stock", `{"quantity": 0, "type": "IN"}`, http.StatusBadRequest},
		{"malformed body", "/1/adjust-stock", `{"quantity": `, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.target, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
		})
	}

	require.Equal(t, 2, repo.products[1].Stock)
	require.Empty(t, repo.movements)
}

func TestListMovementsEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = catalog.Product{ID: 1, Stock: 10}
	reason := "Recount"
	repo.movements = []Movement{
		{ID: 1, ProductID: 1, Type: MovementIn, Quantity: 10, Reason: &reason},
		{ID: 2, ProductID: 2, Type: MovementIn, Quantity: 3},
	}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/1/movements", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var movements []Movement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movements))
	require.Len(t, movements, 1)
	require.Equal(t, int64(1), movements[0].ProductID)
}
