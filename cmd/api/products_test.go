package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ordersStoreStub struct {
	ratings []int
}

func (s *ordersStoreStub) Create(context.Context, *store.Order) error { return nil }
func (s *ordersStoreStub) GetByID(context.Context, int64) (*store.Order, error) {
	return nil, store.ErrNotFound
}
func (s *ordersStoreStub) ListByUser(context.Context, int64, int, int) ([]store.Order, int, error) {
	return nil, 0, nil
}
func (s *ordersStoreStub) List(context.Context, string, int, int) ([]store.Order, int, error) {
	return nil, 0, nil
}
func (s *ordersStoreStub) UpdateStatus(context.Context, int64, string) error { return nil }
func (s *ordersStoreStub) Rate(context.Context, int64, int64, int, string) error {
	return nil
}
func (s *ordersStoreStub) RatingsForProduct(context.Context, int64) ([]int, error) {
	return s.ratings, nil
}
func (s *ordersStoreStub) ReviewComments(context.Context, int) ([]string, error) { return nil, nil }
func (s *ordersStoreStub) DashboardStats(context.Context) (*store.DashboardStats, error) {
	return &store.DashboardStats{}, nil
}

func getProductRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/products/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetProductHandler(t *testing.T) {
	t.Run("rounds the average rating to one decimal", func(t *testing.T) {
		app := &application{
			logger: zap.NewNop().Sugar(),
			store: store.Storage{
				Products: &productsStoreStub{product: &store.Product{ID: 7, Name: "Black Forest", IsActive: true}},
				Orders:   &ordersStoreStub{ratings: []int{5, 4, 4}},
			},
		}

		rr := httptest.NewRecorder()
		app.getProductHandler(rr, getProductRequest("7"))

		require.Equal(t, http.StatusOK, rr.Code)

		var envelope struct {
			Data productDetail `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
		assert.Equal(t, 4.3, envelope.Data.AverageRating)
		assert.Equal(t, 3, envelope.Data.TotalRatings)
	})

	t.Run("unrated product reports zero", func(t *testing.T) {
		app := &application{
			logger: zap.NewNop().Sugar(),
			store: store.Storage{
				Products: &productsStoreStub{product: &store.Product{ID: 7, Name: "Black Forest", IsActive: true}},
				Orders:   &ordersStoreStub{},
			},
		}

		rr := httptest.NewRecorder()
		app.getProductHandler(rr, getProductRequest("7"))

		require.Equal(t, http.StatusOK, rr.Code)

		var envelope struct {
			Data productDetail `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
		assert.Zero(t, envelope.Data.AverageRating)
		assert.Zero(t, envelope.Data.TotalRatings)
	})

	t.Run("unknown product is a 404", func(t *testing.T) {
		app := &application{
			logger: zap.NewNop().Sugar(),
			store: store.Storage{
				Products: &productsStoreStub{},
				Orders:   &ordersStoreStub{},
			},
		}

		rr := httptest.NewRecorder()
		app.getProductHandler(rr, getProductRequest("99"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
