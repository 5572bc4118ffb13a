package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mealscan/internal/domain"
	"mealscan/internal/handler"
	"mealscan/internal/service"
)

type stubFoodService struct {
	mock.Mock
}

func (s *stubFoodService) Search(ctx context.Context, query string, limit int) ([]domain.CompositionRecord, error) {
	args := s.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompositionRecord), args.Error(1)
}

func (s *stubFoodService) GetByCode(ctx context.Context, foodCode string) (*domain.CompositionRecord, error) {
	args := s.Called(ctx, foodCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompositionRecord), args.Error(1)
}

func setupFoodRouter(svc service.FoodService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewFoodHandler(svc)
	r.GET("/api/v1/foods/search", h.Search)
	r.GET("/api/v1/foods/:code", h.GetByCode)
	return r
}

func TestFoodSearch_OK(t *testing.T) {
	svc := new(stubFoodService)
	svc.On("Search", mock.Anything, "鶏むね肉", 20).
		Return([]domain.CompositionRecord{
			{FoodCode: "11220", Name: "鶏むね肉", EnergyKcal: 108, ProteinG: 22.3},
		}, nil)

	r := setupFoodRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/foods/search?q=%E9%B6%8F%E3%82%80%E3%81%AD%E8%82%89", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestFoodSearch_MissingQuery(t *testing.T) {
	svc := new(stubFoodService)
	r := setupFoodRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/foods/search", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MISSING_QUERY", resp.Error.Code)
}

func TestFoodSearch_NoDatabaseConfigured(t *testing.T) {
	r := setupFoodRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/foods/search?q=rice", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_COMPOSITION_DB", resp.Error.Code)
}

func TestFoodGetByCode_NotFoundMapsTo404(t *testing.T) {
	svc := new(stubFoodService)
	svc.On("GetByCode", mock.Anything, "99999").Return(nil, domain.ErrNotFound)

	r := setupFoodRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/foods/99999", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}
