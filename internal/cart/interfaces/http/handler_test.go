package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/cart/application"
	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/response"
)

type memCartRepo struct {
	carts map[string]*domain.Cart
}

func (r *memCartRepo) GetByUserID(_ context.Context, userID string) (*domain.Cart, error) {
	return r.carts[userID], nil
}

func (r *memCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.carts[cart.UserID] = cart
	return nil
}

func (r *memCartRepo) Delete(_ context.Context, userID string) error {
	delete(r.carts, userID)
	return nil
}

type memGateway struct {
	products map[string]*domain.ProductInfo
}

func (g *memGateway) GetProduct(_ context.Context, productID string) (*domain.ProductInfo, error) {
	return g.products[productID], nil
}

func newTestRouter(repo *memCartRepo, gw *memGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)

	command := application.NewCartCommandService(repo, gw, nil, nil, metrics.New("test"))
	query := application.NewCartQueryService(repo, gw)
	handler := NewCartHandler(application.NewService(command, query))

	router := gin.New()
	handler.RegisterRoutes(router.Group(""))
	return router
}

func TestGetCartRequiresUserHeader(t *testing.T) {
	router := newTestRouter(&memCartRepo{carts: map[string]*domain.Cart{}}, &memGateway{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
}

func TestGetCartReturnsLazyEmptyCart(t *testing.T) {
	repo := &memCartRepo{carts: map[string]*domain.Cart{}}
	router := newTestRouter(repo, &memGateway{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, repo.carts, "user-1")
}

func TestAddItemValidationError(t *testing.T) {
	router := newTestRouter(&memCartRepo{carts: map[string]*domain.Cart{}}, &memGateway{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart",
		strings.NewReader(`{"product_id":"PRD-1","quantity":-1}`))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItemInsufficientStock(t *testing.T) {
	repo := &memCartRepo{carts: map[string]*domain.Cart{}}
	gw := &memGateway{products: map[string]*domain.ProductInfo{
		"PRD-1": {
			ProductID:        "PRD-1",
			Name:             "Widget",
			BasePrice:        decimal.RequireFromString("10.00"),
			Stock:            2,
			MinOrderQuantity: 1,
			Active:           true,
		},
	}}
	router := newTestRouter(repo, gw)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart",
		strings.NewReader(`{"product_id":"PRD-1","quantity":5}`))
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveItemFromMissingCartNotFound(t *testing.T) {
	router := newTestRouter(&memCartRepo{carts: map[string]*domain.Cart{}}, &memGateway{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/ITM-1", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCartStatsEmpty(t *testing.T) {
	router := newTestRouter(&memCartRepo{carts: map[string]*domain.Cart{}}, &memGateway{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/stats", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	stats, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, stats["is_empty"])
}
