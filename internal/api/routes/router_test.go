package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/rarediseaseguide/internal/api/handlers"
	"github.com/zatekoja/rarediseaseguide/internal/api/middleware"
	"github.com/zatekoja/rarediseaseguide/internal/api/routes"
	"github.com/zatekoja/rarediseaseguide/internal/application/services"
	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
)

type noMatchResolver struct{}

func (noMatchResolver) SearchDisease(ctx context.Context, term, lang string) (*entities.DiseaseRecord, bool) {
	return nil, false
}

func (noMatchResolver) GetDiseaseDetails(ctx context.Context, code, lang string) (*entities.DiseaseRecord, bool) {
	return nil, false
}

type staticIndex struct{}

func (staticIndex) IsLoaded() bool { return false }
func (staticIndex) Size() int     { return 0 }

func newHandler(limiter *middleware.IPRateLimiter, cors middleware.CORSConfig) http.Handler {
	resolver := noMatchResolver{}
	router := routes.NewRouter(
		handlers.NewDiseaseHandler(resolver, services.NewDiseaseLookupService(resolver)),
		handlers.NewHealthHandler(staticIndex{}),
		limiter,
		cors,
		nil,
	)
	return router.SetupRoutes()
}

func TestRouter_HealthAndRequestID(t *testing.T) {
	handler := newHandler(nil, middleware.CORSConfig{AllowedOrigins: []string{"*"}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.JSONEq(t, `{"status":"ok","index_loaded":false,"index_size":0}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_CORS(t *testing.T) {
	handler := newHandler(nil, middleware.CORSConfig{AllowedOrigins: []string{"https://rarediseases.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/orpha/marfan", nil)
	req.Header.Set("Origin", "https://rarediseases.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://rarediseases.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimitsLookupRoutes(t *testing.T) {
	handler := newHandler(middleware.NewIPRateLimiter(1, 2), middleware.CORSConfig{})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/orpha/zzzznotadisease", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, statuses)

	// other clients and the health check are unaffected
	req := httptest.NewRequest(http.MethodGet, "/api/orpha/zzzznotadisease", nil)
	req.RemoteAddr = "198.51.100.1:40000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.7:51000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
