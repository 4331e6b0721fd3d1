package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"travelo/config"
	otelMocks "travelo/infras/otel/mocks"
	cacheMocks "travelo/shared/cache/mocks"
	"travelo/shared/constant"
	"travelo/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTracing(t *testing.T) {
	tracer := otelMocks.NewOtel()

	cfg := &config.Config{}
	cfg.App.Name = "travelo"

	app := middleware.NewAppMiddleware(tracer, cfg, cacheMocks.NewMockRedisCache(gomock.NewController(t)))

	router := chi.NewRouter()
	router.Use(app.Tracing)
	router.Get("/v1/bookings/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	request := httptest.NewRequest(http.MethodGet, "/v1/bookings/b1", nil)
	request.RemoteAddr = "203.0.113.7:51234"
	request.Header.Set(constant.RequestHeaderUserAgent, "travel-app/1.0")

	router.ServeHTTP(httptest.NewRecorder(), request)

	scope := tracer.Scope("GET /v1/bookings/b1")
	require.NotNil(t, scope)

	assert.Equal(t, "travel-app/1.0", scope.Attributes["http.user_agent"])
	assert.Equal(t, "203.0.113.7", scope.Attributes["http.source"])
	assert.Equal(t, http.StatusBadGateway, scope.Attributes["http.status_code"])
	assert.Equal(t, "/v1/bookings/{id}", scope.Attributes["http.route"])
	assert.Len(t, scope.Errors, 1)
	assert.True(t, scope.Ended)
}

func TestTracing_UnknownUserAgent(t *testing.T) {
	tracer := otelMocks.NewOtel()

	app := middleware.NewAppMiddleware(tracer, &config.Config{}, cacheMocks.NewMockRedisCache(gomock.NewController(t)))

	handler := app.Tracing(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	request.Header.Del(constant.RequestHeaderUserAgent)

	handler.ServeHTTP(httptest.NewRecorder(), request)

	scope := tracer.Scope("GET /health")
	require.NotNil(t, scope)

	assert.Equal(t, "unknown", scope.Attributes["http.user_agent"])
	assert.Empty(t, scope.Errors)
}
