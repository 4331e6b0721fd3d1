package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"travelo/config"
	"travelo/infras/jwt"
	jwtMocks "travelo/infras/jwt/mocks"
	otelMocks "travelo/infras/otel/mocks"
	"travelo/permissions"
	"travelo/shared"
	"travelo/shared/constant"
	"travelo/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	apiKey = "internal-key"
	token  = "access-token"
)

func newServer(t *testing.T) (*jwtMocks.MockJWT, *shared.Actor, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	jwtService := jwtMocks.NewMockJWT(ctrl)

	cfg := &config.Config{}
	cfg.App.APIKey = apiKey

	perms := &permissions.PermissionData{
		Endpoints: []permissions.Permission{
			{Path: "/v1/auth/login", Method: http.MethodPost, Skip: true},
			{Path: "/v1/bookings/{id}/approve", Method: http.MethodPost, Permissions: []string{constant.RoleManager}},
		},
	}

	authRole := middleware.NewAuthRoleMiddleware(jwtService, otelMocks.NewOtel(), perms, cfg)

	seen := &shared.Actor{}
	capture := func(w http.ResponseWriter, r *http.Request) {
		*seen = shared.ActorFromContext(r.Context())

		w.WriteHeader(http.StatusNoContent)
	}

	router := chi.NewRouter()
	router.Use(authRole.APIKey, authRole.Auth, authRole.RBAC)
	router.Post("/v1/auth/login", capture)
	router.Post("/v1/bookings/{id}/approve", capture)

	return jwtService, seen, router
}

func call(handler http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, nil)
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder
}

func TestAuth_SkippedRoute(t *testing.T) {
	_, _, handler := newServer(t)

	rec := call(handler, "/v1/auth/login", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuth_MissingHeader(t *testing.T) {
	_, _, handler := newServer(t)

	rec := call(handler, "/v1/bookings/b1/approve", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	jwtService, _, handler := newServer(t)

	jwtService.EXPECT().ValidateToken(token, jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)

	rec := call(handler, "/v1/bookings/b1/approve", map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has expired")
}

func TestAuth_MissingOrganizationClaim(t *testing.T) {
	jwtService, _, handler := newServer(t)

	jwtService.EXPECT().ValidateToken(token, jwt.AccessToken).
		Return(&jwt.Claims{UserID: "u1", Email: "m@acme.test", Role: constant.RoleManager}, nil)

	rec := call(handler, "/v1/bookings/b1/approve", map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_PopulatesActor(t *testing.T) {
	jwtService, seen, handler := newServer(t)

	jwtService.EXPECT().ValidateToken(token, jwt.AccessToken).
		Return(&jwt.Claims{UserID: "u1", OrganizationID: "o1", Email: "m@acme.test", Role: constant.RoleManager}, nil)

	rec := call(handler, "/v1/bookings/b1/approve", map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token})

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, shared.Actor{UserID: "u1", OrganizationID: "o1", Role: constant.RoleManager}, *seen)
}

func TestRBAC_RoleNotAllowed(t *testing.T) {
	jwtService, _, handler := newServer(t)

	jwtService.EXPECT().ValidateToken(token, jwt.AccessToken).
		Return(&jwt.Claims{UserID: "u1", OrganizationID: "o1", Email: "t@acme.test", Role: constant.RoleTraveler}, nil)

	rec := call(handler, "/v1/bookings/b1/approve", map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPIKey(t *testing.T) {
	t.Run("valid key acts as platform operator", func(t *testing.T) {
		_, seen, handler := newServer(t)

		rec := call(handler, "/v1/bookings/b1/approve", map[string]string{constant.RequestHeaderAPIKey: apiKey})

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, constant.RoleSuperAdmin, seen.Role)
		assert.Equal(t, constant.ContextSystem, seen.Username())
	})

	t.Run("wrong key", func(t *testing.T) {
		_, _, handler := newServer(t)

		rec := call(handler, "/v1/bookings/b1/approve", map[string]string{constant.RequestHeaderAPIKey: "guess"})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
