package middleware

import (
	"context"
	"errors"
	"net/http"
	"travelo/config"
	"travelo/infras/jwt"
	"travelo/infras/otel"
	"travelo/permissions"
	"travelo/shared/constant"
	"travelo/shared/failure"
	"travelo/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type authContextKey int

const (
	// keyInternal marks requests that presented the service API key.
	keyInternal authContextKey = iota
	// keyPermission carries the route permission resolved by the first middleware in the chain.
	keyPermission
)

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, perms *permissions.PermissionData, cfg *config.Config) AuthRole {
	if perms != nil {
		if err := perms.Validate(constant.Roles); err != nil {
			log.Error().Err(err).Msg("route permissions reference an unknown role")
		}
	}

	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: perms,
		cfg:        cfg,
	}
}

// routePermission returns the permission for the matched chi pattern, reusing the one an
// earlier middleware stored on the request.
func (m *authRoleImpl) routePermission(request *http.Request) (permissions.Permission, string) {
	rctx := chi.RouteContext(request.Context())

	pattern := ""
	if rctx != nil {
		pattern = rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
	}

	if permission, ok := request.Context().Value(keyPermission).(permissions.Permission); ok {
		return permission, pattern
	}

	if m.permission == nil {
		return permissions.Permission{}, pattern
	}

	return m.permission.FindPermissions(pattern, request.Method), pattern
}

func internal(ctx context.Context) bool {
	ok, _ := ctx.Value(keyInternal).(bool)

	return ok
}

func deny(writer http.ResponseWriter, scope otel.Scope, err error) {
	scope.TraceError(err)
	scope.End()

	response.WithError(writer, err)
}

func tokenFailure(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return failure.Unauthorized("Token has expired")
	case errors.Is(err, jwt.ErrInvalidClaim):
		return failure.Unauthorized("Invalid token claims")
	case errors.Is(err, jwt.ErrInvalidToken):
		return failure.Unauthorized("Invalid token")
	default:
		return failure.Unauthorized("Token validation failed")
	}
}

// Auth turns a bearer access token into the request actor. Public routes and internal callers pass untouched.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "auth.middleware")

		permission, pattern := m.routePermission(request)
		if internal(ctx) || permission.Skip {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       pattern,
			"http.method":     request.Method,
		})

		header := request.Header.Get(constant.RequestHeaderAuthorization)
		if header == "" {
			deny(writer, scope, failure.Unauthorized("Missing authorization header"))

			return
		}

		token, err := jwt.ExtractTokenFromHeader(header)
		if err != nil {
			deny(writer, scope, failure.Unauthorized("Invalid authorization header format"))

			return
		}

		claims, err := m.jwtService.ValidateToken(token, jwt.AccessToken)
		if err != nil {
			deny(writer, scope, tokenFailure(err))

			return
		}

		// Every write is scoped by organization, so a token without one is unusable.
		if claims.UserID == constant.Empty || claims.OrganizationID == constant.Empty || claims.Email == constant.Empty {
			log.Error().Str("token_id", claims.TokenID).Msg("access token is missing identity claims")
			deny(writer, scope, failure.Unauthorized("Invalid token claims"))

			return
		}

		ctx = request.Context()
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyOrganizationID, claims.OrganizationID)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		scope.SetAttribute("user.role", claims.Role)
		scope.End()

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RBAC admits the caller when its role is listed for the route. It runs after Auth.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "rbac.middleware")

		if m.permission == nil {
			deny(writer, scope, failure.ForbiddenError)

			return
		}

		permission, _ := m.routePermission(request)
		if internal(ctx) || m.permission.Skip || permission.Skip {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
		if !permission.Allows(role) {
			scope.SetAttributes(map[string]any{
				"user_role":     role,
				"allowed_roles": permission.Permissions,
				"reason":        "role_not_allowed",
			})
			deny(writer, scope, failure.ForbiddenError)

			return
		}

		scope.End()
		next.ServeHTTP(writer, request)
	})
}

// APIKey admits service-to-service calls. It also resolves the route permission once for the
// middleware after it.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")

		permission, _ := m.routePermission(request)
		ctx = context.WithValue(request.Context(), keyPermission, permission)

		key := request.Header.Get(constant.RequestHeaderAPIKey)
		if key == "" {
			scope.SetAttribute("http.source", "client")
			scope.End()
			next.ServeHTTP(writer, request.WithContext(ctx))

			return
		}

		scope.SetAttribute("http.source", "internal")

		if m.cfg.App.APIKey == "" || key != m.cfg.App.APIKey {
			deny(writer, scope, failure.ForbiddenError)

			return
		}

		// Internal callers act as the platform operator. Their writes are attributed to system.
		ctx = context.WithValue(ctx, keyInternal, true)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleSuperAdmin)

		scope.End()
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
