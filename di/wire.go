//go:build wireinject
// +build wireinject

package di

import (
	"travelo/config"
	"travelo/infras/jwt"
	"travelo/infras/kafka"
	"travelo/infras/otel"
	"travelo/infras/postgres"
	"travelo/infras/redis"
	"travelo/infras/s3"
	"travelo/permissions"
	"travelo/shared/cache"
	gRepo "travelo/shared/repository"
	"travelo/transport/http"
	"travelo/transport/http/middleware"
	"travelo/transport/http/router"

	"github.com/google/wire"

	authService "travelo/internal/domains/auth/service"
	bookingRepository "travelo/internal/domains/booking/repository"
	bookingService "travelo/internal/domains/booking/service"
	creditRepository "travelo/internal/domains/credit/repository"
	creditService "travelo/internal/domains/credit/service"
	organizationRepository "travelo/internal/domains/organization/repository"
	organizationService "travelo/internal/domains/organization/service"
	policyRepository "travelo/internal/domains/policy/repository"
	policyService "travelo/internal/domains/policy/service"
	userRepository "travelo/internal/domains/user/repository"
	userService "travelo/internal/domains/user/service"

	authHandler "travelo/internal/handlers/auth"
	bookingHandler "travelo/internal/handlers/booking"
	creditHandler "travelo/internal/handlers/credit"
	organizationHandler "travelo/internal/handlers/organization"
	policyHandler "travelo/internal/handlers/policy"
	userHandler "travelo/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	gRepo.NewTransactor,
)

var repositories = wire.NewSet(
	organizationRepository.New,
	userRepository.New,
	policyRepository.New,
	creditRepository.New,
	creditRepository.NewLedger,
	bookingRepository.New,
)

var domains = wire.NewSet(
	authService.New,
	organizationService.New,
	userService.New,
	policyService.New,
	creditService.New,
	bookingService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	organizationHandler.New,
	userHandler.New,
	policyHandler.New,
	creditHandler.New,
	bookingHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
