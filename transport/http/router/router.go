package router

import (
	"travelo/internal/handlers/auth"
	"travelo/internal/handlers/booking"
	"travelo/internal/handlers/credit"
	"travelo/internal/handlers/organization"
	"travelo/internal/handlers/policy"
	"travelo/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth         auth.Handler
	Organization organization.Handler
	User         user.Handler
	Policy       policy.Handler
	Credit       credit.Handler
	Booking      booking.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.Organization.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Policy.Router(routerGroup)
		r.DomainHandlers.Credit.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
