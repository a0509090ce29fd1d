package rankinghttp

import (
	"github.com/CSA-DanielVillamizar/lama-mototurismo/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// RouteConfig tunes the ranking HTTP surface.
type RouteConfig struct {
	// RequestsPerSecond and Burst bound each client IP.
	RequestsPerSecond float64
	Burst             int
}

// Mount registers the ranking routes under /api/rankings.
//
//	GET  /api/rankings/{tenantID}/{year}/{scopeType}?scope_id=&skip=&take=
//	GET  /api/rankings/{tenantID}/{year}/{scopeType}/members/{memberID}?scope_id=
//	GET  /api/rankings/{tenantID}/{year}/{scopeType}/export.xlsx?scope_id=
//	POST /api/rankings/{tenantID}/{year}/rebuild   (bearer, admin of tenant)
func Mount(httpRouter chi.Router, h *Handlers, tokens jwt.Service, cfg RouteConfig) {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 20
	}
	limiter := NewIPRateLimiter(rate.Limit(rps), burst)

	httpRouter.Route("/api/rankings/{tenantID}/{year}", func(r chi.Router) {
		r.Use(RateLimitMiddleware(limiter))

		r.Get("/{scopeType}", h.HandleGetRanking)
		r.Get("/{scopeType}/members/{memberID}", h.HandleGetMember)
		r.Get("/{scopeType}/export.xlsx", h.HandleExport)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(tokens))
			r.Post("/rebuild", h.HandleRebuild)
		})
	})
}
