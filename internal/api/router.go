package api

import (
	"net/http"

	"github.com/leadvault/backend/internal/auth"
	"github.com/leadvault/backend/internal/health"
	"github.com/leadvault/backend/internal/metrics"
)

type Router struct {
	mux           *http.ServeMux
	authHandlers  *auth.Handlers
	authService   *auth.Service
	leadHandlers  *LeadHandlers
	healthHandler *health.Handler
}

func NewRouter(authHandlers *auth.Handlers, authService *auth.Service, leads LeadStore, healthHandler *health.Handler) *Router {
	r := &Router{
		mux:           http.NewServeMux(),
		authHandlers:  authHandlers,
		authService:   authService,
		leadHandlers:  NewLeadHandlers(leads),
		healthHandler: healthHandler,
	}
	r.setupRoutes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	// Operational endpoints
	r.mux.HandleFunc("GET /health", r.healthHandler.HealthHandler)
	r.mux.HandleFunc("GET /metrics", metrics.Default().Handler())

	// Auth routes (no auth required)
	r.mux.HandleFunc("POST /api/v1/auth/signup", r.authHandlers.Signup)
	r.mux.HandleFunc("POST /api/v1/auth/login", r.authHandlers.Login)

	// Auth routes (auth required)
	r.mux.HandleFunc("POST /api/v1/auth/logout", r.withAuth(r.authHandlers.Logout))

	// Lead routes (auth required)
	r.mux.HandleFunc("POST /api/v1/leads", r.withAuth(r.leadHandlers.CreateLead))
	r.mux.HandleFunc("GET /api/v1/leads", r.withAuth(r.leadHandlers.ListLeads))
	r.mux.HandleFunc("GET /api/v1/leads/{id}", r.withAuth(r.leadHandlers.GetLead))
	r.mux.HandleFunc("PUT /api/v1/leads/{id}", r.withAuth(r.leadHandlers.UpdateLead))
	r.mux.HandleFunc("DELETE /api/v1/leads/{id}", r.withAuth(r.leadHandlers.DeleteLead))
}

func (r *Router) withAuth(next http.HandlerFunc) http.HandlerFunc {
	middleware := auth.Middleware(r.authService)
	return func(w http.ResponseWriter, req *http.Request) {
		middleware(http.HandlerFunc(next)).ServeHTTP(w, req)
	}
}
