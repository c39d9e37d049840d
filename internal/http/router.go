package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lessonplanner-ai/internal/handlers"
	"lessonplanner-ai/internal/service"
	"lessonplanner-ai/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService     service.ChatService
	DocumentService service.DocumentService
	Modules         storage.ModuleStore
	Roles           storage.RoleStore
	Verifier        TokenVerifier
	DB              handlers.Pinger
	Index           handlers.ChunkCounter
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	searchHandler := handlers.NewSearchHandler(deps.ChatService)
	sessionHandler := handlers.NewSessionHandler(deps.ChatService)
	documentHandler := handlers.NewDocumentHandler(deps.DocumentService)
	moduleHandler := handlers.NewModuleHandler(deps.Modules)
	roleHandler := handlers.NewRoleHandler(deps.Roles)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Index)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(deps.Verifier, deps.Roles))

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(storage.RoleAdmin, storage.RoleClient))

				r.Get("/search", searchHandler.Navigate)
				r.Post("/search", searchHandler.Query)

				r.Get("/sessions", sessionHandler.List)
				r.Get("/sessions/{id}", sessionHandler.Get)
				r.Delete("/sessions/{id}", sessionHandler.Delete)

				r.Get("/modules", moduleHandler.List)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(storage.RoleAdmin))

				r.Post("/documents", documentHandler.Upload)
				r.Get("/documents", documentHandler.List)
				r.Post("/documents/reindex", documentHandler.ReindexAll)
				r.Delete("/documents/{id}", documentHandler.Delete)
				r.Post("/documents/{id}/reindex", documentHandler.Reindex)

				r.Put("/admin/users/{id}/role", roleHandler.SetRole)
			})
		})
	})

	return r
}
