package api

import (
	"net/http"

	"github.com/rpattn/fleetreg/internal/accounts"
	"github.com/rpattn/fleetreg/internal/auth"
	"github.com/rpattn/fleetreg/internal/export"
	"github.com/rpattn/fleetreg/internal/ingestion"
	"github.com/rpattn/fleetreg/internal/metrics"
	"github.com/rpattn/fleetreg/internal/middleware"
	"github.com/rpattn/fleetreg/internal/repository"
	"github.com/rpattn/fleetreg/pkg/validator"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"
)

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Areas       repository.FishingAreaRepository
	Ships       repository.ShipRepository
	Permissions repository.PermissionRepository
	Roles       repository.RoleRepository
	UserRoles   repository.UserRoleRepository
	RoleGroups  repository.RoleGroupRepository
	Profiles    repository.ProfileRepository
	Users       repository.UserRepository
	ImportLogs  repository.ImportLogRepository

	Accounts *accounts.Service
	Imports  *ingestion.Service
	Exports  *export.Service
	Metrics  *metrics.Metrics

	CORSOrigins    []string
	UploadMaxBytes int64
	UploadLimiter  *UploadLimiter
}

type handlers struct {
	Dependencies
	validator *validator.StructValidator
}

// NewRouter wires every route of the back office.
func NewRouter(deps Dependencies) http.Handler {
	h := &handlers{Dependencies: deps, validator: validator.NewStructValidator()}

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(deps.Metrics.Middleware)
	r.Use(corsHandler.Handler)
	r.Use(auth.Middleware)

	r.Get("/health", h.health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.DataLoaderMiddleware(deps.Profiles))

		r.Route("/roles", func(r chi.Router) {
			r.Get("/roles", h.listRoles)
			r.Post("/roles", h.createRole)
			r.Get("/roles/{id}", h.getRole)
			r.Put("/roles/{id}", h.updateRole)
			r.Delete("/roles/{id}", h.deleteRole)

			r.Get("/permissions", h.listPermissions)

			r.Get("/user-roles", h.listUserRoles)
			r.Post("/user-roles", h.createUserRole)
			r.Delete("/user-roles/{id}", h.deleteUserRole)
			r.Get("/users/{user_id}/roles", h.listRolesForUser)

			r.Get("/role-groups", h.listRoleGroups)
			r.Post("/role-groups", h.createRoleGroup)
			r.Get("/role-groups/{id}", h.getRoleGroup)
			r.Put("/role-groups/{id}", h.updateRoleGroup)
			r.Delete("/role-groups/{id}", h.deleteRoleGroup)

			h.mountSpreadsheet(r, ingestion.ResourceRoles, false)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/register", h.register)
			r.Post("/register/owner", h.registerOwner)
			r.Post("/register/captain", h.registerCaptain)
			r.Get("/{id}", h.getUser)
		})

		r.Route("/ships", func(r chi.Router) {
			r.Get("/", h.listShips)
			r.Post("/create", h.createShip)
			h.mountSpreadsheet(r, ingestion.ResourceShips, true)
			r.Get("/{id}", h.getShip)
			r.Put("/{id}/update", h.updateShip)
			r.Delete("/{id}/delete", h.deleteShip)
		})

		r.Route("/regions", func(r chi.Router) {
			r.Get("/", h.listAreas)
			r.Post("/create", h.createArea)
			h.mountSpreadsheet(r, ingestion.ResourceFishingAreas, true)
			r.Get("/{id}", h.getArea)
			r.Put("/{id}/update", h.updateArea)
			r.Delete("/{id}/delete", h.deleteArea)
		})

		r.Get("/imports/logs", h.listImportLogs)
	})

	return r
}

// mountSpreadsheet adds the import, template and optionally export routes
// of one resource.
func (h *handlers) mountSpreadsheet(r chi.Router, resource string, withExport bool) {
	importHandler := ingestion.NewHTTPHandler(h.Imports, resource, h.UploadMaxBytes)
	r.With(h.UploadLimiter.Middleware).Post("/import", importHandler.ServeHTTP)
	r.Method(http.MethodGet, "/template", export.NewTemplateHandler(h.Exports, resource))
	if withExport {
		r.Method(http.MethodGet, "/export", export.NewExportHandler(h.Exports, resource))
	}
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok", "message": "Fish Chain API is running"})
}
