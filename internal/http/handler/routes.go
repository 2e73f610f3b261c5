package handler

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portal/docs"
	"portal/internal/database"
	"portal/internal/http/middleware"
	"portal/internal/service"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	DB        *database.Manager
	Companies service.CompanyService
	Projects  service.ProjectService
	Documents service.DocumentService
	JWTSecret []byte

	// UploadLimiter throttles uploads per client IP; nil disables throttling.
	UploadLimiter *middleware.IPRateLimiter
	// Uploads serves locally stored files under /uploads; nil for remote storage.
	Uploads http.FileSystem
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})

	if d.Uploads != nil {
		app.Use("/uploads", filesystem.New(filesystem.Config{
			Root:   d.Uploads,
			Browse: false,
			MaxAge: 3600,
		}))
	}

	api := app.Group("/api")

	// Public catalogue.
	api.Get("/companies", ListCompanies(d.Companies))
	api.Get("/companies/:id", GetCompany(d.Companies))
	api.Get("/projects", ListProjects(d.Projects))
	api.Get("/projects/:id", GetProject(d.Projects))

	auth := middleware.Auth(d.JWTSecret)
	admin := middleware.RequireAdmin()

	api.Get("/projects/:id/documents", auth, ListProjectDocuments(d.Documents))
	api.Get("/documents/:id", auth, GetDocument(d.Documents))
	api.Get("/documents/:id/view", auth, ViewDocument(d.Documents))

	api.Post("/companies", auth, admin, CreateCompany(d.Companies))
	api.Patch("/companies/:id", auth, admin, UpdateCompany(d.Companies))
	api.Delete("/companies/:id", auth, admin, DeleteCompany(d.Companies))

	api.Post("/projects", auth, admin, CreateProject(d.Projects))
	api.Patch("/projects/:id", auth, admin, UpdateProject(d.Projects))
	api.Delete("/projects/:id", auth, admin, DeleteProject(d.Projects))

	upload := []fiber.Handler{auth, admin}
	if d.UploadLimiter != nil {
		upload = append(upload, d.UploadLimiter.Handler())
	}
	upload = append(upload, UploadDocument(d.Documents))
	api.Post("/projects/:id/documents", upload...)
	api.Delete("/documents/:id", auth, admin, DeleteDocument(d.Documents))
}
