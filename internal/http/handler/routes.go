package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"marketapi/internal/auth"
	"marketapi/internal/http/middleware"
	"marketapi/internal/model"
	"marketapi/internal/service"
)

// RegisterCommonRoutes mounts the endpoints every service exposes.
func RegisterCommonRoutes(app *fiber.App, db *sql.DB, g prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", Metrics(g))
	app.Get("/swagger/*", Swagger())
}

// RegisterUserRoutes mounts /api/users. /me is registered before /:id.
func RegisterUserRoutes(app *fiber.App, svc service.UserService, verifier auth.TokenVerifier) {
	authn := middleware.Authenticate(verifier)

	g := app.Group("/api/users")
	g.Post("/register", RegisterUser(svc))
	g.Post("/login", LoginUser(svc))
	g.Get("/me", authn, GetMe(svc))
	g.Put("/me", authn, UpdateMe(svc))
	g.Delete("/me", authn, DeleteMe(svc))
	g.Get("/:id", authn, GetUser(svc))
}

// RegisterProductRoutes mounts /api/products. Reads are public; writes need a SELLER.
func RegisterProductRoutes(app *fiber.App, svc service.ProductService, verifier auth.TokenVerifier) {
	authn := middleware.Authenticate(verifier)
	sellerOnly := middleware.RequireRole(model.RoleSeller)

	g := app.Group("/api/products")
	g.Post("/", authn, sellerOnly, CreateProduct(svc))
	g.Get("/", ListProducts(svc))
	g.Get("/my-products", authn, sellerOnly, ListMyProducts(svc))
	g.Get("/:id", GetProduct(svc))
	g.Put("/:id", authn, sellerOnly, UpdateProduct(svc))
	g.Delete("/:id", authn, sellerOnly, DeleteProduct(svc))
}

// RegisterMediaRoutes mounts /api/media. When uploadDir is set (local storage)
// the files are also served statically under /uploads, matching imagePath.
func RegisterMediaRoutes(app *fiber.App, svc service.MediaService, verifier auth.TokenVerifier, uploadDir string) {
	authn := middleware.Authenticate(verifier)
	sellerOnly := middleware.RequireRole(model.RoleSeller)

	g := app.Group("/api/media")
	g.Post("/", authn, sellerOnly, UploadMedia(svc))
	g.Get("/my-media", authn, sellerOnly, ListMyMedia(svc))
	g.Get("/product/:productId", ListProductMedia(svc))
	g.Get("/:id/file", GetMediaFile(svc))
	g.Get("/:id", GetMedia(svc))
	g.Delete("/:id", authn, sellerOnly, DeleteMedia(svc))

	if uploadDir != "" {
		app.Static("/uploads", uploadDir, fiber.Static{Browse: false})
	}
}
