package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sharebox/sharebox/internal/middleware"
	"github.com/sharebox/sharebox/internal/services"
	"gorm.io/gorm"
)

type Services struct {
	Registry   *services.FileRegistry
	Ledger     *services.ContributionLedger
	Accounting *services.StorageAccounting
}

// RegisterRoutes mounts the /api surface on app.
func RegisterRoutes(app *fiber.App, db *gorm.DB, svc Services) {
	authMiddleware := middleware.NewAuthMiddleware(db)

	authHandler := NewAuthHandler(db)
	uploadsHandler := NewUploadsHandler(svc.Registry)
	filesHandler := NewFilesHandler(svc.Registry, svc.Accounting)
	contributionsHandler := NewContributionsHandler(svc.Ledger)

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	uploadRoutes := api.Group("/uploads")
	uploadRoutes.Post("/", authMiddleware.RequireAuth, uploadsHandler.RequestSlot)
	uploadRoutes.Post("/:token", uploadsHandler.Commit)

	fileRoutes := api.Group("/files")
	fileRoutes.Post("/", authMiddleware.RequireAuth, filesHandler.Create)
	fileRoutes.Get("/", authMiddleware.OptionalAuth, filesHandler.ListOwn)
	fileRoutes.Get("/public", authMiddleware.OptionalAuth, filesHandler.ListPublic)
	fileRoutes.Get("/stats", authMiddleware.OptionalAuth, filesHandler.Stats)
	fileRoutes.Get("/usage", authMiddleware.OptionalAuth, filesHandler.Usage)
	fileRoutes.Get("/:id", authMiddleware.OptionalAuth, filesHandler.Get)
	fileRoutes.Get("/:id/download", authMiddleware.OptionalAuth, filesHandler.Download)
	fileRoutes.Delete("/:id", authMiddleware.RequireAuth, filesHandler.Delete)

	contributionRoutes := api.Group("/contributions")
	contributionRoutes.Post("/", authMiddleware.RequireAuth, contributionsHandler.Create)
	contributionRoutes.Get("/", authMiddleware.OptionalAuth, contributionsHandler.List)
}
