package routes

import (
	"net/http"

	"catalog-backend/database"
	"catalog-backend/firebase"
	"catalog-backend/handlers"
	"catalog-backend/middleware"
	"catalog-backend/models"
	"catalog-backend/services"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps carries everything the route handlers need. AuthLimiter may be nil,
// in which case the auth endpoints are not rate limited.
type Deps struct {
	Runner      *database.TxRunner
	Categories  *services.CategoryService
	Users       *services.UserService
	Storage     firebase.StorageClient
	AuthLimiter *middleware.RateLimiter
	Log         *zap.Logger
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	utils.RegisterValidators()

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	// Initialize handlers
	authHandler := &handlers.AuthHandler{Users: deps.Users, Log: log}
	categoryHandler := &handlers.CategoryHandler{Service: deps.Categories, Storage: deps.Storage, Log: log}
	inventoryHandler := &handlers.InventoryHandler{Runner: deps.Runner, Storage: deps.Storage, Log: log}
	productHandler := &handlers.ProductHandler{Runner: deps.Runner, Categories: deps.Categories, Log: log}

	// Public routes
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		if deps.AuthLimiter != nil {
			auth.Use(deps.AuthLimiter.Middleware())
		}
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh-token", authHandler.RefreshToken)

		api.GET("/categories", categoryHandler.ListCategories)
		api.GET("/categories/tree", categoryHandler.GetTree)
		api.GET("/categories/:idOrSlug", categoryHandler.GetCategory)

		api.GET("/products", productHandler.ListProducts)
		api.GET("/products/:idOrSlug", productHandler.GetProduct)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
	}

	// Inventory is managed by admins and employees
	staff := api.Group("/admin")
	staff.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleAdmin, models.RoleEmployee))
	{
		staff.POST("/inventory", inventoryHandler.CreateInventory)
		staff.GET("/inventory", inventoryHandler.ListInventory)
		staff.PATCH("/inventory/:id/publish", inventoryHandler.PublishInventory)
		staff.POST("/inventory/:id/images", inventoryHandler.UploadImages)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/users", authHandler.CreateUser)

		// Category management
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PATCH("/categories/:id", categoryHandler.UpdateCategory)
		admin.PATCH("/categories/:id/move", categoryHandler.MoveCategory)
		admin.PATCH("/categories/:id/reorder", categoryHandler.ReorderCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)
		admin.POST("/categories/:id/image", categoryHandler.UploadImage)

		// Storefront listings
		admin.POST("/products", productHandler.CreateProduct)
		admin.PATCH("/products/:id/publish", productHandler.PublishProduct)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
