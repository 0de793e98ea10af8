package main

import (
	"log"
	"strings"

	"bizadmin-backend/internal/audit"
	"bizadmin-backend/internal/auth"
	"bizadmin-backend/internal/config"
	"bizadmin-backend/internal/database"
	"bizadmin-backend/internal/inventory"
	"bizadmin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				if e.Code == fiber.StatusInternalServerError {
					log.Println("Internal error:", e.Message)
				}
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"error":   e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Depo yönetimi
	adminRoutes.Post("/warehouses", inventory.CreateWarehouseHandler())
	adminRoutes.Put("/warehouses/:id", inventory.UpdateWarehouseHandler())

	// Ürün yönetimi
	adminRoutes.Post("/products", inventory.CreateProductHandler())
	adminRoutes.Put("/products/:id", inventory.UpdateProductHandler())

	// Tedarikçi yönetimi
	adminRoutes.Post("/suppliers", inventory.CreateSupplierHandler())

	// Ortak (auth gerektiren) route'lar
	protected.Get("/warehouses", inventory.ListWarehousesHandler())
	protected.Get("/products", inventory.ListProductsHandler())
	protected.Get("/suppliers", inventory.ListSuppliersHandler())

	// Opening stock ingestion
	protected.Get("/inventory/opening-stock", inventory.ListOpeningStockHandler())
	protected.Post("/inventory/opening-stock", inventory.CreateOpeningStockHandler())
	protected.Put("/inventory/opening-stock", inventory.BulkCreateOpeningStockHandler())
	protected.Post("/inventory/opening-stock/import", inventory.ImportOpeningStockHandler())
	protected.Get("/inventory/opening-stock/export", inventory.ExportOpeningStockHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
