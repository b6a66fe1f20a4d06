package http

import (
	nethttp "net/http"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC    *usecase.ItemUseCase
	Ledger    *inventory.LedgerUseCase
	Reports   *inventory.ReportUseCase
	JWTSecret string
	Logger    *logger.Logger
	// Metrics sirve /metrics si no es nil.
	Metrics nethttp.Handler
	// SwaggerFile habilita /docs cuando el archivo existe.
	SwaggerFile string
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(recover.New())
	if deps.Logger != nil {
		app.Use(RequestLogger(deps.Logger))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}
	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "Inventario Ledger API",
			}))
		}
	}

	// Rutas protegidas (requieren Bearer Token); escritura solo admin o bodeguero.
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(RoleAdmin, RoleBodeguero)

	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.Ledger, deps.Reports)
	items.Post("/", writers, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Delete("/:id", writers, itemHandler.Delete)
	items.Get("/:id/movements", itemHandler.Movements)
	items.Get("/:id/reconciliation", itemHandler.Reconciliation)
	items.Get("/:id/kardex.pdf", itemHandler.KardexPDF)

	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	invGroup.Post("/movements", writers, inventoryHandler.CreateMovement)
	invGroup.Get("/movements/:id", inventoryHandler.GetMovement)
	invGroup.Put("/movements/:id", writers, inventoryHandler.UpdateMovement)
	invGroup.Delete("/movements/:id", writers, inventoryHandler.DeleteMovement)
	invGroup.Get("/movements/:id/history", inventoryHandler.History)
	invGroup.Get("/stats", inventoryHandler.Stats)
}
