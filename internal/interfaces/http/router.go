package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tiendapro/tiendapro-api/internal/application/damage"
	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/application/sale"
	"github.com/tiendapro/tiendapro-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OutletUC  *usecase.OutletUseCase
	ProductUC *usecase.ProductUseCase
	StockUC   *ledger.StockUseCase
	SaleUC    *sale.SaleUseCase
	DamageUC  *damage.DamageUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas las rutas de negocio requieren
// Bearer Token; company_id y user_id salen de los claims.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Outlets (protegido)
	outlets := protected.Group("/outlets")
	outletHandler := NewOutletHandler(deps.OutletUC)
	outlets.Post("/", outletHandler.Create)
	outlets.Get("/", outletHandler.List)
	outlets.Get("/:id", outletHandler.GetByID)
	outlets.Put("/:id", outletHandler.Update)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	// Stock (protegido): movimientos del libro, niveles y reservas
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Post("/adjustments", stockHandler.Adjust)
	stock.Post("/transfers", stockHandler.Transfer)
	stock.Post("/batch-adjustments", stockHandler.BatchAdjust)
	stock.Post("/reconciliations", stockHandler.Reconcile)
	stock.Post("/reservations", stockHandler.Reserve)
	stock.Delete("/reservations/:id", stockHandler.ReleaseReservation)
	stock.Get("/levels", stockHandler.ListLevels)
	stock.Get("/level", stockHandler.GetLevel)
	stock.Get("/movements", stockHandler.ListMovements)

	// Sales (protegido): ciclo de vida de la venta
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/complete", saleHandler.Complete)
	sales.Post("/:id/void", saleHandler.Void)
	sales.Post("/:id/refund", saleHandler.Refund)

	// Damages (protegido): ciclo de vida del reporte de daño
	damages := protected.Group("/damages")
	damageHandler := NewDamageHandler(deps.DamageUC)
	damages.Post("/", damageHandler.Report)
	damages.Get("/", damageHandler.List)
	damages.Get("/:id", damageHandler.GetByID)
	damages.Post("/:id/inspect", damageHandler.Inspect)
	damages.Post("/:id/repairs", damageHandler.Repair)
	damages.Post("/:id/scraps", damageHandler.Scrap)
	damages.Post("/:id/resolve", damageHandler.Resolve)
	damages.Delete("/:id", damageHandler.Delete)
}
