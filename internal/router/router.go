package router

import (
	"time"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/config"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/handler"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/middleware"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/repository"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/service"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(300, time.Minute)) // lookups fire per grid row

	// ── Repositories ─────────────────────────────────────────────────────────
	fuelRepo := repository.NewFuelRecordRepository(db)
	stationRepo := repository.NewStationRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	deliveryRepo := repository.NewDeliveryOrderRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	stationSvc := service.NewStationService(stationRepo, rdb)
	journeySvc := service.NewJourneyService(fuelRepo, deliveryRepo, stationSvc, cfg.SearchWindowMonths, cfg.FuelRecordFetchLimit)
	orderSvc := service.NewOrderService(orderRepo, dispatcher)
	fuelSvc := service.NewFuelRecordService(fuelRepo, deliveryRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	lookupH := handler.NewLookupHandler(journeySvc)
	stationsH := handler.NewStationsHandler(stationSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	fuelH := handler.NewFuelRecordsHandler(fuelSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: clerk, supervisor, admin — declared per-endpoint
		anyStaff := middleware.RequireRole(middleware.RoleClerk, middleware.RoleSupervisor, middleware.RoleAdmin)
		supervisorUp := middleware.RequireRole(middleware.RoleSupervisor, middleware.RoleAdmin)
		adminOnly := middleware.RequireRole(middleware.RoleAdmin)

		lookup := v1.Group("/lookup", anyStaff)
		{
			lookup.GET("/truck/:truck_no", lookupH.ByTruck)
			lookup.GET("/do/:do_no", lookupH.ByDO)
			lookup.POST("/truck/:truck_no/switch", lookupH.Switch)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", anyStaff, ordersH.Create)
			orders.POST("/check-duplicate", anyStaff, ordersH.CheckDuplicate)
			orders.GET("", anyStaff, ordersH.List)
			orders.GET("/:id", anyStaff, ordersH.Get)
			// Cancelling an issued allocation needs sign-off
			orders.DELETE("/:id/entries/:entry_id", supervisorUp, ordersH.CancelEntry)
		}

		fuel := v1.Group("/fuel-records")
		{
			fuel.POST("", anyStaff, fuelH.ImportDO)
			fuel.GET("/truck/:truck_no", anyStaff, fuelH.ListByTruck)
			fuel.PUT("/:id/checkpoint", anyStaff, fuelH.FillCheckpoint)
			fuel.DELETE("/:id", supervisorUp, fuelH.Cancel)
		}

		// Station configuration — reads for everyone, writes are admin only
		v1.GET("/stations", anyStaff, stationsH.List)
		v1.POST("/stations/resolve", anyStaff, stationsH.Resolve)
		stations := v1.Group("/stations", adminOnly)
		{
			stations.POST("", stationsH.Create)
			stations.PUT("/:id", stationsH.Update)
			stations.DELETE("/:id", stationsH.Deactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
