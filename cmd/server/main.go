package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agrisetu/pumptrack/internal/config"
	"github.com/agrisetu/pumptrack/internal/middleware"
	"github.com/agrisetu/pumptrack/internal/storage"
	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/agrisetu/pumptrack/internal/workorder/handler"
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"github.com/agrisetu/pumptrack/internal/workorder/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting pumptrack service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.WorkOrder{},
		&entity.StageLog{},
		&entity.WorkOrderStakeholders{},
		&entity.WorkOrderTimeline{},
		&entity.ManufacturedUnits{},
		&entity.PDIVerification{},
		&entity.JSRVerification{},
		&entity.WarehouseDispatch{},
		&entity.WarehouseUnits{},
		&entity.WarehouseJSRMapping{},
		&entity.CPUnits{},
		&entity.CPAssignment{},
		&entity.FarmerAssignment{},
		&entity.InspectionUnits{},
		&entity.InspectionPhoto{},
		&entity.PumpProgress{},
		&entity.PumpDefect{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化文件存储
	var store storage.FileStore
	if cfg.MinIO.Endpoint != "" {
		minioStore, err := storage.NewMinIOStore(storage.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Warn("MinIO unavailable, falling back to no-op store", zap.Error(err))
			store = storage.NoopStore{}
		} else {
			store = minioStore
		}
	} else {
		store = storage.NoopStore{}
	}

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb)
	handlers := handler.NewHandlers(services, store)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWT.Secret))

	// 工单（管理端）
	workorders := api.Group("/workorders")
	{
		workorders.GET("", h.WorkOrder.List)
		workorders.GET("/summary", h.WorkOrder.Summary)
		workorders.GET("/export", middleware.RequireRole(entity.RoleAdmin), h.WorkOrder.Export)
		workorders.POST("", middleware.RequireRole(entity.RoleAdmin), h.WorkOrder.Create)
		workorders.GET("/:id", h.WorkOrder.Get)
		workorders.PUT("/:id", middleware.RequireRole(entity.RoleAdmin), h.WorkOrder.Update)
		workorders.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.WorkOrder.Delete)
		workorders.POST("/:id/farmer-list", middleware.RequireRole(entity.RoleAdmin), h.WorkOrder.UploadFarmerList)
		workorders.GET("/:id/progress", h.WorkOrder.Progress)

		// 阶段提交
		workorders.POST("/:id/manufactured", middleware.RequireRole(entity.RoleFactory), h.Stage.SubmitManufactured)
		workorders.POST("/:id/pdi", middleware.RequireRole(entity.RolePDIOfficer), h.Stage.SubmitPDI)
		workorders.POST("/:id/factory-status", middleware.RequireRole(entity.RoleFactory, entity.RolePDIOfficer), h.Stage.UpdateFactoryStatus)
		workorders.POST("/:id/dispatch", middleware.RequireRole(entity.RoleJSR), h.Stage.Dispatch)
		workorders.POST("/:id/jsr-units", middleware.RequireRole(entity.RoleJSR), h.Stage.SaveJSRUnits)
		workorders.POST("/:id/jsr-stage", middleware.RequireRole(entity.RoleJSR), h.Stage.UpdateJSRStage)

		// 分发
		workorders.POST("/:id/warehouse-units", middleware.RequireRole(entity.RoleWarehouseManager), h.Distribution.SubmitWarehouseUnits)
		workorders.POST("/:id/cp-units", middleware.RequireRole(entity.RoleChannelPartner), h.Distribution.SubmitCPUnits)
		workorders.POST("/:id/assign-cp", middleware.RequireRole(entity.RoleWarehouseManager), h.Distribution.AssignToCP)
		workorders.POST("/:id/assign-farmer", middleware.RequireRole(entity.RoleChannelPartner), h.Distribution.AssignToFarmer)
		workorders.GET("/:id/cp-assignments", h.Distribution.ListCPAssignments)
		workorders.GET("/:id/farmer-assignments", h.Distribution.ListFarmerAssignments)

		// 检验
		workorders.POST("/:id/inspection-units", middleware.RequireRole(entity.RoleInspectionOfficer), h.Inspection.SubmitUnits)
		workorders.POST("/:id/inspection-photos", middleware.RequireRole(entity.RoleInspectionOfficer), h.Inspection.UploadPhotos)
		workorders.POST("/:id/inspection-complete", middleware.RequireRole(entity.RoleInspectionOfficer), h.Inspection.Complete)
		workorders.GET("/:id/inspection-progress", h.Inspection.InspectionProgress)
	}

	// 农户端
	pumps := api.Group("/pumps")
	{
		pumps.GET("/progress", middleware.RequireRole(entity.RoleFarmer), h.Inspection.PumpProgress)
		pumps.POST("/defects", middleware.RequireRole(entity.RoleFarmer), h.Inspection.ReportDefect)
		pumps.GET("/defects", middleware.RequireRole(entity.RoleFarmer), h.Inspection.ListDefects)
	}

	// 看板
	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/summary", middleware.RequireRole(entity.RoleAdmin), h.Dashboard.Summary)
		dashboard.GET("/factory", middleware.RequireRole(entity.RoleFactory), h.Dashboard.Factory)
		dashboard.GET("/warehouse", middleware.RequireRole(entity.RoleWarehouseManager), h.Dashboard.Warehouse)
		dashboard.GET("/cp", middleware.RequireRole(entity.RoleChannelPartner), h.Dashboard.CP)
		dashboard.GET("/jsr", middleware.RequireRole(entity.RoleJSR), h.Dashboard.JSR)
		dashboard.GET("/inspection", middleware.RequireRole(entity.RoleInspectionOfficer), h.Dashboard.Inspection)
		dashboard.GET("/assigned-orders", h.Dashboard.AssignedOrders)
		dashboard.GET("/users", middleware.RequireRole(entity.RoleAdmin), h.Dashboard.UsersByRole)
	}
}
