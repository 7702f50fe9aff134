package app

import (
	"context"
	"dating_scan_backend/internal/config"
	"dating_scan_backend/internal/controller"
	"dating_scan_backend/internal/repository"
	"dating_scan_backend/internal/service"
	"dating_scan_backend/pkg/configwatcher"
	"dating_scan_backend/pkg/database"
	"dating_scan_backend/pkg/logger"
	"dating_scan_backend/pkg/monitoring"
	"dating_scan_backend/pkg/security"
	"dating_scan_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
	stop            context.CancelFunc
}

type repositories struct {
	definition  *repository.DefinitionRepository
	assessment  *repository.AssessmentRepository
	response    *repository.ResponseRepository
	result      *repository.ResultRepository
	retake      *repository.RetakeRepository
	resultCache *repository.ResultCache
}

type services struct {
	banks      *service.QuestionBankService
	governor   *service.RetakeGovernor
	collector  *service.ResponseCollector
	results    *service.ResultService
	assessment *service.AssessmentService
}

type controllers struct {
	assessment *controller.AssessmentController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		definition:  repository.NewDefinitionRepository(db),
		assessment:  repository.NewAssessmentRepository(db),
		response:    repository.NewResponseRepository(db),
		result:      repository.NewResultRepository(db),
		retake:      repository.NewRetakeRepository(db),
		resultCache: repository.NewResultCache(rdb, time.Duration(cfg.Redis.ResultTTLMinutes)*time.Minute),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}
	s.banks = service.NewQuestionBankService(repos.definition)
	s.governor = service.NewRetakeGovernor(repos.retake, repos.assessment, cfg.Retake.Cooldown())
	s.collector = service.NewResponseCollector(repos.assessment, repos.response, s.banks, s.governor)
	s.results = service.NewResultService(repos.result, repos.response, repos.resultCache, s.banks, cfg.Scoring.Engine())
	s.assessment = service.NewAssessmentService(repos.assessment, s.banks, s.governor, s.collector, s.results, cfg.Retake.AbandonAfter())

	if cfg.Storage.ArchiveResult {
		s.assessment.Archive = service.NewArchiveService(service.NewStorageProvider(&cfg.Storage))
	}
	if cfg.AI.BaseURL != "" {
		s.assessment.Narrator = service.NewNarratorService(cfg.AI)
	}

	// hot reload of scoring thresholds and retake cooldown
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.results.SetConfig(newCfg.Scoring.Engine())
		s.governor.SetCooldown(newCfg.Retake.Cooldown())
	})
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		assessment: controller.NewAssessmentController(s.assessment),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the abandonment sweeper and the config watcher
// until ctx is cancelled.
func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	go func() {
		ticker := time.NewTicker(a.Config.Retake.SweepInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.assessment.AbandonStale(ctx); err != nil {
					logger.Log.Error("abandon sweep error", zap.Error(err))
				}
			}
		}
	}()

	go func() {
		path := filepath.Join(configDir, "config.yaml")
		if _, err := os.Stat(path); err != nil {
			logger.Log.Info("No config file to watch", zap.String("path", path))
			return
		}
		err := configwatcher.WatchConfig(ctx, path, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("dating-scan-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	app.stop = cancel
	app.startBackgroundTasks(ctx, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// wait for a signal, then shut down with a 5s grace period
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stop != nil {
		a.stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
