package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/safety_agent_system/internal/agent"
	"github.com/shenikar/safety_agent_system/internal/assembler"
	"github.com/shenikar/safety_agent_system/internal/config"
	"github.com/shenikar/safety_agent_system/internal/evaluation"
	"github.com/shenikar/safety_agent_system/internal/geotask"
	v1 "github.com/shenikar/safety_agent_system/internal/handler/http/v1"
	"github.com/shenikar/safety_agent_system/internal/risk"
	"github.com/shenikar/safety_agent_system/internal/schema"
	"github.com/shenikar/safety_agent_system/internal/service"
	"github.com/shenikar/safety_agent_system/internal/store"
	"github.com/shenikar/safety_agent_system/internal/tools"
	"github.com/shenikar/safety_agent_system/pkg/logger"
	"github.com/shenikar/safety_agent_system/pkg/postgres"
	redisclient "github.com/shenikar/safety_agent_system/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/safety_agent_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Safety Agent System API
// @version 1.0
// @description This is a Local Safety Agent System API server.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// newIncidentStore выбирает хранилище инцидентов: PostgreSQL при заданном
// DATABASE_URL, иначе журнал в памяти процесса.
func newIncidentStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (store.IncidentStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set, incidents will be stored in memory only")
		return store.NewMemoryStore(), func() {}, nil
	}

	if err := runMigrations(cfg, log); err != nil {
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info("Successfully connected to PostgreSQL")
	return store.NewPostgresStore(dbpool), dbpool.Close, nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Выбор хранилища инцидентов
	incidents, closeStore, err := newIncidentStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize incident store: %v", err)
	}
	defer closeStore()

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Валидатор схемы инцидентов
	validator := schema.New()

	// Клиент сервиса принятия решений
	decision := agent.NewOpenRouterClient(cfg, log)

	// Реестр поискового раунда: только поиск по локальной базе
	searchRegistry := tools.NewRegistry()
	if err := searchRegistry.Register(tools.NewSearchTool(incidents)); err != nil {
		log.Fatalf("Failed to register search tools: %v", err)
	}

	// Реестр гео-раунда: геокодирование и извлечение инцидентов
	geoRegistry := tools.NewRegistry()
	for _, t := range []tools.Tool{tools.NewGeocodeTool(), tools.NewExtractTool()} {
		if err := geoRegistry.Register(t); err != nil {
			log.Fatalf("Failed to register geo tools: %v", err)
		}
	}

	searchOrchestrator := agent.NewOrchestrator(decision, searchRegistry, log)
	geoOrchestrator := agent.NewOrchestrator(decision, geoRegistry, log)

	// Сборщик инцидентов и архив результатов
	asm := assembler.NewAssembler(validator, log)
	archive := store.NewFileArchive(cfg.ResultsDir)

	// Очередь гео-задач и воркер
	taskQueue := geotask.NewRedisTaskQueue(redisClient, cfg.GeoTaskStatusTTL)
	worker := geotask.NewWorker(redisClient, log, cfg, geoOrchestrator, asm, incidents, archive, taskQueue)
	worker.Start(ctx)

	// Движок оценки риска и оценщик качества данных
	riskEngine := risk.NewEngine(incidents, log)
	evaluator := evaluation.NewEvaluator(validator, log)

	// Инициализация сервисов
	safetyService := service.NewSafetyService(searchOrchestrator, incidents, riskEngine, evaluator, archive, taskQueue, log, cfg)

	// Инициализация хэндлеров
	handler := v1.NewHandler(safetyService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
