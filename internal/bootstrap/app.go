package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursegen/internal/ai"
	appsvc "coursegen/internal/app"
	"coursegen/internal/cache"
	"coursegen/internal/config"
	"coursegen/internal/model"
	"coursegen/internal/platform/logger"
	mysqlClient "coursegen/internal/platform/mysql"
	rabbitmqClient "coursegen/internal/platform/rabbitmq"
	redisClient "coursegen/internal/platform/redis"
	"coursegen/internal/repository"
	"coursegen/internal/worker"
)

type App struct {
	Config      *config.Config
	Log         *zap.Logger
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	EventWorker *worker.EnrichmentEventWorker

	Auth    *appsvc.AuthService
	Courses *appsvc.CourseService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	a := &App{Config: cfg, Log: log, StartedAt: time.Now()}
	if err := a.connect(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.wireServices()

	log.Info("application ready",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("model", cfg.LLM.Model))
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), &model.User{}, &model.Course{}, &model.EnrichmentEvent{})
	if err != nil {
		return err
	}
	a.MySQL = mysqlDB

	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	a.Redis = redisCli

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.EnrichmentEventQueue)
	if err != nil {
		return err
	}
	a.MQConn = mqConn

	eventWorker := worker.NewEnrichmentEventWorker(
		mqConn,
		repository.NewEnrichmentEventRepository(mysqlDB),
		cfg.RabbitMQ.EnrichmentEventQueue,
		a.Log.Named("enrichment-events"),
	)
	if err := eventWorker.Start(ctx); err != nil {
		return fmt.Errorf("start enrichment event worker failed: %w", err)
	}
	a.EventWorker = eventWorker
	return nil
}

// wireServices builds the services on top of live connections. One model
// client serves every request and background task.
func (a *App) wireServices() {
	cfg := a.Config

	llm := ai.NewOpenAICompatibleClient(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)
	chatConfig := ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}

	a.Auth = appsvc.NewAuthService(
		repository.NewUserRepository(a.MySQL),
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	a.Courses = appsvc.NewCourseService(
		repository.NewCourseRepository(a.MySQL),
		repository.NewEnrichmentEventRepository(a.MySQL),
		cache.NewCourseListCache(a.Redis, time.Duration(cfg.Redis.CourseListTTLSeconds)*time.Second),
		rabbitmqClient.NewEventPublisher(a.MQConn, cfg.RabbitMQ.EnrichmentEventQueue),
		appsvc.NewContentAnalyzer(llm, chatConfig, cfg.Upload.ExtractPDFText),
		appsvc.NewEnrichmentGenerator(llm, chatConfig),
		a.Log.Named("courses"),
	)
}

// Close drains in-flight enrichment before releasing connections.
func (a *App) Close() error {
	var closeErr error
	if a.Courses != nil {
		a.Courses.Wait()
	}
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return closeErr
}
