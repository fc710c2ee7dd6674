package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"resume-builder/internal/events"
	"resume-builder/internal/llm"
	"resume-builder/internal/llm/gemini"
	"resume-builder/internal/llm/openai"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	miniostore "resume-builder/internal/shared/storage/object/minio"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Redis          *redis.Client
	Events         *events.AMQPPublisher
	Store          object.ObjectStore
	LLM            llm.Client
	ResumesRepo    resumes.Repo
	ResumesService *resumes.Service
	ResumesHandler *resumes.Handler
	Health         *health.Service
}

// Build prepares dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}
	if sqlDB == nil && strings.TrimSpace(cfg.RedisAddr) != "" {
		if app.Redis, err = BuildRedis(ctx, cfg); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(cfg.AMQPURL) != "" {
		if app.Events, err = events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	store, err := BuildStore(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	client, err := NewLLMClient(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	var repo resumes.Repo
	switch {
	case sqlDB != nil:
		repo = &resumes.PGRepo{DB: sqlDB}
	case app.Redis != nil:
		repo = &resumes.RedisRepo{Client: app.Redis, TTL: cfg.GenerationTTL}
	default:
		repo = resumes.NewMemoryRepo()
	}

	svc := &resumes.Service{
		LLM:   client,
		Store: store,
		Repo:  repo,
	}
	if app.Events != nil {
		svc.Events = app.Events
	}

	healthSvc := health.NewService()
	if sqlDB != nil {
		healthSvc.Add("database", sqlDB)
	}
	if app.Redis != nil {
		rdb := app.Redis
		healthSvc.Add("redis", health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	app.Store = store
	app.LLM = client
	app.ResumesRepo = repo
	app.ResumesService = svc
	app.ResumesHandler = resumes.NewHandler(svc)
	app.Health = healthSvc
	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Health:  healthSvc,
		Resumes: app.ResumesHandler,
	})
	return app, nil
}

// Close releases the database pool, Redis client and AMQP connection.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Events != nil {
		errs = append(errs, a.Events.Close())
	}
	return errors.Join(errs...)
}

// BuildRedis connects to REDIS_ADDR with tracing hooks installed.
func BuildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisotel.InstrumentTracing(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("instrument redis: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	telemetry.Info("bootstrap.redis_repo", map[string]any{"addr": cfg.RedisAddr, "db": cfg.RedisDB})
	return client, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		switch {
		case strings.TrimSpace(cfg.RedisAddr) != "":
			return nil, nil
		case isDevLike(cfg.Env):
			telemetry.Info("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL or REDIS_ADDR is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "database unavailable", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// BuildStore selects the object store named by OBJECT_STORE.
func BuildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, s3store.Options{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			KMSKeyID:  cfg.SSEKMSKeyID,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "minio":
		if strings.TrimSpace(cfg.MinioEndpoint) == "" || strings.TrimSpace(cfg.MinioBucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=minio requires MINIO_ENDPOINT and MINIO_BUCKET")
		}
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// NewLLMClient builds the configured provider client. Without an API key a
// placeholder is returned so the form still renders; generation then fails
// with an upstream error.
func NewLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if strings.TrimSpace(cfg.APIKey()) == "" {
		telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}, nil
	}
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	default:
		return gemini.NewClient(ctx, gemini.Options{
			APIKey:  cfg.GoogleAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
