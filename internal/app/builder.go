// Package app собирает сервис из частей: конфиг → инфраструктура →
// auth-примитивы → HTTP-сервер.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/MathBio-Lab/s3-output-manager/internal/auth/password"
	"github.com/MathBio-Lab/s3-output-manager/internal/auth/ratelimit"
	"github.com/MathBio-Lab/s3-output-manager/internal/auth/token"
	"github.com/MathBio-Lab/s3-output-manager/internal/config"
	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	redisx "github.com/MathBio-Lab/s3-output-manager/internal/infra/cache/redis"
	"github.com/MathBio-Lab/s3-output-manager/internal/infra/database/postgres"
	s3storage "github.com/MathBio-Lab/s3-output-manager/internal/infra/storage/s3"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web"
)

type App struct {
	config  *config.Config
	server  *web.Server
	log     *log.Logger
	storage domain.ObjectStore
	cache   domain.Cache // nil без Redis
	repo    domain.UsersRepo
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	s3Log := log.New(base.Writer(), base.Prefix()+"[s3] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Println("init S3 storage")
	s3cfg := s3storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		PathStyle: cfg.S3PathStyle,
	}
	s3, err := s3storage.New(ctx, s3cfg, s3Log)
	if err != nil {
		return nil, fmt.Errorf("failed init s3: %w", err)
	}
	base.Println("S3 is initialized")

	// Redis опционален: без него троттлинг логина живёт в памяти
	// процесса и не переживает рестарт.
	var cache domain.Cache
	var limiter domain.LoginLimiter
	if cfg.RedisAddr != "" {
		base.Println("init Redis")
		rc := redisx.New(redisx.Config{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		}, redisLog)
		if err := rc.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed init redis: %w", err)
		}
		cache = rc
		limiter = ratelimit.NewCache(rc, cfg.LoginMaxAttempts, cfg.LoginBlockFor)
		base.Println("Redis is initialized")
	} else {
		base.Println("Redis is not configured, login throttle is in-memory")
		limiter = ratelimit.NewMemory(cfg.LoginMaxAttempts, cfg.LoginBlockFor)
	}

	hasher := password.NewDefault()
	tm := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)

	if err := ensureSeedAdmin(ctx, base, pgRepo, hasher, cfg); err != nil {
		return nil, fmt.Errorf("failed seed admin: %w", err)
	}

	base.Println("init Server")
	deps := web.Deps{
		Users:   pgRepo,
		Storage: s3,
		Tokens:  tm,
		Hasher:  hasher,
		Limiter: limiter,
	}
	if cache != nil {
		deps.Cache = cache
	}
	server := web.New(serverLog, cfg, deps)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config:  cfg,
		server:  server,
		log:     base,
		storage: s3,
		repo:    pgRepo,
		cache:   cache,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.repo.Close()
	if a.cache != nil {
		a.cache.Close()
	}

	return nil
}
