package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/MathBio-Lab/s3-output-manager/internal/config"
	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
	"github.com/MathBio-Lab/s3-output-manager/internal/policy"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1/auth"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1/files"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1/health"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1/users"
)

// Deps — коллабораторы HTTP-слоя. Cache nil, если Redis не настроен.
type Deps struct {
	Users   domain.UsersRepo
	Storage domain.ObjectStore
	Tokens  domain.TokenManager
	Hasher  domain.PasswordHasher
	Limiter domain.LoginLimiter
	Cache   health.Pinger
}

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, d Deps) *Server {
	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	pol := policy.New(cfg.S3RootPrefix)

	healthHandler := &health.Handler{
		Log: sub("health"), DB: d.Users, Cache: d.Cache, Storage: d.Storage,
	}
	filesHandler := &files.Handler{
		Log: sub("files"), Policy: pol, Storage: d.Storage,
	}
	authHandler := &auth.Handler{
		Log:          sub("auth"),
		Users:        d.Users,
		Tokens:       d.Tokens,
		Hasher:       d.Hasher,
		Limiter:      d.Limiter,
		SecureCookie: cfg.IsProduction(),
		TokenTTL:     cfg.AuthTokenTTL,
	}
	usersHandler := &users.Handler{
		Log: sub("users"), Users: d.Users, Hasher: d.Hasher,
	}

	srv := &http.Server{
		Addr:    cfg.AppPort,
		Handler: newRouter(healthHandler, filesHandler, authHandler, usersHandler, d, logger),
		// WriteTimeout не ставим: zip-стрим большой папки легко
		// переживает любой фиксированный лимит
		ReadTimeout:       10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
