package web

import (
	"log"
	"net/http"

	_ "github.com/MathBio-Lab/s3-output-manager/internal/docs"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/mw"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1/auth"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1/files"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1/health"
	"github.com/MathBio-Lab/s3-output-manager/internal/transport/web/v1/users"
	httpSwagger "github.com/swaggo/http-swagger"
)

func newRouter(hh *health.Handler, fh *files.Handler, ah *auth.Handler, uh *users.Handler, d Deps, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()
	ad := mw.AuthDeps{Tokens: d.Tokens, Users: d.Users}

	user := func(h http.HandlerFunc) http.Handler { return mw.RequireAuth(ad, h) }
	admin := func(h http.HandlerFunc) http.Handler { return mw.RequireAdmin(ad, h) }

	// health
	mux.HandleFunc("GET /api/v1/healthz", hh.Liveness)
	mux.HandleFunc("GET /api/v1/readyz", hh.Readiness)

	// auth
	mux.HandleFunc("POST /api/v1/auth/login", limitBody(1<<20, ah.Login))
	mux.HandleFunc("POST /api/v1/auth/logout", ah.Logout)
	mux.Handle("GET /api/v1/auth/me", user(ah.Me))
	mux.Handle("POST /api/v1/auth/change-password", user(limitBody(1<<20, ah.ChangePassword)))

	// files: байты ходят мимо нас по presigned URL, тела запросов крошечные
	mux.Handle("GET /api/v1/files/list", user(fh.List))
	mux.Handle("POST /api/v1/files/upload", user(limitBody(1<<20, fh.Upload)))
	mux.Handle("GET /api/v1/files/download", user(fh.Download))
	mux.Handle("POST /api/v1/files/delete", user(limitBody(1<<20, fh.Delete)))
	mux.Handle("POST /api/v1/files/create-folder", user(limitBody(1<<20, fh.CreateFolder)))
	mux.Handle("GET /api/v1/files/zip", user(fh.Zip))

	// users (только админ)
	mux.Handle("GET /api/v1/users", admin(uh.List))
	mux.Handle("POST /api/v1/users", admin(limitBody(1<<20, uh.Create)))
	mux.Handle("GET /api/v1/users/deleted", admin(uh.ListDeleted))
	mux.Handle("GET /api/v1/users/{id}", admin(uh.Get))
	mux.Handle("PUT /api/v1/users/{id}", admin(limitBody(1<<20, uh.Update)))
	mux.Handle("DELETE /api/v1/users/{id}", admin(uh.Delete))
	mux.Handle("POST /api/v1/users/{id}/restore", admin(uh.Restore))

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
