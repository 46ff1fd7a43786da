package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/flavorcast/internal/middleware"
	"github.com/hitoshi/flavorcast/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter

	FlavorSearcher FlavorSearcher
	Schedule       ScheduleService
	StatusRecorder StatusRecorder
	Location       model.Location

	// MetricsHandler がnilの場合は/metricsを公開しない。
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → RequestID → Logging → Recovery → SecurityHeaders → RateLimit(/api/*)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, r, http.StatusNotFound, model.NewRouteNotFoundError(r.URL.Path))
	})

	r.Get("/health", Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	forecast := NewForecastHandler(deps.FlavorSearcher, deps.Schedule, deps.StatusRecorder, deps.Location)

	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Get("/flavors", forecast.GetFlavors)
		r.Get("/status", forecast.GetStatus)
		r.Route("/hours", func(r chi.Router) {
			r.Get("/", forecast.GetHours)
			r.Get("/week", forecast.GetWeeklyHours)
		})
		r.Get("/location", forecast.GetLocation)
	})

	return r
}

// Health はプロセスの生存確認に応答する。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
