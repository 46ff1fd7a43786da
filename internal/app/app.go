package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/flavorcast/internal/calendar"
	"github.com/hitoshi/flavorcast/internal/config"
	"github.com/hitoshi/flavorcast/internal/handler"
	"github.com/hitoshi/flavorcast/internal/logger"
	"github.com/hitoshi/flavorcast/internal/metrics"
	"github.com/hitoshi/flavorcast/internal/middleware"
	"github.com/hitoshi/flavorcast/internal/model"
	"github.com/hitoshi/flavorcast/internal/schedule"
	"github.com/hitoshi/flavorcast/internal/security"
	"github.com/prometheus/client_golang/prometheus"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 設定ファイル（任意）と環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
func Init(w io.Writer, configFile string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, log, nil
}

// Services はコマンド間で共有するドメインサービスをまとめた構造体。
type Services struct {
	Searcher *calendar.Service
	Schedule *schedule.Calculator
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	Location model.Location
}

// NewServices は設定から全依存関係をワイヤリングする。
// safe_fetchが有効な場合はカレンダーURLを静的に検証し、IP検証付きクライアントを使う。
func NewServices(cfg *config.Config, log *slog.Logger) (*Services, error) {
	var httpClient *http.Client
	if cfg.SafeFetch {
		guard := security.NewOutboundGuard()
		if err := guard.ValidateURL(cfg.CalendarURL); err != nil {
			return nil, fmt.Errorf("calendar_url rejected: %w", err)
		}
		httpClient = guard.NewSafeClient(cfg.FetchTimeout)
	} else {
		httpClient = &http.Client{Timeout: cfg.FetchTimeout}
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	source := calendar.NewHTTPSource(httpClient, log, collector, calendar.HTTPSourceConfig{
		BaseURL:     cfg.CalendarURL,
		CalendarID:  cfg.CalendarID,
		MaxBodySize: cfg.FetchMaxSize,
	})

	return &Services{
		Searcher: calendar.NewService(source, log, collector),
		Schedule: schedule.New(),
		Metrics:  collector,
		Registry: registry,
		Location: model.Location{Name: cfg.ShopName, Address: cfg.ShopAddress},
	}, nil
}

// NewHTTPServer はAPIサーバーを構築する。返り値のstop関数でレートリミッターを停止する。
func NewHTTPServer(cfg *config.Config, log *slog.Logger, svc *Services) (*http.Server, func()) {
	rl := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		log,
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:         log,
		RateLimiter:    rl,
		FlavorSearcher: svc.Searcher,
		Schedule:       svc.Schedule,
		StatusRecorder: svc.Metrics,
		Location:       svc.Location,
		MetricsHandler: metrics.Handler(svc.Registry),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server, rl.Stop
}

// runServe はAPIサーバーモードで起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM受信）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	svc, err := NewServices(cfg, log)
	if err != nil {
		return err
	}

	server, stopLimiter := NewHTTPServer(cfg, log, svc)
	defer stopLimiter()

	return serve(ctx, server, log)
}

// serve はserverを起動し、ctxのキャンセルでシャットダウンする。
func serve(ctx context.Context, server *http.Server, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, baseURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
