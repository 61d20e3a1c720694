// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/auth"
	"github.com/dogmates/dogmates-bff/internal/booking"
	"github.com/dogmates/dogmates-bff/internal/config"
	"github.com/dogmates/dogmates-bff/internal/dog"
	"github.com/dogmates/dogmates-bff/internal/event"
	"github.com/dogmates/dogmates-bff/internal/fixtures"
	"github.com/dogmates/dogmates-bff/internal/handler"
	"github.com/dogmates/dogmates-bff/internal/localstore"
	"github.com/dogmates/dogmates-bff/internal/logger"
	"github.com/dogmates/dogmates-bff/internal/master"
	"github.com/dogmates/dogmates-bff/internal/metrics"
	"github.com/dogmates/dogmates-bff/internal/middleware"
	"github.com/dogmates/dogmates-bff/internal/owner"
	"github.com/dogmates/dogmates-bff/internal/post"
	"github.com/dogmates/dogmates-bff/internal/security"
	"github.com/dogmates/dogmates-bff/internal/token"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.Bool("mock_mode", cfg.UseMockData),
	)

	switch cmd {
	case CommandSync:
		return runSync(cfg)
	default:
		return runServe(cfg)
	}
}

// deps はワイヤリング済みの依存関係一式。
type deps struct {
	state      *localstore.State
	client     *api.Client
	mock       *fixtures.Store
	tokens     *token.Manager
	collector  *metrics.PrometheusCollector
	registry   *prometheus.Registry
	auth       *auth.Service
	booking    *booking.Service
	reconciler *booking.Reconciler
	owner      *owner.Service
	dog        *dog.Service
	event      *event.Service
	master     *master.Service
	post       *post.Service
}

// buildDeps はローカル状態ストアを開き、全サービスをワイヤリングする。
func buildDeps(cfg *config.Config) (*deps, error) {
	log := slog.Default()

	// 1. ローカル状態ストア
	store, err := localstore.NewFileStore(cfg.StateFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	state := localstore.NewState(store)

	// 2. トークン管理とメトリクス
	tokens := token.NewManager(state, log)
	registry := prometheus.NewRegistry()
	collector := metrics.NewPrometheusCollector(registry)

	// 3. バックエンドAPIクライアント
	client := api.NewClient(&http.Client{}, cfg.BackendBaseURL, tokens, log, collector, cfg.RequestTimeout)

	// 4. モックデータ（モックモード時のみ）
	var mock *fixtures.Store
	if cfg.UseMockData {
		mock = fixtures.NewStore()
		slog.Warn("mock data mode enabled, backend is not contacted")
	}

	// 5. ドメインサービス
	sanitizer := security.NewContentSanitizer()

	return &deps{
		state:      state,
		client:     client,
		mock:       mock,
		tokens:     tokens,
		collector:  collector,
		registry:   registry,
		auth:       auth.NewService(client, tokens, state, mock, log, cfg.UseMockData, cfg.AuthDemoFallback),
		booking:    booking.NewService(client, state, mock, log, collector),
		reconciler: booking.NewReconciler(client, state, log),
		owner:      owner.NewService(client, mock),
		dog:        dog.NewService(client, mock),
		event:      event.NewService(client, mock),
		master:     master.NewService(client, mock),
		post:       post.NewService(client, mock, sanitizer),
	}, nil
}

// runServe はBFFサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	// レート制限設定。configのRateLimitGeneralはreq/min単位なのでreq/secに変換する
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		SessionRestorer:   d.auth,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		MetricsHandler:    metrics.Handler(d.registry),

		AuthService:    d.auth,
		BookingService: d.booking,
		BookingSync:    d.reconciler,
		OwnerService:   d.owner,
		DogService:     d.dog,
		EventService:   d.event,
		MasterService:  d.master,
		PostService:    d.post,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("BFF server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down BFF server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("BFF server stopped gracefully")
	return nil
}

// runSync はローカル予約状態とバックエンドの突き合わせを1回実行して終了する。
// cronなどの定期実行から利用する想定のサブコマンド。
func runSync(cfg *config.Config) error {
	if cfg.UseMockData {
		return fmt.Errorf("sync is not available in mock data mode")
	}

	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+10*time.Second)
	defer cancel()

	result, err := d.reconciler.Compact(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	slog.Info("sync completed",
		slog.Int("confirmed_creations", result.ConfirmedCreations),
		slog.Int("acknowledged_cancellations", result.AcknowledgedCancellations),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
