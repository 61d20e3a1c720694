package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dogmates/dogmates-bff/internal/middleware"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionRestorer   middleware.SessionRestorer
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス公開ハンドラー
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface

	// 予約
	BookingService BookingServiceInterface
	BookingSync    BookingSyncInterface

	// 飼い主・犬
	OwnerService OwnerServiceInterface
	DogService   DogServiceInterface

	// イベント・マスターデータ
	EventService  EventServiceInterface
	MasterService MasterServiceInterface

	// 掲示板
	PostService PostServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Session → RateLimit(General)
//
// /health、/metrics、ログイン・登録はミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	bookingHandler := NewBookingHandler(deps.BookingService, deps.BookingSync)
	ownerHandler := NewOwnerHandler(deps.OwnerService, deps.DogService)
	eventHandler := NewEventHandler(deps.EventService, deps.MasterService)
	postHandler := NewPostHandler(deps.PostService)

	// --- 認証不要のルート ---

	r.Get("/health", handleHealth)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/register", authHandler.Register)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionRestorer))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// セッション管理
		r.Get("/auth/me", authHandler.Me)
		r.Get("/auth/profile", authHandler.Profile)
		r.Post("/auth/logout", authHandler.Logout)

		// 予約管理
		r.Route("/api/bookings", func(r chi.Router) {
			// POST /api/bookings - 予約作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.BookingCreationMiddleware()).Post("/", bookingHandler.CreateBooking)

			r.Get("/", bookingHandler.ListBookings)
			r.Get("/today", bookingHandler.TodayBookings)
			r.Get("/next", bookingHandler.NextBooking)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", bookingHandler.GetBooking)
				r.Put("/", bookingHandler.UpdateBooking)
				r.Delete("/", bookingHandler.CancelBooking)
			})
		})

		// 飼い主・犬情報
		r.Route("/api/owners", func(r chi.Router) {
			r.Post("/", ownerHandler.CreateOwner)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ownerHandler.GetOwner)
				r.Get("/dogs", ownerHandler.ListOwnerDogs)
			})
		})
		r.Route("/api/dogs", func(r chi.Router) {
			r.Post("/", ownerHandler.CreateDog)
			r.Get("/{id}", ownerHandler.GetDog)
		})

		// イベント・マスターデータ
		r.Route("/api/events", func(r chi.Router) {
			r.Get("/", eventHandler.ListEvents)
			r.Get("/{id}", eventHandler.GetEvent)
		})
		r.Get("/api/breeds", eventHandler.ListBreeds)
		r.Get("/api/service-types", eventHandler.ListServiceTypes)

		// コミュニティ掲示板
		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPosts)
			r.Post("/", postHandler.CreatePost)
		})

		// 管理者専用ルート
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.NewRoleMiddleware(model.RoleAdmin))

			r.Post("/bookings/sync", bookingHandler.SyncBookings)
		})
	})

	return r
}

// handleHealth はヘルスチェックに応答する。
// GET /health
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
