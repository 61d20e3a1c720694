package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dogmates/dogmates-bff/internal/booking"
	"github.com/dogmates/dogmates-bff/internal/middleware"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// BookingServiceInterface は予約ハンドラーが必要とするサービスインターフェース。
type BookingServiceInterface interface {
	// List は予約一覧をフィルタ付きで返す。
	List(ctx context.Context, params model.BookingSearchParams) ([]model.Booking, error)
	// Get は予約詳細を返す。
	Get(ctx context.Context, id string) (*model.Booking, error)
	// Create は予約を作成する。
	Create(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error)
	// Update は予約を部分更新する。
	Update(ctx context.Context, id string, req model.UpdateBookingRequest) (*model.Booking, error)
	// Cancel は予約をキャンセルする。
	Cancel(ctx context.Context, id string) error
	// TodayBookings は本日の予約一覧を返す。
	TodayBookings(ctx context.Context) ([]model.Booking, error)
	// NextBooking は直近の予約を返す。予約がない場合はnil。
	NextBooking(ctx context.Context) (*model.Booking, error)
}

// BookingSyncInterface は予約の突き合わせ処理のインターフェース。
type BookingSyncInterface interface {
	// Compact はローカル状態とバックエンドを突き合わせて掃除する。
	Compact(ctx context.Context) (*booking.CompactResult, error)
}

// BookingHandler は予約管理のHTTPハンドラー。
type BookingHandler struct {
	service BookingServiceInterface
	sync    BookingSyncInterface
}

// NewBookingHandler はBookingHandlerを生成する。
func NewBookingHandler(service BookingServiceInterface, sync BookingSyncInterface) *BookingHandler {
	return &BookingHandler{service: service, sync: sync}
}

// bookingListResponse は予約一覧のレスポンス。
type bookingListResponse struct {
	Bookings []model.Booking `json:"bookings"`
	Count    int             `json:"count"`
}

// ListBookings は予約一覧を取得する。
// GET /api/bookings?date=YYYY-MM-DD&status=xxx&service_type=xxx&page=1&limit=50
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	params := searchParamsFromQuery(r)

	bookings, err := h.service.List(r.Context(), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, bookingListResponse{
		Bookings: bookings,
		Count:    len(bookings),
	})
}

// GetBooking は予約詳細を取得する。
// GET /api/bookings/:id
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, b)
}

// CreateBooking は予約を作成する。
// POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	// owner_id未指定時はログイン中ユーザーを飼い主として扱う
	if req.OwnerID == "" {
		if user, err := middleware.UserFromContext(r.Context()); err == nil {
			req.OwnerID = user.ID
		}
	}

	b, err := h.service.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, b)
}

// UpdateBooking は予約を部分更新する。
// PUT /api/bookings/:id
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.UpdateBookingRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	b, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, b)
}

// CancelBooking は予約をキャンセルする。
// DELETE /api/bookings/:id
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Cancel(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TodayBookings は本日の予約一覧を取得する。
// GET /api/bookings/today
func (h *BookingHandler) TodayBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.TodayBookings(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, bookingListResponse{
		Bookings: bookings,
		Count:    len(bookings),
	})
}

// NextBooking は本日以降で最も近い予約を取得する。該当なしの場合は404ではなくnullを返す。
// GET /api/bookings/next
func (h *BookingHandler) NextBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.NextBooking(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]*model.Booking{"booking": b})
}

// SyncBookings はローカル予約状態とバックエンドの突き合わせを実行する。
// POST /api/admin/bookings/sync
func (h *BookingHandler) SyncBookings(w http.ResponseWriter, r *http.Request) {
	result, err := h.sync.Compact(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// searchParamsFromQuery はクエリ文字列から検索条件を組み立てる。
func searchParamsFromQuery(r *http.Request) model.BookingSearchParams {
	q := r.URL.Query()
	params := model.BookingSearchParams{
		Date:        q.Get("date"),
		Status:      model.BookingStatus(q.Get("status")),
		ServiceType: q.Get("service_type"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		params.Limit = limit
	}
	return params
}
