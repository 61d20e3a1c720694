// Package booking は予約一覧の照合ロジックを提供する。
// バックエンドのレスポンス、ローカルの未確認作成予約、ローカルの
// 取消済みIDセットの3つを突き合わせ、UIに一貫した予約一覧を返す。
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/fixtures"
	"github.com/dogmates/dogmates-bff/internal/localstore"
	"github.com/dogmates/dogmates-bff/internal/metrics"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// Service は予約サービス。mockがnil以外の場合はモックモードとして動作する。
type Service struct {
	client  *api.Client
	state   *localstore.State
	mock    *fixtures.Store
	logger  *slog.Logger
	metrics metrics.Collector
	now     func() time.Time

	// バックエンドへの一覧取得を1秒に1回に抑えるリミッター。
	// 抑制された呼び出しには直近の照合済みスナップショットを返す。
	limiter *rate.Limiter

	// 直近に取得できたバックエンドの生の一覧。抑制された呼び出しは
	// これを現在のローカル状態と照合し直して返す。
	mu       sync.Mutex
	snapshot []model.Booking
	fetched  bool
}

// NewService はServiceを生成する。
func NewService(client *api.Client, state *localstore.State, mock *fixtures.Store, logger *slog.Logger, collector metrics.Collector) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		client:  client,
		state:   state,
		mock:    mock,
		logger:  logger,
		metrics: collector,
		now:     time.Now,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// List は照合済みの予約一覧を返す。
// バックエンド障害時はローカル状態だけで一覧を構成し、エラーは返さない。
func (s *Service) List(ctx context.Context, params model.BookingSearchParams) ([]model.Booking, error) {
	if s.mock != nil {
		results := s.mock.SearchBookings(params)
		return s.applyDisplayNames(results), nil
	}

	if !s.limiter.Allow() {
		s.metrics.RecordDebounceDrop()
		return s.lastSnapshot(params), nil
	}

	resp := s.client.Get(ctx, bookingsEndpoint(params))
	if !resp.Success {
		s.logger.Warn("予約一覧の取得に失敗したためローカル状態のみで応答します",
			slog.String("error", resp.Err.Message),
		)
		return s.localOnly(params), nil
	}

	upstream, err := api.DecodeList[model.Booking](resp.Data)
	if err != nil {
		s.logger.Warn("予約一覧レスポンスの解析に失敗したためローカル状態のみで応答します",
			slog.String("error", err.Error()),
		)
		return s.localOnly(params), nil
	}

	s.storeSnapshot(upstream)

	return s.applyDisplayNames(s.filterByParams(s.reconcile(upstream), params)), nil
}

// Get は予約をIDで取得する。見つからない場合はエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Booking, error) {
	if s.mock != nil {
		b, ok := s.mock.BookingByID(id)
		if !ok {
			return nil, model.NewBookingNotFoundError(id)
		}
		b.ServiceType = ServiceDisplayName(b.ServiceType, b)
		return b, nil
	}

	// ローカル発番の予約はバックエンドには存在しない
	if isLocalID(id) {
		entries, err := s.state.PendingBookings()
		if err != nil {
			return nil, err
		}
		for i := range entries {
			if entries[i].Booking.ID == id {
				b := entries[i].Booking
				b.ServiceType = ServiceDisplayName(b.ServiceType, &b)
				return &b, nil
			}
		}
		return nil, model.NewBookingNotFoundError(id)
	}

	resp := s.client.Get(ctx, "/api/bookings/"+url.PathEscape(id))
	if !resp.Success {
		if resp.Err.HTTPStatus == 404 {
			return nil, model.NewBookingNotFoundError(id)
		}
		return nil, resp.Err
	}
	b, err := api.DecodeObject[model.Booking](resp.Data)
	if err != nil {
		return nil, err
	}
	b.ServiceType = ServiceDisplayName(b.ServiceType, b)
	return b, nil
}

// Create は予約を作成する。
// 実モードではバックエンドの作成エンドポイントに依存せず、ローカル発番の
// 予約を確定済みとして合成し、未確認リストに記録して返す。
func (s *Service) Create(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error) {
	if req.DogID == "" || req.ServiceType == "" || req.BookingDate == "" {
		return nil, model.NewInvalidRequestError("犬ID、サービス種別、予約日は必須です")
	}

	if s.mock != nil {
		b := s.mock.AddBooking(req)
		return &b, nil
	}

	booking := model.Booking{
		ID:            model.LocalBookingIDPrefix + uuid.NewString(),
		OwnerID:       req.OwnerID,
		DogID:         req.DogID,
		ServiceType:   req.ServiceType,
		BookingDate:   req.BookingDate,
		BookingTime:   req.BookingTime,
		Status:        model.BookingStatusConfirmed,
		Amount:        req.Amount,
		PaymentStatus: model.PaymentStatusUnpaid,
		Memo:          req.Memo,
	}

	entry := model.PendingBooking{
		Booking:    booking,
		SyncStatus: model.SyncStatusPending,
		CreatedAt:  s.now().Format(time.RFC3339),
	}
	if err := s.state.AppendPendingBooking(entry); err != nil {
		return nil, err
	}

	s.logger.Info("ローカル発番の予約を作成しました",
		slog.String("booking_id", booking.ID),
		slog.String("booking_date", booking.BookingDate),
	)
	return &booking, nil
}

// Update は予約の指定フィールドを更新し、更新後の予約を返す。
// 見つからない場合はエラーを返す。
func (s *Service) Update(ctx context.Context, id string, req model.UpdateBookingRequest) (*model.Booking, error) {
	if s.mock != nil {
		b, ok := s.mock.UpdateBooking(id, req)
		if !ok {
			return nil, model.NewBookingNotFoundError(id)
		}
		b.ServiceType = ServiceDisplayName(b.ServiceType, b)
		return b, nil
	}

	// ローカル発番の予約はアウトボックス上のエントリを書き換える
	if isLocalID(id) {
		b, err := s.state.UpdatePendingBooking(id, req)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, model.NewBookingNotFoundError(id)
		}
		b.ServiceType = ServiceDisplayName(b.ServiceType, b)
		return b, nil
	}

	resp := s.client.Put(ctx, "/api/bookings/"+url.PathEscape(id), req)
	if !resp.Success {
		if resp.Err.HTTPStatus == 404 {
			return nil, model.NewBookingNotFoundError(id)
		}
		return nil, resp.Err
	}
	b, err := api.DecodeObject[model.Booking](resp.Data)
	if err != nil {
		return nil, err
	}
	b.ServiceType = ServiceDisplayName(b.ServiceType, b)
	return b, nil
}

// Cancel は予約を取り消す。クライアント側を正とする操作であり、
// バックエンドの失敗に関わらず呼び出し元には常に成功を返す。
func (s *Service) Cancel(ctx context.Context, id string) error {
	if s.mock != nil {
		if !s.mock.CancelBooking(id) {
			s.logger.Warn("取消対象の予約が見つかりませんでした", slog.String("booking_id", id))
		}
		return nil
	}

	if isLocalID(id) {
		// バックエンドには存在しないためローカル記録のみで完結する
		if err := s.state.AddCancelledID(id); err != nil {
			return err
		}
		if err := s.state.RemovePendingBooking(id); err != nil {
			return err
		}
		return nil
	}

	resp := s.client.Patch(ctx, "/api/bookings/"+url.PathEscape(id), map[string]string{
		"status": string(model.BookingStatusCancelled),
	})
	if !resp.Success {
		s.logger.Warn("バックエンドへの取消反映に失敗しました。ローカルにのみ記録します",
			slog.String("booking_id", id),
			slog.String("error", resp.Err.Message),
		)
	}

	// 念のためバックエンド成功時もローカルの取消セットに記録しておく
	return s.state.AddCancelledID(id)
}

// TodayBookings は当日分の照合済み予約を返す。
func (s *Service) TodayBookings(ctx context.Context) ([]model.Booking, error) {
	today := s.now().Format("2006-01-02")
	return s.List(ctx, model.BookingSearchParams{Date: today})
}

// NextBooking は当日以降で最も近い予約を返す。該当がない場合はnil。
// 同日の予約が複数ある場合は元の並び順で先頭のものを返す。
func (s *Service) NextBooking(ctx context.Context) (*model.Booking, error) {
	all, err := s.List(ctx, model.BookingSearchParams{})
	if err != nil {
		return nil, err
	}

	today := s.now().Format("2006-01-02")
	var upcoming []model.Booking
	for _, b := range all {
		if b.DateOnly() >= today {
			upcoming = append(upcoming, b)
		}
	}
	if len(upcoming) == 0 {
		return nil, nil
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DateOnly() < upcoming[j].DateOnly()
	})
	next := upcoming[0]
	return &next, nil
}

// reconcile はバックエンドの一覧にローカルの未確認予約を足し、
// 取消済みのものを除外した一覧を構成する。表示名は解決せず生の
// サービス種別のまま返す。検索条件の照合は生の値に対して行うため。
func (s *Service) reconcile(upstream []model.Booking) []model.Booking {
	pending, err := s.state.PendingBookings()
	if err != nil {
		s.logger.Warn("未確認予約リストの読み込みに失敗しました", slog.String("error", err.Error()))
		pending = nil
	}
	cancelled, err := s.state.CancelledIDs()
	if err != nil {
		s.logger.Warn("取消済みIDセットの読み込みに失敗しました", slog.String("error", err.Error()))
		cancelled = nil
	}

	merged := make([]model.Booking, 0, len(upstream)+len(pending))
	seen := make(map[string]bool, len(upstream))
	for _, b := range upstream {
		if !seen[b.ID] {
			seen[b.ID] = true
			merged = append(merged, b)
		}
	}
	served := 0
	for _, entry := range pending {
		if !seen[entry.Booking.ID] {
			seen[entry.Booking.ID] = true
			merged = append(merged, entry.Booking)
			served++
		}
	}
	s.metrics.RecordPendingServed(served)

	filtered := merged[:0]
	dropped := 0
	for _, b := range merged {
		if cancelled[b.ID] || b.Status == model.BookingStatusCancelled {
			dropped++
			continue
		}
		filtered = append(filtered, b)
	}
	s.metrics.RecordCancelledFiltered(dropped)

	return filtered
}

// localOnly はバックエンドに到達できない場合の一覧を構成する。
// ローカルの未確認予約だけを取消フィルタ込みで返す。
func (s *Service) localOnly(params model.BookingSearchParams) []model.Booking {
	return s.applyDisplayNames(s.filterByParams(s.reconcile(nil), params))
}

func (s *Service) filterByParams(bookings []model.Booking, params model.BookingSearchParams) []model.Booking {
	var result []model.Booking
	for i := range bookings {
		if params.Matches(&bookings[i]) {
			result = append(result, bookings[i])
		}
	}
	return result
}

func (s *Service) applyDisplayNames(bookings []model.Booking) []model.Booking {
	for i := range bookings {
		bookings[i].ServiceType = ServiceDisplayName(bookings[i].ServiceType, &bookings[i])
	}
	return bookings
}

func (s *Service) storeSnapshot(bookings []model.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = make([]model.Booking, len(bookings))
	copy(s.snapshot, bookings)
	s.fetched = true
}

func (s *Service) lastSnapshot(params model.BookingSearchParams) []model.Booking {
	s.mu.Lock()
	fetched := s.fetched
	snapshot := make([]model.Booking, len(s.snapshot))
	copy(snapshot, s.snapshot)
	s.mu.Unlock()
	if !fetched {
		// 一度も取得に成功していない場合はローカル状態のみで構成する
		return s.localOnly(params)
	}
	return s.applyDisplayNames(s.filterByParams(s.reconcile(snapshot), params))
}

func bookingsEndpoint(params model.BookingSearchParams) string {
	q := url.Values{}
	if params.Date != "" {
		q.Set("date", params.Date)
	}
	if params.Status != "" {
		q.Set("status", string(params.Status))
	}
	if params.ServiceType != "" {
		q.Set("service_type", params.ServiceType)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if len(q) == 0 {
		return "/api/bookings"
	}
	return fmt.Sprintf("/api/bookings?%s", q.Encode())
}

func isLocalID(id string) bool {
	b := model.Booking{ID: id}
	return b.IsLocal()
}
