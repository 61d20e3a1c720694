package booking

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/localstore"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// Reconciler はローカル状態とバックエンドの突き合わせを行う。
// 未確認予約のうちバックエンドに反映済みのものと、バックエンドが
// 取消を認識済みのIDをローカルから間引く。
type Reconciler struct {
	client *api.Client
	state  *localstore.State
	logger *slog.Logger
}

// NewReconciler はReconcilerを生成する。
func NewReconciler(client *api.Client, state *localstore.State, logger *slog.Logger) *Reconciler {
	return &Reconciler{client: client, state: state, logger: logger}
}

// CompactResult は突き合わせ結果の件数。
type CompactResult struct {
	ConfirmedCreations        int `json:"confirmed_creations"`        // バックエンド反映を確認できた未確認予約
	AcknowledgedCancellations int `json:"acknowledged_cancellations"` // バックエンドが認識済みの取消ID
}

// Compact はバックエンドの予約一覧を取得し、ローカル状態を間引く。
// バックエンドに到達できない場合はローカルを変更せずエラーを返す。
func (r *Reconciler) Compact(ctx context.Context) (*CompactResult, error) {
	resp := r.client.Get(ctx, "/api/bookings")
	if !resp.Success {
		return nil, resp.Err
	}
	upstream, err := api.DecodeList[model.Booking](resp.Data)
	if err != nil {
		return nil, err
	}

	result := &CompactResult{}

	if err := r.compactPending(upstream, result); err != nil {
		return nil, err
	}
	if err := r.compactCancelled(upstream, result); err != nil {
		return nil, err
	}

	r.logger.Info("ローカル状態の突き合わせが完了しました",
		slog.Int("confirmed_creations", result.ConfirmedCreations),
		slog.Int("acknowledged_cancellations", result.AcknowledgedCancellations),
	)
	return result, nil
}

// compactPending はバックエンドに同内容の予約が存在する未確認予約を
// アウトボックスから取り除く。
func (r *Reconciler) compactPending(upstream []model.Booking, result *CompactResult) error {
	entries, err := r.state.PendingBookings()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !hasMatchingBooking(upstream, &entry.Booking) {
			continue
		}
		if err := r.state.RemovePendingBooking(entry.Booking.ID); err != nil {
			return err
		}
		result.ConfirmedCreations++
	}
	return nil
}

// compactCancelled はバックエンドが取消を認識済みのID、および対応する
// ローカル予約が既に存在しないローカル発番IDを取消セットから取り除く。
func (r *Reconciler) compactCancelled(upstream []model.Booking, result *CompactResult) error {
	cancelled, err := r.state.CancelledIDs()
	if err != nil {
		return err
	}
	pending, err := r.state.PendingBookings()
	if err != nil {
		return err
	}

	pendingIDs := make(map[string]bool, len(pending))
	for _, entry := range pending {
		pendingIDs[entry.Booking.ID] = true
	}

	for id := range cancelled {
		if strings.HasPrefix(id, model.LocalBookingIDPrefix) {
			// 隠すべきローカル予約が残っていなければ記録も不要
			if !pendingIDs[id] {
				if err := r.state.RemoveCancelledID(id); err != nil {
					return err
				}
				result.AcknowledgedCancellations++
			}
			continue
		}
		if upstreamAcknowledgedCancel(upstream, id) {
			if err := r.state.RemoveCancelledID(id); err != nil {
				return err
			}
			result.AcknowledgedCancellations++
		}
	}
	return nil
}

// hasMatchingBooking はローカル発番予約と同内容の予約が
// バックエンドの一覧に存在するかを返す。IDでは突き合わせできないため
// 飼い主・犬・日付・時間帯・サービス種別で一致を判定する。
func hasMatchingBooking(upstream []model.Booking, local *model.Booking) bool {
	for i := range upstream {
		u := &upstream[i]
		if u.OwnerID == local.OwnerID &&
			u.DogID == local.DogID &&
			u.DateOnly() == local.DateOnly() &&
			u.BookingTime == local.BookingTime &&
			u.ServiceType == local.ServiceType {
			return true
		}
	}
	return false
}

// upstreamAcknowledgedCancel は取消がバックエンドに反映済みかを返す。
// 一覧から消えているか、状態が取消になっていれば反映済みとみなす。
func upstreamAcknowledgedCancel(upstream []model.Booking, id string) bool {
	for i := range upstream {
		if upstream[i].ID == id {
			return upstream[i].Status == model.BookingStatusCancelled
		}
	}
	return true
}
