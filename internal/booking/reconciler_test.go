package booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/localstore"
	"github.com/dogmates/dogmates-bff/internal/metrics"
	"github.com/dogmates/dogmates-bff/internal/model"
	"github.com/dogmates/dogmates-bff/internal/token"
)

func newTestReconciler(t *testing.T, baseURL string) (*Reconciler, *localstore.State) {
	t.Helper()
	state := localstore.NewState(localstore.NewMemoryStore())
	tokens := token.NewManager(state, testLogger())
	client := api.NewClient(&http.Client{}, baseURL, tokens, testLogger(), metrics.NopCollector{}, 0)
	return NewReconciler(client, state, testLogger()), state
}

func TestCompact_反映済みの未確認予約を取り除く(t *testing.T) {
	server := bookingsServer(t, `[
		{"id":"b100","owner_id":"owner_1","dog_id":"dog_1","service_type":"保育園","booking_date":"2026-09-10","booking_time":"09:00-17:00","status":"確定"}
	]`)
	defer server.Close()

	reconciler, state := newTestReconciler(t, server.URL)
	state.AppendPendingBooking(model.PendingBooking{
		Booking: model.Booking{
			ID: "local_abc", OwnerID: "owner_1", DogID: "dog_1",
			ServiceType: "保育園", BookingDate: "2026-09-10", BookingTime: "09:00-17:00",
			Status: model.BookingStatusConfirmed,
		},
		SyncStatus: model.SyncStatusPending,
	})
	state.AppendPendingBooking(model.PendingBooking{
		Booking: model.Booking{
			ID: "local_def", OwnerID: "owner_1", DogID: "dog_2",
			ServiceType: "体験", BookingDate: "2026-09-12", BookingTime: "10:00-12:00",
			Status: model.BookingStatusConfirmed,
		},
		SyncStatus: model.SyncStatusPending,
	})

	result, err := reconciler.Compact(context.Background())
	if err != nil {
		t.Fatalf("突き合わせに失敗しました: %v", err)
	}
	if result.ConfirmedCreations != 1 {
		t.Errorf("1件が確認済みになるはずです: %d件", result.ConfirmedCreations)
	}

	entries, _ := state.PendingBookings()
	if len(entries) != 1 || entries[0].Booking.ID != "local_def" {
		t.Errorf("未反映の予約だけが残るはずです: %+v", entries)
	}
}

func TestCompact_認識済みの取消IDを取り除く(t *testing.T) {
	server := bookingsServer(t, `[
		{"id":"b1","status":"取消"},
		{"id":"b2","status":"確定"}
	]`)
	defer server.Close()

	reconciler, state := newTestReconciler(t, server.URL)
	state.AddCancelledID("b1")      // バックエンドで取消済み
	state.AddCancelledID("b2")      // まだ確定のまま
	state.AddCancelledID("b_gone")  // 一覧から消えている
	state.AddCancelledID("local_x") // 対応するローカル予約なし

	result, err := reconciler.Compact(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.AcknowledgedCancellations != 3 {
		t.Errorf("3件が取り除かれるはずです: %d件", result.AcknowledgedCancellations)
	}

	cancelled, _ := state.CancelledIDs()
	if len(cancelled) != 1 || !cancelled["b2"] {
		t.Errorf("未反映のIDだけが残るはずです: %+v", cancelled)
	}
}

func TestCompact_バックエンド障害時はローカルを変更しない(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	reconciler, state := newTestReconciler(t, server.URL)
	state.AddCancelledID("b1")
	state.AppendPendingBooking(model.PendingBooking{
		Booking:    model.Booking{ID: "local_abc"},
		SyncStatus: model.SyncStatusPending,
	})

	if _, err := reconciler.Compact(context.Background()); err == nil {
		t.Fatal("障害時はエラーを返すはずです")
	}

	cancelled, _ := state.CancelledIDs()
	entries, _ := state.PendingBookings()
	if len(cancelled) != 1 || len(entries) != 1 {
		t.Error("障害時はローカル状態を変更しないはずです")
	}
}

func TestCompact_取り消したローカル予約のIDも掃除される(t *testing.T) {
	server := bookingsServer(t, `[]`)
	defer server.Close()

	reconciler, state := newTestReconciler(t, server.URL)
	// ローカル予約を取り消した後の状態: 未確認リストは空、取消セットにIDだけ残る
	state.AddCancelledID("local_abc")

	result, err := reconciler.Compact(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.AcknowledgedCancellations != 1 {
		t.Errorf("ローカルIDが掃除されるはずです: %d件", result.AcknowledgedCancellations)
	}
	cancelled, _ := state.CancelledIDs()
	if len(cancelled) != 0 {
		t.Errorf("取消セットは空になるはずです: %+v", cancelled)
	}
}
