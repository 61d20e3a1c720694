package model

import "testing"

func TestBookingIsLocal(t *testing.T) {
	local := &Booking{ID: "local_abc123"}
	if !local.IsLocal() {
		t.Error("local_接頭辞のIDはローカル発番と判定されるべき")
	}

	remote := &Booking{ID: "42"}
	if remote.IsLocal() {
		t.Error("通常のIDはローカル発番と判定されてはならない")
	}
}

func TestBookingDateOnly(t *testing.T) {
	b := &Booking{BookingDate: "2026-09-01"}
	if got := b.DateOnly(); got != "2026-09-01" {
		t.Errorf("DateOnly() = %q, want %q", got, "2026-09-01")
	}

	// ISO 8601タイムスタンプ形式の場合は日付部分のみ
	b = &Booking{BookingDate: "2026-09-01T09:00:00Z"}
	if got := b.DateOnly(); got != "2026-09-01" {
		t.Errorf("DateOnly() = %q, want %q", got, "2026-09-01")
	}
}

func TestBookingSearchParamsMatches(t *testing.T) {
	booking := &Booking{
		ID:          "1",
		ServiceType: "保育園",
		BookingDate: "2026-09-01",
		Status:      BookingStatusConfirmed,
	}

	// 空の条件は全件マッチ
	if !(BookingSearchParams{}).Matches(booking) {
		t.Error("空条件は全予約にマッチすべき")
	}

	if !(BookingSearchParams{Date: "2026-09-01"}).Matches(booking) {
		t.Error("日付一致でマッチすべき")
	}
	if (BookingSearchParams{Date: "2026-09-02"}).Matches(booking) {
		t.Error("日付不一致でマッチしてはならない")
	}

	if !(BookingSearchParams{Status: BookingStatusConfirmed}).Matches(booking) {
		t.Error("状態一致でマッチすべき")
	}
	if (BookingSearchParams{Status: BookingStatusCancelled}).Matches(booking) {
		t.Error("状態不一致でマッチしてはならない")
	}

	if !(BookingSearchParams{ServiceType: "保育園"}).Matches(booking) {
		t.Error("サービス種別一致でマッチすべき")
	}
	if (BookingSearchParams{ServiceType: "その他"}).Matches(booking) {
		t.Error("サービス種別不一致でマッチしてはならない")
	}
}
