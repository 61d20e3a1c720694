package localstore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dogmates/dogmates-bff/internal/model"
)

// 永続化キー。ブラウザ版のlocalStorageキーをそのまま引き継ぐ。
const (
	KeyAuthToken       = "auth_token"
	KeyAuthUser        = "auth_user"
	KeyMockSession     = "mock_session"
	KeyCancelledIDs    = "cancelled_bookings"
	KeyPendingBookings = "temp_api_bookings"
)

// State はStoreの上に型付きアクセサを提供する。
// トークン・保存ユーザー・キャンセル済みIDの集合・ローカル発番予約の
// アウトボックスを扱う。
type State struct {
	store Store
}

// NewState はStateを生成する。
func NewState(store Store) *State {
	return &State{store: store}
}

// --- トークン ---

// Token は保存済みトークンを返す。未保存の場合は空文字。
func (s *State) Token() (string, error) {
	raw, ok, err := s.store.Get(KeyAuthToken)
	if err != nil || !ok {
		return "", err
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", fmt.Errorf("トークンのパースに失敗しました: %w", err)
	}
	return token, nil
}

// SetToken はトークンを保存する。既存のトークンは上書きされる。
func (s *State) SetToken(token string) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return s.store.Set(KeyAuthToken, raw)
}

// ClearToken はトークンを削除する。
func (s *State) ClearToken() error {
	return s.store.Delete(KeyAuthToken)
}

// --- 保存ユーザー ---

// SavedUser は永続化されたユーザーレコードを返す。未保存の場合はnil。
// パース不能なレコードは破損とみなして削除し、nilを返す。
func (s *State) SavedUser() (*model.User, error) {
	raw, ok, err := s.store.Get(KeyAuthUser)
	if err != nil || !ok {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		// 破損レコードは復元不能なので削除する
		_ = s.store.Delete(KeyAuthUser)
		return nil, nil
	}
	return &user, nil
}

// SetSavedUser はユーザーレコードを永続化する。
func (s *State) SetSavedUser(user *model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("ユーザーレコードのシリアライズに失敗しました: %w", err)
	}
	return s.store.Set(KeyAuthUser, raw)
}

// ClearSavedUser はユーザーレコードを削除する。
func (s *State) ClearSavedUser() error {
	return s.store.Delete(KeyAuthUser)
}

// --- キャンセル済みID集合 ---

// CancelledIDs はキャンセル済み予約IDの集合を返す。
func (s *State) CancelledIDs() (map[string]bool, error) {
	raw, ok, err := s.store.Get(KeyCancelledIDs)
	if err != nil || !ok {
		return make(map[string]bool), err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return make(map[string]bool), nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// AddCancelledID は予約IDをキャンセル済み集合に追加する。
// 集合セマンティクスを持ち、同一IDを複数回追加しても重複しない。
func (s *State) AddCancelledID(id string) error {
	set, err := s.CancelledIDs()
	if err != nil {
		return err
	}
	if set[id] {
		return nil
	}
	set[id] = true
	return s.saveCancelledIDs(set)
}

// RemoveCancelledID は予約IDをキャンセル済み集合から除去する。
// バックエンド側でキャンセルが確認できたエントリのコンパクション用。
func (s *State) RemoveCancelledID(id string) error {
	set, err := s.CancelledIDs()
	if err != nil {
		return err
	}
	if !set[id] {
		return nil
	}
	delete(set, id)
	return s.saveCancelledIDs(set)
}

func (s *State) saveCancelledIDs(set map[string]bool) error {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	// 書き込み内容を決定的にする
	sort.Strings(ids)
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.store.Set(KeyCancelledIDs, raw)
}

// --- ローカル発番予約のアウトボックス ---

// PendingBookings はローカル発番予約のアウトボックスを返す。
func (s *State) PendingBookings() ([]model.PendingBooking, error) {
	raw, ok, err := s.store.Get(KeyPendingBookings)
	if err != nil || !ok {
		return nil, err
	}
	var entries []model.PendingBooking
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

// AppendPendingBooking は予約をアウトボックスに追加する。
func (s *State) AppendPendingBooking(entry model.PendingBooking) error {
	entries, err := s.PendingBookings()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return s.savePendingBookings(entries)
}

// UpdatePendingBooking は指定IDのアウトボックスエントリの予約内容を
// 部分更新し、更新後の予約を返す。該当エントリがない場合はnilを返す。
func (s *State) UpdatePendingBooking(bookingID string, req model.UpdateBookingRequest) (*model.Booking, error) {
	entries, err := s.PendingBookings()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Booking.ID != bookingID {
			continue
		}
		req.ApplyTo(&entries[i].Booking)
		b := entries[i].Booking
		if err := s.savePendingBookings(entries); err != nil {
			return nil, err
		}
		return &b, nil
	}
	return nil, nil
}

// RemovePendingBooking は指定IDのエントリをアウトボックスから除去する。
// バックエンドで確認済みになったエントリのコンパクション用。
func (s *State) RemovePendingBooking(bookingID string) error {
	entries, err := s.PendingBookings()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Booking.ID != bookingID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.savePendingBookings(kept)
}

func (s *State) savePendingBookings(entries []model.PendingBooking) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("アウトボックスのシリアライズに失敗しました: %w", err)
	}
	return s.store.Set(KeyPendingBookings, raw)
}

// --- モックセッションマーカー ---

// SetMockSession はモックモードのセッションマーカーを保存する。
func (s *State) SetMockSession(active bool) error {
	raw, err := json.Marshal(active)
	if err != nil {
		return err
	}
	return s.store.Set(KeyMockSession, raw)
}

// MockSession はモックモードのセッションマーカーを返す。
func (s *State) MockSession() (bool, error) {
	raw, ok, err := s.store.Get(KeyMockSession)
	if err != nil || !ok {
		return false, err
	}
	var active bool
	if err := json.Unmarshal(raw, &active); err != nil {
		return false, nil
	}
	return active, nil
}
