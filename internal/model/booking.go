package model

import "strings"

// BookingStatus は予約の状態を表す。
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "受付中"
	BookingStatusConfirmed BookingStatus = "確定"
	BookingStatusDone      BookingStatus = "完了"
	// BookingStatusCancelled はキャンセル済みを表す。
	// この状態の予約はUIに返す一覧に決して含めてはならない。
	BookingStatusCancelled BookingStatus = "取消"
)

// PaymentStatus は予約の支払い状態を表す。
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "未払い"
	PaymentStatusPaid     PaymentStatus = "支払い済み"
	PaymentStatusRefunded PaymentStatus = "返金済み"
)

// LocalBookingIDPrefix はバックエンド未確認のままクライアント側で
// 発番された予約IDの接頭辞。
const LocalBookingIDPrefix = "local_"

// Booking は予約を表す。booking_dateはYYYY-MM-DD形式。
type Booking struct {
	ID            string        `json:"id"`
	OwnerID       string        `json:"owner_id"`
	DogID         string        `json:"dog_id"`
	ServiceType   string        `json:"service_type"`
	BookingDate   string        `json:"booking_date"`
	BookingTime   string        `json:"booking_time"`
	Status        BookingStatus `json:"status"`
	Amount        int           `json:"amount,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Memo          string        `json:"memo,omitempty"`
	Dog           *Dog          `json:"dog,omitempty"`
}

// IsLocal はローカル発番の予約（バックエンド未確認）かを返す。
func (b *Booking) IsLocal() bool {
	return strings.HasPrefix(b.ID, LocalBookingIDPrefix)
}

// DateOnly はbooking_dateの日付部分（YYYY-MM-DD）を返す。
// バックエンドがISO 8601のタイムスタンプを返す場合にも対応する。
func (b *Booking) DateOnly() string {
	if i := strings.IndexByte(b.BookingDate, 'T'); i >= 0 {
		return b.BookingDate[:i]
	}
	return b.BookingDate
}

// SyncStatus はローカル発番予約のバックエンド同期状態を表す。
// アウトボックスに残っているエントリは常に未確認で、バックエンド側の
// 反映を確認できたエントリは削除される。
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
)

// PendingBooking はローカル発番予約のアウトボックスエントリ。
// バックエンドの作成エンドポイントが確認できるまでローカルに保持される。
type PendingBooking struct {
	Booking    Booking    `json:"booking"`
	SyncStatus SyncStatus `json:"sync_status"`
	CreatedAt  string     `json:"created_at"`
}

// BookingSearchParams は予約一覧のフィルタ条件。
type BookingSearchParams struct {
	Date        string
	Status      BookingStatus
	ServiceType string
	Page        int
	Limit       int
}

// Matches は予約がフィルタ条件を満たすかを返す。
// モックデータのフィルタと実APIレスポンスの再フィルタで共用する。
func (p BookingSearchParams) Matches(b *Booking) bool {
	if p.Date != "" && b.DateOnly() != p.Date {
		return false
	}
	if p.Status != "" && b.Status != p.Status {
		return false
	}
	if p.ServiceType != "" && b.ServiceType != p.ServiceType {
		return false
	}
	return true
}

// CreateBookingRequest は予約作成のリクエスト。
type CreateBookingRequest struct {
	OwnerID     string `json:"owner_id"`
	DogID       string `json:"dog_id"`
	ServiceType string `json:"service_type"`
	BookingDate string `json:"booking_date"`
	BookingTime string `json:"booking_time"`
	Amount      int    `json:"amount,omitempty"`
	Memo        string `json:"memo,omitempty"`
}

// UpdateBookingRequest は予約更新のリクエスト。
// nilのフィールドは変更しない部分更新のセマンティクスを持つ。
type UpdateBookingRequest struct {
	ServiceType   *string        `json:"service_type,omitempty"`
	BookingDate   *string        `json:"booking_date,omitempty"`
	BookingTime   *string        `json:"booking_time,omitempty"`
	Status        *BookingStatus `json:"status,omitempty"`
	Amount        *int           `json:"amount,omitempty"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
	Memo          *string        `json:"memo,omitempty"`
}

// ApplyTo は非nilのフィールドを予約に反映する。
func (r UpdateBookingRequest) ApplyTo(b *Booking) {
	if r.ServiceType != nil {
		b.ServiceType = *r.ServiceType
	}
	if r.BookingDate != nil {
		b.BookingDate = *r.BookingDate
	}
	if r.BookingTime != nil {
		b.BookingTime = *r.BookingTime
	}
	if r.Status != nil {
		b.Status = *r.Status
	}
	if r.Amount != nil {
		b.Amount = *r.Amount
	}
	if r.PaymentStatus != nil {
		b.PaymentStatus = *r.PaymentStatus
	}
	if r.Memo != nil {
		b.Memo = *r.Memo
	}
}

// Event はコミュニティイベントを表す。
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	Organizer   string `json:"organizer"`
	Price       string `json:"price"`
	Details     string `json:"details,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Post はコミュニティ掲示板の投稿を表す。
// BodyはサニタイズされたHTML。
type Post struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at,omitempty"`
}
