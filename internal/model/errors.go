// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code       string // エラーコード
	Message    string // エラーメッセージ
	Category   string // カテゴリ: auth, validation, booking, transport, system
	Action     string // ユーザー向け対処方法
	HTTPStatus int    // バックエンドのHTTPステータス。トランスポート以外は0
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeBookingNotFound    = "BOOKING_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeOwnerNotFound      = "OWNER_NOT_FOUND"
	ErrCodeDogNotFound        = "DOG_NOT_FOUND"
	ErrCodeEventNotFound      = "EVENT_NOT_FOUND"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeRequestTimeout     = "REQUEST_TIMEOUT"
	ErrCodeNetworkFailure     = "NETWORK_FAILURE"
	ErrCodeUpstreamError      = "UPSTREAM_ERROR"
)

// NewInvalidCredentialsError は認証失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewBookingNotFoundError は予約未検出エラーを生成する。
func NewBookingNotFoundError(bookingID string) *APIError {
	return &APIError{
		Code:     ErrCodeBookingNotFound,
		Message:  fmt.Sprintf("指定された予約が見つかりません: %s", bookingID),
		Category: "booking",
		Action:   "予約IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewOwnerNotFoundError は飼い主未検出エラーを生成する。
func NewOwnerNotFoundError(ownerID string) *APIError {
	return &APIError{
		Code:     ErrCodeOwnerNotFound,
		Message:  fmt.Sprintf("指定された飼い主が見つかりません: %s", ownerID),
		Category: "booking",
		Action:   "飼い主IDを確認してください。",
	}
}

// NewDogNotFoundError は犬未検出エラーを生成する。
func NewDogNotFoundError(dogID string) *APIError {
	return &APIError{
		Code:     ErrCodeDogNotFound,
		Message:  fmt.Sprintf("指定された犬が見つかりません: %s", dogID),
		Category: "booking",
		Action:   "犬IDを確認してください。",
	}
}

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("指定されたイベントが見つかりません: %s", eventID),
		Category: "booking",
		Action:   "イベントIDを確認してください。",
	}
}

// NewInvalidRequestError は不正リクエストエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewRequestTimeoutError はタイムアウトエラーを生成する。
func NewRequestTimeoutError() *APIError {
	return &APIError{
		Code:     ErrCodeRequestTimeout,
		Message:  "サーバーの応答がタイムアウトしました。",
		Category: "transport",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewNetworkFailureError はネットワーク/CORS系の接続エラーを生成する。
func NewNetworkFailureError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeNetworkFailure,
		Message:  fmt.Sprintf("ネットワーク接続に失敗しました: %s", reason),
		Category: "transport",
		Action:   "接続環境とバックエンドのCORS設定を確認してください。",
	}
}

// NewUpstreamError はバックエンドのHTTPエラーを生成する。
// messageにはレスポンスボディから抽出した詳細メッセージを渡す。
func NewUpstreamError(statusCode int, message string) *APIError {
	return &APIError{
		Code:       ErrCodeUpstreamError,
		Message:    fmt.Sprintf("バックエンドがエラーを返しました (%d): %s", statusCode, message),
		Category:   "transport",
		Action:     "しばらく待ってから再度お試しください。",
		HTTPStatus: statusCode,
	}
}
