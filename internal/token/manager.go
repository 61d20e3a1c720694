// Package token はベアラートークンのライフサイクル管理を提供する。
// トークンの唯一の管理主体であり、JWT形式トークンの期限検査を行う。
package token

import (
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dogmates/dogmates-bff/internal/localstore"
)

// ExpiryMargin はJWTの期限判定に設ける安全マージン。
// exp - 5分 を過ぎた時点で期限切れとして扱う。
const ExpiryMargin = 5 * time.Minute

// syntheticPrefixes は合成トークンの接頭辞。
// これらはJWTではなく、明示的に削除されるまで常に有効。
var syntheticPrefixes = []string{"mock_token_", "fallback_token_"}

// Manager はトークンの保存・取得・無効化を管理する。
// ストレージを毎回読みに行き、インメモリキャッシュは持たない
// （複数コンテキスト間での陳腐化を避けるため）。
type Manager struct {
	state  *localstore.State
	logger *slog.Logger
	now    func() time.Time
}

// NewManager はManagerを生成する。
func NewManager(state *localstore.State, logger *slog.Logger) *Manager {
	return &Manager{
		state:  state,
		logger: logger,
		now:    time.Now,
	}
}

// SetToken はトークンを永続化する。既存のトークンは上書きされる。
func (m *Manager) SetToken(token string) error {
	return m.state.SetToken(token)
}

// Token は有効なトークンを返す。トークンが存在しない、または期限切れの
// 場合は空文字を返す。期限切れトークンはストレージから削除される。
//
// 判定ルール:
//   - JWT形式: expクレームを現在時刻+マージンと比較する（署名検証はしない）
//   - 合成トークン（mock_token_/fallback_token_）: 常に有効
//   - デコード不能なその他のトークン: 期限切れ扱い（フェイルクローズ）
//
// デコード失敗がエラーとして呼び出し元に伝播することはない。
func (m *Manager) Token() (string, error) {
	token, err := m.state.Token()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", nil
	}

	if m.isExpired(token) {
		m.logger.Info("期限切れトークンを削除します")
		if err := m.state.ClearToken(); err != nil {
			return "", err
		}
		return "", nil
	}

	return token, nil
}

// ClearToken はトークンをストレージから削除する。
func (m *Manager) ClearToken() error {
	return m.state.ClearToken()
}

// IsAuthenticated は有効なトークンが存在するかを返す。
func (m *Manager) IsAuthenticated() bool {
	token, err := m.Token()
	return err == nil && token != ""
}

// isExpired はトークンが期限切れかを判定する。
func (m *Manager) isExpired(token string) bool {
	if isSynthetic(token) {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// JWTとしてデコードできない合成以外のトークンは期限切れ扱い
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		// expクレームを持たないJWTは期限判定の対象外
		return false
	}

	return !m.now().Before(exp.Time.Add(-ExpiryMargin))
}

// isSynthetic は合成トークンかを返す。
func isSynthetic(token string) bool {
	for _, prefix := range syntheticPrefixes {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}
