// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dogmates/dogmates-bff/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストにユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// SessionRestorer はセッション復元に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type SessionRestorer interface {
	RestoreSession() (*model.User, error)
}

// NewSessionMiddleware は保持しているトークンとユーザーレコードから
// セッションを復元し、ユーザーをリクエストコンテキストに注入する
// ミドルウェアを返す。復元できないリクエストには401を返す。
func NewSessionMiddleware(restorer SessionRestorer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := restorer.RestoreSession()
			if err != nil || user == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRoleMiddleware はrequired以上のロールを持つユーザーのみ通過させる
// ミドルウェアを返す。SessionMiddlewareの後に配置すること。
func NewRoleMiddleware(required model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r.Context())
			if err != nil || !user.Role.AtLeast(required) {
				WriteErrorResponse(w, http.StatusForbidden, &model.APIError{
					Code:     "FORBIDDEN",
					Message:  "この操作を行う権限がありません。",
					Category: "auth",
					Action:   "管理者にお問い合わせください。",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext はリクエストコンテキストからユーザーを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストにユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
