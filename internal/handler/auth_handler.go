package handler

import (
	"context"
	"net/http"

	"github.com/dogmates/dogmates-bff/internal/auth"
	"github.com/dogmates/dogmates-bff/internal/middleware"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login はメールアドレスとパスワードで認証しユーザーを返す。
	Login(ctx context.Context, email, password string) (*model.User, error)
	// Register は新規ユーザーを登録しログイン状態にする。
	Register(ctx context.Context, req auth.RegisterRequest) (*model.User, error)
	// Logout はセッションを破棄する。
	Logout() error
	// RefreshProfile はログイン中ユーザーの合成プロフィールを返す。
	RefreshProfile(ctx context.Context) *model.UserProfile
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	User model.User `json:"user"`
}

// Login はログイン処理を行う。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("メールアドレスとパスワードを入力してください。"))
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, loginResponse{User: *user})
}

// Register は新規ユーザー登録を行う。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, loginResponse{User: *user})
}

// Logout はセッションを破棄する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me はログイン中ユーザーを返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	writeJSONResponse(w, http.StatusOK, loginResponse{User: *user})
}

// Profile はログイン中ユーザーの合成プロフィール（飼い主情報と登録犬）を返す。
// GET /auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserFromContext(r.Context()); err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	profile := h.service.RefreshProfile(r.Context())
	writeJSONResponse(w, http.StatusOK, profile)
}
