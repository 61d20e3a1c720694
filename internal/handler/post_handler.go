package handler

import (
	"context"
	"net/http"

	"github.com/dogmates/dogmates-bff/internal/middleware"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// PostServiceInterface は掲示板ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	// List は投稿一覧を返す。本文はサニタイズ済みHTML。
	List(ctx context.Context) ([]model.Post, error)
	// Create は投稿を作成する。本文はサニタイズされる。
	Create(ctx context.Context, post model.Post) (*model.Post, error)
}

// PostHandler はコミュニティ掲示板のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// createPostRequest は投稿作成リクエストのボディ。
type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ListPosts は投稿一覧を取得する。
// GET /api/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string][]model.Post{"posts": posts})
}

// CreatePost は投稿を作成する。投稿者はログイン中ユーザー。
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createPostRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), model.Post{
		AuthorID: user.ID,
		Title:    req.Title,
		Body:     req.Body,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, created)
}
