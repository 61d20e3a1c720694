package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dogmates/dogmates-bff/internal/model"
)

// OwnerServiceInterface は飼い主ハンドラーが必要とするサービスインターフェース。
type OwnerServiceInterface interface {
	// Get は飼い主をIDで取得する。
	Get(ctx context.Context, id string) (*model.Owner, error)
	// Create は飼い主を登録する。
	Create(ctx context.Context, owner model.Owner) (*model.Owner, error)
	// Dogs は飼い主に紐づく犬の一覧を返す。
	Dogs(ctx context.Context, ownerID string) ([]model.Dog, error)
}

// DogServiceInterface は犬情報ハンドラーが必要とするサービスインターフェース。
type DogServiceInterface interface {
	// Get は犬をIDで取得する。
	Get(ctx context.Context, id string) (*model.Dog, error)
	// Create は犬を登録する。
	Create(ctx context.Context, dog model.Dog) (*model.Dog, error)
}

// OwnerHandler は飼い主・犬情報のHTTPハンドラー。
type OwnerHandler struct {
	owners OwnerServiceInterface
	dogs   DogServiceInterface
}

// NewOwnerHandler はOwnerHandlerを生成する。
func NewOwnerHandler(owners OwnerServiceInterface, dogs DogServiceInterface) *OwnerHandler {
	return &OwnerHandler{owners: owners, dogs: dogs}
}

// GetOwner は飼い主を取得する。
// GET /api/owners/:id
func (h *OwnerHandler) GetOwner(w http.ResponseWriter, r *http.Request) {
	o, err := h.owners.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, o)
}

// CreateOwner は飼い主を登録する。
// POST /api/owners
func (h *OwnerHandler) CreateOwner(w http.ResponseWriter, r *http.Request) {
	var owner model.Owner
	if !decodeJSONBody(w, r, &owner) {
		return
	}

	created, err := h.owners.Create(r.Context(), owner)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, created)
}

// ListOwnerDogs は飼い主に紐づく犬の一覧を取得する。
// GET /api/owners/:id/dogs
func (h *OwnerHandler) ListOwnerDogs(w http.ResponseWriter, r *http.Request) {
	dogs, err := h.owners.Dogs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string][]model.Dog{"dogs": dogs})
}

// GetDog は犬を取得する。
// GET /api/dogs/:id
func (h *OwnerHandler) GetDog(w http.ResponseWriter, r *http.Request) {
	d, err := h.dogs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, d)
}

// CreateDog は犬を登録する。
// POST /api/dogs
func (h *OwnerHandler) CreateDog(w http.ResponseWriter, r *http.Request) {
	var dog model.Dog
	if !decodeJSONBody(w, r, &dog) {
		return
	}

	created, err := h.dogs.Create(r.Context(), dog)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, created)
}
