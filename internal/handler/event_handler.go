package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dogmates/dogmates-bff/internal/model"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	// List はイベント一覧を返す。
	List(ctx context.Context) ([]model.Event, error)
	// Get はイベント詳細を返す。
	Get(ctx context.Context, id string) (*model.Event, error)
}

// MasterServiceInterface はマスターデータハンドラーが必要とするサービスインターフェース。
type MasterServiceInterface interface {
	// Breeds は犬種マスター一覧を返す。
	Breeds(ctx context.Context) ([]model.Breed, error)
	// ServiceTypes はサービス種別マスター一覧を返す。
	ServiceTypes(ctx context.Context) ([]model.ServiceType, error)
}

// EventHandler はイベント・マスターデータのHTTPハンドラー。
type EventHandler struct {
	events EventServiceInterface
	master MasterServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(events EventServiceInterface, master MasterServiceInterface) *EventHandler {
	return &EventHandler{events: events, master: master}
}

// ListEvents はイベント一覧を取得する。
// GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string][]model.Event{"events": events})
}

// GetEvent はイベント詳細を取得する。
// GET /api/events/:id
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, e)
}

// ListBreeds は犬種マスター一覧を取得する。
// GET /api/breeds
func (h *EventHandler) ListBreeds(w http.ResponseWriter, r *http.Request) {
	breeds, err := h.master.Breeds(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string][]model.Breed{"breeds": breeds})
}

// ListServiceTypes はサービス種別マスター一覧を取得する。
// GET /api/service-types
func (h *EventHandler) ListServiceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.master.ServiceTypes(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string][]model.ServiceType{"service_types": types})
}
