package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dogmates/dogmates-bff/internal/middleware"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// stubSessionRestorer はセッション復元結果を固定するスタブ。
type stubSessionRestorer struct {
	user *model.User
}

func (s *stubSessionRestorer) RestoreSession() (*model.User, error) {
	return s.user, nil
}

// mockEventService はEventServiceInterfaceのモック実装。
type mockEventService struct {
	listFn func(ctx context.Context) ([]model.Event, error)
}

func (m *mockEventService) List(ctx context.Context) ([]model.Event, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockEventService) Get(ctx context.Context, id string) (*model.Event, error) {
	return nil, model.NewEventNotFoundError(id)
}

// mockMasterService はMasterServiceInterfaceのモック実装。
type mockMasterService struct{}

func (m *mockMasterService) Breeds(ctx context.Context) ([]model.Breed, error) {
	return []model.Breed{{ID: "breed_1", Name: "柴犬"}}, nil
}

func (m *mockMasterService) ServiceTypes(ctx context.Context) ([]model.ServiceType, error) {
	return nil, nil
}

// mockOwnerService はOwnerServiceInterfaceのモック実装。
type mockOwnerService struct{}

func (m *mockOwnerService) Get(ctx context.Context, id string) (*model.Owner, error) {
	return &model.Owner{ID: id}, nil
}

func (m *mockOwnerService) Create(ctx context.Context, owner model.Owner) (*model.Owner, error) {
	return &owner, nil
}

func (m *mockOwnerService) Dogs(ctx context.Context, ownerID string) ([]model.Dog, error) {
	return nil, nil
}

// mockDogService はDogServiceInterfaceのモック実装。
type mockDogService struct{}

func (m *mockDogService) Get(ctx context.Context, id string) (*model.Dog, error) {
	return &model.Dog{ID: id}, nil
}

func (m *mockDogService) Create(ctx context.Context, dog model.Dog) (*model.Dog, error) {
	return &dog, nil
}

// mockPostService はPostServiceInterfaceのモック実装。
type mockPostService struct{}

func (m *mockPostService) List(ctx context.Context) ([]model.Post, error) {
	return nil, nil
}

func (m *mockPostService) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	return &post, nil
}

// newTestRouter は全ハンドラーをモックで埋めたルーターを返す。
func newTestRouter(t *testing.T, sessionUser *model.User) (http.Handler, *middleware.RateLimiter) {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		SessionRestorer:   &stubSessionRestorer{user: sessionUser},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		AuthService:       &mockAuthService{},
		BookingService:    &mockBookingService{},
		BookingSync:       &mockBookingSync{},
		OwnerService:      &mockOwnerService{},
		DogService:        &mockDogService{},
		EventService:      &mockEventService{},
		MasterService:     &mockMasterService{},
		PostService:       &mockPostService{},
	})
	return router, rl
}

func TestRouter_Health_NoAuthRequired(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestRouter_APIRoutes_RequireSession(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	paths := []string{"/api/bookings", "/api/events", "/api/breeds", "/api/posts", "/auth/me"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRouter_AuthenticatedUser_CanListEvents(t *testing.T) {
	router, _ := newTestRouter(t, &model.User{ID: "user_1", Role: model.RoleUser})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouter_AdminRoute_ForbiddenForRegularUser(t *testing.T) {
	router, _ := newTestRouter(t, &model.User{ID: "user_1", Role: model.RoleUser})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/bookings/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRouter_AdminRoute_AllowedForAdmin(t *testing.T) {
	router, _ := newTestRouter(t, &model.User{ID: "user_2", Role: model.RoleAdmin})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/bookings/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouter_CORSHeaders_Applied(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
}
