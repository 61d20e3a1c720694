package owner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/fixtures"
	"github.com/dogmates/dogmates-bff/internal/localstore"
	"github.com/dogmates/dogmates-bff/internal/model"
	"github.com/dogmates/dogmates-bff/internal/token"
)

// newRealClient はhttptestサーバーに向けたAPIクライアントを返す。
func newRealClient(t *testing.T, server *httptest.Server) *api.Client {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	state := localstore.NewState(localstore.NewMemoryStore())
	tokens := token.NewManager(state, log)
	return api.NewClient(server.Client(), server.URL, tokens, log, nil, 5*time.Second)
}

func TestGet_モックの飼い主を返す(t *testing.T) {
	svc := NewService(nil, fixtures.NewStore())

	o, err := svc.Get(context.Background(), "owner_1")
	if err != nil {
		t.Fatalf("取得に失敗しました: %v", err)
	}
	if o.ID != "owner_1" {
		t.Errorf("id = %q, want owner_1", o.ID)
	}
}

func TestGet_モックに存在しないIDはエラー(t *testing.T) {
	svc := NewService(nil, fixtures.NewStore())

	_, err := svc.Get(context.Background(), "owner_999")
	if err == nil {
		t.Fatal("エラーを期待しました")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeOwnerNotFound {
		t.Errorf("err = %v, want %s", err, model.ErrCodeOwnerNotFound)
	}
}

func TestGet_バックエンドの404は飼い主未登録エラーになる(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewService(newRealClient(t, server), nil)

	_, err := svc.Get(context.Background(), "owner_1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeOwnerNotFound {
		t.Errorf("err = %v, want %s", err, model.ErrCodeOwnerNotFound)
	}
}

func TestCreate_バックエンドに登録する(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/owners" {
			t.Errorf("request = %s %s, want POST /api/owners", r.Method, r.URL.Path)
		}
		var body model.Owner
		json.NewDecoder(r.Body).Decode(&body)
		body.ID = "owner_10"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	svc := NewService(newRealClient(t, server), nil)

	created, err := svc.Create(context.Background(), model.Owner{Name: "佐藤次郎", Email: "sato@example.com"})
	if err != nil {
		t.Fatalf("登録に失敗しました: %v", err)
	}
	if created.ID != "owner_10" {
		t.Errorf("id = %q, want owner_10", created.ID)
	}
}

func TestCreate_必須項目が欠けるとエラー(t *testing.T) {
	svc := NewService(nil, fixtures.NewStore())

	if _, err := svc.Create(context.Background(), model.Owner{Name: "名前のみ"}); err == nil {
		t.Error("必須項目エラーを期待しました")
	}
}

func TestDogs_飼い主の犬一覧を返す(t *testing.T) {
	svc := NewService(nil, fixtures.NewStore())

	dogs, err := svc.Dogs(context.Background(), "owner_1")
	if err != nil {
		t.Fatalf("取得に失敗しました: %v", err)
	}
	if len(dogs) != 2 {
		t.Errorf("len(dogs) = %d, want 2", len(dogs))
	}
}
