package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/fixtures"
	"github.com/dogmates/dogmates-bff/internal/localstore"
	"github.com/dogmates/dogmates-bff/internal/metrics"
	"github.com/dogmates/dogmates-bff/internal/model"
	"github.com/dogmates/dogmates-bff/internal/token"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceOption func(*Service)

func withMockMode() serviceOption {
	return func(s *Service) { s.mockMode = true }
}

func withDemoFallback() serviceOption {
	return func(s *Service) { s.demoFallback = true }
}

func newTestService(t *testing.T, baseURL string, opts ...serviceOption) (*Service, *token.Manager) {
	t.Helper()
	state := localstore.NewState(localstore.NewMemoryStore())
	tokens := token.NewManager(state, testLogger())
	client := api.NewClient(&http.Client{}, baseURL, tokens, testLogger(), metrics.NopCollector{}, 0)
	svc := NewService(client, tokens, state, fixtures.NewStore(), testLogger(), false, false)
	for _, opt := range opts {
		opt(svc)
	}
	return svc, tokens
}

func TestLogin_モックモードで正しい認証情報が通る(t *testing.T) {
	svc, tokens := newTestService(t, "http://localhost:0", withMockMode())

	user, err := svc.Login(context.Background(), "user@example.com", "password123")
	if err != nil {
		t.Fatalf("ログインに失敗しました: %v", err)
	}
	if user.Role != model.RoleUser {
		t.Errorf("ロールが想定と異なります: %s", user.Role)
	}

	got, err := tokens.Token()
	if err != nil || got == "" {
		t.Errorf("トークンが保存されるはずです: %q, %v", got, err)
	}
	if !svc.IsAuthenticated() {
		t.Error("認証済みになるはずです")
	}
}

func TestLogin_モックモードで誤った認証情報は失敗する(t *testing.T) {
	svc, _ := newTestService(t, "http://localhost:0", withMockMode())

	_, err := svc.Login(context.Background(), "user@example.com", "wrong")
	if err == nil {
		t.Fatal("認証失敗を期待しました")
	}
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("認証情報エラーを期待しました: %v", err)
	}
}

func TestLogin_実モードはトークン取得後にプロフィールを取得する(t *testing.T) {
	var loginAuth, meAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			loginAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"access_token":"mock_token_server"}`))
		case "/auth/me":
			meAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"id":"user_9","name":"田中太郎","email":"user@example.com","role":"利用者"}`))
		case "/api/owners":
			w.Write([]byte(`{"id":"owner_9"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc, tokens := newTestService(t, server.URL)
	user, err := svc.Login(context.Background(), "user@example.com", "password123")
	if err != nil {
		t.Fatalf("ログインに失敗しました: %v", err)
	}
	if user.ID != "user_9" || user.Role != model.RoleUser {
		t.Errorf("ユーザーが想定と異なります: %+v", user)
	}
	if loginAuth != "" {
		t.Error("ログインリクエストには認証ヘッダーを付与しないはずです")
	}
	if meAuth != "Bearer mock_token_server" {
		t.Errorf("プロフィール取得には取得済みトークンを使うはずです: %q", meAuth)
	}

	got, _ := tokens.Token()
	if got != "mock_token_server" {
		t.Errorf("トークンが保存されるはずです: %q", got)
	}
}

func TestLogin_実モードの401は認証情報エラーになる(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)
	_, err := svc.Login(context.Background(), "user@example.com", "wrong")
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("認証情報エラーを期待しました: %v", err)
	}
}

func TestLogin_飼い主レコード作成の失敗はログインを妨げない(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"access_token":"mock_token_server"}`))
		case "/auth/me":
			w.Write([]byte(`{"id":"user_9","name":"田中太郎","email":"user@example.com","role":"利用者"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)
	if _, err := svc.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Errorf("飼い主レコード作成の失敗は無視されるはずです: %v", err)
	}
}

func TestLogin_デモフォールバックは既定で無効(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)
	if _, err := svc.Login(context.Background(), "user@example.com", "password123"); err == nil {
		t.Error("フォールバック無効時はバックエンド障害でログインできないはずです")
	}
}

func TestLogin_デモフォールバック有効時はデモ認証情報が通る(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, tokens := newTestService(t, server.URL, withDemoFallback())
	user, err := svc.Login(context.Background(), "user@example.com", "password123")
	if err != nil {
		t.Fatalf("フォールバックログインに失敗しました: %v", err)
	}
	if user.Name != "田中太郎" {
		t.Errorf("デモユーザーが返るはずです: %+v", user)
	}

	got, _ := tokens.Token()
	if got != "fallback_token_user_1" {
		t.Errorf("フォールバックトークンが発行されるはずです: %q", got)
	}
}

func TestLogin_デモフォールバック有効でも不正な認証情報は失敗する(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL, withDemoFallback())
	if _, err := svc.Login(context.Background(), "user@example.com", "wrong"); err == nil {
		t.Error("デモ認証情報に一致しない場合は元のエラーが返るはずです")
	}
}

func TestLogout_トークンとユーザーを破棄する(t *testing.T) {
	svc, tokens := newTestService(t, "http://localhost:0", withMockMode())
	if _, err := svc.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Logout(); err != nil {
		t.Fatalf("ログアウトに失敗しました: %v", err)
	}
	if svc.IsAuthenticated() {
		t.Error("ログアウト後は未認証のはずです")
	}
	if got, _ := tokens.Token(); got != "" {
		t.Errorf("トークンは破棄されるはずです: %q", got)
	}

	user, _ := svc.RestoreSession()
	if user != nil {
		t.Errorf("セッションは復元されないはずです: %+v", user)
	}
}

func TestRestoreSession_モックモードはデータセットのレコードを正とする(t *testing.T) {
	svc, _ := newTestService(t, "http://localhost:0", withMockMode())
	if _, err := svc.Login(context.Background(), "admin@example.com", "admin123"); err != nil {
		t.Fatal(err)
	}

	user, err := svc.RestoreSession()
	if err != nil {
		t.Fatalf("復元に失敗しました: %v", err)
	}
	if user == nil || user.Role != model.RoleAdmin {
		t.Errorf("管理者として復元されるはずです: %+v", user)
	}
}

func TestRestoreSession_トークンがなければnil(t *testing.T) {
	svc, _ := newTestService(t, "http://localhost:0")

	user, err := svc.RestoreSession()
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Errorf("未認証時はnilのはずです: %+v", user)
	}
}

func TestHasPermission_ロール階層に従う(t *testing.T) {
	svc, _ := newTestService(t, "http://localhost:0")
	admin := &model.User{Role: model.RoleAdmin}

	if !svc.HasPermission(admin, model.RoleUser) {
		t.Error("管理者は利用者の権限チェックを通るはずです")
	}
	if svc.HasPermission(admin, model.RoleSuperAdmin) {
		t.Error("管理者はスーパー管理者の権限チェックを通らないはずです")
	}
	if svc.HasPermission(nil, model.RoleUser) {
		t.Error("未認証は全ての権限チェックに失敗するはずです")
	}
}

func TestRefreshProfile_モックモードで犬情報を合成する(t *testing.T) {
	svc, _ := newTestService(t, "http://localhost:0", withMockMode())
	if _, err := svc.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatal(err)
	}

	profile := svc.RefreshProfile(context.Background())
	if profile.Owner == nil {
		t.Fatal("飼い主が合成されるはずです")
	}
	if len(profile.Dogs) != 2 {
		t.Errorf("2匹の犬が合成されるはずです: %+v", profile.Dogs)
	}
	if dog := profile.PrimaryDog(); dog == nil || dog.Name != "ポチ" {
		t.Errorf("代表犬が想定と異なります: %+v", dog)
	}
}

func TestRefreshProfile_未ログインでも空のプロフィールを返す(t *testing.T) {
	svc, _ := newTestService(t, "http://localhost:0")

	profile := svc.RefreshProfile(context.Background())
	if profile == nil {
		t.Fatal("プロフィールは常に返るはずです")
	}
	if len(profile.Dogs) != 0 {
		t.Errorf("犬リストは空のはずです: %+v", profile.Dogs)
	}
}

func TestRefreshProfile_バックエンド障害でも失敗しない(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc, tokens := newTestService(t, server.URL)
	tokens.SetToken("mock_token_x")
	svc.state.SetSavedUser(&model.User{ID: "user_1", Name: "田中太郎", Email: "user@example.com", Role: model.RoleUser})

	profile := svc.RefreshProfile(context.Background())
	if profile == nil || profile.User.ID != "user_1" {
		t.Errorf("最低限のプロフィールが返るはずです: %+v", profile)
	}
	if len(profile.Dogs) != 0 {
		t.Errorf("犬リストは空のはずです: %+v", profile.Dogs)
	}
}

func TestRegister_モックモードで重複メールは拒否される(t *testing.T) {
	svc, _ := newTestService(t, "http://localhost:0", withMockMode())

	if _, err := svc.Register(context.Background(), RegisterRequest{Name: "新規", Email: "new@example.com", Password: "pass1234"}); err != nil {
		t.Fatalf("登録に失敗しました: %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterRequest{Name: "別人", Email: "new@example.com", Password: "pass5678"}); err == nil {
		t.Error("重複メールは拒否されるはずです")
	}
}
