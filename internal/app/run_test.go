package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_WithMissingEnv_ReturnsError(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("USE_MOCK_DATA", "")

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		t.Fatal("Run with missing env should return error")
	}
}

func TestRun_Healthcheck_ServerDown_ReturnsError(t *testing.T) {
	// 何も待ち受けていないポートに対するヘルスチェックは失敗する
	t.Setenv("SERVER_PORT", "59999")

	var buf bytes.Buffer
	err := Run(&buf, []string{"healthcheck"})
	if err == nil {
		t.Fatal("healthcheck against closed port should return error")
	}
}

func TestRun_Sync_MockMode_ReturnsError(t *testing.T) {
	t.Setenv("USE_MOCK_DATA", "true")
	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("STATE_FILE_PATH", filepath.Join(t.TempDir(), "state.json"))

	var buf bytes.Buffer
	err := Run(&buf, []string{"sync"})
	if err == nil {
		t.Fatal("sync in mock mode should return error")
	}
	if !strings.Contains(err.Error(), "mock") {
		t.Errorf("error = %v, want mock mode error", err)
	}
}

func TestRun_Sync_EmptyBackend_Succeeds(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bookings" {
			t.Errorf("path = %q, want /api/bookings", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]any{})
	}))
	defer backend.Close()

	t.Setenv("BACKEND_BASE_URL", backend.URL)
	t.Setenv("STATE_FILE_PATH", filepath.Join(t.TempDir(), "state.json"))

	var buf bytes.Buffer
	if err := Run(&buf, []string{"sync"}); err != nil {
		t.Fatalf("sync against empty backend failed: %v", err)
	}
}
