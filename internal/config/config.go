package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Backend
	BackendBaseURL string
	UseMockData    bool
	RequestTimeout time.Duration

	// Auth
	// AuthDemoFallback を有効にすると、バックエンド認証に失敗した場合に
	// デモ用の認証情報でのログインを許可する。本番では必ず無効にすること。
	AuthDemoFallback bool

	// State
	StateFilePath string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Rate Limit
	RateLimitGeneral int
}

// Load は環境変数からConfigを読み込む。
// モックモードでない場合、バックエンドURLは必須。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.UseMockData = getEnvBool("USE_MOCK_DATA", false)
	cfg.BackendBaseURL = os.Getenv("BACKEND_BASE_URL")
	if cfg.BackendBaseURL == "" && !cfg.UseMockData {
		return nil, fmt.Errorf("required environment variables are not set: [BACKEND_BASE_URL]")
	}

	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	cfg.AuthDemoFallback = getEnvBool("AUTH_DEMO_FALLBACK", false)
	cfg.StateFilePath = getEnvString("STATE_FILE_PATH", "dogmates-state.json")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
