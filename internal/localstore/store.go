// Package localstore はクライアント側の永続ストレージを提供する。
// ブラウザのlocalStorage相当をファイルベースのキー/バリューストアとして
// 再実装したもの。トークン・保存ユーザー・予約の上書き情報を保持する。
//
// プロセス間のロックは行わない。同一キーへの同時書き込みは後勝ちになる
// （複数タブで同一キーを触る元の構造をそのまま引き継いでいる）。
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store はキー/バリューストレージのインターフェース。
type Store interface {
	// Get は指定キーの値を返す。キーが存在しない場合は(nil, false, nil)。
	Get(key string) ([]byte, bool, error)
	// Set は指定キーに値を保存する。既存の値は上書きされる。
	Set(key string, value []byte) error
	// Delete は指定キーを削除する。キーが存在しなくてもエラーにしない。
	Delete(key string) error
}

// FileStore は単一JSONファイルにキー/バリューを永続化するStore実装。
// 書き込みは一時ファイル経由のリネームで行い、中途半端な状態を残さない。
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore は指定パスのFileStoreを生成する。
// ファイルが存在しない場合は初回のSetで作成される。
func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ストレージディレクトリの作成に失敗しました: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Get は指定キーの値を返す。
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := data[key]
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

// Set は指定キーに値を保存する。
func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.save(data)
}

// Delete は指定キーを削除する。
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.save(data)
}

// load はファイル全体をマップとして読み込む。ファイル未作成の場合は空マップ。
func (s *FileStore) load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, fmt.Errorf("ストレージファイルの読み込みに失敗しました: %w", err)
	}

	data := make(map[string]json.RawMessage)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("ストレージファイルのパースに失敗しました: %w", err)
	}
	return data, nil
}

// save はマップ全体を一時ファイル経由でアトミックに書き出す。
func (s *FileStore) save(data map[string]json.RawMessage) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("ストレージデータのシリアライズに失敗しました: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("ストレージファイルの書き込みに失敗しました: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("ストレージファイルの更新に失敗しました: %w", err)
	}
	return nil
}

// MemoryStore はテスト用のインメモリStore実装。
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get は指定キーの値を返す。
func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

// Set は指定キーに値を保存する。
func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

// Delete は指定キーを削除する。
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

var _ Store = (*FileStore)(nil)
var _ Store = (*MemoryStore)(nil)
