package chat

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists the serialized history under a single key. Load returns
// nil, nil when nothing was stored yet.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Close() error
}

type StoreKind string

const (
	StoreKindFile   StoreKind = "file"
	StoreKindSQLite StoreKind = "sqlite"
	StoreKindMemory StoreKind = "memory"
)

var StoreKinds = []StoreKind{StoreKindFile, StoreKindSQLite, StoreKindMemory}

func OpenStore(kind StoreKind, dir, key string) (Store, error) {
	switch kind {
	case StoreKindFile:
		return NewFileStore(dir, key), nil
	case StoreKindSQLite:
		return NewSQLiteStore(filepath.Join(dir, "novachat.db"), key)
	case StoreKindMemory:
		return &MemoryStore{}, nil
	default:
		return nil, fmt.Errorf("%s: invalid store, valid stores are: %v", kind, StoreKinds)
	}
}

type FileStore struct {
	path string
}

func NewFileStore(dir, key string) *FileStore {
	return &FileStore{path: filepath.Join(dir, key+".json")}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return data, nil
}

// Save replaces the file atomically so a crash never leaves half a history.
func (s *FileStore) Save(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

type SQLiteStore struct {
	db  *sql.DB
	key string
}

func NewSQLiteStore(path, key string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &SQLiteStore{db: db, key: key}, nil
}

func (s *SQLiteStore) Load() ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return []byte(value), nil
}

func (s *SQLiteStore) Save(data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		s.key, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func (s *MemoryStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data), nil
}

func (s *MemoryStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = slices.Clone(data)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
