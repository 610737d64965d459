// Package flatfile implements the repository interfaces over one JSON array
// per entity file in a local data directory, the layout the dashboard's
// original backend used. It is kept as a compatibility and test-fixture
// backend; the sqlite backend is the production default.
//
// Contract: reading a missing or unparseable file yields an empty slice and
// lazily (re)creates the file, so a read never fails the request. Writes
// serialize the full array back to disk. Every operation is a whole-file
// read-modify-write guarded by a per-file mutex, so requests within one
// process cannot lose updates; there is still no cross-process locking and
// no atomic rename.
package flatfile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/haidang/referral-hub/internal/repository"
)

// Entity file names, one JSON array each. The whole durable state of an
// entity type lives in its file.
const (
	usersFile         = "users.json"
	jobsFile          = "jobs.json"
	referralsFile     = "referrals.json"
	activitiesFile    = "activities.json"
	messagesFile      = "messages.json"
	conversationsFile = "conversations.json"
)

// compile-time check that *Store satisfies the full storage surface
var _ repository.Store = (*Store)(nil)

// Store reads and writes JSON array files under dir.
type Store struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex
}

// New creates the data directory if needed and returns a Store over it.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("flatfile: creating data dir %s: %w", dir, err)
	}
	return &Store{
		dir:    dir,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Close is a no-op; every write is flushed synchronously.
func (s *Store) Close() error {
	return nil
}

// fileLock returns the mutex guarding filename, creating it on first use.
// All read-modify-write sequences on a file must run under its lock.
func (s *Store) fileLock(filename string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[filename]
	if !ok {
		l = &sync.Mutex{}
		s.locks[filename] = l
	}
	return l
}

// load reads the full record array from filename. The caller must hold the
// file lock. A missing file is created as "[]"; an empty or corrupt file is
// logged and treated as empty rather than failing the request.
func load[T any](s *Store, filename string) ([]T, error) {
	path := filepath.Join(s.dir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("flatfile: reading %s: %w", filename, err)
		}
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("flatfile: initializing %s: %w", filename, err)
		}
		return []T{}, nil
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		s.logger.Error("flatfile: unparseable file, treating as empty",
			slog.String("file", filename),
			slog.String("error", err.Error()),
		)
		return []T{}, nil
	}
	return records, nil
}

// save serializes the full record array back to filename. The caller must
// hold the file lock. Indented output keeps the files hand-inspectable,
// matching the historical on-disk format.
func save[T any](s *Store, filename string, records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("flatfile: encoding %s: %w", filename, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return fmt.Errorf("flatfile: writing %s: %w", filename, err)
	}
	return nil
}
