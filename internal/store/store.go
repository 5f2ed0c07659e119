package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logical keys. Each holds one JSON blob.
const (
	KeyUsers         = "users"
	KeyGroups        = "groups"
	KeyChats         = "chats"
	KeyStatuses      = "statuses"
	KeySearchHistory = "search-history"
	KeyAuthUserID    = "authenticated-user-id"
)

// StatusTTL is how long a status stays visible after it is posted.
const StatusTTL = 24 * time.Hour

// Backend is the string-keyed medium the store persists to.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Store exposes the profile's collections on top of a Backend.
//
// Reads and writes never fail: a backend or decoding error is logged and
// the read yields the default (an empty collection, or the seed data where
// seeding applies); a failed write is dropped. Every mutation rewrites the
// whole collection, so concurrent writers from different processes resolve
// as last-write-wins.
type Store struct {
	backend Backend
	clock   clock.Clock
	logger  *zap.Logger

	// mu serializes read-modify-write cycles issued in this process.
	mu sync.Mutex
}

// New creates a store over backend.
func New(backend Backend, clk clock.Clock, logger *zap.Logger) *Store {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, clock: clk, logger: logger}
}

// Now returns the store's notion of the current time.
func (s *Store) Now() time.Time { return s.clock.Now() }

// NewID returns a fresh unique id with the given prefix, e.g. "msg-<uuid>".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func get[T any](s *Store, key string, def T) T {
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.Warn("store read failed", zap.String("key", key), zap.Error(err))
		return def
	}
	if !ok || raw == "" {
		return def
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.logger.Warn("store decode failed, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return v
}

func set[T any](s *Store, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("store encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.backend.Set(key, string(data)); err != nil {
		s.logger.Error("store write failed", zap.String("key", key), zap.Error(err))
	}
}

// AuthenticatedUserID returns the id of the signed-in user, or "" when
// nobody is signed in.
func (s *Store) AuthenticatedUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := get[*string](s, KeyAuthUserID, nil)
	if id == nil {
		return ""
	}
	return *id
}

// SetAuthenticatedUserID records the signed-in user. An empty id stores null.
func (s *Store) SetAuthenticatedUserID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		set[*string](s, KeyAuthUserID, nil)
		return
	}
	set(s, KeyAuthUserID, &id)
}
