// Package prefs persists the few scalars the shell keeps across restarts.
//
// Store never reports errors to callers. When the backend is missing or
// fails, the store switches to an in-memory map for the rest of the process
// and logs one warning.
package prefs

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/pharmdesk/internal/logging"
)

// Versioned key names. Bump the version segment when a value format changes.
const (
	KeyToken            = "pharmdesk.v1.auth_token"
	KeyLastModule       = "pharmdesk.v1.last_module"
	KeySidebarCollapsed = "pharmdesk.v1.sidebar_collapsed"
)

// AllKeys lists every key the shell writes.
var AllKeys = []string{KeyToken, KeyLastModule, KeySidebarCollapsed}

// Backend is a durable key/value store. Get reports found=false for
// missing keys.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

const backendTimeout = 2 * time.Second

type Store struct {
	mu       sync.Mutex
	backend  Backend
	mem      map[string]string
	degraded bool
	logger   logging.Logger
}

// NewStore wraps backend. A nil backend gives a memory-only store.
func NewStore(backend Backend, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		backend: backend,
		mem:     make(map[string]string),
		logger:  logger,
	}
}

// NewMemoryStore returns a store that lives only as long as the process.
func NewMemoryStore() *Store {
	return NewStore(nil, nil)
}

// Get returns the value for key and whether it is set.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.durable() {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		v, found, err := s.backend.Get(ctx, key)
		cancel()
		if err == nil {
			if !found {
				delete(s.mem, key)
				return "", false
			}
			s.mem[key] = string(v)
			return string(v), true
		}
		s.degrade("get", key, err)
	}

	v, ok := s.mem[key]
	return v, ok
}

// Set stores value under key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem[key] = value
	if !s.durable() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := s.backend.Set(ctx, key, []byte(value)); err != nil {
		s.degrade("set", key, err)
	}
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *Store) Remove(key string) {
	s.Reset(key)
}

// Reset removes several keys at once.
func (s *Store) Reset(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.mem, k)
	}
	if !s.durable() || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := s.backend.Delete(ctx, keys...); err != nil {
		s.degrade("remove", keys[0], err)
	}
}

// Bool reads a flag stored as "1"/"0". Unset or unknown values are false.
func (s *Store) Bool(key string) bool {
	v, _ := s.Get(key)
	return v == "1" || v == "true"
}

func (s *Store) SetBool(key string, v bool) {
	if v {
		s.Set(key, "1")
		return
	}
	s.Set(key, "0")
}

// Degraded reports whether the store fell back to memory after a failure.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) durable() bool {
	return s.backend != nil && !s.degraded
}

func (s *Store) degrade(op, key string, err error) {
	s.degraded = true
	s.logger.Warn(context.Background(), "preference backend failed, continuing in memory",
		"op", op, "key", key, "error", err)
}
