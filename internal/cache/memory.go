package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

type memoryEntry struct {
	val     []byte
	expires time.Time
}

// memoryKV is a TTL map of encoded values. Values are stored encoded so
// callers never share memory with the store.
type memoryKV struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

func newMemoryKV(ttl time.Duration) *memoryKV {
	return &memoryKV{items: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (m *memoryKV) get(key string, out any) (bool, error) {
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && !m.now().Before(e.expires) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.val, out); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (m *memoryKV) set(key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	m.mu.Lock()
	m.items[key] = memoryEntry{val: val, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// update decodes the live value at key into out, lets fn change it and stores
// the result, all under one lock hold. It reports false when key is absent.
func (m *memoryKV) update(key string, out any, fn func()) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok || !m.now().Before(e.expires) {
		delete(m.items, key)
		return false, nil
	}
	if err := json.Unmarshal(e.val, out); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	fn()
	val, err := json.Marshal(out)
	if err != nil {
		return false, fmt.Errorf("marshal %s: %w", key, err)
	}
	m.items[key] = memoryEntry{val: val, expires: m.now().Add(m.ttl)}
	return true, nil
}

// MemoryCache is the in-process result cache used when no Redis URL is
// configured.
type MemoryCache struct {
	kv *memoryKV
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryCache{kv: newMemoryKV(ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*domain.Recommendation, bool, error) {
	var rec domain.Recommendation
	ok, err := c.kv.get(key, &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	return &rec, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, rec domain.Recommendation) error {
	return c.kv.set(key, rec)
}

type MemorySessionStore struct {
	kv *memoryKV
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &MemorySessionStore{kv: newMemoryKV(ttl)}
}

func (s *MemorySessionStore) Create(_ context.Context) (*domain.Session, error) {
	sess := newSession(s.kv.now().UTC())
	if err := s.kv.set(sessionKey(sess.ID), sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	var sess domain.Session
	ok, err := s.kv.get(sessionKey(id), &sess)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

// Update applies fn to the stored session while holding the store lock, so
// concurrent updates to one session are serialised.
func (s *MemorySessionStore) Update(_ context.Context, id string, fn func(*domain.Session)) (*domain.Session, error) {
	var sess domain.Session
	ok, err := s.kv.update(sessionKey(id), &sess, func() {
		fn(&sess)
		sess.UpdatedAt = s.kv.now().UTC()
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}
