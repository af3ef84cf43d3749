package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

const (
	defaultSessionTTL = 24 * time.Hour
	maxSessionRetries = 5
)

// ErrSessionConflict is returned when a session kept changing underneath an
// update for every retry.
var ErrSessionConflict = errors.New("session modified concurrently")

func sessionKey(id string) string {
	return "session:" + id
}

func newSession(now time.Time) *domain.Session {
	return &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SessionStore keeps sessions as JSON documents in Redis. Every update
// refreshes the TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context) (*domain.Session, error) {
	sess := newSession(time.Now().UTC())
	if err := s.write(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	val, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var sess domain.Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &sess, nil
}

// Update reads the session under WATCH, applies fn and writes it back in a
// MULTI/EXEC block. A concurrent write to the same session aborts the
// transaction and the update is retried on the fresh value.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*domain.Session)) (*domain.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	key := sessionKey(id)

	var updated *domain.Session
	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session %s: %w", id, err)
		}

		var sess domain.Session
		if err := json.Unmarshal(val, &sess); err != nil {
			return fmt.Errorf("unmarshal session %s: %w", id, err)
		}
		fn(&sess)
		sess.UpdatedAt = time.Now().UTC()

		out, err := json.Marshal(&sess)
		if err != nil {
			return fmt.Errorf("marshal session %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		if err == nil {
			updated = &sess
		}
		return err
	}

	for range maxSessionRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update session %s: %w", id, ErrSessionConflict)
}

func (s *SessionStore) write(ctx context.Context, sess *domain.Session) error {
	val, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}
