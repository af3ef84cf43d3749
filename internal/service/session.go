package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/actuallystonmai/university-recommender/internal/domain"
)

var errNoSessions = fmt.Errorf("%w: sessions are disabled", domain.ErrSessionNotFound)

func (s *Service) loadSession(ctx context.Context, id string) (*domain.Session, error) {
	if s.sessions == nil {
		return nil, errNoSessions
	}
	return s.sessions.Get(ctx, id)
}

func (s *Service) CreateSession(ctx context.Context) (*domain.Session, error) {
	if s.sessions == nil {
		return nil, errNoSessions
	}
	return s.sessions.Create(ctx)
}

func (s *Service) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return s.loadSession(ctx, id)
}

// lookup resolves a university name against the dataset, returning the
// canonical spelling.
func (s *Service) lookup(name string) (domain.University, error) {
	u, ok := s.table.Find(strings.TrimSpace(name))
	if !ok {
		return domain.University{}, fmt.Errorf("%w: %q", domain.ErrUniversityNotFound, name)
	}
	return u, nil
}

func (s *Service) updateSession(ctx context.Context, id string, fn func(*domain.Session)) (*domain.Session, error) {
	if s.sessions == nil {
		return nil, errNoSessions
	}
	sess, err := s.sessions.Update(ctx, id, fn)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *Service) AddBookmark(ctx context.Context, id, university string) (*domain.Session, error) {
	u, err := s.lookup(university)
	if err != nil {
		return nil, err
	}
	return s.updateSession(ctx, id, func(sess *domain.Session) { sess.AddBookmark(u.Name) })
}

func (s *Service) AddComparison(ctx context.Context, id, university string) (*domain.Session, error) {
	u, err := s.lookup(university)
	if err != nil {
		return nil, err
	}
	return s.updateSession(ctx, id, func(sess *domain.Session) { sess.AddComparison(u.Name) })
}

// SetDeadline records an application deadline in YYYY-MM-DD form.
func (s *Service) SetDeadline(ctx context.Context, id, university, deadline string) (*domain.Session, error) {
	u, err := s.lookup(university)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse(time.DateOnly, deadline); err != nil {
		return nil, fmt.Errorf("%w: %q is not YYYY-MM-DD", domain.ErrInvalidDeadline, deadline)
	}
	return s.updateSession(ctx, id, func(sess *domain.Session) { sess.SetDeadline(u.Name, deadline) })
}
