package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/enrich"
	"github.com/actuallystonmai/university-recommender/internal/logging"
)

const (
	narrativeOK          = "ok"
	narrativeUnavailable = "unavailable"
)

// NarrativeOptions are the optional prompt inputs beyond the university.
type NarrativeOptions struct {
	Degree  string
	Season  string
	Field   string
	Compare []string
}

// Narrative generates display text about a university. Upstream failures
// yield Available=false, never an error; errors are reserved for bad input.
func (s *Service) Narrative(ctx context.Context, university, kind string, opts NarrativeOptions) (domain.Narrative, error) {
	k, err := enrich.ParseKind(kind)
	if err != nil {
		return domain.Narrative{}, err
	}
	if k == enrich.KindChat {
		return domain.Narrative{}, fmt.Errorf("%w: chat is served through sessions", enrich.ErrUnknownKind)
	}

	u, err := s.lookup(university)
	if err != nil {
		return domain.Narrative{}, err
	}

	req := enrich.Request{
		University: u.Name,
		Country:    u.Country,
		Degree:     opts.Degree,
		Season:     opts.Season,
		Field:      opts.Field,
	}
	if k == enrich.KindCompare {
		req.Compare = []string{u.Name}
		for _, name := range opts.Compare {
			other, err := s.lookup(name)
			if err != nil {
				return domain.Narrative{}, err
			}
			if other.Name != u.Name {
				req.Compare = append(req.Compare, other.Name)
			}
		}
		if len(req.Compare) < 2 {
			return domain.Narrative{}, fmt.Errorf("%w: compare needs another university", enrich.ErrMissingInput)
		}
	}

	text, err := s.generate(ctx, k, req)
	if err != nil {
		if errors.Is(err, enrich.ErrMissingInput) {
			return domain.Narrative{}, err
		}
		return domain.Narrative{University: u.Name, Kind: string(k), Reason: unavailableReason(err)}, nil
	}
	return domain.Narrative{University: u.Name, Kind: string(k), Text: text, Available: true}, nil
}

// ChatResult is one assistant exchange. Turn is only recorded in the session
// when Available is true.
type ChatResult struct {
	Turn      domain.ChatTurn `json:"turn"`
	Available bool            `json:"available"`
	Reason    string          `json:"reason,omitempty"`
}

func (s *Service) Chat(ctx context.Context, sessionID, question string) (*ChatResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question", enrich.ErrMissingInput)
	}
	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answer, err := s.generate(ctx, enrich.KindChat, enrich.Request{
		Question: question,
		Context:  chatContext(sess),
	})
	if err != nil {
		return &ChatResult{
			Turn:   domain.ChatTurn{Question: question, AskedAt: time.Now().UTC()},
			Reason: unavailableReason(err),
		}, nil
	}

	turn := domain.ChatTurn{Question: question, Answer: answer, AskedAt: time.Now().UTC()}
	if _, err := s.updateSession(ctx, sess.ID, func(cur *domain.Session) {
		cur.Conversation = append(cur.Conversation, turn)
	}); err != nil {
		return nil, err
	}
	return &ChatResult{Turn: turn, Available: true}, nil
}

func (s *Service) generate(ctx context.Context, kind enrich.Kind, req enrich.Request) (string, error) {
	if s.narrator == nil {
		return "", enrich.ErrDisabled
	}
	start := time.Now()
	text, err := s.narrator.Generate(ctx, kind, req)
	outcome := narrativeOK
	if err != nil {
		outcome = narrativeUnavailable
		logging.Component("service").Warn().Err(err).Str("kind", string(kind)).Msg("narrative unavailable")
	}
	s.metrics.Narrative(string(kind), outcome, time.Since(start))
	return text, err
}

// chatContext summarises what the user has looked at so far.
func chatContext(sess *domain.Session) string {
	var parts []string
	if p := sess.Preferences; p != nil && p.Country != nil {
		parts = append(parts, "Preferred country: "+*p.Country)
	}
	if len(sess.Recommended) > 0 {
		parts = append(parts, "Recommended universities: "+strings.Join(sess.Recommended, ", "))
	}
	if len(sess.Bookmarks) > 0 {
		parts = append(parts, "Bookmarked: "+strings.Join(sess.Bookmarks, ", "))
	}
	if len(sess.Comparison) > 0 {
		parts = append(parts, "Comparing: "+strings.Join(sess.Comparison, ", "))
	}
	return strings.Join(parts, ". ")
}

func unavailableReason(err error) string {
	switch {
	case errors.Is(err, enrich.ErrDisabled):
		return "narrative generation is not configured"
	case errors.Is(err, context.DeadlineExceeded):
		return "narrative service timed out"
	case enrich.IsUpstreamError(err):
		return "narrative service is temporarily unavailable"
	}
	return domain.ErrNarrativeUnavailable.Error()
}
