// Package enrich generates free-text narratives about universities through an
// OpenAI-compatible chat completion endpoint.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/actuallystonmai/university-recommender/internal/logging"
)

var (
	ErrDisabled      = errors.New("narrative generation is not configured")
	ErrEmptyResponse = errors.New("completion returned no choices")
)

// UpstreamError reports that the completion backend could not produce text
// after all attempts.
type UpstreamError struct {
	Kind     Kind
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generate %s narrative after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Completer is a single chat completion round trip.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAICompleter(baseURL, apiKey, model string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: 0.4,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type Options struct {
	Timeout     time.Duration
	MaxRetries  int
	RatePerSec  float64
	Burst       int
	BaseBackoff time.Duration
	// TripAfter consecutive failed attempts opens the breaker.
	TripAfter   uint32
	OpenTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		RatePerSec:  3,
		Burst:       3,
		BaseBackoff: time.Second,
		TripAfter:   5,
		OpenTimeout: time.Minute,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = def.MaxRetries
	}
	if o.RatePerSec <= 0 {
		o.RatePerSec = def.RatePerSec
	}
	if o.Burst <= 0 {
		o.Burst = max(1, int(o.RatePerSec))
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = def.BaseBackoff
	}
	if o.TripAfter == 0 {
		o.TripAfter = def.TripAfter
	}
	if o.OpenTimeout <= 0 {
		o.OpenTimeout = def.OpenTimeout
	}
	return o
}

// Client wraps a Completer with rate limiting, a circuit breaker, a
// per-attempt timeout and bounded retries. A Client with a nil Completer
// always returns ErrDisabled.
type Client struct {
	completer Completer
	opts      Options
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[string]
}

func New(completer Completer, opts Options) *Client {
	opts = opts.withDefaults()
	log := logging.Component("enrich")

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "narrative-llm",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.TripAfter
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about upstream health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &Client{
		completer: completer,
		opts:      opts,
		limiter:   rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		breaker:   breaker,
	}
}

func (c *Client) Enabled() bool { return c != nil && c.completer != nil }

// Generate renders the prompt for kind and returns the completion text.
func (c *Client) Generate(ctx context.Context, kind Kind, req Request) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	prompt, err := Render(kind, req)
	if err != nil {
		return "", err
	}

	log := logging.Component("enrich")
	var lastErr error
	attempt := 0
	for attempt < c.opts.MaxRetries {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}

		text, err := c.breaker.Execute(func() (string, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
			defer cancel()
			return c.completer.Complete(attemptCtx, systemPrompt, prompt)
		})
		if err == nil {
			if text == "" {
				lastErr = ErrEmptyResponse
			} else {
				return text, nil
			}
		} else {
			lastErr = err
		}

		if errors.Is(lastErr, gobreaker.ErrOpenState) || errors.Is(lastErr, gobreaker.ErrTooManyRequests) || ctx.Err() != nil {
			break
		}

		log.Warn().Err(lastErr).Str("kind", string(kind)).Int("attempt", attempt).Msg("narrative attempt failed")
		if attempt < c.opts.MaxRetries {
			if err := sleep(ctx, c.backoff(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}

	return "", &UpstreamError{Kind: kind, Attempts: attempt, Err: lastErr}
}

// backoff grows linearly with the attempt number plus up to one base unit of jitter.
func (c *Client) backoff(attempt int) time.Duration {
	base := c.opts.BaseBackoff * time.Duration(attempt)
	return base + rand.N(c.opts.BaseBackoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
