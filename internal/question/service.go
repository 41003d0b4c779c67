// Package question turns the raw trivia API into validated, normalized,
// favorite-flagged question batches, and owns the retry policy for the
// flaky public API.
package question

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ArnaudClarat/FactRush/internal/domain"
	"github.com/ArnaudClarat/FactRush/internal/errors"
	"github.com/ArnaudClarat/FactRush/internal/favorites"
	"github.com/ArnaudClarat/FactRush/internal/telemetry"
	"github.com/ArnaudClarat/FactRush/internal/trivia"
)

const defaultBackoff = 5 * time.Second

type Config struct {
	Client    *trivia.Client
	Favorites *favorites.Service

	// Backoff is the fixed delay between fetch attempts. Defaults to 5s.
	Backoff time.Duration
	// MaxAttempts caps the retry loop. 0 means retry forever, which is the
	// default: the public API fails often enough that giving up is worse
	// than waiting.
	MaxAttempts int
}

type Service struct {
	client      *trivia.Client
	favorites   *favorites.Service
	backoff     time.Duration
	maxAttempts int
}

func NewService(c Config) *Service {
	if c.Backoff <= 0 {
		c.Backoff = defaultBackoff
	}

	return &Service{
		client:      c.Client,
		favorites:   c.Favorites,
		backoff:     c.Backoff,
		maxAttempts: c.MaxAttempts,
	}
}

// Fetch returns exactly amount normalized, favorite-resolved questions.
//
// Network errors, non-zero response codes and short batches are all treated
// the same: wait one backoff interval and try again, until ctx is cancelled
// or MaxAttempts (when set) runs out. A non-positive amount fails fast with
// an invalid-argument error before any network traffic.
func (s *Service) Fetch(ctx context.Context, amount int, token string) ([]domain.Question, error) {
	if amount <= 0 {
		return nil, errors.InvalidArgumentf("amount must be greater than 0, got %d", amount)
	}

	for attempt := 1; ; attempt++ {
		slog.InfoContext(ctx, "question: fetching batch",
			"amount", amount,
			"attempt", attempt,
		)

		batch, err := s.fetchOnce(ctx, amount, token)
		if err == nil {
			telemetry.FetchAttempts.WithLabelValues("ok").Inc()
			return batch, nil
		}

		telemetry.FetchAttempts.WithLabelValues("retry").Inc()
		slog.WarnContext(ctx, "question: fetch attempt failed",
			"attempt", attempt,
			"error", err,
		)

		if s.maxAttempts > 0 && attempt >= s.maxAttempts {
			return nil, errors.New(errors.CodeUnavailable,
				errors.WithMessagef("giving up after %d attempts", attempt),
				errors.WithCause(err),
			)
		}

		timer := time.NewTimer(s.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("question: fetch cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

func (s *Service) fetchOnce(ctx context.Context, amount int, token string) ([]domain.Question, error) {
	resp, err := s.client.FetchBatch(ctx, amount, token)
	if err != nil {
		return nil, err
	}

	if resp.ResponseCode != 0 {
		return nil, fmt.Errorf("trivia API refused: response_code=%d", resp.ResponseCode)
	}
	if len(resp.Questions) != amount {
		return nil, fmt.Errorf("short batch: want %d questions, got %d", amount, len(resp.Questions))
	}

	for i := range resp.Questions {
		Normalize(&resp.Questions[i])
	}

	if s.favorites != nil {
		ptrs := make([]*domain.Question, len(resp.Questions))
		for i := range resp.Questions {
			ptrs[i] = &resp.Questions[i]
		}
		s.favorites.Resolve(ctx, ptrs...)
	}

	return resp.Questions, nil
}
