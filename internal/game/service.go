// Package game owns a single game session: player, score, question cursor
// and the terminal game-over state.
package game

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ArnaudClarat/FactRush/internal/domain"
	"github.com/ArnaudClarat/FactRush/internal/errors"
	"github.com/ArnaudClarat/FactRush/internal/event"
	"github.com/ArnaudClarat/FactRush/internal/telemetry"
)

const defaultBatchSize = 10

// QuestionSource supplies validated question batches. Fetch blocks until a
// full batch is available or ctx is cancelled.
type QuestionSource interface {
	Fetch(ctx context.Context, amount int, token string) ([]domain.Question, error)
}

// TokenSource supplies trivia API session tokens. Tokens only de-duplicate
// questions, so the game treats them as best effort.
type TokenSource interface {
	RequestToken(ctx context.Context) (string, error)
}

type Config struct {
	Questions QuestionSource
	Tokens    TokenSource
	EventBus  *event.Bus

	// BatchSize is how many questions each fetch requests. Defaults to 10.
	BatchSize int
}

// Service is the game state machine. All methods are safe for concurrent
// use; there is exactly one live session at a time.
type Service struct {
	questions QuestionSource
	tokens    TokenSource
	eb        *event.Bus
	batchSize int

	mu          sync.Mutex
	sessionID   string
	playerName  string
	score       int
	status      domain.GameStatus
	token       string
	queue       []domain.Question
	current     *domain.Question
	index       int
	cancelFetch context.CancelFunc
}

func NewService(c Config) *Service {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}

	return &Service{
		questions: c.Questions,
		tokens:    c.Tokens,
		eb:        c.EventBus,
		batchSize: c.BatchSize,
		status:    domain.StatusNotStarted,
	}
}

// Start begins a new session for playerName, discarding any previous one,
// and blocks until the first question is ready.
func (s *Service) Start(ctx context.Context, playerName string) (domain.GameSnapshot, error) {
	if playerName == "" {
		return domain.GameSnapshot{}, errors.InvalidArgumentf("player name must not be empty")
	}

	s.mu.Lock()
	s.resetLocked()
	s.sessionID = uuid.NewString()
	s.playerName = playerName
	s.status = domain.StatusPlaying
	sid := s.sessionID
	s.mu.Unlock()

	telemetry.GamesStarted.Inc()

	if s.tokens != nil {
		token, err := s.tokens.RequestToken(ctx)
		if err != nil {
			slog.WarnContext(ctx, "game: token request failed, continuing without one", "error", err)
		} else {
			s.mu.Lock()
			if s.sessionID == sid {
				s.token = token
			}
			s.mu.Unlock()
		}
	}

	if err := s.loadBatch(ctx, sid); err != nil {
		return domain.GameSnapshot{}, err
	}

	return s.Snapshot(), nil
}

// SubmitAnswer evaluates chosen against the current question. A correct
// answer scores by difficulty and advances to the next question, fetching a
// fresh batch when the current one is exhausted. A wrong answer ends the
// game: the session becomes terminal and the final score is published for
// the leaderboard to pick up.
func (s *Service) SubmitAnswer(ctx context.Context, chosen string) (domain.GameSnapshot, error) {
	s.mu.Lock()

	if s.status != domain.StatusPlaying {
		s.mu.Unlock()
		return domain.GameSnapshot{}, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no game in progress (status=%s)", s.status))
	}
	if s.current == nil {
		s.mu.Unlock()
		return domain.GameSnapshot{}, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("no current question to answer"))
	}

	if chosen != s.current.CorrectAnswer {
		s.status = domain.StatusGameOver
		s.current = nil
		entry := domain.ScoreEntry{PlayerName: s.playerName, Score: s.score}
		sid := s.sessionID
		s.mu.Unlock()

		telemetry.GamesFinished.WithLabelValues("game_over").Inc()
		if s.eb != nil {
			s.eb.Publish(ctx, domain.EventGameOver{SessionID: sid, Entry: entry})
		}

		return s.Snapshot(), nil
	}

	s.score += pointsForDifficulty(s.current.Difficulty)
	s.index++

	if len(s.queue) > 0 {
		s.current = &s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		return s.Snapshot(), nil
	}

	// Batch exhausted, fetch the next one.
	s.current = nil
	sid := s.sessionID
	s.mu.Unlock()

	if err := s.loadBatch(ctx, sid); err != nil {
		return domain.GameSnapshot{}, err
	}

	return s.Snapshot(), nil
}

// Reset abandons the current session and cancels any in-flight fetch.
func (s *Service) Reset(context.Context) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

// Snapshot returns a copy of the session state.
func (s *Service) Snapshot() domain.GameSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.GameSnapshot{
		SessionID:     s.sessionID,
		PlayerName:    s.playerName,
		Score:         s.score,
		Status:        s.status,
		GameOver:      s.status == domain.StatusGameOver,
		QuestionIndex: s.index,
	}

	if s.current != nil {
		q := *s.current
		snap.CurrentQuestion = &q
	}

	return snap
}

// loadBatch fetches the next batch without holding the lock, then installs
// it only if the session it was fetched for is still the live one. A batch
// arriving after a Start or Reset is dropped on the floor.
func (s *Service) loadBatch(ctx context.Context, sid string) error {
	s.mu.Lock()
	if s.sessionID != sid || s.status != domain.StatusPlaying {
		s.mu.Unlock()
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("session is no longer live"))
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	token := s.token
	s.mu.Unlock()
	defer cancel()

	batch, err := s.questions.Fetch(ctx, s.batchSize, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionID != sid || s.status != domain.StatusPlaying {
		slog.InfoContext(ctx, "game: discarding stale batch", "session", sid)
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("session is no longer live"))
	}

	if err == nil && len(batch) == 0 {
		err = errors.New(errors.CodeInternal,
			errors.WithMessagef("question source returned an empty batch"))
	}

	if err != nil {
		// Any terminal fetch failure ends the session in a state the
		// caller can tell apart from game over; the alternative is a
		// playing session with no question that only Reset escapes.
		s.status = domain.StatusLoadFailed
		telemetry.GamesFinished.WithLabelValues("load_failed").Inc()
		return err
	}

	s.current = &batch[0]
	s.queue = batch[1:]
	return nil
}

func (s *Service) resetLocked() {
	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}

	s.sessionID = ""
	s.playerName = ""
	s.score = 0
	s.status = domain.StatusNotStarted
	s.token = ""
	s.queue = nil
	s.current = nil
	s.index = 0
}

// pointsForDifficulty maps difficulty to points. Only "easy" is fixed by the
// original game (100); medium and hard scale linearly from it, and unknown
// difficulty strings score like easy.
func pointsForDifficulty(difficulty string) int {
	switch difficulty {
	case domain.DifficultyMedium:
		return 200
	case domain.DifficultyHard:
		return 300
	default:
		return 100
	}
}
