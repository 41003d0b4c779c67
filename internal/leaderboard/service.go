// Package leaderboard keeps the persisted top-score list.
package leaderboard

import (
	"context"
	"log/slog"
	"sort"

	"github.com/ArnaudClarat/FactRush/internal/domain"
	"github.com/ArnaudClarat/FactRush/internal/event"
	"github.com/ArnaudClarat/FactRush/internal/storage"
)

// maxEntries is how many scores the board retains.
const maxEntries = 10

// defaultEntries seed a board that has never been persisted.
func defaultEntries() []domain.ScoreEntry {
	return []domain.ScoreEntry{
		{PlayerName: "Alice", Score: 1200},
		{PlayerName: "Bob", Score: 1100},
		{PlayerName: "Charlie", Score: 1000},
	}
}

type Config struct {
	Store    storage.Store
	EventBus *event.Bus
}

type Service struct {
	store storage.Store
	eb    *event.Bus
}

// NewService creates the leaderboard service and subscribes it to game-over
// events so finished games land on the board without the caller's help.
func NewService(c Config) *Service {
	s := &Service{
		store: c.Store,
		eb:    c.EventBus,
	}

	if s.eb != nil {
		s.eb.Subscribe(domain.EventNameGameOver, func(ctx context.Context, e event.Event) error {
			return s.AddScore(ctx, e.(domain.EventGameOver).Entry)
		})
	}

	return s
}

// Initialize loads the persisted board, seeding and persisting the defaults
// when nothing (or an empty list) is stored.
func (s *Service) Initialize(ctx context.Context) error {
	var entries []domain.ScoreEntry
	ok, err := s.store.Get(ctx, storage.KeyTopScores, &entries)
	if err != nil {
		return err
	}

	if ok && len(entries) > 0 {
		return nil
	}

	return s.store.Set(ctx, storage.KeyTopScores, defaultEntries())
}

// Get returns the current board. A missing key reads as the seeded defaults
// so callers never see an empty board.
func (s *Service) Get(ctx context.Context) (*domain.Leaderboard, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Leaderboard{Entries: entries}, nil
}

// AddScore merges entry into the board, keeps the highest ten (stable sort,
// so earlier entries win ties), persists the result and publishes the
// updated board on the event bus.
func (s *Service) AddScore(ctx context.Context, entry domain.ScoreEntry) error {
	entries, err := s.load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "leaderboard: read failed, merging into defaults", "error", err)
		entries = defaultEntries()
	}

	entries = append(entries, entry)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	if err := s.store.Set(ctx, storage.KeyTopScores, entries); err != nil {
		return err
	}

	if s.eb != nil {
		s.eb.Publish(ctx, domain.EventLeaderboardUpdated{
			Leaderboard: domain.Leaderboard{Entries: entries},
		})
	}

	return nil
}

func (s *Service) load(ctx context.Context) ([]domain.ScoreEntry, error) {
	var entries []domain.ScoreEntry
	ok, err := s.store.Get(ctx, storage.KeyTopScores, &entries)
	if err != nil {
		return nil, err
	}
	if !ok || len(entries) == 0 {
		return defaultEntries(), nil
	}

	return entries, nil
}
