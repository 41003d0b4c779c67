// Package favorites keeps the player's saved questions and flags freshly
// fetched questions that match one.
package favorites

import (
	"context"
	"log/slog"

	"github.com/ArnaudClarat/FactRush/internal/domain"
	"github.com/ArnaudClarat/FactRush/internal/errors"
	"github.com/ArnaudClarat/FactRush/internal/event"
	"github.com/ArnaudClarat/FactRush/internal/storage"
)

type Config struct {
	Store    storage.Store
	EventBus *event.Bus
}

type Service struct {
	store storage.Store
	eb    *event.Bus
}

func NewService(c Config) *Service {
	return &Service{
		store: c.Store,
		eb:    c.EventBus,
	}
}

// List returns the persisted favorites. An absent key reads as an empty
// list.
func (s *Service) List(ctx context.Context) ([]domain.Question, error) {
	var favorites []domain.Question
	ok, err := s.store.Get(ctx, storage.KeyFavorites, &favorites)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Question{}, nil
	}

	// Everything on the list is a favorite by definition; the flag is not
	// persisted.
	for i := range favorites {
		favorites[i].IsFavorite = true
	}

	return favorites, nil
}

// Resolve sets IsFavorite on every question whose text exactly matches a
// stored favorite's text. Matching is by text only: two questions with the
// same text but different answers are considered the same favorite, a known
// and accepted limitation. Storage failures degrade to "no favorites" so a
// broken store never blocks question delivery.
func (s *Service) Resolve(ctx context.Context, questions ...*domain.Question) {
	favorites, err := s.List(ctx)
	if err != nil {
		slog.WarnContext(ctx, "favorites: read failed, resolving against empty list", "error", err)
		favorites = nil
	}

	byText := make(map[string]struct{}, len(favorites))
	for _, f := range favorites {
		byText[f.Text] = struct{}{}
	}

	for _, q := range questions {
		_, q.IsFavorite = byText[q.Text]
	}
}

// Toggle adds q to the favorites when absent and removes it when present,
// matching by text. It returns the new favorite state of q. A question with
// no text is rejected: it would match nothing and could never be removed.
func (s *Service) Toggle(ctx context.Context, q domain.Question) (bool, error) {
	if q.Text == "" {
		return false, errors.InvalidArgumentf("question text must not be empty")
	}

	favorites, err := s.List(ctx)
	if err != nil {
		return false, err
	}

	kept := favorites[:0]
	removed := false
	for _, f := range favorites {
		if f.Text == q.Text {
			removed = true
			continue
		}
		kept = append(kept, f)
	}

	if !removed {
		kept = append(kept, q)
	}

	if err := s.store.Set(ctx, storage.KeyFavorites, kept); err != nil {
		return false, err
	}

	if s.eb != nil {
		s.eb.Publish(ctx, domain.EventFavoritesChanged{Favorites: kept})
	}

	return !removed, nil
}
