package leaderboard_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ArnaudClarat/FactRush/internal/domain"
	"github.com/ArnaudClarat/FactRush/internal/event"
	"github.com/ArnaudClarat/FactRush/internal/leaderboard"
	"github.com/ArnaudClarat/FactRush/internal/storage"
)

func TestInitializeSeedsDefaults(t *testing.T) {
	s := makeService(t)

	require.NoError(t, s.Initialize(context.Background()))

	l, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.ScoreEntry{
		{PlayerName: "Alice", Score: 1200},
		{PlayerName: "Bob", Score: 1100},
		{PlayerName: "Charlie", Score: 1000},
	}, l.Entries)
}

func TestInitializeKeepsExistingScores(t *testing.T) {
	store := storage.NewMemory()
	existing := []domain.ScoreEntry{{PlayerName: "Dave", Score: 9000}}
	require.NoError(t, store.Set(context.Background(), storage.KeyTopScores, existing))

	s := makeService(t, withStore(store))
	require.NoError(t, s.Initialize(context.Background()))

	l, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, existing, l.Entries)
}

func TestAddScore(t *testing.T) {
	type (
		inputs struct {
			added []domain.ScoreEntry
		}

		outputs struct {
			entries []domain.ScoreEntry
		}
	)

	tests := map[string]struct {
		arrange func() inputs
		assert  func(t *testing.T, out outputs)
	}{
		"a new high score ranks first above the defaults": {
			arrange: func() inputs {
				return inputs{
					added: []domain.ScoreEntry{{PlayerName: "Dave", Score: 1500}},
				}
			},

			assert: func(t *testing.T, out outputs) {
				require.Equal(t, []domain.ScoreEntry{
					{PlayerName: "Dave", Score: 1500},
					{PlayerName: "Alice", Score: 1200},
					{PlayerName: "Bob", Score: 1100},
					{PlayerName: "Charlie", Score: 1000},
				}, out.entries)
			},
		},

		"the board caps at ten entries, dropping the lowest": {
			arrange: func() inputs {
				in := inputs{
					added: []domain.ScoreEntry{{PlayerName: "Dave", Score: 1500}},
				}
				for i := 0; i < 8; i++ {
					in.added = append(in.added, domain.ScoreEntry{
						PlayerName: fmt.Sprintf("P%d", i),
						Score:      2000 + i,
					})
				}
				return in
			},

			assert: func(t *testing.T, out outputs) {
				require.Len(t, out.entries, 10)
				require.Equal(t, domain.ScoreEntry{PlayerName: "P7", Score: 2007}, out.entries[0])
				require.NotContains(t, out.entries, domain.ScoreEntry{PlayerName: "Bob", Score: 1100})
				require.NotContains(t, out.entries, domain.ScoreEntry{PlayerName: "Charlie", Score: 1000})
			},
		},

		"ties keep insertion order": {
			arrange: func() inputs {
				return inputs{
					added: []domain.ScoreEntry{
						{PlayerName: "First", Score: 1100},
						{PlayerName: "Second", Score: 1100},
					},
				}
			},

			assert: func(t *testing.T, out outputs) {
				require.Equal(t, []domain.ScoreEntry{
					{PlayerName: "Alice", Score: 1200},
					{PlayerName: "Bob", Score: 1100},
					{PlayerName: "First", Score: 1100},
					{PlayerName: "Second", Score: 1100},
					{PlayerName: "Charlie", Score: 1000},
				}, out.entries)
			},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			in, out := tt.arrange(), outputs{}

			s := makeService(t)
			require.NoError(t, s.Initialize(context.Background()))

			for _, e := range in.added {
				require.NoError(t, s.AddScore(context.Background(), e))
			}

			l, err := s.Get(context.Background())
			require.NoError(t, err)
			out.entries = l.Entries

			tt.assert(t, out)
		})
	}
}

func TestAddScorePersists(t *testing.T) {
	store := storage.NewMemory()
	s := makeService(t, withStore(store))

	require.NoError(t, s.AddScore(context.Background(), domain.ScoreEntry{PlayerName: "Dave", Score: 1500}))

	// A fresh service over the same store must see the merged board.
	s2 := leaderboard.NewService(leaderboard.Config{Store: store})
	l, err := s2.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.ScoreEntry{PlayerName: "Dave", Score: 1500}, l.Entries[0])
}

func TestAddScorePublishesUpdate(t *testing.T) {
	eb := event.NewBus()

	var (
		mu        sync.Mutex
		published []domain.EventLeaderboardUpdated
	)
	eb.Subscribe(domain.EventNameLeaderboardUpdated, func(ctx context.Context, e event.Event) error {
		mu.Lock()
		published = append(published, e.(domain.EventLeaderboardUpdated))
		mu.Unlock()
		return nil
	})

	s := makeService(t, withEventBus(eb))

	require.NoError(t, s.AddScore(context.Background(), domain.ScoreEntry{PlayerName: "Dave", Score: 1500}))

	eb.Stop()

	require.Len(t, published, 1)
	require.Equal(t, domain.ScoreEntry{PlayerName: "Dave", Score: 1500}, published[0].Leaderboard.Entries[0])
}

func TestGameOverEventLandsOnBoard(t *testing.T) {
	eb := event.NewBus()
	s := makeService(t, withEventBus(eb))

	eb.Publish(context.Background(), domain.EventGameOver{
		SessionID: "s1",
		Entry:     domain.ScoreEntry{PlayerName: "Dave", Score: 1500},
	})
	eb.Stop()

	l, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.ScoreEntry{PlayerName: "Dave", Score: 1500}, l.Entries[0])
}

func makeService(t *testing.T, opts ...options) *leaderboard.Service {
	t.Helper()

	c := leaderboard.Config{
		Store: makeRedisStore(t),
	}

	for _, opt := range opts {
		opt(&c)
	}

	return leaderboard.NewService(c)
}

func makeRedisStore(t *testing.T) storage.Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{rs.Addr()},
	})
	require.NoError(t, rc.Ping(ctx).Err(), "should be able to ping redis")

	return storage.NewRedis(rc, "factrush-test")
}

type options func(c *leaderboard.Config)

func withEventBus(eb *event.Bus) options {
	return func(c *leaderboard.Config) {
		c.EventBus = eb
	}
}

func withStore(s storage.Store) options {
	return func(c *leaderboard.Config) {
		c.Store = s
	}
}
