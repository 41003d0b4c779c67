package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ArnaudClarat/FactRush/internal/api"
	"github.com/ArnaudClarat/FactRush/internal/domain"
	"github.com/ArnaudClarat/FactRush/internal/event"
	"github.com/ArnaudClarat/FactRush/internal/favorites"
	"github.com/ArnaudClarat/FactRush/internal/game"
	"github.com/ArnaudClarat/FactRush/internal/leaderboard"
	"github.com/ArnaudClarat/FactRush/internal/storage"
)

type staticSource struct {
	question domain.Question
}

func (s *staticSource) Fetch(ctx context.Context, amount int, token string) ([]domain.Question, error) {
	batch := make([]domain.Question, amount)
	for i := range batch {
		batch[i] = s.question
	}
	return batch, nil
}

func makeRouter(t *testing.T) (*gin.Engine, *leaderboard.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemory()
	eb := event.NewBus()
	t.Cleanup(eb.Stop)

	fav := favorites.NewService(favorites.Config{Store: store, EventBus: eb})
	lb := leaderboard.NewService(leaderboard.Config{Store: store, EventBus: eb})
	require.NoError(t, lb.Initialize(context.Background()))

	g := game.NewService(game.Config{
		Questions: &staticSource{question: domain.Question{
			Type:             domain.TypeMultiple,
			Difficulty:       domain.DifficultyEasy,
			Text:             "Mock Question?",
			CorrectAnswer:    "Correct Answer",
			IncorrectAnswers: []string{"Wrong 1", "Wrong 2", "Wrong 3"},
		}},
		EventBus:  eb,
		BatchSize: 2,
	})

	e := gin.New()
	api.New(api.Config{
		Router:      e,
		Game:        g,
		Leaderboard: lb,
		Favorites:   fav,
	})

	return e, lb
}

func doJSON(t *testing.T, e *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	decoded := make(map[string]any)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

func TestStartGame(t *testing.T) {
	e, _ := makeRouter(t)

	w, body := doJSON(t, e, http.MethodPost, "/api/game/start", `{"player_name":"P1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, "playing", body["status"])
	require.Equal(t, "P1", body["player_name"])

	q, ok := body["question"].(map[string]any)
	require.True(t, ok, "a question should be presented")
	require.Equal(t, "Mock Question?", q["text"])
	require.Len(t, q["choices"], 4)
	require.NotContains(t, q, "correct_answer", "the correct answer must stay server-side")
}

func TestStartGameWithoutName(t *testing.T) {
	e, _ := makeRouter(t)

	w, _ := doJSON(t, e, http.MethodPost, "/api/game/start", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAnswerFlow(t *testing.T) {
	e, lb := makeRouter(t)

	_, _ = doJSON(t, e, http.MethodPost, "/api/game/start", `{"player_name":"P1"}`)

	w, body := doJSON(t, e, http.MethodPost, "/api/game/answer", `{"answer":"Correct Answer"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(100), body["score"])
	require.Equal(t, false, body["game_over"])

	w, body = doJSON(t, e, http.MethodPost, "/api/game/answer", `{"answer":"Wrong 1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["game_over"])
	require.Equal(t, "game_over", body["status"])

	// The final score reaches the leaderboard through the event bus.
	require.Eventually(t, func() bool {
		l, err := lb.Get(context.Background())
		if err != nil {
			return false
		}
		for _, entry := range l.Entries {
			if entry.PlayerName == "P1" && entry.Score == 100 {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubmitAnswerWithoutGame(t *testing.T) {
	e, _ := makeRouter(t)

	w, _ := doJSON(t, e, http.MethodPost, "/api/game/answer", `{"answer":"x"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLeaderboardEndpoint(t *testing.T) {
	e, _ := makeRouter(t)

	w, body := doJSON(t, e, http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusOK, w.Code)

	entries, ok := body["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 3, "a fresh board shows the seeded defaults")
}

func TestFavoritesToggleEndpoint(t *testing.T) {
	e, _ := makeRouter(t)

	// Favorite the question exactly as the game endpoint displays it: the
	// front end only ever sees the view shape, so echoing it back must
	// persist the displayed text.
	_, _ = doJSON(t, e, http.MethodPost, "/api/game/start", `{"player_name":"P1"}`)
	_, body := doJSON(t, e, http.MethodGet, "/api/game", "")
	displayed, ok := body["question"].(map[string]any)
	require.True(t, ok)

	payload, err := json.Marshal(displayed)
	require.NoError(t, err)

	w, body := doJSON(t, e, http.MethodPost, "/api/favorites/toggle", string(payload))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["is_favorite"])

	w, body = doJSON(t, e, http.MethodGet, "/api/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)

	favs, ok := body["favorites"].([]any)
	require.True(t, ok)
	require.Len(t, favs, 1)

	saved, ok := favs[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Mock Question?", saved["question"],
		"the stored favorite must carry the displayed question text")

	// Toggling the same view shape again removes it.
	w, body = doJSON(t, e, http.MethodPost, "/api/favorites/toggle", string(payload))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, body["is_favorite"])
}

func TestFavoritesToggleRejectsMissingText(t *testing.T) {
	e, _ := makeRouter(t)

	w, _ := doJSON(t, e, http.MethodPost, "/api/favorites/toggle", `{"type":"multiple"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, e, http.MethodPost, "/api/favorites/toggle", `{"text":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
