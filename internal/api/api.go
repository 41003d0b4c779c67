// Package api exposes the game over HTTP for the browser front end.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArnaudClarat/FactRush/internal/domain"
	"github.com/ArnaudClarat/FactRush/internal/errors"
	"github.com/ArnaudClarat/FactRush/internal/favorites"
	"github.com/ArnaudClarat/FactRush/internal/game"
	"github.com/ArnaudClarat/FactRush/internal/leaderboard"
	"github.com/ArnaudClarat/FactRush/internal/question"
)

type Config struct {
	Router      gin.IRouter
	Game        *game.Service
	Leaderboard *leaderboard.Service
	Favorites   *favorites.Service
}

type API struct {
	game *game.Service
	lb   *leaderboard.Service
	fav  *favorites.Service
}

func New(c Config) *API {
	a := &API{
		game: c.Game,
		lb:   c.Leaderboard,
		fav:  c.Favorites,
	}

	r := c.Router.Group("/api")
	r.POST("/game/start", a.startGame)
	r.POST("/game/answer", a.submitAnswer)
	r.POST("/game/reset", a.resetGame)
	r.GET("/game", a.getGame)
	r.GET("/leaderboard", a.getLeaderboard)
	r.GET("/favorites", a.listFavorites)
	r.POST("/favorites/toggle", a.toggleFavorite)

	return a
}

type startGameRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
}

func (a *API) startGame(c *gin.Context) {
	var req startGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidArgumentf("invalid request: %v", err))
		return
	}

	snap, err := a.game.Start(c.Request.Context(), req.PlayerName)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gameView(snap))
}

type submitAnswerRequest struct {
	Answer string `json:"answer"`
}

func (a *API) submitAnswer(c *gin.Context) {
	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidArgumentf("invalid request: %v", err))
		return
	}

	snap, err := a.game.SubmitAnswer(c.Request.Context(), req.Answer)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gameView(snap))
}

func (a *API) resetGame(c *gin.Context) {
	a.game.Reset(c.Request.Context())
	c.JSON(http.StatusOK, gameView(a.game.Snapshot()))
}

func (a *API) getGame(c *gin.Context) {
	c.JSON(http.StatusOK, gameView(a.game.Snapshot()))
}

func (a *API) getLeaderboard(c *gin.Context) {
	l, err := a.lb.Get(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": l.Entries})
}

func (a *API) listFavorites(c *gin.Context) {
	favs, err := a.fav.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}

// toggleFavoriteRequest mirrors the question shape the game endpoints emit
// (QuestionView), so a front end can echo the displayed question straight
// back. Answers are never shown to the player, so none are expected here;
// favorites match by text alone.
type toggleFavoriteRequest struct {
	Category   string `json:"category"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	Text       string `json:"text" binding:"required"`
}

func (a *API) toggleFavorite(c *gin.Context) {
	var req toggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidArgumentf("invalid request: %v", err))
		return
	}

	saved, err := a.fav.Toggle(c.Request.Context(), domain.Question{
		Category:   req.Category,
		Type:       req.Type,
		Difficulty: req.Difficulty,
		Text:       req.Text,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorite": saved})
}

// QuestionView is the current question as shown to the player. The correct
// answer stays server-side; the player only sees the shuffled choices.
type QuestionView struct {
	Category   string   `json:"category"`
	Type       string   `json:"type"`
	Difficulty string   `json:"difficulty"`
	Text       string   `json:"text"`
	Choices    []string `json:"choices"`
	IsFavorite bool     `json:"is_favorite"`
}

type GameView struct {
	SessionID     string        `json:"session_id,omitempty"`
	PlayerName    string        `json:"player_name,omitempty"`
	Score         int           `json:"score"`
	Status        string        `json:"status"`
	GameOver      bool          `json:"game_over"`
	QuestionIndex int           `json:"question_index"`
	Question      *QuestionView `json:"question,omitempty"`
}

func gameView(snap domain.GameSnapshot) GameView {
	v := GameView{
		SessionID:     snap.SessionID,
		PlayerName:    snap.PlayerName,
		Score:         snap.Score,
		Status:        string(snap.Status),
		GameOver:      snap.GameOver,
		QuestionIndex: snap.QuestionIndex,
	}

	if q := snap.CurrentQuestion; q != nil {
		v.Question = &QuestionView{
			Category:   q.Category,
			Type:       q.Type,
			Difficulty: q.Difficulty,
			Text:       q.Text,
			Choices:    question.Choices(q),
			IsFavorite: q.IsFavorite,
		}
	}

	return v
}

func abortWithError(c *gin.Context, err error) {
	e := errors.Convert(err)
	c.AbortWithStatusJSON(e.HTTPStatusCode(), gin.H{
		"code":    e.Code,
		"message": e.Message,
	})
}
