package domain

const (
	EventNameGameOver           = "game.over"
	EventNameLeaderboardUpdated = "leaderboard.updated"
	EventNameFavoritesChanged   = "favorites.changed"
)

// EventGameOver is published once per game session, when the session hits
// its terminal state. It carries the final score entry.
type EventGameOver struct {
	SessionID string
	Entry     ScoreEntry
}

func (EventGameOver) Name() string { return EventNameGameOver }

type EventLeaderboardUpdated struct {
	Leaderboard Leaderboard
}

func (EventLeaderboardUpdated) Name() string { return EventNameLeaderboardUpdated }

type EventFavoritesChanged struct {
	Favorites []Question
}

func (EventFavoritesChanged) Name() string { return EventNameFavoritesChanged }
