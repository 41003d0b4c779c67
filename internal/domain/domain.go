package domain

// Question types as reported by the trivia API.
const (
	TypeBoolean  = "boolean"
	TypeMultiple = "multiple"
)

// Question difficulties as reported by the trivia API.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is a single trivia question. Text, CorrectAnswer and
// IncorrectAnswers arrive HTML-entity-escaped on the wire and are decoded
// before the question is handed to anyone else. IsFavorite is derived from
// local storage and is never part of the API payload.
type Question struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Text             string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	IsFavorite       bool     `json:"-"`
}

// ScoreEntry is a single leaderboard row.
type ScoreEntry struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

// Leaderboard is the ranked top-score list, sorted by score in descending
// order and capped at a fixed size.
type Leaderboard struct {
	Entries []ScoreEntry
}

// GameStatus tracks where a game session is in its lifecycle.
type GameStatus string

const (
	StatusNotStarted GameStatus = "not_started"
	StatusPlaying    GameStatus = "playing"
	StatusGameOver   GameStatus = "game_over"
	// StatusLoadFailed means a question fetch failed for good: the retry
	// cap ran out or the fetch was cancelled. Distinct from game over.
	StatusLoadFailed GameStatus = "load_failed"
)

// GameSnapshot is a read-only view of a game session.
type GameSnapshot struct {
	SessionID       string
	PlayerName      string
	Score           int
	Status          GameStatus
	GameOver        bool
	CurrentQuestion *Question
	QuestionIndex   int
}
