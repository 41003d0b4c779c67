package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttempts counts every request made to the trivia API, labeled by
	// outcome ("ok", "retry").
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factrush",
		Subsystem: "trivia",
		Name:      "fetch_attempts_total",
		Help:      "Trivia API fetch attempts by outcome.",
	}, []string{"outcome"})

	// GamesStarted counts started game sessions.
	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "factrush",
		Subsystem: "game",
		Name:      "started_total",
		Help:      "Game sessions started.",
	})

	// GamesFinished counts sessions reaching a terminal state, labeled by
	// reason ("game_over", "load_failed").
	GamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factrush",
		Subsystem: "game",
		Name:      "finished_total",
		Help:      "Game sessions reaching a terminal state.",
	}, []string{"reason"})
)
