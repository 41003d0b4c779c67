package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ArnaudClarat/FactRush/internal/api"
	"github.com/ArnaudClarat/FactRush/internal/event"
	"github.com/ArnaudClarat/FactRush/internal/favorites"
	"github.com/ArnaudClarat/FactRush/internal/game"
	"github.com/ArnaudClarat/FactRush/internal/leaderboard"
	"github.com/ArnaudClarat/FactRush/internal/question"
	"github.com/ArnaudClarat/FactRush/internal/storage"
	"github.com/ArnaudClarat/FactRush/internal/telemetry"
	"github.com/ArnaudClarat/FactRush/internal/trivia"
)

// Storage backends selectable from config.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	HTTP struct {
		Port int32
	}

	Trivia struct {
		BaseURL        string
		BatchSize      int
		BackoffSeconds int
		MaxAttempts    int
	}

	Storage struct {
		Backend string

		Redis struct {
			Addrs  []string
			Pass   string
			Prefix string
		}

		SQLite struct {
			Path string
		}
	}
}

type Server struct {
	c Config

	eb    *event.Bus
	store storage.Store

	service struct {
		question    *question.Service
		favorites   *favorites.Service
		game        *game.Service
		leaderboard *leaderboard.Service
	}

	http *http.Server
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	s.eb = event.NewBus()

	if err := s.initStorage(); err != nil {
		return nil, fmt.Errorf("server: init storage: %w", err)
	}

	if err := s.initServices(); err != nil {
		return nil, fmt.Errorf("server: init services: %w", err)
	}

	s.initHTTP()
	return s, nil
}

func (s *Server) initStorage() error {
	switch s.c.Storage.Backend {
	case BackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    s.c.Storage.Redis.Addrs,
			Password: s.c.Storage.Redis.Pass,
		})

		if err := telemetry.MonitorRedis(r); err != nil {
			return fmt.Errorf("redis: %w", err)
		}

		if err := r.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}

		s.store = storage.NewRedis(r, s.c.Storage.Redis.Prefix)

	case BackendSQLite:
		db, err := storage.OpenSQLite(s.c.Storage.SQLite.Path)
		if err != nil {
			return err
		}
		s.store = db

	case BackendMemory, "":
		s.store = storage.NewMemory()

	default:
		return fmt.Errorf("unknown storage backend %q", s.c.Storage.Backend)
	}

	return nil
}

func (s *Server) initServices() error {
	client := trivia.NewClient(nil, s.c.Trivia.BaseURL)

	s.service.favorites = favorites.NewService(favorites.Config{
		Store:    s.store,
		EventBus: s.eb,
	})

	s.service.question = question.NewService(question.Config{
		Client:      client,
		Favorites:   s.service.favorites,
		Backoff:     time.Duration(s.c.Trivia.BackoffSeconds) * time.Second,
		MaxAttempts: s.c.Trivia.MaxAttempts,
	})

	s.service.game = game.NewService(game.Config{
		Questions: s.service.question,
		Tokens:    client,
		EventBus:  s.eb,
		BatchSize: s.c.Trivia.BatchSize,
	})

	s.service.leaderboard = leaderboard.NewService(leaderboard.Config{
		Store:    s.store,
		EventBus: s.eb,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.service.leaderboard.Initialize(ctx); err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}

	return nil
}

func (s *Server) initHTTP() {
	e := gin.New()
	e.Use(gin.Recovery())
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")

	api.New(api.Config{
		Router:      e,
		Game:        s.service.game,
		Leaderboard: s.service.leaderboard,
		Favorites:   s.service.favorites,
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.service.game.Reset(ctx)
	s.eb.Stop()

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.ErrorContext(ctx, "server: close storage failed", "error", err)
		}
	}

	slog.InfoContext(ctx, "server: shutdown completed")
}
