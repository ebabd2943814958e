package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minaorangina/deckhub/config"
	"github.com/minaorangina/deckhub/deck"
	"github.com/minaorangina/deckhub/hub"
	"github.com/minaorangina/deckhub/server"
	"github.com/minaorangina/deckhub/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	level, _ := cfg.Level()
	log = log.Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	decks, err := openDecks(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open deck library")
	}

	s := server.NewServer(server.Options{
		Store:  store.NewInMemoryHubStore(),
		Logger: log,
		NewHub: func(id string) *hub.Hub {
			return hub.New(id, hub.Options{
				Decks:      decks,
				NewEngine:  hub.GameEngine(cfg.GameRules()),
				MaxPlayers: cfg.MaxPlayers,
				Logger:     log,
			})
		},
	})
	s.Addr = cfg.Addr()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", s.Addr).Msg("listening")
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// openDecks returns the Redis deck library when one is configured, seeding
// it from the deck file if it has no decks yet. Otherwise it returns the
// deck file itself.
func openDecks(ctx context.Context, cfg *config.Config, log zerolog.Logger) (deck.Repository, error) {
	if cfg.RedisAddr == "" {
		log.Info().Str("file", cfg.DeckFile).Msg("using deck file")
		return deck.LoadFile(cfg.DeckFile, cfg.DeckRules())
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	repo := deck.NewRedisRepository(client, cfg.DeckRules())
	names, err := repo.ListDecks(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		lib, err := deck.LoadFile(cfg.DeckFile, cfg.DeckRules())
		if err != nil {
			return nil, err
		}
		if err := repo.Seed(ctx, lib); err != nil {
			return nil, err
		}
		log.Info().Str("file", cfg.DeckFile).Msg("seeded redis deck library")
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis deck library")
	return repo, nil
}
