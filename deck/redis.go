package deck

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const (
	redisDecksKey     = "deckhub:decks"
	redisCardsKey     = "deckhub:cards"
	redisDeckKeyBase  = "deckhub:deck:"
	redisBasicCard    = "basic"
	redisNonBasicCard = ""
)

func redisDeckKey(name string) string {
	return redisDeckKeyBase + name
}

// RedisRepository is a Repository shared between servers through redis.
// Deck names live in a set, each deck in a hash of card name to count and
// the catalogue in a hash of card name to "basic" or "".
type RedisRepository struct {
	client *redis.Client
	rules  Rules
}

// NewRedisRepository constructs a RedisRepository
func NewRedisRepository(client *redis.Client, rules Rules) *RedisRepository {
	return &RedisRepository{client: client, rules: rules}
}

// Seed copies every card and deck of lib into redis in one transaction
func (r *RedisRepository) Seed(ctx context.Context, lib *Library) error {
	pipe := r.client.TxPipeline()

	catalogue := lib.Catalogue()
	if len(catalogue) > 0 {
		fields := make(map[string]interface{}, len(catalogue))
		for name, c := range catalogue {
			if c.Basic {
				fields[name] = redisBasicCard
			} else {
				fields[name] = redisNonBasicCard
			}
		}
		pipe.HSet(ctx, redisCardsKey, fields)
	}

	names, err := lib.ListDecks(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		cards, err := lib.GetDeck(ctx, name)
		if err != nil {
			return err
		}
		key := redisDeckKey(name)
		pipe.Del(ctx, key)
		if len(cards) > 0 {
			fields := make(map[string]interface{}, len(cards))
			for card, count := range cards {
				fields[card] = count
			}
			pipe.HSet(ctx, key, fields)
		}
		pipe.SAdd(ctx, redisDecksKey, name)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return eris.Wrap(err, "could not seed decks")
	}
	return nil
}

func (r *RedisRepository) ListDecks(ctx context.Context) ([]string, error) {
	names, err := r.client.SMembers(ctx, redisDecksKey).Result()
	if err != nil {
		return nil, eris.Wrap(err, "could not list decks")
	}
	return names, nil
}

func (r *RedisRepository) GetDeck(ctx context.Context, name string) (map[string]int, error) {
	known, err := r.client.SIsMember(ctx, redisDecksKey, name).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "could not look up deck '%s'", name)
	}
	if !known {
		return nil, ErrFnDeckNotFound(name)
	}

	fields, err := r.client.HGetAll(ctx, redisDeckKey(name)).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "could not read deck '%s'", name)
	}

	cards := make(map[string]int, len(fields))
	for card, raw := range fields {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, eris.Wrapf(ErrInvalidCount, "deck '%s' has count '%s' for '%s'", name, raw, card)
		}
		cards[card] = count
	}
	return cards, nil
}

func (r *RedisRepository) BuildDeck(ctx context.Context, owner, name string) (*Deck, error) {
	def, err := r.GetDeck(ctx, name)
	if err != nil {
		return nil, err
	}

	fields, err := r.client.HGetAll(ctx, redisCardsKey).Result()
	if err != nil {
		return nil, eris.Wrap(err, "could not read card catalogue")
	}
	catalogue := make(map[string]Card, len(fields))
	for cardName, kind := range fields {
		catalogue[cardName] = Card{Name: cardName, Basic: kind == redisBasicCard}
	}

	return Build(owner, name, def, catalogue, r.rules)
}
