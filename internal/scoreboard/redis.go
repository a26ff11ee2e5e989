package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix = "t3:"
	// counted-game markers only need to outlive redelivery of the same drop
	ttlCounted = 24 * time.Hour
)

// RedisStore keeps one hash per player: t3:score:<name> {wins, losses, draws}.
type RedisStore struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb, logger), nil
}

func NewRedisStoreFromClient(rdb *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{rdb: rdb, logger: logger}
}

func (s *RedisStore) keyScore(name string) string { return keyPrefix + "score:" + name }
func (s *RedisStore) keyCounted(id string) string { return keyPrefix + "counted:" + id }

// Add writes the counted marker and the increments in one MULTI/EXEC watched on the
// marker, so a failed transaction leaves nothing behind and can be retried.
func (s *RedisStore) Add(ctx context.Context, g *tictactoe.Game) error {
	ds := deltas(g)
	if len(ds) == 0 {
		return nil
	}
	counted := s.keyCounted(g.ID)
	duplicate := false
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, counted).Result()
		if err != nil {
			return fmt.Errorf("check counted: %w", err)
		}
		if n > 0 {
			duplicate = true
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, counted, g.State().String(), ttlCounted)
			for _, d := range ds {
				pipe.HIncrBy(ctx, s.keyScore(d.name), string(d.field), 1)
			}
			return nil
		})
		return err
	}, counted)
	if errors.Is(err, redis.TxFailedErr) {
		// another Add counted the same game between WATCH and EXEC
		duplicate, err = true, nil
	}
	if err != nil {
		return fmt.Errorf("increment scores: %w", err)
	}
	if duplicate {
		s.logger.Debug("t3_score_duplicate", zap.String("game_id", g.ID))
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, name string) (Record, error) {
	name, err := normalize(name)
	if err != nil {
		return Record{}, err
	}
	rec := Record{Name: name}
	if err := s.rdb.HGetAll(ctx, s.keyScore(name)).Scan(&rec); err != nil {
		return Record{}, fmt.Errorf("load score: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
