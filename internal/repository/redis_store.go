package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"elobot/internal/models"

	"github.com/redis/go-redis/v9"
)

const watchRetries = 8

// RedisStore keeps players and matches as JSON documents. Writes that depend on
// the current value run under WATCH/MULTI so a concurrent writer makes the
// transaction fail and retry instead of overwriting.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "elo:"}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("REDIS_URL is required for the redis store")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) keyPlayer(id string) string { return s.prefix + "player:" + id }
func (s *RedisStore) keyPlayerMatches(id string) string {
	return s.prefix + "player:" + id + ":matches"
}
func (s *RedisStore) keyRatings() string        { return s.prefix + "players:rating" }
func (s *RedisStore) keyMatch(id string) string { return s.prefix + "match:" + id }
func (s *RedisStore) keyPending() string        { return s.prefix + "matches:pending" }

func (s *RedisStore) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < watchRetries; i++ {
		err := s.rdb.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("too many concurrent updates on %v: %w", keys, redis.TxFailedErr)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func loadJSON[T any](ctx context.Context, c getter, key string) (*T, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &v, nil
}

func (s *RedisStore) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	p, err := loadJSON[models.Player](ctx, s.rdb, s.keyPlayer(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return p, nil
}

func (s *RedisStore) UpsertPlayerIfAbsent(ctx context.Context, id, name string) error {
	key := s.keyPlayer(id)
	err := s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		raw, err := json.Marshal(models.Player{ID: id, Name: name, Rating: models.DefaultRating})
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			pipe.ZAdd(ctx, s.keyRatings(), redis.Z{Score: models.DefaultRating, Member: id})
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("failed to ensure player exists: %w", err)
	}
	return nil
}

func (s *RedisStore) UpdatePlayerRating(ctx context.Context, id string, newRating, wonDelta, lostDelta int) error {
	key := s.keyPlayer(id)
	err := s.watch(ctx, func(tx *redis.Tx) error {
		p, err := loadJSON[models.Player](ctx, tx, key)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		applyToPlayer(p, newRating, wonDelta, lostDelta)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return s.queuePlayer(ctx, pipe, p)
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("failed to update player rating: %w", err)
	}
	return nil
}

func applyToPlayer(p *models.Player, newRating, wonDelta, lostDelta int) {
	p.Rating = newRating
	p.Wins += wonDelta
	p.Losses += lostDelta
	p.GamesPlayed += wonDelta + lostDelta
}

func (s *RedisStore) queuePlayer(ctx context.Context, pipe redis.Pipeliner, p *models.Player) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	pipe.Set(ctx, s.keyPlayer(p.ID), raw, 0)
	pipe.ZAdd(ctx, s.keyRatings(), redis.Z{Score: float64(p.Rating), Member: p.ID})
	return nil
}

func (s *RedisStore) ListTopPlayers(ctx context.Context, limit int) ([]models.Player, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := s.rdb.ZRevRange(ctx, s.keyRatings(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	players := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetPlayer(ctx, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			players = append(players, *p)
		}
	}
	return players, nil
}

func (s *RedisStore) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	m, err := loadJSON[models.Match](ctx, s.rdb, s.keyMatch(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

func (s *RedisStore) CreateMatch(ctx context.Context, m *models.Match) error {
	rec := *m
	if rec.Status == "" {
		rec.Status = models.MatchPending
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode match: %w", err)
	}
	key := s.keyMatch(rec.ID)
	err = s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("match %s already exists", rec.ID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			if rec.Status == models.MatchPending {
				pipe.ZAdd(ctx, s.keyPending(), redis.Z{Score: float64(rec.CreatedAt.UnixMilli()), Member: rec.ID})
			}
			pipe.SAdd(ctx, s.keyPlayerMatches(rec.Player1ID), rec.ID)
			pipe.SAdd(ctx, s.keyPlayerMatches(rec.Player2ID), rec.ID)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

// updateMatch runs mutate on the current match under WATCH and writes it back
// when mutate returns true.
func (s *RedisStore) updateMatch(ctx context.Context, matchID string, mutate func(m *models.Match) (bool, error)) (bool, error) {
	key := s.keyMatch(matchID)
	var written bool
	err := s.watch(ctx, func(tx *redis.Tx) error {
		written = false
		m, err := loadJSON[models.Match](ctx, tx, key)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrNotFound
		}
		ok, err := mutate(m)
		if err != nil || !ok {
			return err
		}
		raw, err := json.Marshal(m)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			if m.Status != models.MatchPending {
				pipe.ZRem(ctx, s.keyPending(), m.ID)
			}
			return nil
		})
		if err == nil {
			written = true
		}
		return err
	}, key)
	return written, err
}

func (s *RedisStore) SetReport(ctx context.Context, matchID, playerID string, report models.Report) (bool, error) {
	return s.updateMatch(ctx, matchID, func(m *models.Match) (bool, error) {
		if !m.IsParticipant(playerID) {
			return false, ErrNotParticipant
		}
		if m.ReportOf(playerID).IsSet() {
			return false, nil
		}
		if m.Status != models.MatchPending {
			return false, ErrStatusConflict
		}
		if playerID == m.Player1ID {
			m.Player1Report = report
		} else {
			m.Player2Report = report
		}
		return true, nil
	})
}

func (s *RedisStore) SetStatus(ctx context.Context, matchID string, status models.MatchStatus) error {
	_, err := s.updateMatch(ctx, matchID, func(m *models.Match) (bool, error) {
		if m.Status != models.MatchPending {
			return false, ErrStatusConflict
		}
		m.Status = status
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to set match status: %w", err)
	}
	return nil
}

func (s *RedisStore) CompareAndSetStatus(ctx context.Context, matchID string, g Guard, next models.MatchStatus) (bool, error) {
	ok, err := s.updateMatch(ctx, matchID, func(m *models.Match) (bool, error) {
		if !g.holds(m) {
			return false, nil
		}
		m.Status = next
		return true, nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to swap match status: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) ConfirmMatch(ctx context.Context, matchID string, g Guard, res Result) (bool, error) {
	if err := validateResult(res); err != nil {
		return false, err
	}
	matchKey := s.keyMatch(matchID)
	winnerKey, loserKey := s.keyPlayer(res.WinnerID), s.keyPlayer(res.LoserID)

	var confirmed bool
	err := s.watch(ctx, func(tx *redis.Tx) error {
		confirmed = false
		m, err := loadJSON[models.Match](ctx, tx, matchKey)
		if err != nil {
			return err
		}
		if m == nil || !g.holds(m) {
			return nil
		}
		if !m.IsParticipant(res.WinnerID) || !m.IsParticipant(res.LoserID) {
			return nil
		}
		winner, err := loadJSON[models.Player](ctx, tx, winnerKey)
		if err != nil {
			return err
		}
		loser, err := loadJSON[models.Player](ctx, tx, loserKey)
		if err != nil {
			return err
		}
		if winner == nil || loser == nil {
			return fmt.Errorf("player record missing: %w", ErrNotFound)
		}

		m.Status = models.MatchConfirmed
		applyToPlayer(winner, res.WinnerRating, 1, 0)
		applyToPlayer(loser, res.LoserRating, 0, 1)
		rawMatch, err := json.Marshal(m)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, matchKey, rawMatch, 0)
			pipe.ZRem(ctx, s.keyPending(), m.ID)
			if err := s.queuePlayer(ctx, pipe, winner); err != nil {
				return err
			}
			return s.queuePlayer(ctx, pipe, loser)
		})
		if err == nil {
			confirmed = true
		}
		return err
	}, matchKey, winnerKey, loserKey)
	if err != nil {
		return false, fmt.Errorf("failed to confirm match: %w", err)
	}
	return confirmed, nil
}

func (s *RedisStore) ListPendingMatchesFor(ctx context.Context, playerID string) ([]models.Match, error) {
	ids, err := s.rdb.SMembers(ctx, s.keyPlayerMatches(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	matches, err := s.loadPending(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	return matches, nil
}

func (s *RedisStore) ListStaleMatches(ctx context.Context, cutoff time.Time) ([]models.Match, error) {
	ids, err := s.rdb.ZRangeByScore(ctx, s.keyPending(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	matches, err := s.loadPending(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return matches, nil
}

func (s *RedisStore) loadPending(ctx context.Context, ids []string) ([]models.Match, error) {
	var matches []models.Match
	for _, id := range ids {
		m, err := s.GetMatch(ctx, id)
		if err != nil {
			return nil, err
		}
		if m != nil && m.Status == models.MatchPending {
			matches = append(matches, *m)
		}
	}
	return matches, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
