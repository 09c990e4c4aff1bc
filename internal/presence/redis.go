package presence

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on plain Redis commands. Every operation is a
// single-key/single-member command, so no transactions are needed: the
// marker and the sets are allowed to diverge and the list operations repair
// the sets on read.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Heartbeat(ctx context.Context, userID int64) error {
	if err := s.rdb.Set(ctx, userKey(userID), "1", s.ttl).Err(); err != nil {
		return err
	}
	return s.rdb.SAdd(ctx, globalSetKey(), member(userID)).Err()
}

func (s *RedisStore) RemoveGlobal(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, userKey(userID)).Err(); err != nil {
		return err
	}
	return s.rdb.SRem(ctx, globalSetKey(), member(userID)).Err()
}

func (s *RedisStore) RoomJoin(ctx context.Context, userID, roomID int64) error {
	if err := s.rdb.SAdd(ctx, roomSetKey(roomID), member(userID)).Err(); err != nil {
		return err
	}
	return s.Heartbeat(ctx, userID)
}

func (s *RedisStore) RoomLeave(ctx context.Context, userID, roomID int64) error {
	return s.rdb.SRem(ctx, roomSetKey(roomID), member(userID)).Err()
}

func (s *RedisStore) ListAliveGlobal(ctx context.Context) ([]int64, error) {
	return s.listAlive(ctx, globalSetKey())
}

func (s *RedisStore) ListAliveRoom(ctx context.Context, roomID int64) ([]int64, error) {
	return s.listAlive(ctx, roomSetKey(roomID))
}

// listAlive reconciles one online set against the liveness markers: members
// whose marker expired are excluded and pruned in place. The SREM is
// best-effort; a failed prune just means the next read does it again.
func (s *RedisStore) listAlive(ctx context.Context, setKey string) ([]int64, error) {
	raw, err := s.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}

	alive := make([]int64, 0, len(raw))
	for _, m := range raw {
		uid, convErr := strconv.ParseInt(m, 10, 64)
		if convErr != nil {
			// garbage member, prune it too
			_ = s.rdb.SRem(ctx, setKey, m).Err()
			continue
		}
		exists, err := s.rdb.Exists(ctx, userKey(uid)).Result()
		if err != nil {
			return nil, err
		}
		if exists == 1 {
			alive = append(alive, uid)
			continue
		}
		if err := s.rdb.SRem(ctx, setKey, m).Err(); err != nil {
			slog.Debug("presence: prune stale member failed",
				"set", setKey, "user", uid, "err", err)
		}
	}
	return alive, nil
}

func member(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
