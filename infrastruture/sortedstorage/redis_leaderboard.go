package sortedstorage

import (
	"context"
	"time"

	"github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const defaultLeaderboardKey = "vinom-nav:leaderboard"

var _ i.Leaderboard = &RedisLeaderboard{}

// RedisLeaderboard keeps finishers in a Redis sorted set, lowest score first.
type RedisLeaderboard struct {
	client *redis.Client
	locker *redsync.Redsync
	key    string
	ttl    time.Duration
}

// NewRedisLeaderboard initializes a leaderboard stored under key. An empty key
// uses the default; a zero ttl keeps entries forever.
func NewRedisLeaderboard(client *redis.Client, key string, ttl time.Duration) *RedisLeaderboard {
	if key == "" {
		key = defaultLeaderboardKey
	}
	pool := goredis.NewPool(client)
	return &RedisLeaderboard{
		client: client,
		locker: redsync.New(pool),
		key:    key,
		ttl:    ttl,
	}
}

// Record adds or updates an entry and sets the set's expiration if it has none.
func (l *RedisLeaderboard) Record(ctx context.Context, entry domain.LeaderboardEntry) error {
	if err := l.client.ZAdd(ctx, l.key, redis.Z{Score: entry.Score, Member: entry.Member()}).Err(); err != nil {
		return err
	}

	if l.ttl <= 0 {
		return nil
	}
	// Set expiration only if it's not already set
	ttl, err := l.client.TTL(ctx, l.key).Result()
	if err == nil && ttl == -1 {
		_ = l.client.Expire(ctx, l.key, l.ttl).Err()
	}
	return nil
}

// Top returns up to n best entries. Members that cannot be parsed are skipped.
func (l *RedisLeaderboard) Top(ctx context.Context, n int64) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := l.client.ZRangeWithScores(ctx, l.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entry, err := domain.ParseLeaderboardMember(member, z.Score)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Count returns the number of entries.
func (l *RedisLeaderboard) Count(ctx context.Context) int64 {
	return l.client.ZCard(ctx, l.key).Val()
}

// Trim drops everything below the best keep entries. Concurrent trims from
// several servers are serialized with a distributed lock.
func (l *RedisLeaderboard) Trim(ctx context.Context, keep int64) error {
	mutex := l.locker.NewMutex(l.key + ":trim_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	return l.client.ZRemRangeByRank(ctx, l.key, keep, -1).Err()
}
