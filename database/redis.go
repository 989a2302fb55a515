package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const (
	fieldsKeyPrefix  = "relay:fields:"   // relay:fields:{userId} -> hash of field -> json
	protectedKey     = "relay:protected" // set of chat ids
	sessionKeyPrefix = "relay:session:"  // relay:session:{userId} -> json, expires natively
	premiumKeyPrefix = "relay:premium:"  // relay:premium:{userId} -> unix expiry, expires natively
)

type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// Redis is the key/value alternative to SQL. Expiring records rely on key
// TTLs, so no reaper is needed.
type Redis struct {
	rdb *redis.Client
}

func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	logger := log.FromContext(ctx)
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Debug("Redis connected", "ping", pong)
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func userKey(prefix string, userID int64) string {
	return prefix + strconv.FormatInt(userID, 10)
}

func (r *Redis) GetField(ctx context.Context, userID int64, key string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, userKey(fieldsKeyPrefix, userID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) SetField(ctx context.Context, userID int64, key, value string) error {
	return r.rdb.HSet(ctx, userKey(fieldsKeyPrefix, userID), key, value).Err()
}

func (r *Redis) ClearFields(ctx context.Context, userID int64, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.HDel(ctx, userKey(fieldsKeyPrefix, userID), keys...).Err()
}

func (r *Redis) ListProtected(ctx context.Context) ([]int64, error) {
	members, err := r.rdb.SMembers(ctx, protectedKey).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *Redis) AddProtected(ctx context.Context, chatID int64) error {
	return r.rdb.SAdd(ctx, protectedKey, strconv.FormatInt(chatID, 10)).Err()
}

type redisSession struct {
	Session   string    `json:"session"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *Redis) GetSession(ctx context.Context, userID int64) (string, time.Time, bool, error) {
	data, err := r.rdb.Get(ctx, userKey(sessionKeyPrefix, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, err
	}
	var rs redisSession
	if err := json.Unmarshal([]byte(data), &rs); err != nil {
		return "", time.Time{}, false, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return rs.Session, rs.ExpiresAt, true, nil
}

func (r *Redis) SetSession(ctx context.Context, userID int64, session string, expiresAt time.Time) error {
	data, err := json.Marshal(redisSession{Session: session, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}
	key := userKey(sessionKeyPrefix, userID)
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.ExpireAt(ctx, key, expiresAt)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Redis) RemoveSession(ctx context.Context, userID int64) error {
	return r.rdb.Del(ctx, userKey(sessionKeyPrefix, userID)).Err()
}

func (r *Redis) GetPremium(ctx context.Context, userID int64) (time.Time, bool, error) {
	v, err := r.rdb.Get(ctx, userKey(premiumKeyPrefix, userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(v, 0), true, nil
}

func (r *Redis) SetPremium(ctx context.Context, userID int64, expiresAt time.Time) error {
	key := userKey(premiumKeyPrefix, userID)
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, key, expiresAt.Unix(), 0)
	pipe.ExpireAt(ctx, key, expiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) RemovePremium(ctx context.Context, userID int64) error {
	return r.rdb.Del(ctx, userKey(premiumKeyPrefix, userID)).Err()
}
