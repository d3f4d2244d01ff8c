package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
)

// SessionCache fronts the user_session table: the active UX session handle
// is read far more often than it changes. Misses and redis outages fall
// through to the database; the cache is never authoritative.
type SessionCache interface {
	Get(ctx context.Context, userID string) (*types.UserSession, bool)
	Set(ctx context.Context, session *types.UserSession)
	Invalidate(ctx context.Context, userID string)
	Close() error
}

type sessionCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionCache(log *logger.Logger) (SessionCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &sessionCache{
		log: log.With("service", "RedisSessionCache"),
		rdb: rdb,
		ttl: 30 * time.Minute,
	}, nil
}

func sessionKey(userID string) string {
	return "session:active:" + userID
}

func (c *sessionCache) Get(ctx context.Context, userID string) (*types.UserSession, bool) {
	if c == nil || c.rdb == nil || userID == "" {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Debug("session cache get failed", "error", err)
		}
		return nil, false
	}
	var session types.UserSession
	if err := json.Unmarshal(raw, &session); err != nil {
		c.log.Debug("session cache entry unreadable, dropping", "error", err)
		_ = c.rdb.Del(ctx, sessionKey(userID)).Err()
		return nil, false
	}
	return &session, true
}

func (c *sessionCache) Set(ctx context.Context, session *types.UserSession) {
	if c == nil || c.rdb == nil || session == nil {
		return
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, sessionKey(session.UserID.String()), raw, c.ttl).Err(); err != nil {
		c.log.Debug("session cache set failed", "error", err)
	}
}

func (c *sessionCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.rdb == nil || userID == "" {
		return
	}
	if err := c.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		c.log.Debug("session cache invalidate failed", "error", err)
	}
}

func (c *sessionCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
