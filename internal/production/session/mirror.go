package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/spinmill/milltrack/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Mirror keeps a best-effort copy of open sessions in redis so an entry
// in progress survives a service restart. It is not transactional: a
// crash between mutation and mirror write loses the most recent edit,
// never a submitted day.
type Mirror struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMirror connects to redis when enabled; otherwise every operation is
// a no-op and sessions live in memory only.
func NewMirror(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *Mirror {
	if !cfg.RedisEnabled {
		return &Mirror{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})

	log.Info("session mirror enabled", zap.String("addr", cfg.RedisAddr))
	return &Mirror{
		rdb: rdb,
		ttl: time.Duration(cfg.SessionTTLHours) * time.Hour,
	}
}

// Store writes the session snapshot.
func (m *Mirror) Store(ctx context.Context, sess *EntrySession) error {
	if m.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, m.key(sess.OrgID, sess.ID), payload, m.ttl).Err()
}

// Load reads a mirrored session back, or nil when none is stored.
func (m *Mirror) Load(ctx context.Context, orgID snowflake.ID, id string) (*EntrySession, error) {
	if m.rdb == nil {
		return nil, nil
	}
	payload, err := m.rdb.Get(ctx, m.key(orgID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var sess EntrySession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	if sess.Aggregate == nil {
		return nil, nil
	}
	return &sess, nil
}

// Delete drops the mirrored copy.
func (m *Mirror) Delete(ctx context.Context, orgID snowflake.ID, id string) error {
	if m.rdb == nil {
		return nil
	}
	return m.rdb.Del(ctx, m.key(orgID, id)).Err()
}

func (m *Mirror) key(orgID snowflake.ID, id string) string {
	return fmt.Sprintf("milltrack:session:%d:%s", orgID, id)
}
