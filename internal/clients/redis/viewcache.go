package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/google/uuid"

	"github.com/firelightacademy/protocols-backend/internal/logger"
	"github.com/firelightacademy/protocols-backend/internal/render"
)

// ViewCache is a read-through cache for rendered public protocol views.
// Writes to a protocol invalidate its entry; readers fall back to the
// database on a miss. A nil *viewCache is a no-op, so callers never need
// to branch on whether Redis is configured.
type ViewCache interface {
	GetLayout(ctx context.Context, protocolID uuid.UUID) (*render.Layout, bool)
	SetLayout(ctx context.Context, protocolID uuid.UUID, layout *render.Layout) error
	InvalidateProtocol(ctx context.Context, protocolID uuid.UUID) error
	Close() error
}

type viewCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewViewCache(log *logger.Logger) (ViewCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := 10 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("VIEW_CACHE_TTL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid VIEW_CACHE_TTL: %w", err)
		}
		ttl = parsed
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

	return &viewCache{
		log: log.With("service", "RedisViewCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func layoutKey(protocolID uuid.UUID) string {
	return "protocol_view:" + protocolID.String()
}

func (vc *viewCache) GetLayout(ctx context.Context, protocolID uuid.UUID) (*render.Layout, bool) {
	if vc == nil || vc.rdb == nil {
		return nil, false
	}
	raw, err := vc.rdb.Get(ctx, layoutKey(protocolID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			vc.log.Warn("view cache read failed", "error", err, "protocol_id", protocolID)
		}
		return nil, false
	}
	var layout render.Layout
	if err := json.Unmarshal(raw, &layout); err != nil {
		vc.log.Warn("view cache entry corrupt, dropping", "error", err, "protocol_id", protocolID)
		_ = vc.rdb.Del(ctx, layoutKey(protocolID)).Err()
		return nil, false
	}
	return &layout, true
}

func (vc *viewCache) SetLayout(ctx context.Context, protocolID uuid.UUID, layout *render.Layout) error {
	if vc == nil || vc.rdb == nil || layout == nil {
		return nil
	}
	raw, err := json.Marshal(layout)
	if err != nil {
		return err
	}
	return vc.rdb.Set(ctx, layoutKey(protocolID), raw, vc.ttl).Err()
}

func (vc *viewCache) InvalidateProtocol(ctx context.Context, protocolID uuid.UUID) error {
	if vc == nil || vc.rdb == nil {
		return nil
	}
	return vc.rdb.Del(ctx, layoutKey(protocolID)).Err()
}

func (vc *viewCache) Close() error {
	if vc == nil || vc.rdb == nil {
		return nil
	}
	return vc.rdb.Close()
}
