package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"kinfolk/internal/report/models"
	"kinfolk/pkg/platform/sentinel"
)

var exportStoreDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "kinfolk_export_store_duration_ms",
	Help:    "Latency of report export store operations in milliseconds",
	Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
}, []string{"op"})

const exportKeyPrefix = "report:export:"

// RedisStore keeps exports as JSON values whose key TTL matches the export
// lifetime, so expiry needs no sweeper.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, e *models.Export, ttl time.Duration) error {
	defer observe("save", time.Now())
	if ttl <= 0 {
		return fmt.Errorf("save export %s: ttl must be positive", e.ID)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := s.client.Set(ctx, exportKeyPrefix+e.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save export %s: %w: %w", e.ID, sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Export, error) {
	defer observe("get", time.Now())
	payload, err := s.client.Get(ctx, exportKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load export %s: %w: %w", id, sentinel.ErrUnavailable, err)
	}
	var e models.Export
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decode export %s: %w", id, err)
	}
	return &e, nil
}

func observe(op string, start time.Time) {
	exportStoreDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
