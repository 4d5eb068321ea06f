package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/Sternrassler/kindle-shelf/pkg/enrich"
	"github.com/Sternrassler/kindle-shelf/pkg/logging"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const backendRedis = "redis"

// meta is stored next to the item list.
type meta struct {
	Enriched  bool      `json:"enriched"`
	FetchedAt time.Time `json:"fetchedAt"`
	Pages     int       `json:"pages"`
}

// RedisStore keeps the snapshot as a Redis list plus a metadata key.
// Pages are collected into a staging list and only replace the published
// list on Flush.
type RedisStore struct {
	redis  *redis.Client
	key    Key
	pages  int
	staged int
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client, key Key) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  redisClient,
		key:    key,
		logger: logging.NewLogger(logging.ComponentSnapshot),
	}
}

// Reset clears the staging list left by an earlier run. The published
// snapshot is kept until Flush.
func (s *RedisStore) Reset(ctx context.Context) error {
	s.pages = 0
	s.staged = 0
	if err := s.redis.Del(ctx, s.key.Pending()).Err(); err != nil {
		SnapshotErrors.WithLabelValues(backendRedis, "reset").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// WritePage appends the page's items to the staging list in one round trip.
func (s *RedisStore) WritePage(ctx context.Context, pageNumber int, items []catalog.Item) error {
	s.pages++
	if len(items) == 0 {
		return nil
	}

	values, err := encodeRecords(enrich.Records(items))
	if err != nil {
		SnapshotErrors.WithLabelValues(backendRedis, "page").Inc()
		return err
	}

	if err := s.redis.RPush(ctx, s.key.Pending(), values...).Err(); err != nil {
		SnapshotErrors.WithLabelValues(backendRedis, "page").Inc()
		return fmt.Errorf("redis rpush page %d: %w", pageNumber, err)
	}
	s.staged += len(values)

	SnapshotWrites.WithLabelValues(backendRedis, "page").Inc()
	return nil
}

// Flush publishes the staged pages: the staging list replaces the item
// list and the metadata is written in the same transaction.
func (s *RedisStore) Flush(ctx context.Context) error {
	data, err := json.Marshal(meta{
		FetchedAt: time.Now().UTC().Truncate(time.Second),
		Pages:     s.pages,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot meta: %w", err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// RENAME fails on a missing source, and an empty run stages nothing.
		if s.staged > 0 {
			pipe.Rename(ctx, s.key.Pending(), s.key.Items())
		} else {
			pipe.Del(ctx, s.key.Items())
		}
		pipe.Set(ctx, s.key.Meta(), data, 0)
		return nil
	})
	if err != nil {
		SnapshotErrors.WithLabelValues(backendRedis, "flush").Inc()
		return fmt.Errorf("redis flush: %w", err)
	}

	SnapshotWrites.WithLabelValues(backendRedis, "flush").Inc()
	SnapshotItems.WithLabelValues(backendRedis).Set(float64(s.staged))
	s.staged = 0
	return nil
}

// Load reads the list and metadata.
func (s *RedisStore) Load(ctx context.Context) (*Document, error) {
	pipe := s.redis.Pipeline()
	listCmd := pipe.LRange(ctx, s.key.Items(), 0, -1)
	metaCmd := pipe.Get(ctx, s.key.Meta())
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		SnapshotErrors.WithLabelValues(backendRedis, "load").Inc()
		return nil, fmt.Errorf("redis load: %w", err)
	}

	metaData, err := metaCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.key)
	}
	if err != nil {
		SnapshotErrors.WithLabelValues(backendRedis, "load").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var m meta
	if err := json.Unmarshal(metaData, &m); err != nil {
		SnapshotErrors.WithLabelValues(backendRedis, "load").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	entries := listCmd.Val()
	records := make([]enrich.Record, len(entries))
	for i, entry := range entries {
		if err := json.Unmarshal([]byte(entry), &records[i]); err != nil {
			SnapshotErrors.WithLabelValues(backendRedis, "load").Inc()
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidDocument, i, err)
		}
	}

	SnapshotItems.WithLabelValues(backendRedis).Set(float64(len(records)))
	return &Document{
		ItemList:  records,
		Enriched:  m.Enriched,
		FetchedAt: m.FetchedAt,
		Pages:     m.Pages,
	}, nil
}

// Save replaces the list and metadata in one transaction.
func (s *RedisStore) Save(ctx context.Context, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("snapshot document cannot be nil")
	}

	values, err := encodeRecords(doc.ItemList)
	if err != nil {
		return err
	}
	metaData, err := json.Marshal(meta{Enriched: doc.Enriched, FetchedAt: doc.FetchedAt, Pages: doc.Pages})
	if err != nil {
		return fmt.Errorf("marshal snapshot meta: %w", err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key.Items())
		if len(values) > 0 {
			pipe.RPush(ctx, s.key.Items(), values...)
		}
		pipe.Set(ctx, s.key.Meta(), metaData, 0)
		return nil
	})
	if err != nil {
		SnapshotErrors.WithLabelValues(backendRedis, "save").Inc()
		return fmt.Errorf("redis save: %w", err)
	}

	SnapshotWrites.WithLabelValues(backendRedis, "save").Inc()
	SnapshotItems.WithLabelValues(backendRedis).Set(float64(len(doc.ItemList)))
	s.logger.Info().
		Str("key", s.key.String()).
		Int("items", len(doc.ItemList)).
		Bool("enriched", doc.Enriched).
		Msg("Snapshot written")

	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.redis.Close()
}

func encodeRecords(records []enrich.Record) ([]interface{}, error) {
	values := make([]interface{}, len(records))
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
		values[i] = string(data)
	}
	return values, nil
}
