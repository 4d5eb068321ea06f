package snapshot

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Options selects and configures a backend.
type Options struct {
	// Backend is "file" (default) or "redis".
	Backend string

	// Path of the snapshot file.
	Path string

	// RedisURL is either a redis:// URL or a host:port address.
	RedisURL string

	// Name distinguishes snapshots sharing one Redis database.
	Name string
}

// Open returns the store selected by opts. A Redis store is pinged before
// it is returned.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", backendFile:
		return NewFileStore(opts.Path)

	case backendRedis:
		redisOpts, err := redisOptions(opts.RedisURL)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", redisOpts.Addr, err)
		}
		return NewRedisStore(client, Key{Name: opts.Name}), nil

	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", opts.Backend)
	}
}

func redisOptions(url string) (*redis.Options, error) {
	if url == "" {
		url = "localhost:6379"
	}
	if strings.Contains(url, "://") {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: url}, nil
}
