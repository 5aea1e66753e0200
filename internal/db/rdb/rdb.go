// Package rdb owns the process-wide Redis client shared by CounterStore
// and TagCache, selecting a single-node or cluster client based on how
// many nodes config.Redis lists.
package rdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kheina-com/tagsvc/config"
)

var (
	client redis.Cmdable
	m      sync.Mutex
	prefix string
)

const (
	dialTimeout  = 5 * time.Second
	readTimeout  = 3 * time.Second
	writeTimeout = 3 * time.Second
)

// InitRedisClient connects the process-wide client and verifies
// connectivity. Runs once during startup, before any GetRedisClient caller.
func InitRedisClient(nodes []config.Redis) error {
	m.Lock()
	defer m.Unlock()

	if len(nodes) == 1 {
		client = redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", nodes[0].Host, nodes[0].Port),
			Password:     nodes[0].Password,
			DB:           nodes[0].Database,
			DialTimeout:  dialTimeout,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		})
	} else {
		addrs := make([]string, 0, len(nodes))
		byAddr := make(map[string]config.Redis, len(nodes))
		for _, node := range nodes {
			addr := fmt.Sprintf("%s:%d", node.Host, node.Port)
			addrs = append(addrs, addr)
			byAddr[addr] = node
		}
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs: addrs,
			NewClient: func(opt *redis.Options) *redis.Client {
				node := byAddr[opt.Addr]
				opt.Password = node.Password
				opt.DB = node.Database
				opt.DialTimeout = dialTimeout
				opt.ReadTimeout = readTimeout
				opt.WriteTimeout = writeTimeout
				return redis.NewClient(opt)
			},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix = config.GetConfig().App.NameSlug
	return nil
}

// GetRedisClient returns the client InitRedisClient connected, or nil
// before startup completes.
func GetRedisClient() redis.Cmdable {
	return client
}

// AddPrefix namespaces key under the configured app name slug, so multiple
// environments sharing one Redis instance don't collide. With no config
// loaded the key passes through unprefixed.
func AddPrefix(key string) string {
	if prefix == "" {
		m.Lock()
		defer m.Unlock()
		if cfg := config.GetConfig(); cfg != nil {
			prefix = cfg.App.NameSlug
		}
	}
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", prefix, key)
}
