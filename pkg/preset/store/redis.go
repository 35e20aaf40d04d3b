package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	// Addr is host:port. Empty falls back to the STRATA_REDIS_ADDR
	// environment variable, then to localhost:6379.
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces all keys. Defaults to "strata".
	KeyPrefix string
}

// RedisStore keeps presets in Redis: one JSON value per preset
// plus a per-folder set for listing. Suited to deployments where several
// server instances share a hot preset library.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = os.Getenv("STRATA_REDIS_ADDR")
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "strata"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client, prefix: cfg.KeyPrefix}, nil
}

func (s *RedisStore) presetKey(folder, name string) string {
	return fmt.Sprintf("%s:preset:%s:%s", s.prefix, folder, name)
}

func (s *RedisStore) folderKey(folder string) string {
	return fmt.Sprintf("%s:folder:%s", s.prefix, folder)
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context, folder string) ([]Info, error) {
	folder = normalizeFolder(folder)
	names, err := s.client.SMembers(ctx, s.folderKey(folder)).Result()
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folder, err)
	}
	sort.Strings(names)

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		infos = append(infos, Info{Folder: folder, Name: name})
	}
	return infos, nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, folder, name string) (*Record, error) {
	folder = normalizeFolder(folder)
	if err := checkKey(folder, name); err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, s.presetKey(folder, name)).Bytes()
	if err == redis.Nil {
		return nil, notFound(folder, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load preset %s/%s: %w", folder, name, err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("parse stored preset %s/%s: %w", folder, name, err)
	}
	return &rec, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	folder := normalizeFolder(rec.Folder)
	if err := checkKey(folder, rec.Name); err != nil {
		return err
	}

	stored := *rec
	stored.Folder = folder
	stored.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal preset record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.presetKey(folder, rec.Name), raw, 0)
	pipe.SAdd(ctx, s.folderKey(folder), rec.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save preset %s/%s: %w", folder, rec.Name, err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, folder, name string) error {
	folder = normalizeFolder(folder)
	if err := checkKey(folder, name); err != nil {
		return err
	}

	n, err := s.client.Del(ctx, s.presetKey(folder, name)).Result()
	if err != nil {
		return fmt.Errorf("delete preset %s/%s: %w", folder, name, err)
	}
	if n == 0 {
		return notFound(folder, name)
	}
	if err := s.client.SRem(ctx, s.folderKey(folder), name).Err(); err != nil {
		return fmt.Errorf("unindex preset %s/%s: %w", folder, name, err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
