package memestore

import (
	"context"
	"fmt"
	"time"

	"github.com/memecard-ai/memecard/internal/cache/keys"
	"github.com/memecard-ai/memecard/internal/cache/redisstore"
)

// MemeStore persists schema-validated model replies keyed by query.
type MemeStore interface {
	GetResult(ctx context.Context, query string) ([]byte, bool, error)

	PutResult(ctx context.Context, query string, body []byte, ttl time.Duration) error
}

type redisMemeStore struct {
	cli        *redisstore.Client
	defaultTTL time.Duration
}

func NewRedisStore(cli *redisstore.Client, defaultTTL time.Duration) MemeStore {
	return &redisMemeStore{
		cli:        cli,
		defaultTTL: defaultTTL,
	}
}

func (s *redisMemeStore) GetResult(ctx context.Context, query string) ([]byte, bool, error) {
	k := keys.ResultKey(query)
	body, found, err := s.cli.Get(ctx, k)
	if err != nil {
		return nil, false, fmt.Errorf("memestore redis GET %q: %w", k, err)
	}
	return body, found, nil
}

func (s *redisMemeStore) PutResult(
	ctx context.Context,
	query string,
	body []byte,
	ttl time.Duration,
) error {
	t := ttl
	if t <= 0 {
		t = s.defaultTTL
	}

	k := keys.ResultKey(query)
	if err := s.cli.Set(ctx, k, body, t); err != nil {
		return fmt.Errorf("memestore redis SET %q: %w", k, err)
	}
	return nil
}
