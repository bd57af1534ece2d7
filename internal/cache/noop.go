package cache

import (
	"context"
	"time"
)

// NoopStore is used when caching is disabled.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Get(_ context.Context, _ string) ([]byte, bool, error) { return nil, false, nil }
func (n *NoopStore) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
func (n *NoopStore) Close() error { return nil }
