//go:build !integration

package postgres

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/repository"
	red "tryonjewel-server/internal/infra/redis"
)

// --- mocks for cache decorator tests ---

var _ red.RedisClient = (*mockRedisClient)(nil)

type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, ttl time.Duration) error
}

func (m *mockRedisClient) Ping(context.Context) error { return nil }
func (m *mockRedisClient) Close() error               { return nil }

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", redis.Nil
}

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}
	return nil
}

func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	if m.IncrFunc != nil {
		return m.IncrFunc(ctx, key)
	}
	return 1, nil
}

func (m *mockRedisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if m.ExpireFunc != nil {
		return m.ExpireFunc(ctx, key, ttl)
	}
	return nil
}

type mockInnerSceneRepo struct {
	SaveFunc     func(ctx context.Context, tx repository.Tx, scene *model.Scene) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Scene, error)
	ListAllFunc  func(ctx context.Context, tx repository.Tx) ([]*model.Scene, error)
	DeleteFunc   func(ctx context.Context, tx repository.Tx, id string) error
}

func (m *mockInnerSceneRepo) Save(ctx context.Context, tx repository.Tx, scene *model.Scene) error {
	return m.SaveFunc(ctx, tx, scene)
}

func (m *mockInnerSceneRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Scene, error) {
	return m.FindByIDFunc(ctx, tx, id)
}

func (m *mockInnerSceneRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Scene, error) {
	return m.ListAllFunc(ctx, tx)
}

func (m *mockInnerSceneRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return m.DeleteFunc(ctx, tx, id)
}
