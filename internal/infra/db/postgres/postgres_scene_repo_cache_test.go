//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/repository"
)

func TestSceneRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	scene := &model.Scene{ID: "scene-1", Name: "Marble", Prompt: "marble pedestal"}
	sceneJSON, _ := json.Marshal(scene)

	t.Run("FindByID returns from cache on hit", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return string(sceneJSON), nil
			},
		}
		innerCalled := false
		inner := &mockInnerSceneRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Scene, error) {
				innerCalled = true
				return nil, nil
			},
		}

		got, err := NewSceneRepoCacheDecorator(inner, mockRedis).FindByID(ctx, nil, "scene-1")
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if innerCalled {
			t.Error("inner repository must not be hit on a cache hit")
		}
		if got == nil || got.ID != "scene-1" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("FindByID falls through and populates on miss", func(t *testing.T) {
		var setKey string
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "", redis.Nil
			},
			SetFunc: func(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
				setKey = key
				return nil
			},
		}
		inner := &mockInnerSceneRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.Scene, error) {
				return scene, nil
			},
		}

		got, err := NewSceneRepoCacheDecorator(inner, mockRedis).FindByID(ctx, nil, "scene-1")
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if got.ID != "scene-1" {
			t.Errorf("got %+v", got)
		}
		if setKey != "scene:scene-1" {
			t.Errorf("cache populated under %q", setKey)
		}
	})

	t.Run("Save invalidates record and list keys", func(t *testing.T) {
		var deleted []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deleted = append(deleted, keys...)
				return nil
			},
		}
		inner := &mockInnerSceneRepo{
			SaveFunc: func(ctx context.Context, tx repository.Tx, s *model.Scene) error { return nil },
		}

		if err := NewSceneRepoCacheDecorator(inner, mockRedis).Save(ctx, nil, scene); err != nil {
			t.Fatalf("Save: %v", err)
		}
		want := map[string]bool{"scene:scene-1": true, "scenes:all": true}
		for _, k := range deleted {
			delete(want, k)
		}
		if len(want) != 0 {
			t.Errorf("keys not invalidated: %v", want)
		}
	})
}
