package postgres

import (
	"context"
	"encoding/json"
	"time"

	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/repository"
	"tryonjewel-server/internal/infra/metrics"
	red "tryonjewel-server/internal/infra/redis"
)

var _ repository.SceneRepository = (*sceneRepoCacheDecorator)(nil)

// sceneRepoCacheDecorator caches the read-mostly scene catalog in redis.
// Writes invalidate both the single record and the full list.
type sceneRepoCacheDecorator struct {
	inner repository.SceneRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewSceneRepoCacheDecorator(inner repository.SceneRepository, cache red.RedisClient) repository.SceneRepository {
	return &sceneRepoCacheDecorator{inner: inner, cache: cache, ttl: time.Hour}
}

func sceneKey(id string) string { return "scene:" + id }

const sceneListKey = "scenes:all"

func (d *sceneRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Scene, error) {
	if val, err := d.cache.Get(ctx, sceneKey(id)); err == nil {
		var s model.Scene
		if json.Unmarshal([]byte(val), &s) == nil {
			metrics.IncCacheRequest("scene", "hit")
			return &s, nil
		}
	}
	metrics.IncCacheRequest("scene", "miss")

	s, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(s); err == nil {
		_ = d.cache.Set(ctx, sceneKey(id), b, d.ttl)
	}
	return s, nil
}

func (d *sceneRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Scene, error) {
	if val, err := d.cache.Get(ctx, sceneListKey); err == nil {
		var scenes []*model.Scene
		if json.Unmarshal([]byte(val), &scenes) == nil {
			metrics.IncCacheRequest("scene_list", "hit")
			return scenes, nil
		}
	}
	metrics.IncCacheRequest("scene_list", "miss")

	scenes, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(scenes); err == nil {
		_ = d.cache.Set(ctx, sceneListKey, b, d.ttl)
	}
	return scenes, nil
}

func (d *sceneRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, scene *model.Scene) error {
	if err := d.inner.Save(ctx, tx, scene); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, sceneKey(scene.ID))
	_ = d.cache.Del(ctx, sceneListKey)
	return nil
}

func (d *sceneRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if err := d.inner.Delete(ctx, tx, id); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, sceneKey(id))
	_ = d.cache.Del(ctx, sceneListKey)
	return nil
}
