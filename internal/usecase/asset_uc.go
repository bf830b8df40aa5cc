package usecase

import (
	"context"
	"time"

	"tryonjewel-server/internal/domain/ports/adapter"
)

// URLCache is the process-local signed-URL cache. Get must report a miss
// for entries past their TTL or past the URL's own embedded expiry.
type URLCache interface {
	Get(path string) (string, bool)
	Put(path, signedURL string)
}

// AssetService resolves storage paths to time-limited URLs. Signing goes
// through the cache so repeated views of the same asset inside the cache
// window cost a single signing call.
type AssetService struct {
	storage adapter.ObjectStorage
	cache   URLCache
	signTTL time.Duration
}

func NewAssetService(storage adapter.ObjectStorage, cache URLCache, signTTL time.Duration) *AssetService {
	return &AssetService{storage: storage, cache: cache, signTTL: signTTL}
}

func (s *AssetService) ResolveURL(ctx context.Context, path string) (string, error) {
	if u, ok := s.cache.Get(path); ok {
		return u, nil
	}
	u, err := s.storage.SignedURL(ctx, path, s.signTTL)
	if err != nil {
		return "", err
	}
	s.cache.Put(path, u)
	return u, nil
}

// ResolveAll maps result paths to signed URLs, appending any provider-side
// URLs untouched. A path that fails to sign is skipped rather than failing
// the whole response.
func (s *AssetService) ResolveAll(ctx context.Context, paths, urls []string) []string {
	out := make([]string, 0, len(paths)+len(urls))
	for _, p := range paths {
		u, err := s.ResolveURL(ctx, p)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return append(out, urls...)
}
