package web

import (
	"context"
	"io"
	"time"

	"tryonjewel-server/internal/domain/model"
	ports "tryonjewel-server/internal/domain/ports/usecase"
)

type mockGenUC struct {
	SubmitImageFunc func(ctx context.Context, userID string, req ports.SubmitRequest) (*model.GenerationJob, error)
	SubmitVideoFunc func(ctx context.Context, userID string, req ports.SubmitRequest) (*model.GenerationJob, error)
}

func (m *mockGenUC) SubmitImage(ctx context.Context, userID string, req ports.SubmitRequest) (*model.GenerationJob, error) {
	return m.SubmitImageFunc(ctx, userID, req)
}

func (m *mockGenUC) SubmitVideo(ctx context.Context, userID string, req ports.SubmitRequest) (*model.GenerationJob, error) {
	return m.SubmitVideoFunc(ctx, userID, req)
}

type mockStatusUC struct {
	CheckVideoFunc func(ctx context.Context, jobID, userID string) (ports.StatusResult, error)
}

func (m *mockStatusUC) CheckVideo(ctx context.Context, jobID, userID string) (ports.StatusResult, error) {
	return m.CheckVideoFunc(ctx, jobID, userID)
}

type mockUploadUC struct {
	UploadFunc func(ctx context.Context, userID, filename, contentType string, r io.Reader, size int64) (*model.SourceAsset, error)
}

func (m *mockUploadUC) Upload(ctx context.Context, userID, filename, contentType string, r io.Reader, size int64) (*model.SourceAsset, error) {
	return m.UploadFunc(ctx, userID, filename, contentType, r, size)
}

type mockAssetUC struct {
	ResolveURLFunc func(ctx context.Context, path string) (string, error)
}

func (m *mockAssetUC) ResolveURL(ctx context.Context, path string) (string, error) {
	if m.ResolveURLFunc != nil {
		return m.ResolveURLFunc(ctx, path)
	}
	return "https://store.local/" + path + "?sig=test", nil
}

func (m *mockAssetUC) ResolveAll(ctx context.Context, paths, urls []string) []string {
	out := make([]string, 0, len(paths)+len(urls))
	for _, p := range paths {
		u, err := m.ResolveURL(ctx, p)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return append(out, urls...)
}

type mockCatalogUC struct {
	ListScenesFunc func(ctx context.Context) ([]*model.Scene, error)
}

func (m *mockCatalogUC) ListScenes(ctx context.Context) ([]*model.Scene, error) {
	return m.ListScenesFunc(ctx)
}

func (m *mockCatalogUC) ListUserModels(ctx context.Context, userID string) ([]*model.UserModel, error) {
	return nil, nil
}

func (m *mockCatalogUC) CreateUserModel(ctx context.Context, um *model.UserModel) (*model.UserModel, error) {
	return um, nil
}

func (m *mockCatalogUC) DeleteUserModel(ctx context.Context, id, userID string) error {
	return nil
}

type mockJobUC struct {
	GetFunc    func(ctx context.Context, jobID, userID string) (*model.GenerationJob, error)
	ListFunc   func(ctx context.Context, userID string, offset, limit int) ([]*model.GenerationJob, error)
	DeleteFunc func(ctx context.Context, jobID, userID string) error
}

func (m *mockJobUC) Get(ctx context.Context, jobID, userID string) (*model.GenerationJob, error) {
	return m.GetFunc(ctx, jobID, userID)
}

func (m *mockJobUC) List(ctx context.Context, userID string, offset, limit int) ([]*model.GenerationJob, error) {
	return m.ListFunc(ctx, userID, offset, limit)
}

func (m *mockJobUC) Delete(ctx context.Context, jobID, userID string) error {
	return m.DeleteFunc(ctx, jobID, userID)
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}
