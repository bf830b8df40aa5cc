package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/adapter"
	"tryonjewel-server/internal/domain/ports/repository"
)

// --- repositories ---

type mockJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.GenerationJob
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.GenerationJob)}
}

func (r *mockJobRepo) Save(_ context.Context, _ repository.Tx, job *model.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *mockJobRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *mockJobRepo) FindByIDForUser(ctx context.Context, tx repository.Tx, id, userID string) (*model.GenerationJob, error) {
	j, err := r.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if j.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return j, nil
}

func (r *mockJobRepo) ListByUser(_ context.Context, _ repository.Tx, userID string, offset, limit int) ([]*model.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.GenerationJob
	for _, j := range r.jobs {
		if j.UserID == userID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *mockJobRepo) Delete(_ context.Context, _ repository.Tx, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

func (r *mockJobRepo) ClaimProcessing(_ context.Context, kind model.JobKind) (*model.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.Kind == kind && j.Status == model.JobStatusProcessing {
			cp := *j
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *mockJobRepo) FailStale(_ context.Context, maxAge time.Duration, message string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, j := range r.jobs {
		if !j.Status.Terminal() && time.Since(j.UpdatedAt) > maxAge {
			j.Status = model.JobStatusError
			j.ErrorMessage = message
			n++
		}
	}
	return n, nil
}

func (r *mockJobRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func (r *mockJobRepo) get(id string) *model.GenerationJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id]
}

type mockSceneRepo struct {
	scenes map[string]*model.Scene
}

func (r *mockSceneRepo) Save(_ context.Context, _ repository.Tx, s *model.Scene) error {
	r.scenes[s.ID] = s
	return nil
}

func (r *mockSceneRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Scene, error) {
	s, ok := r.scenes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (r *mockSceneRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Scene, error) {
	var out []*model.Scene
	for _, s := range r.scenes {
		out = append(out, s)
	}
	return out, nil
}

func (r *mockSceneRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	delete(r.scenes, id)
	return nil
}

type mockModelRepo struct {
	models map[string]*model.UserModel
}

func (r *mockModelRepo) Save(_ context.Context, _ repository.Tx, m *model.UserModel) error {
	r.models[m.ID] = m
	return nil
}

func (r *mockModelRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.UserModel, error) {
	m, ok := r.models[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (r *mockModelRepo) ListByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.UserModel, error) {
	var out []*model.UserModel
	for _, m := range r.models {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *mockModelRepo) Delete(_ context.Context, _ repository.Tx, id, userID string) error {
	m, ok := r.models[id]
	if !ok || m.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.models, id)
	return nil
}

// --- adapters ---

type mockStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putCalls  int
	signCalls int
	failPut   bool
}

func newMockStorage() *mockStorage {
	return &mockStorage{objects: map[string][]byte{}}
}

func (s *mockStorage) Put(_ context.Context, path string, r io.Reader, _ int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.failPut {
		return fmt.Errorf("storage unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[path] = data
	return nil
}

func (s *mockStorage) Get(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *mockStorage) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signCalls++
	return "https://store.local/" + path + "?sig=" + fmt.Sprint(s.signCalls), nil
}

type fakeImageGen struct {
	calls  int
	err    error
	assets []model.GeneratedAsset
}

func (g *fakeImageGen) Name() string { return "fake" }

func (g *fakeImageGen) GenerateImages(_ context.Context, req adapter.ImageRequest) ([]model.GeneratedAsset, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if g.assets != nil {
		return g.assets, nil
	}
	out := make([]model.GeneratedAsset, req.Count)
	for i := range out {
		out[i] = model.GeneratedAsset{ContentType: "image/png", Data: []byte("png-bytes")}
	}
	return out, nil
}

type fakeVideoGen struct {
	mu          sync.Mutex
	submitCalls int
	pollCalls   int
	submitErr   error
	// pollScript is consumed one entry per poll; the last entry repeats.
	pollScript []adapter.VideoOperation
	pollErr    error
}

func (g *fakeVideoGen) Name() string { return "fake" }

func (g *fakeVideoGen) SubmitVideo(_ context.Context, _ adapter.VideoRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitCalls++
	if g.submitErr != nil {
		return "", g.submitErr
	}
	return fmt.Sprintf("operations/op-%d", g.submitCalls), nil
}

func (g *fakeVideoGen) PollVideo(_ context.Context, _ string) (adapter.VideoOperation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pollCalls++
	if g.pollErr != nil {
		return adapter.VideoOperation{}, g.pollErr
	}
	idx := g.pollCalls - 1
	if idx >= len(g.pollScript) {
		idx = len(g.pollScript) - 1
	}
	return g.pollScript[idx], nil
}

type fakeQuota struct {
	calls     int
	lastLimit int
	deny      bool
	err       error
}

func (q *fakeQuota) Consume(_ context.Context, _ string, limit int) (bool, error) {
	q.calls++
	q.lastLimit = limit
	if q.err != nil {
		return false, q.err
	}
	return !q.deny, nil
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

func (r *mockUserRepo) Save(_ context.Context, _ repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *mockUserRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *mockUserRepo) FindByEmail(_ context.Context, _ repository.Tx, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *mockUserRepo) CountUsers(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

// fakeGuard is an in-process PollGuard with the same fail-fast contract as
// the redis one.
type fakeGuard struct {
	mu   sync.Mutex
	held map[string]string
}

func newFakeGuard() *fakeGuard { return &fakeGuard{held: map[string]string{}} }

func (g *fakeGuard) TryLock(_ context.Context, key string, _ time.Duration) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return "", domain.ErrPollInFlight
	}
	g.held[key] = key
	return key, nil
}

func (g *fakeGuard) Unlock(_ context.Context, key, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

type fakeEvents struct {
	mu       sync.Mutex
	statuses []model.JobStatus
}

func (e *fakeEvents) PublishJobUpdate(job *model.GenerationJob) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statuses = append(e.statuses, job.Status)
}

func (e *fakeEvents) seen() []model.JobStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.JobStatus(nil), e.statuses...)
}

type fakeCompressor struct {
	err error
}

func (c *fakeCompressor) Compress(r io.Reader) (*adapter.CompressedImage, error) {
	if c.err != nil {
		return nil, c.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &adapter.CompressedImage{Data: data, ContentType: "image/jpeg", Width: 512, Height: 512}, nil
}
