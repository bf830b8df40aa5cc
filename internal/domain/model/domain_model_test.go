package model

import (
	"errors"
	"testing"

	"tryonjewel-server/internal/domain"
)

func newTestJob(t *testing.T, kind JobKind) *GenerationJob {
	t.Helper()
	job, err := NewGenerationJob("user-1", kind, "users/user-1/uploads/ring.jpg", nil, JobParams{
		PackageType: PackageBasic,
		ProductType: "ring",
		SceneID:     "scene-1",
	})
	if err != nil {
		t.Fatalf("NewGenerationJob: %v", err)
	}
	return job
}

func TestNewGenerationJob_RequiresProductType(t *testing.T) {
	_, err := NewGenerationJob("user-1", JobKindImage, "users/user-1/uploads/ring.jpg", nil, JobParams{
		PackageType: PackageBasic,
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewGenerationJob_RequiresSourceAsset(t *testing.T) {
	_, err := NewGenerationJob("user-1", JobKindImage, "", nil, JobParams{
		PackageType: PackageBasic,
		ProductType: "ring",
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestJobStatus_TransitionTable(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		ok       bool
	}{
		{JobStatusPending, JobStatusAnalyzing, true},
		{JobStatusPending, JobStatusGenerating, true},
		{JobStatusPending, JobStatusProcessing, true},
		{JobStatusAnalyzing, JobStatusGenerating, true},
		{JobStatusGenerating, JobStatusCompleted, true},
		{JobStatusProcessing, JobStatusCompleted, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusCompleted, JobStatusProcessing, false},
		{JobStatusError, JobStatusPending, false},
		{JobStatusCompleted, JobStatusError, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestGenerationJob_MarkCompleted_RequiresResult(t *testing.T) {
	job := newTestJob(t, JobKindImage)
	if err := job.Transition(JobStatusGenerating); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := job.MarkCompleted(nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty result, got %v", err)
	}
	if job.Status != JobStatusGenerating {
		t.Fatalf("status must be unchanged after rejected completion, got %s", job.Status)
	}
	if err := job.MarkCompleted([]string{"generated/images/j/img-01.png"}, nil); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if job.Status != JobStatusCompleted || len(job.ResultPaths) == 0 {
		t.Fatalf("completed job must carry result refs: %+v", job)
	}
}

func TestGenerationJob_MarkError_SetsMessage(t *testing.T) {
	job := newTestJob(t, JobKindVideo)
	if err := job.MarkError(""); err != nil {
		t.Fatalf("MarkError: %v", err)
	}
	if job.Status != JobStatusError || job.ErrorMessage == "" {
		t.Fatalf("error job must carry a message: %+v", job)
	}
	// terminal: no further transitions
	if err := job.MarkError("again"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestPackageType_OutputCount(t *testing.T) {
	if got := PackageBasic.OutputCount(); got != 1 {
		t.Errorf("basic: got %d", got)
	}
	if got := PackagePremium.OutputCount(); got != 3 {
		t.Errorf("premium: got %d", got)
	}
	if got := PackageExclusive.OutputCount(); got != 6 {
		t.Errorf("exclusive: got %d", got)
	}
}
