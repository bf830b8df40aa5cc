package model

import (
	"time"

	"github.com/oklog/ulid/v2"

	"tryonjewel-server/internal/domain"
)

type JobKind string

const (
	JobKindImage JobKind = "image"
	JobKindVideo JobKind = "video"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusAnalyzing  JobStatus = "analyzing"
	JobStatusGenerating JobStatus = "generating"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// transitions is the allowed status graph. Terminal states have no outgoing
// edges; every non-terminal state may fail into JobStatusError.
var transitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusAnalyzing, JobStatusGenerating, JobStatusProcessing, JobStatusError},
	JobStatusAnalyzing:  {JobStatusGenerating, JobStatusError},
	JobStatusGenerating: {JobStatusCompleted, JobStatusError},
	JobStatusProcessing: {JobStatusCompleted, JobStatusError},
	JobStatusCompleted:  {},
	JobStatusError:      {},
}

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PackageType is the user-selected tier; it determines how many output
// images one job produces.
type PackageType string

const (
	PackageBasic     PackageType = "basic"
	PackagePremium   PackageType = "premium"
	PackageExclusive PackageType = "exclusive"
	PackageSocial    PackageType = "social"
	PackageVideo     PackageType = "video"
)

func (p PackageType) OutputCount() int {
	switch p {
	case PackagePremium:
		return 3
	case PackageExclusive:
		return 6
	default:
		return 1
	}
}

func (p PackageType) Valid() bool {
	switch p {
	case PackageBasic, PackagePremium, PackageExclusive, PackageSocial, PackageVideo:
		return true
	}
	return false
}

type MetalColor string

const (
	MetalUnchanged MetalColor = ""
	MetalYellow    MetalColor = "yellow_gold"
	MetalWhite     MetalColor = "white_gold"
	MetalRose      MetalColor = "rose_gold"
	MetalSilver    MetalColor = "silver"
)

// JobParams carries the user-selected generation parameters.
type JobParams struct {
	PackageType        PackageType `json:"package_type"`
	ProductType        string      `json:"product_type"`
	SceneID            string      `json:"scene_id,omitempty"`
	StyleReferencePath string      `json:"style_reference_path,omitempty"`
	ModelID            string      `json:"model_id,omitempty"`
	MetalColorOverride MetalColor  `json:"metal_color_override,omitempty"`
	AspectRatio        string      `json:"aspect_ratio,omitempty"`
}

// GenerationJob tracks one generation request from submission to result.
// Status and result fields are written only by the server side; clients read.
type GenerationJob struct {
	ID              string
	UserID          string
	Kind            JobKind
	Status          JobStatus
	PrimaryPath     string
	AdditionalPaths []string
	Params          JobParams
	Prompt          string
	OperationID     string
	ResultPaths     []string
	ResultURLs      []string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewGenerationJob(userID string, kind JobKind, primaryPath string, additional []string, params JobParams) (*GenerationJob, error) {
	if userID == "" || primaryPath == "" {
		return nil, domain.ErrInvalidArgument
	}
	if params.ProductType == "" || !params.PackageType.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &GenerationJob{
		ID:              NewID(),
		UserID:          userID,
		Kind:            kind,
		Status:          JobStatusPending,
		PrimaryPath:     primaryPath,
		AdditionalPaths: additional,
		Params:          params,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Transition moves the job to next, rejecting edges outside the table.
func (j *GenerationJob) Transition(next JobStatus) error {
	if !j.Status.CanTransitionTo(next) {
		return domain.ErrInvalidTransition
	}
	j.Status = next
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCompleted flips the job to completed. A completed job must carry at
// least one result reference, so empty results are rejected.
func (j *GenerationJob) MarkCompleted(resultPaths, resultURLs []string) error {
	if len(resultPaths) == 0 && len(resultURLs) == 0 {
		return domain.ErrInvalidArgument
	}
	if err := j.Transition(JobStatusCompleted); err != nil {
		return err
	}
	j.ResultPaths = resultPaths
	j.ResultURLs = resultURLs
	return nil
}

// MarkError flips the job to error. An error job must carry a message.
func (j *GenerationJob) MarkError(msg string) error {
	if msg == "" {
		msg = "generation failed"
	}
	if j.Status.Terminal() {
		return domain.ErrInvalidTransition
	}
	j.Status = JobStatusError
	j.ErrorMessage = msg
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// NewID returns a lexicographically sortable job/asset identifier.
func NewID() string {
	return ulid.Make().String()
}
