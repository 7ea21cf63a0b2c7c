package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodian-app/upkeep/internal/config"
	"github.com/custodian-app/upkeep/internal/infra/llm"
	"github.com/custodian-app/upkeep/internal/modules/model"
	"github.com/custodian-app/upkeep/internal/modules/repo"
	"github.com/custodian-app/upkeep/internal/pkg/fingerprint"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Generator produces a maintenance task plan for one asset snapshot.
type Generator interface {
	Generate(ctx context.Context, prompt string, snap fingerprint.AssetSnapshot) ([]llm.TaskDraft, error)
}

// EventPublisher pushes domain events; failures are logged, never surfaced.
type EventPublisher interface {
	PublishJSON(ctx context.Context, v any) error
}

// TaskListOutput is an asset's task plan together with its generation state.
type TaskListOutput struct {
	AssetID        uuid.UUID    `json:"asset_id"`
	TasksStatus    string       `json:"tasks_status"`
	TasksUpdatedAt *time.Time   `json:"tasks_updated_at,omitempty"`
	Tasks          []model.Task `json:"tasks"`
}

// Where a generate call's task set came from.
const (
	SourceCache     = "cache"
	SourceGenerated = "generated"
)

// GenerateResult reports whether the plan was served from cache or freshly
// generated.
type GenerateResult struct {
	Source      string       `json:"source"`
	TasksStatus string       `json:"tasks_status"`
	Tasks       []model.Task `json:"tasks"`
}

type TaskService interface {
	ListForAsset(ctx context.Context, userID, assetID uuid.UUID) (*TaskListOutput, error)
	GetForAsset(ctx context.Context, userID, assetID, taskID uuid.UUID) (*model.Task, error)
	Generate(ctx context.Context, userID, assetID uuid.UUID, prompt string) (*GenerateResult, error)
}

type taskService struct {
	tasks  repo.TaskRepo
	assets repo.AssetRepo
	gen    Generator
	pub    EventPublisher
	log    *zap.Logger
	cfg    *config.Config
	now    func() time.Time
}

func NewTaskService(tasks repo.TaskRepo, assets repo.AssetRepo, gen Generator, pub EventPublisher, log *zap.Logger, cfg *config.Config) TaskService {
	return &taskService{
		tasks:  tasks,
		assets: assets,
		gen:    gen,
		pub:    pub,
		log:    log,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *taskService) ListForAsset(ctx context.Context, userID, assetID uuid.UUID) (*TaskListOutput, error) {
	a, err := s.assets.GetOwned(ctx, userID, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	tasks, err := s.tasks.ListByAsset(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}
	return &TaskListOutput{
		AssetID:        a.ID,
		TasksStatus:    a.TasksStatus,
		TasksUpdatedAt: a.TasksUpdatedAt,
		Tasks:          tasks,
	}, nil
}

func (s *taskService) GetForAsset(ctx context.Context, userID, assetID, taskID uuid.UUID) (*model.Task, error) {
	t, err := s.tasks.GetOwned(ctx, userID, assetID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Generate returns the asset's task plan, producing a new one only when the
// request fingerprint differs from the stored plan's. At most one generation
// runs per asset: concurrent callers get ErrGenerationInProgress. A pending
// lease older than the configured TTL is treated as abandoned and reclaimed.
func (s *taskService) Generate(ctx context.Context, userID, assetID uuid.UUID, prompt string) (*GenerateResult, error) {
	a, err := s.assets.GetOwned(ctx, userID, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	snap := snapshotOf(a)
	hash := fingerprint.PromptHash(prompt, snap, a.TasksVersion)

	// Cache fast path: the stored plan already answers this exact request.
	if a.TasksStatus == model.TasksStatusReady &&
		a.TasksPromptHash != nil && *a.TasksPromptHash == hash {
		tasks, err := s.tasks.ListByAsset(ctx, userID, assetID)
		if err != nil {
			return nil, err
		}
		return &GenerateResult{
			Source:      SourceCache,
			TasksStatus: model.TasksStatusReady,
			Tasks:       tasks,
		}, nil
	}

	now := s.now()
	staleBefore := now.Add(-time.Duration(s.cfg.Tasks.LeaseTTLMin) * time.Minute)
	ok, err := s.assets.AcquireGeneration(ctx, userID, assetID, now, staleBefore)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGenerationInProgress
	}

	// The lease is ours; finish the run even if the caller hangs up, so the
	// asset is never stranded in pending until the TTL expires.
	runCtx := context.WithoutCancel(ctx)

	drafts, err := s.gen.Generate(runCtx, prompt, snap)
	if err != nil {
		s.fail(runCtx, userID, assetID, err)
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	tasks := make([]model.Task, 0, len(drafts))
	for _, d := range drafts {
		tasks = append(tasks, model.Task{
			AssetID:     assetID,
			UserID:      userID,
			Name:        d.Name,
			Description: d.Description,
			Priority:    d.Priority,
			Frequency:   d.Frequency,
			Difficulty:  d.Difficulty,
			Duration:    d.Duration,
			Who:         d.Who,
			Steps:       d.Steps,
			Tools:       d.Tools,
		})
	}

	if err := s.tasks.ReplaceGeneration(runCtx, userID, assetID, hash, tasks, s.now()); err != nil {
		s.fail(runCtx, userID, assetID, err)
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	s.publishGenerated(runCtx, userID, assetID, hash, len(tasks))

	stored, err := s.tasks.ListByAsset(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{
		Source:      SourceGenerated,
		TasksStatus: model.TasksStatusReady,
		Tasks:       stored,
	}, nil
}

// fail stamps the asset error. Best effort: the lease TTL is the backstop
// when even the stamp cannot be written.
func (s *taskService) fail(ctx context.Context, userID, assetID uuid.UUID, cause error) {
	s.log.Error("task generation failed",
		zap.String("asset_id", assetID.String()), zap.Error(cause))
	if err := s.assets.MarkGenerationError(ctx, userID, assetID); err != nil {
		s.log.Warn("mark generation error failed",
			zap.String("asset_id", assetID.String()), zap.Error(err))
	}
}

func (s *taskService) publishGenerated(ctx context.Context, userID, assetID uuid.UUID, hash string, count int) {
	if s.pub == nil {
		return
	}
	evt := map[string]any{
		"event":        "tasks.generated",
		"user_id":      userID.String(),
		"asset_id":     assetID.String(),
		"prompt_hash":  hash,
		"task_count":   count,
		"generated_at": s.now().UTC().Format(time.RFC3339),
	}
	if err := s.pub.PublishJSON(ctx, evt); err != nil {
		s.log.Warn("publish tasks.generated failed",
			zap.String("asset_id", assetID.String()), zap.Error(err))
	}
}

func snapshotOf(a *model.Asset) fingerprint.AssetSnapshot {
	return fingerprint.AssetSnapshot{
		ID:          a.ID.String(),
		Name:        a.Name,
		Type:        a.Type,
		SubType:     a.SubType,
		Brand:       a.Brand,
		ModelNumber: a.ModelNumber,
		Year:        a.Year,
	}
}
