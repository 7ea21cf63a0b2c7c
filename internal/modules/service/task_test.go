package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/custodian-app/upkeep/internal/config"
	"github.com/custodian-app/upkeep/internal/infra/llm"
	"github.com/custodian-app/upkeep/internal/modules/model"
	"github.com/custodian-app/upkeep/internal/pkg/fingerprint"
)

// MockTaskRepo is a mock implementation of repo.TaskRepo
type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) ListByAsset(ctx context.Context, userID, assetID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, userID, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepo) GetOwned(ctx context.Context, userID, assetID, taskID uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, userID, assetID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepo) ReplaceGeneration(ctx context.Context, userID, assetID uuid.UUID, hash string, tasks []model.Task, at time.Time) error {
	args := m.Called(ctx, userID, assetID, hash, tasks, at)
	return args.Error(0)
}

// MockAssetRepo is a mock implementation of repo.AssetRepo
type MockAssetRepo struct {
	mock.Mock
}

func (m *MockAssetRepo) Create(ctx context.Context, a *model.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssetRepo) Update(ctx context.Context, a *model.Asset, fields map[string]any) error {
	args := m.Called(ctx, a, fields)
	return args.Error(0)
}

func (m *MockAssetRepo) Delete(ctx context.Context, userID, assetID uuid.UUID) error {
	args := m.Called(ctx, userID, assetID)
	return args.Error(0)
}

func (m *MockAssetRepo) GetOwned(ctx context.Context, userID, assetID uuid.UUID) (*model.Asset, error) {
	args := m.Called(ctx, userID, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Asset, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Asset), args.Error(1)
}

func (m *MockAssetRepo) AcquireGeneration(ctx context.Context, userID, assetID uuid.UUID, now, staleBefore time.Time) (bool, error) {
	args := m.Called(ctx, userID, assetID, now, staleBefore)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssetRepo) MarkGenerationError(ctx context.Context, userID, assetID uuid.UUID) error {
	args := m.Called(ctx, userID, assetID)
	return args.Error(0)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, snap fingerprint.AssetSnapshot) ([]llm.TaskDraft, error) {
	args := m.Called(ctx, prompt, snap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]llm.TaskDraft), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, v any) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func testCfg() *config.Config {
	return &config.Config{Tasks: config.TasksCfg{LeaseTTLMin: 10}}
}

func readyAsset(userID uuid.UUID, hash string) *model.Asset {
	now := time.Now()
	return &model.Asset{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            "Furnace",
		Type:            "appliance",
		TasksStatus:     model.TasksStatusReady,
		TasksVersion:    1,
		TasksPromptHash: &hash,
		TasksUpdatedAt:  &now,
	}
}

func hashFor(a *model.Asset, prompt string) string {
	return fingerprint.PromptHash(prompt, fingerprint.AssetSnapshot{
		ID:          a.ID.String(),
		Name:        a.Name,
		Type:        a.Type,
		SubType:     a.SubType,
		Brand:       a.Brand,
		ModelNumber: a.ModelNumber,
		Year:        a.Year,
	}, a.TasksVersion)
}

func TestGenerate_AssetNotFound(t *testing.T) {
	tasks := new(MockTaskRepo)
	assets := new(MockAssetRepo)
	gen := new(MockGenerator)

	userID, assetID := uuid.New(), uuid.New()
	assets.On("GetOwned", mock.Anything, userID, assetID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewTaskService(tasks, assets, gen, nil, zap.NewNop(), testCfg())
	_, err := svc.Generate(context.Background(), userID, assetID, "")

	assert.ErrorIs(t, err, ErrNotFound)
	gen.AssertNotCalled(t, "Generate")
}

func TestGenerate_CacheFastPath(t *testing.T) {
	tasks := new(MockTaskRepo)
	assets := new(MockAssetRepo)
	gen := new(MockGenerator)

	userID := uuid.New()
	a := readyAsset(userID, "placeholder")
	hash := hashFor(a, "keep it simple")
	a.TasksPromptHash = &hash

	stored := []model.Task{{ID: uuid.New(), AssetID: a.ID, UserID: userID, Name: "Inspect"}}
	assets.On("GetOwned", mock.Anything, userID, a.ID).Return(a, nil)
	tasks.On("ListByAsset", mock.Anything, userID, a.ID).Return(stored, nil)

	svc := NewTaskService(tasks, assets, gen, nil, zap.NewNop(), testCfg())
	res, err := svc.Generate(context.Background(), userID, a.ID, "keep it simple")

	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, model.TasksStatusReady, res.TasksStatus)
	assert.Equal(t, stored, res.Tasks)
	// The external generator must not be consulted on a cache hit.
	gen.AssertNotCalled(t, "Generate")
	assets.AssertNotCalled(t, "AcquireGeneration")
}

func TestGenerate_LockContention(t *testing.T) {
	tasks := new(MockTaskRepo)
	assets := new(MockAssetRepo)
	gen := new(MockGenerator)

	userID := uuid.New()
	a := readyAsset(userID, "old-hash")
	a.TasksStatus = model.TasksStatusPending

	assets.On("GetOwned", mock.Anything, userID, a.ID).Return(a, nil)
	assets.On("AcquireGeneration", mock.Anything, userID, a.ID, mock.Anything, mock.Anything).
		Return(false, nil)

	svc := NewTaskService(tasks, assets, gen, nil, zap.NewNop(), testCfg())
	_, err := svc.Generate(context.Background(), userID, a.ID, "")

	assert.ErrorIs(t, err, ErrGenerationInProgress)
	gen.AssertNotCalled(t, "Generate")
	tasks.AssertNotCalled(t, "ReplaceGeneration")
}

func TestGenerate_GeneratorFailureStampsError(t *testing.T) {
	tasks := new(MockTaskRepo)
	assets := new(MockAssetRepo)
	gen := new(MockGenerator)

	userID := uuid.New()
	a := readyAsset(userID, "stale-hash")

	assets.On("GetOwned", mock.Anything, userID, a.ID).Return(a, nil)
	assets.On("AcquireGeneration", mock.Anything, userID, a.ID, mock.Anything, mock.Anything).
		Return(true, nil)
	gen.On("Generate", mock.Anything, "new prompt", mock.Anything).
		Return(nil, errors.New("upstream model error: status 500"))
	assets.On("MarkGenerationError", mock.Anything, userID, a.ID).Return(nil)

	svc := NewTaskService(tasks, assets, gen, nil, zap.NewNop(), testCfg())
	_, err := svc.Generate(context.Background(), userID, a.ID, "new prompt")

	assert.ErrorIs(t, err, ErrGeneration)
	assets.AssertCalled(t, "MarkGenerationError", mock.Anything, userID, a.ID)
	tasks.AssertNotCalled(t, "ReplaceGeneration")
}

func TestGenerate_Success(t *testing.T) {
	tasks := new(MockTaskRepo)
	assets := new(MockAssetRepo)
	gen := new(MockGenerator)
	pub := new(MockPublisher)

	userID := uuid.New()
	a := readyAsset(userID, "stale-hash")
	wantHash := hashFor(a, "fresh")

	drafts := []llm.TaskDraft{{
		Name: "Replace filter", Priority: 1, Frequency: "every 3 months",
		Difficulty: "easy", Duration: "15 min", Who: "owner",
	}}
	stored := []model.Task{{ID: uuid.New(), AssetID: a.ID, UserID: userID, Name: "Replace filter", Priority: 1}}

	assets.On("GetOwned", mock.Anything, userID, a.ID).Return(a, nil)
	assets.On("AcquireGeneration", mock.Anything, userID, a.ID, mock.Anything, mock.Anything).
		Return(true, nil)
	gen.On("Generate", mock.Anything, "fresh", mock.Anything).Return(drafts, nil).Once()
	tasks.On("ReplaceGeneration", mock.Anything, userID, a.ID, wantHash, mock.Anything, mock.Anything).
		Return(nil)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)
	tasks.On("ListByAsset", mock.Anything, userID, a.ID).Return(stored, nil)

	svc := NewTaskService(tasks, assets, gen, pub, zap.NewNop(), testCfg())
	res, err := svc.Generate(context.Background(), userID, a.ID, "fresh")

	require.NoError(t, err)
	assert.Equal(t, SourceGenerated, res.Source)
	assert.Equal(t, stored, res.Tasks)
	gen.AssertNumberOfCalls(t, "Generate", 1)
	pub.AssertCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	assets.AssertNotCalled(t, "MarkGenerationError")
}

func TestGenerate_PublishFailureIsNotFatal(t *testing.T) {
	tasks := new(MockTaskRepo)
	assets := new(MockAssetRepo)
	gen := new(MockGenerator)
	pub := new(MockPublisher)

	userID := uuid.New()
	a := readyAsset(userID, "stale-hash")

	assets.On("GetOwned", mock.Anything, userID, a.ID).Return(a, nil)
	assets.On("AcquireGeneration", mock.Anything, userID, a.ID, mock.Anything, mock.Anything).
		Return(true, nil)
	gen.On("Generate", mock.Anything, "", mock.Anything).
		Return([]llm.TaskDraft{{Name: "Inspect"}}, nil)
	tasks.On("ReplaceGeneration", mock.Anything, userID, a.ID, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	tasks.On("ListByAsset", mock.Anything, userID, a.ID).Return([]model.Task{}, nil)

	svc := NewTaskService(tasks, assets, gen, pub, zap.NewNop(), testCfg())
	res, err := svc.Generate(context.Background(), userID, a.ID, "")

	require.NoError(t, err)
	assert.Equal(t, SourceGenerated, res.Source)
}

func TestGenerate_PersistFailureStampsError(t *testing.T) {
	tasks := new(MockTaskRepo)
	assets := new(MockAssetRepo)
	gen := new(MockGenerator)

	userID := uuid.New()
	a := readyAsset(userID, "stale-hash")

	assets.On("GetOwned", mock.Anything, userID, a.ID).Return(a, nil)
	assets.On("AcquireGeneration", mock.Anything, userID, a.ID, mock.Anything, mock.Anything).
		Return(true, nil)
	gen.On("Generate", mock.Anything, "", mock.Anything).
		Return([]llm.TaskDraft{{Name: "Inspect"}}, nil)
	tasks.On("ReplaceGeneration", mock.Anything, userID, a.ID, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("tx failed"))
	assets.On("MarkGenerationError", mock.Anything, userID, a.ID).Return(nil)

	svc := NewTaskService(tasks, assets, gen, nil, zap.NewNop(), testCfg())
	_, err := svc.Generate(context.Background(), userID, a.ID, "")

	assert.ErrorIs(t, err, ErrGeneration)
	assets.AssertCalled(t, "MarkGenerationError", mock.Anything, userID, a.ID)
}

func TestListForAsset(t *testing.T) {
	tasks := new(MockTaskRepo)
	assets := new(MockAssetRepo)

	userID := uuid.New()
	a := readyAsset(userID, "h")
	stored := []model.Task{{ID: uuid.New(), Name: "Inspect"}}

	assets.On("GetOwned", mock.Anything, userID, a.ID).Return(a, nil)
	tasks.On("ListByAsset", mock.Anything, userID, a.ID).Return(stored, nil)

	svc := NewTaskService(tasks, assets, new(MockGenerator), nil, zap.NewNop(), testCfg())
	out, err := svc.ListForAsset(context.Background(), userID, a.ID)

	require.NoError(t, err)
	assert.Equal(t, a.ID, out.AssetID)
	assert.Equal(t, model.TasksStatusReady, out.TasksStatus)
	assert.Equal(t, stored, out.Tasks)
}

func TestListForAsset_NotFound(t *testing.T) {
	tasks := new(MockTaskRepo)
	assets := new(MockAssetRepo)

	userID, assetID := uuid.New(), uuid.New()
	assets.On("GetOwned", mock.Anything, userID, assetID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewTaskService(tasks, assets, new(MockGenerator), nil, zap.NewNop(), testCfg())
	_, err := svc.ListForAsset(context.Background(), userID, assetID)

	assert.ErrorIs(t, err, ErrNotFound)
}
