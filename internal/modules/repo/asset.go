package repo

import (
	"context"
	"time"

	"github.com/custodian-app/upkeep/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetRepo interface {
	Create(ctx context.Context, a *model.Asset) error
	Update(ctx context.Context, a *model.Asset, fields map[string]any) error
	Delete(ctx context.Context, userID, assetID uuid.UUID) error
	GetOwned(ctx context.Context, userID, assetID uuid.UUID) (*model.Asset, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Asset, error)

	AcquireGeneration(ctx context.Context, userID, assetID uuid.UUID, now time.Time, staleBefore time.Time) (bool, error)
	MarkGenerationError(ctx context.Context, userID, assetID uuid.UUID) error
}

type assetRepo struct{ db *gorm.DB }

func NewAssetRepo(db *gorm.DB) AssetRepo {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, a *model.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assetRepo) Update(ctx context.Context, a *model.Asset, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Asset{}).
		Where("id = ? AND user_id = ?", a.ID, a.UserID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assetRepo) Delete(ctx context.Context, userID, assetID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", assetID, userID).
		Delete(&model.Asset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assetRepo) GetOwned(ctx context.Context, userID, assetID uuid.UUID) (*model.Asset, error) {
	var a model.Asset
	return &a, r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", assetID, userID).
		First(&a).Error
}

func (r *assetRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Asset, error) {
	var items []model.Asset
	return items, r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
}

// AcquireGeneration attempts to take the per-asset generation lease in a
// single conditional update: status flips to pending only when no generation
// is in flight, or when a previous pending lease is older than staleBefore
// (crashed worker recovery). Returns false when another generation holds the
// lease.
func (r *assetRepo) AcquireGeneration(ctx context.Context, userID, assetID uuid.UUID, now, staleBefore time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Asset{}).
		Where("id = ? AND user_id = ?", assetID, userID).
		Where("tasks_status <> ? OR tasks_locked_at IS NULL OR tasks_locked_at < ?",
			model.TasksStatusPending, staleBefore).
		Updates(map[string]any{
			"tasks_status":    model.TasksStatusPending,
			"tasks_locked_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkGenerationError is the best-effort failure stamp; callers log but do
// not retry when it fails.
func (r *assetRepo) MarkGenerationError(ctx context.Context, userID, assetID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Asset{}).
		Where("id = ? AND user_id = ?", assetID, userID).
		Update("tasks_status", model.TasksStatusError).Error
}
