package repo

import (
	"context"
	"time"

	"github.com/custodian-app/upkeep/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepo interface {
	ListByAsset(ctx context.Context, userID, assetID uuid.UUID) ([]model.Task, error)
	GetOwned(ctx context.Context, userID, assetID, taskID uuid.UUID) (*model.Task, error)
	ReplaceGeneration(ctx context.Context, userID, assetID uuid.UUID, hash string, tasks []model.Task, at time.Time) error
}

type taskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

// ListByAsset returns the asset's tasks in stable rendering order: priority
// first, then creation order, then id.
func (r *taskRepo) ListByAsset(ctx context.Context, userID, assetID uuid.UUID) ([]model.Task, error) {
	var items []model.Task
	return items, r.db.WithContext(ctx).
		Where("asset_id = ? AND user_id = ?", assetID, userID).
		Order("priority ASC, created_at ASC, id ASC").
		Find(&items).Error
}

func (r *taskRepo) GetOwned(ctx context.Context, userID, assetID, taskID uuid.UUID) (*model.Task, error) {
	var t model.Task
	return &t, r.db.WithContext(ctx).
		Where("id = ? AND asset_id = ? AND user_id = ?", taskID, assetID, userID).
		First(&t).Error
}

// ReplaceGeneration swaps the asset's task set for a freshly generated one
// and stamps the asset ready in the same transaction, so a reader never sees
// a half-written plan or a ready asset with a mismatched task set.
func (r *taskRepo) ReplaceGeneration(ctx context.Context, userID, assetID uuid.UUID, hash string, tasks []model.Task, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ? AND user_id = ?", assetID, userID).
			Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Asset{}).
			Where("id = ? AND user_id = ?", assetID, userID).
			Updates(map[string]any{
				"tasks_status":      model.TasksStatusReady,
				"tasks_prompt_hash": hash,
				"tasks_updated_at":  at,
			}).Error
	})
}
