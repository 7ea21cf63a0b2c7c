package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/custodian-app/upkeep/internal/infra/blob"
	"github.com/custodian-app/upkeep/internal/modules/model"
	"github.com/custodian-app/upkeep/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UpdateAssetInput is a partial update: nil fields are left untouched.
// Generation bookkeeping fields are deliberately not updatable here.
type UpdateAssetInput struct {
	Status        *string
	Name          *string
	Description   *string
	Type          *string
	SubType       *string
	Brand         *string
	Model         *string
	ModelNumber   *string
	SerialNumber  *string
	Condition     *string
	Location      *string
	Year          *string
	PurchaseDate  *time.Time
	InServiceDate *time.Time
	Value         *float64
}

type AssetService interface {
	Create(ctx context.Context, a *model.Asset) error
	Update(ctx context.Context, userID, assetID uuid.UUID, in UpdateAssetInput) (*model.Asset, error)
	Delete(ctx context.Context, userID, assetID uuid.UUID) error
	Get(ctx context.Context, userID, assetID uuid.UUID) (*model.Asset, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Asset, error)

	AttachImage(ctx context.Context, userID, assetID uuid.UUID, fh *multipart.FileHeader) (*model.Asset, error)
	ImageURL(ctx context.Context, userID, assetID uuid.UUID) (string, error)
}

type assetService struct {
	r             repo.AssetRepo
	blob          *blob.S3Deps
	log           *zap.Logger
	presignExpire func() time.Duration
}

func NewAssetService(r repo.AssetRepo, blob *blob.S3Deps, log *zap.Logger, presignExpire func() time.Duration) AssetService {
	return &assetService{r: r, blob: blob, log: log, presignExpire: presignExpire}
}

func (s *assetService) Create(ctx context.Context, a *model.Asset) error {
	return s.r.Create(ctx, a)
}

func (s *assetService) Update(ctx context.Context, userID, assetID uuid.UUID, in UpdateAssetInput) (*model.Asset, error) {
	fields := map[string]any{}
	put := func(col string, v any, set bool) {
		if set {
			fields[col] = v
		}
	}
	put("status", deref(in.Status), in.Status != nil)
	put("name", deref(in.Name), in.Name != nil)
	put("description", deref(in.Description), in.Description != nil)
	put("type", deref(in.Type), in.Type != nil)
	put("sub_type", deref(in.SubType), in.SubType != nil)
	put("brand", deref(in.Brand), in.Brand != nil)
	put("model", deref(in.Model), in.Model != nil)
	put("model_number", deref(in.ModelNumber), in.ModelNumber != nil)
	put("serial_number", deref(in.SerialNumber), in.SerialNumber != nil)
	put("condition", deref(in.Condition), in.Condition != nil)
	put("location", deref(in.Location), in.Location != nil)
	put("year", deref(in.Year), in.Year != nil)
	if in.PurchaseDate != nil {
		fields["purchase_date"] = *in.PurchaseDate
	}
	if in.InServiceDate != nil {
		fields["in_service_date"] = *in.InServiceDate
	}
	if in.Value != nil {
		fields["value"] = *in.Value
	}

	if len(fields) > 0 {
		err := s.r.Update(ctx, &model.Asset{ID: assetID, UserID: userID}, fields)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}
	return s.Get(ctx, userID, assetID)
}

func (s *assetService) Delete(ctx context.Context, userID, assetID uuid.UUID) error {
	a, err := s.Get(ctx, userID, assetID)
	if err != nil {
		return err
	}
	if err := s.r.Delete(ctx, userID, assetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	// The row is gone; a dangling photo only wastes storage.
	if a.ImageKey != "" {
		if err := s.blob.DeleteObject(ctx, a.ImageKey); err != nil {
			s.log.Warn("delete asset image failed",
				zap.String("asset_id", assetID.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *assetService) Get(ctx context.Context, userID, assetID uuid.UUID) (*model.Asset, error) {
	a, err := s.r.GetOwned(ctx, userID, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *assetService) List(ctx context.Context, userID uuid.UUID) ([]model.Asset, error) {
	return s.r.ListByUser(ctx, userID)
}

// AttachImage uploads the photo, stamps its key onto the asset, and removes
// the previous object when the photo is being replaced.
func (s *assetService) AttachImage(ctx context.Context, userID, assetID uuid.UUID, fh *multipart.FileHeader) (*model.Asset, error) {
	a, err := s.Get(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}

	key, err := s.blob.UploadAssetImage(ctx, fh)
	if err != nil {
		return nil, err
	}
	if err := s.r.Update(ctx, &model.Asset{ID: assetID, UserID: userID},
		map[string]any{"image_key": key}); err != nil {
		return nil, err
	}

	if a.ImageKey != "" && a.ImageKey != key {
		if err := s.blob.DeleteObject(ctx, a.ImageKey); err != nil {
			s.log.Warn("delete replaced asset image failed",
				zap.String("asset_id", assetID.String()), zap.Error(err))
		}
	}
	a.ImageKey = key
	return a, nil
}

func (s *assetService) ImageURL(ctx context.Context, userID, assetID uuid.UUID) (string, error) {
	a, err := s.Get(ctx, userID, assetID)
	if err != nil {
		return "", err
	}
	if a.ImageKey == "" {
		return "", ErrNotFound
	}
	return s.blob.PresignGet(ctx, a.ImageKey, s.presignExpire())
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
