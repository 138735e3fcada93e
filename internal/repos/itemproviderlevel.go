package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

type ItemProviderLevelRepo interface {
  Create(ctx context.Context, tx *gorm.DB, links []*types.ItemProviderLevel) ([]*types.ItemProviderLevel, error)
  GetByItemIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.ItemProviderLevel, error)
  ReplaceForItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, links []*types.ItemProviderLevel) error
  DeleteByItemIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) error
}

type itemProviderLevelRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewItemProviderLevelRepo(db *gorm.DB, baseLog *logger.Logger) ItemProviderLevelRepo {
  repoLog := baseLog.With("repo", "ItemProviderLevelRepo")
  return &itemProviderLevelRepo{db: db, log: repoLog}
}

func (iplr *itemProviderLevelRepo) Create(ctx context.Context, tx *gorm.DB, links []*types.ItemProviderLevel) ([]*types.ItemProviderLevel, error) {
  transaction := tx
  if transaction == nil {
    transaction = iplr.db
  }

  if len(links) == 0 {
    return []*types.ItemProviderLevel{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&links).Error; err != nil {
    return nil, err
  }
  return links, nil
}

func (iplr *itemProviderLevelRepo) GetByItemIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.ItemProviderLevel, error) {
  transaction := tx
  if transaction == nil {
    transaction = iplr.db
  }

  var results []*types.ItemProviderLevel
  if len(itemIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("ProviderLevel").
    Where("item_id IN ?", itemIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (iplr *itemProviderLevelRepo) ReplaceForItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, links []*types.ItemProviderLevel) error {
  transaction := tx
  if transaction == nil {
    transaction = iplr.db
  }

  if err := transaction.WithContext(ctx).
    Where("item_id = ?", itemID).
    Delete(&types.ItemProviderLevel{}).Error; err != nil {
    return err
  }
  if len(links) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).Create(&links).Error
}

func (iplr *itemProviderLevelRepo) DeleteByItemIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = iplr.db
  }

  if len(itemIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("item_id IN ?", itemIDs).
    Delete(&types.ItemProviderLevel{}).Error
}
