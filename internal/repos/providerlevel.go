package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

type ProviderLevelRepo interface {
  Create(ctx context.Context, tx *gorm.DB, levels []*types.ProviderLevel) ([]*types.ProviderLevel, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, levelIDs []uuid.UUID) ([]*types.ProviderLevel, error)
  GetAll(ctx context.Context, tx *gorm.DB) ([]*types.ProviderLevel, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, levelID uuid.UUID, fields map[string]interface{}) error
  DeleteByIDs(ctx context.Context, tx *gorm.DB, levelIDs []uuid.UUID) error
}

type providerLevelRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProviderLevelRepo(db *gorm.DB, baseLog *logger.Logger) ProviderLevelRepo {
  repoLog := baseLog.With("repo", "ProviderLevelRepo")
  return &providerLevelRepo{db: db, log: repoLog}
}

func (plr *providerLevelRepo) Create(ctx context.Context, tx *gorm.DB, levels []*types.ProviderLevel) ([]*types.ProviderLevel, error) {
  transaction := tx
  if transaction == nil {
    transaction = plr.db
  }

  if len(levels) == 0 {
    return []*types.ProviderLevel{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&levels).Error; err != nil {
    return nil, err
  }
  return levels, nil
}

func (plr *providerLevelRepo) GetByIDs(ctx context.Context, tx *gorm.DB, levelIDs []uuid.UUID) ([]*types.ProviderLevel, error) {
  transaction := tx
  if transaction == nil {
    transaction = plr.db
  }

  var results []*types.ProviderLevel
  if len(levelIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", levelIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (plr *providerLevelRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.ProviderLevel, error) {
  transaction := tx
  if transaction == nil {
    transaction = plr.db
  }

  var results []*types.ProviderLevel
  if err := transaction.WithContext(ctx).
    Order("sort_order ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (plr *providerLevelRepo) UpdateFields(ctx context.Context, tx *gorm.DB, levelID uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = plr.db
  }

  if len(fields) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Model(&types.ProviderLevel{}).
    Where("id = ?", levelID).
    Updates(fields).Error
}

func (plr *providerLevelRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, levelIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = plr.db
  }

  if len(levelIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("id IN ?", levelIDs).
    Delete(&types.ProviderLevel{}).Error
}
