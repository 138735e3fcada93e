package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

type ItemRepo interface {
  Create(ctx context.Context, tx *gorm.DB, items []*types.Item) ([]*types.Item, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.Item, error)
  GetBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.Item, error)
  GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Item, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, fields map[string]interface{}) error
  DeleteByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) error
  DeleteBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) error
  DeleteByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) error
}

type itemRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
  repoLog := baseLog.With("repo", "ItemRepo")
  return &itemRepo{db: db, log: repoLog}
}

func (ir *itemRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.Item) ([]*types.Item, error) {
  transaction := tx
  if transaction == nil {
    transaction = ir.db
  }

  if len(items) == 0 {
    return []*types.Item{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
    return nil, err
  }
  return items, nil
}

func (ir *itemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.Item, error) {
  transaction := tx
  if transaction == nil {
    transaction = ir.db
  }

  var results []*types.Item
  if len(itemIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", itemIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (ir *itemRepo) GetBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.Item, error) {
  transaction := tx
  if transaction == nil {
    transaction = ir.db
  }

  var results []*types.Item
  if len(sectionIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("section_id IN ?", sectionIDs).
    Order("sort_order ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (ir *itemRepo) GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Item, error) {
  transaction := tx
  if transaction == nil {
    transaction = ir.db
  }

  var results []*types.Item
  if len(parentIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("parent_id IN ?", parentIDs).
    Order("sort_order ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (ir *itemRepo) UpdateFields(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = ir.db
  }

  if len(fields) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Model(&types.Item{}).
    Where("id = ?", itemID).
    Updates(fields).Error
}

func (ir *itemRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = ir.db
  }

  if len(itemIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("id IN ?", itemIDs).
    Delete(&types.Item{}).Error
}

func (ir *itemRepo) DeleteBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = ir.db
  }

  if len(sectionIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("section_id IN ?", sectionIDs).
    Delete(&types.Item{}).Error
}

func (ir *itemRepo) DeleteByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = ir.db
  }

  if len(parentIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("parent_id IN ?", parentIDs).
    Delete(&types.Item{}).Error
}
