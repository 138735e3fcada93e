package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

type SectionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, sections []*types.Section) ([]*types.Section, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.Section, error)
  GetByProtocolIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) ([]*types.Section, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, fields map[string]interface{}) error
  DeleteByIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) error
  DeleteByProtocolIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) error
}

type sectionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
  repoLog := baseLog.With("repo", "SectionRepo")
  return &sectionRepo{db: db, log: repoLog}
}

func (sr *sectionRepo) Create(ctx context.Context, tx *gorm.DB, sections []*types.Section) ([]*types.Section, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if len(sections) == 0 {
    return []*types.Section{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&sections).Error; err != nil {
    return nil, err
  }
  return sections, nil
}

func (sr *sectionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.Section, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var results []*types.Section
  if len(sectionIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", sectionIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *sectionRepo) GetByProtocolIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) ([]*types.Section, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var results []*types.Section
  if len(protocolIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("protocol_id IN ?", protocolIDs).
    Order("sort_order ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *sectionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if len(fields) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Model(&types.Section{}).
    Where("id = ?", sectionID).
    Updates(fields).Error
}

func (sr *sectionRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if len(sectionIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("id IN ?", sectionIDs).
    Delete(&types.Section{}).Error
}

func (sr *sectionRepo) DeleteByProtocolIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if len(protocolIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("protocol_id IN ?", protocolIDs).
    Delete(&types.Section{}).Error
}
