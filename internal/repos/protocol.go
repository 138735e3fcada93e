package repos

import (
  "context"
  "strings"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

type ProtocolRepo interface {
  Create(ctx context.Context, tx *gorm.DB, protocols []*types.Protocol) ([]*types.Protocol, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) ([]*types.Protocol, error)
  GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Protocol, error)
  GetByCategoryIDs(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID, publishedOnly bool) ([]*types.Protocol, error)
  CountPublishedByCategoryIDs(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) (map[uuid.UUID]int64, error)
  SearchPublished(ctx context.Context, tx *gorm.DB, query string) ([]*types.Protocol, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, protocolID uuid.UUID, fields map[string]interface{}) error
  DeleteByIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) error
}

type protocolRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProtocolRepo(db *gorm.DB, baseLog *logger.Logger) ProtocolRepo {
  repoLog := baseLog.With("repo", "ProtocolRepo")
  return &protocolRepo{db: db, log: repoLog}
}

func (pr *protocolRepo) Create(ctx context.Context, tx *gorm.DB, protocols []*types.Protocol) ([]*types.Protocol, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  if len(protocols) == 0 {
    return []*types.Protocol{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&protocols).Error; err != nil {
    return nil, err
  }
  return protocols, nil
}

func (pr *protocolRepo) GetByIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) ([]*types.Protocol, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Protocol
  if len(protocolIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", protocolIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *protocolRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Protocol, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Protocol
  if err := transaction.WithContext(ctx).
    Order("protocol_number ASC, title ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *protocolRepo) GetByCategoryIDs(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID, publishedOnly bool) ([]*types.Protocol, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Protocol
  if len(categoryIDs) == 0 {
    return results, nil
  }

  q := transaction.WithContext(ctx).
    Where("category_id IN ?", categoryIDs)
  if publishedOnly {
    q = q.Where("is_published = ?", true)
  }
  if err := q.Order("protocol_number ASC, title ASC").Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *protocolRepo) CountPublishedByCategoryIDs(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  counts := make(map[uuid.UUID]int64, len(categoryIDs))
  if len(categoryIDs) == 0 {
    return counts, nil
  }

  var rows []struct {
    CategoryID uuid.UUID
    Count      int64
  }
  if err := transaction.WithContext(ctx).
    Model(&types.Protocol{}).
    Select("category_id, COUNT(*) as count").
    Where("category_id IN ? AND is_published = ?", categoryIDs, true).
    Group("category_id").
    Scan(&rows).Error; err != nil {
    return nil, err
  }
  for _, row := range rows {
    counts[row.CategoryID] = row.Count
  }
  return counts, nil
}

func (pr *protocolRepo) SearchPublished(ctx context.Context, tx *gorm.DB, query string) ([]*types.Protocol, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Protocol
  q := strings.TrimSpace(query)
  if q == "" {
    return results, nil
  }

  pattern := "%" + strings.ToLower(q) + "%"
  if err := transaction.WithContext(ctx).
    Where("is_published = ?", true).
    Where("LOWER(title) LIKE ? OR LOWER(protocol_number) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern).
    Order("protocol_number ASC, title ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *protocolRepo) UpdateFields(ctx context.Context, tx *gorm.DB, protocolID uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  if len(fields) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Model(&types.Protocol{}).
    Where("id = ?", protocolID).
    Updates(fields).Error
}

func (pr *protocolRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  if len(protocolIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Unscoped().
    Where("id IN ?", protocolIDs).
    Delete(&types.Protocol{}).Error
}
