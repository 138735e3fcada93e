package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

type ProtocolRevisionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, revisions []*types.ProtocolRevision) ([]*types.ProtocolRevision, error)
  GetByProtocolIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) ([]*types.ProtocolRevision, error)
}

type protocolRevisionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProtocolRevisionRepo(db *gorm.DB, baseLog *logger.Logger) ProtocolRevisionRepo {
  repoLog := baseLog.With("repo", "ProtocolRevisionRepo")
  return &protocolRevisionRepo{db: db, log: repoLog}
}

func (prr *protocolRevisionRepo) Create(ctx context.Context, tx *gorm.DB, revisions []*types.ProtocolRevision) ([]*types.ProtocolRevision, error) {
  transaction := tx
  if transaction == nil {
    transaction = prr.db
  }

  if len(revisions) == 0 {
    return []*types.ProtocolRevision{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&revisions).Error; err != nil {
    return nil, err
  }
  return revisions, nil
}

func (prr *protocolRevisionRepo) GetByProtocolIDs(ctx context.Context, tx *gorm.DB, protocolIDs []uuid.UUID) ([]*types.ProtocolRevision, error) {
  transaction := tx
  if transaction == nil {
    transaction = prr.db
  }

  var results []*types.ProtocolRevision
  if len(protocolIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("protocol_id IN ?", protocolIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
