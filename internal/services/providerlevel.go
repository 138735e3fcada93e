package services

import (
  "context"
  "fmt"
  "strings"
  "gorm.io/gorm"
  "github.com/google/uuid"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/normalization"
  "github.com/firelightacademy/protocols-backend/internal/repos"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

type ProviderLevelInput struct {
  Name         string `json:"name"`
  Abbreviation string `json:"abbreviation"`
  ColorCode    string `json:"color_code"`
  SortOrder    int    `json:"sort_order"`
}

type ProviderLevelService interface {
  CreateProviderLevel(ctx context.Context, in *ProviderLevelInput) (*types.ProviderLevel, error)
  UpdateProviderLevel(ctx context.Context, levelID uuid.UUID, in *ProviderLevelInput) (*types.ProviderLevel, error)
  DeleteProviderLevel(ctx context.Context, levelID uuid.UUID) error
  GetProviderLevels(ctx context.Context) ([]*types.ProviderLevel, error)
}

type providerLevelService struct {
  db                *gorm.DB
  log               *logger.Logger
  providerLevelRepo repos.ProviderLevelRepo
}

func NewProviderLevelService(db *gorm.DB, baseLog *logger.Logger, providerLevelRepo repos.ProviderLevelRepo) ProviderLevelService {
  serviceLog := baseLog.With("service", "ProviderLevelService")
  return &providerLevelService{
    db:                db,
    log:               serviceLog,
    providerLevelRepo: providerLevelRepo,
  }
}

func validateProviderLevelInput(in *ProviderLevelInput) *ValidationError {
  var problems []string
  if strings.TrimSpace(in.Name) == "" {
    problems = append(problems, "name is required")
  }
  if strings.TrimSpace(in.Abbreviation) == "" {
    problems = append(problems, "abbreviation is required")
  }
  if len(problems) == 0 {
    return nil
  }
  return &ValidationError{Problems: problems}
}

func (pls *providerLevelService) CreateProviderLevel(ctx context.Context, in *ProviderLevelInput) (*types.ProviderLevel, error) {
  if vErr := validateProviderLevelInput(in); vErr != nil {
    return nil, vErr
  }
  level := &types.ProviderLevel{
    ID:           uuid.New(),
    Name:         normalization.TrimInputString(in.Name),
    Abbreviation: strings.ToUpper(normalization.TrimInputString(in.Abbreviation)),
    ColorCode:    normalization.TrimInputString(in.ColorCode),
    SortOrder:    in.SortOrder,
  }
  if _, err := pls.providerLevelRepo.Create(ctx, nil, []*types.ProviderLevel{level}); err != nil {
    pls.log.Error("CreateProviderLevel failed", "error", err)
    return nil, fmt.Errorf("Failed to create provider level: %w", err)
  }
  return level, nil
}

func (pls *providerLevelService) UpdateProviderLevel(ctx context.Context, levelID uuid.UUID, in *ProviderLevelInput) (*types.ProviderLevel, error) {
  if vErr := validateProviderLevelInput(in); vErr != nil {
    return nil, vErr
  }
  found, err := pls.providerLevelRepo.GetByIDs(ctx, nil, []uuid.UUID{levelID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load provider level: %w", err)
  }
  if len(found) == 0 {
    return nil, ErrProviderLevelNotFound
  }
  fields := map[string]interface{}{
    "name":         normalization.TrimInputString(in.Name),
    "abbreviation": strings.ToUpper(normalization.TrimInputString(in.Abbreviation)),
    "color_code":   normalization.TrimInputString(in.ColorCode),
    "sort_order":   in.SortOrder,
  }
  if err := pls.providerLevelRepo.UpdateFields(ctx, nil, levelID, fields); err != nil {
    pls.log.Error("UpdateProviderLevel failed", "error", err, "provider_level_id", levelID)
    return nil, fmt.Errorf("Failed to update provider level: %w", err)
  }
  updated, err := pls.providerLevelRepo.GetByIDs(ctx, nil, []uuid.UUID{levelID})
  if err != nil || len(updated) == 0 {
    return nil, fmt.Errorf("Failed to reload provider level after update")
  }
  return updated[0], nil
}

func (pls *providerLevelService) DeleteProviderLevel(ctx context.Context, levelID uuid.UUID) error {
  found, err := pls.providerLevelRepo.GetByIDs(ctx, nil, []uuid.UUID{levelID})
  if err != nil {
    return fmt.Errorf("Failed to load provider level: %w", err)
  }
  if len(found) == 0 {
    return ErrProviderLevelNotFound
  }
  if err := pls.providerLevelRepo.DeleteByIDs(ctx, nil, []uuid.UUID{levelID}); err != nil {
    pls.log.Error("DeleteProviderLevel failed", "error", err, "provider_level_id", levelID)
    return fmt.Errorf("Failed to delete provider level: %w", err)
  }
  return nil
}

func (pls *providerLevelService) GetProviderLevels(ctx context.Context) ([]*types.ProviderLevel, error) {
  levels, err := pls.providerLevelRepo.GetAll(ctx, nil)
  if err != nil {
    pls.log.Error("GetProviderLevels failed", "error", err)
    return nil, fmt.Errorf("Failed to list provider levels: %w", err)
  }
  return levels, nil
}
