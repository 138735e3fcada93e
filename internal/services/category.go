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

type CategoryInput struct {
  Name        string `json:"name"`
  Prefix      string `json:"prefix"`
  Description string `json:"description"`
  SortOrder   int    `json:"sort_order"`
}

type CategoryService interface {
  CreateCategory(ctx context.Context, in *CategoryInput) (*types.Category, error)
  UpdateCategory(ctx context.Context, categoryID uuid.UUID, in *CategoryInput) (*types.Category, error)
  DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
  GetCategories(ctx context.Context) ([]*types.Category, error)
}

type categoryService struct {
  db           *gorm.DB
  log          *logger.Logger
  categoryRepo repos.CategoryRepo
  protocolRepo repos.ProtocolRepo
}

func NewCategoryService(db *gorm.DB, baseLog *logger.Logger, categoryRepo repos.CategoryRepo, protocolRepo repos.ProtocolRepo) CategoryService {
  serviceLog := baseLog.With("service", "CategoryService")
  return &categoryService{
    db:           db,
    log:          serviceLog,
    categoryRepo: categoryRepo,
    protocolRepo: protocolRepo,
  }
}

func validateCategoryInput(in *CategoryInput) *ValidationError {
  var problems []string
  if strings.TrimSpace(in.Name) == "" {
    problems = append(problems, "name is required")
  }
  if len(problems) == 0 {
    return nil
  }
  return &ValidationError{Problems: problems}
}

func (cs *categoryService) CreateCategory(ctx context.Context, in *CategoryInput) (*types.Category, error) {
  if vErr := validateCategoryInput(in); vErr != nil {
    return nil, vErr
  }
  category := &types.Category{
    ID:          uuid.New(),
    Name:        normalization.TrimInputString(in.Name),
    Prefix:      strings.ToUpper(normalization.TrimInputString(in.Prefix)),
    Description: normalization.TrimInputString(in.Description),
    SortOrder:   in.SortOrder,
  }
  if _, err := cs.categoryRepo.Create(ctx, nil, []*types.Category{category}); err != nil {
    cs.log.Error("CreateCategory failed", "error", err)
    return nil, fmt.Errorf("Failed to create category: %w", err)
  }
  return category, nil
}

func (cs *categoryService) UpdateCategory(ctx context.Context, categoryID uuid.UUID, in *CategoryInput) (*types.Category, error) {
  if vErr := validateCategoryInput(in); vErr != nil {
    return nil, vErr
  }
  found, err := cs.categoryRepo.GetByIDs(ctx, nil, []uuid.UUID{categoryID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load category: %w", err)
  }
  if len(found) == 0 {
    return nil, ErrCategoryNotFound
  }
  fields := map[string]interface{}{
    "name":        normalization.TrimInputString(in.Name),
    "prefix":      strings.ToUpper(normalization.TrimInputString(in.Prefix)),
    "description": normalization.TrimInputString(in.Description),
    "sort_order":  in.SortOrder,
  }
  if err := cs.categoryRepo.UpdateFields(ctx, nil, categoryID, fields); err != nil {
    cs.log.Error("UpdateCategory failed", "error", err, "category_id", categoryID)
    return nil, fmt.Errorf("Failed to update category: %w", err)
  }
  updated, err := cs.categoryRepo.GetByIDs(ctx, nil, []uuid.UUID{categoryID})
  if err != nil || len(updated) == 0 {
    return nil, fmt.Errorf("Failed to reload category after update")
  }
  return updated[0], nil
}

func (cs *categoryService) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
  return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    found, err := cs.categoryRepo.GetByIDs(ctx, tx, []uuid.UUID{categoryID})
    if err != nil {
      return fmt.Errorf("Failed to load category: %w", err)
    }
    if len(found) == 0 {
      return ErrCategoryNotFound
    }
    protocols, err := cs.protocolRepo.GetByCategoryIDs(ctx, tx, []uuid.UUID{categoryID}, false)
    if err != nil {
      return fmt.Errorf("Failed to check category protocols: %w", err)
    }
    if len(protocols) > 0 {
      return ErrCategoryInUse
    }
    if err := cs.categoryRepo.DeleteByIDs(ctx, tx, []uuid.UUID{categoryID}); err != nil {
      return fmt.Errorf("Failed to delete category: %w", err)
    }
    return nil
  })
}

func (cs *categoryService) GetCategories(ctx context.Context) ([]*types.Category, error) {
  categories, err := cs.categoryRepo.GetAll(ctx, nil)
  if err != nil {
    cs.log.Error("GetCategories failed", "error", err)
    return nil, fmt.Errorf("Failed to list categories: %w", err)
  }
  return categories, nil
}
