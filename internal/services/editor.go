package services

import (
  "context"
  "fmt"
  "strings"
  "gorm.io/gorm"
  "github.com/google/uuid"
  redisclient "github.com/firelightacademy/protocols-backend/internal/clients/redis"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/normalization"
  "github.com/firelightacademy/protocols-backend/internal/repos"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

const (
  EntityProtocol  = "protocol"
  EntitySection   = "section"
  EntityItem      = "item"
  EntityCriterion = "criterion"
)

// editableFields whitelists what a single-field save may touch, per
// entity kind. Anything else is rejected before any query runs.
var editableFields = map[string]map[string]bool{
  EntityProtocol: {"title": true, "protocol_number": true, "description": true},
  EntitySection:  {"title": true, "description": true, "section_type": true},
  EntityItem:     {"title": true, "content": true, "detailed_info": true, "link_type": true},
}

type EditorService interface {
  SaveField(ctx context.Context, kind string, entityID uuid.UUID, field, value string) error
  SaveDetailedInfo(ctx context.Context, itemID uuid.UUID, detailedInfo string) error
  SaveProviderLevels(ctx context.Context, itemID uuid.UUID, links []ProviderLinkInput) error
  GetItemProviderLevels(ctx context.Context, itemID uuid.UUID) ([]*types.ItemProviderLevel, error)
  SaveOrder(ctx context.Context, kind string, parentID uuid.UUID, orderedIDs []uuid.UUID) error
  AddSection(ctx context.Context, protocolID uuid.UUID, in *SectionInput) (*types.Section, error)
  AddItem(ctx context.Context, sectionID uuid.UUID, in *ItemInput) (*types.Item, error)
  AddCriterion(ctx context.Context, parentItemID uuid.UUID, in *CriterionInput) (*types.Item, error)
  DeleteSection(ctx context.Context, sectionID uuid.UUID) error
  DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

type editorService struct {
  db           *gorm.DB
  log          *logger.Logger
  protocolRepo repos.ProtocolRepo
  sectionRepo  repos.SectionRepo
  itemRepo     repos.ItemRepo
  linkRepo     repos.ItemProviderLevelRepo
  viewCache    redisclient.ViewCache
}

func NewEditorService(
  db *gorm.DB,
  baseLog *logger.Logger,
  protocolRepo repos.ProtocolRepo,
  sectionRepo repos.SectionRepo,
  itemRepo repos.ItemRepo,
  linkRepo repos.ItemProviderLevelRepo,
  viewCache redisclient.ViewCache,
) EditorService {
  serviceLog := baseLog.With("service", "EditorService")
  return &editorService{
    db:           db,
    log:          serviceLog,
    protocolRepo: protocolRepo,
    sectionRepo:  sectionRepo,
    itemRepo:     itemRepo,
    linkRepo:     linkRepo,
    viewCache:    viewCache,
  }
}

func (es *editorService) SaveField(ctx context.Context, kind string, entityID uuid.UUID, field, value string) error {
  allowed, knownKind := editableFields[kind]
  if !knownKind {
    return &ValidationError{Problems: []string{fmt.Sprintf("unknown entity kind %q", kind)}}
  }
  if !allowed[field] {
    return &ValidationError{Problems: []string{fmt.Sprintf("field %q is not editable on %s", field, kind)}}
  }

  switch field {
  case "title":
    value = normalization.TrimInputString(value)
    if value == "" {
      return &ValidationError{Problems: []string{"title is required"}}
    }
  case "section_type":
    if !types.ValidSectionType(value) {
      return &ValidationError{Problems: []string{fmt.Sprintf("invalid section type %q", value)}}
    }
  case "link_type":
    if value != types.LinkTypeNone && value != types.LinkTypeProtocol {
      return &ValidationError{Problems: []string{fmt.Sprintf("invalid link type %q", value)}}
    }
  }

  fields := map[string]interface{}{field: value}
  switch kind {
  case EntityProtocol:
    found, err := es.protocolRepo.GetByIDs(ctx, nil, []uuid.UUID{entityID})
    if err != nil {
      return fmt.Errorf("Failed to load protocol: %w", err)
    }
    if len(found) == 0 {
      return ErrProtocolNotFound
    }
    if err := es.protocolRepo.UpdateFields(ctx, nil, entityID, fields); err != nil {
      return fmt.Errorf("Failed to save field: %w", err)
    }
    es.invalidateView(ctx, entityID)
  case EntitySection:
    section, err := es.getSection(ctx, entityID)
    if err != nil {
      return err
    }
    if err := es.sectionRepo.UpdateFields(ctx, nil, entityID, fields); err != nil {
      return fmt.Errorf("Failed to save field: %w", err)
    }
    es.invalidateView(ctx, section.ProtocolID)
  case EntityItem:
    item, err := es.getItem(ctx, entityID)
    if err != nil {
      return err
    }
    if err := es.itemRepo.UpdateFields(ctx, nil, entityID, fields); err != nil {
      return fmt.Errorf("Failed to save field: %w", err)
    }
    es.invalidateViewForSection(ctx, item.SectionID)
  }
  return nil
}

func (es *editorService) SaveDetailedInfo(ctx context.Context, itemID uuid.UUID, detailedInfo string) error {
  return es.SaveField(ctx, EntityItem, itemID, "detailed_info", detailedInfo)
}

func (es *editorService) SaveProviderLevels(ctx context.Context, itemID uuid.UUID, links []ProviderLinkInput) error {
  item, err := es.getItem(ctx, itemID)
  if err != nil {
    return err
  }
  rows := make([]*types.ItemProviderLevel, 0, len(links))
  seen := make(map[uuid.UUID]bool, len(links))
  for _, link := range links {
    if seen[link.ProviderLevelID] {
      return &ValidationError{Problems: []string{"duplicate provider level"}}
    }
    seen[link.ProviderLevelID] = true
    rows = append(rows, &types.ItemProviderLevel{
      ID:              uuid.New(),
      ItemID:          itemID,
      ProviderLevelID: link.ProviderLevelID,
      Percentage:      link.Percentage,
    })
  }
  if err := es.linkRepo.ReplaceForItem(ctx, nil, itemID, rows); err != nil {
    es.log.Error("SaveProviderLevels failed", "error", err, "item_id", itemID)
    return fmt.Errorf("Failed to save provider levels: %w", err)
  }
  es.invalidateViewForSection(ctx, item.SectionID)
  return nil
}

func (es *editorService) GetItemProviderLevels(ctx context.Context, itemID uuid.UUID) ([]*types.ItemProviderLevel, error) {
  if _, err := es.getItem(ctx, itemID); err != nil {
    return nil, err
  }
  links, err := es.linkRepo.GetByItemIDs(ctx, nil, []uuid.UUID{itemID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load provider levels: %w", err)
  }
  return links, nil
}

// SaveOrder rewrites the sort order of every child of parentID in one
// transaction. The submitted list must contain exactly the existing ids;
// a partial or padded list is rejected so no two rows ever share a slot.
func (es *editorService) SaveOrder(ctx context.Context, kind string, parentID uuid.UUID, orderedIDs []uuid.UUID) error {
  var existingIDs []uuid.UUID
  var protocolID uuid.UUID

  switch kind {
  case EntitySection:
    found, err := es.protocolRepo.GetByIDs(ctx, nil, []uuid.UUID{parentID})
    if err != nil {
      return fmt.Errorf("Failed to load protocol: %w", err)
    }
    if len(found) == 0 {
      return ErrProtocolNotFound
    }
    protocolID = parentID
    sections, err := es.sectionRepo.GetByProtocolIDs(ctx, nil, []uuid.UUID{parentID})
    if err != nil {
      return fmt.Errorf("Failed to load sections: %w", err)
    }
    for _, s := range sections {
      existingIDs = append(existingIDs, s.ID)
    }
  case EntityItem:
    section, err := es.getSection(ctx, parentID)
    if err != nil {
      return err
    }
    protocolID = section.ProtocolID
    items, err := es.itemRepo.GetBySectionIDs(ctx, nil, []uuid.UUID{parentID})
    if err != nil {
      return fmt.Errorf("Failed to load items: %w", err)
    }
    for _, item := range items {
      if item.ParentID == nil {
        existingIDs = append(existingIDs, item.ID)
      }
    }
  case EntityCriterion:
    parent, err := es.getItem(ctx, parentID)
    if err != nil {
      return err
    }
    section, err := es.getSection(ctx, parent.SectionID)
    if err != nil {
      return err
    }
    protocolID = section.ProtocolID
    children, err := es.itemRepo.GetByParentIDs(ctx, nil, []uuid.UUID{parentID})
    if err != nil {
      return fmt.Errorf("Failed to load criteria: %w", err)
    }
    for _, child := range children {
      existingIDs = append(existingIDs, child.ID)
    }
  default:
    return &ValidationError{Problems: []string{fmt.Sprintf("unknown entity kind %q", kind)}}
  }

  if len(orderedIDs) != len(existingIDs) {
    return &ValidationError{Problems: []string{"ordered list must contain every existing id exactly once"}}
  }
  existingSet := make(map[uuid.UUID]bool, len(existingIDs))
  for _, id := range existingIDs {
    existingSet[id] = true
  }
  seen := make(map[uuid.UUID]bool, len(orderedIDs))
  for _, id := range orderedIDs {
    if !existingSet[id] || seen[id] {
      return &ValidationError{Problems: []string{"ordered list must contain every existing id exactly once"}}
    }
    seen[id] = true
  }

  err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    for i, id := range orderedIDs {
      fields := map[string]interface{}{"sort_order": i}
      var uErr error
      if kind == EntitySection {
        uErr = es.sectionRepo.UpdateFields(ctx, tx, id, fields)
      } else {
        uErr = es.itemRepo.UpdateFields(ctx, tx, id, fields)
      }
      if uErr != nil {
        return fmt.Errorf("Failed to save order: %w", uErr)
      }
    }
    return nil
  })
  if err != nil {
    es.log.Error("SaveOrder failed", "error", err, "kind", kind, "parent_id", parentID)
    return err
  }
  es.invalidateView(ctx, protocolID)
  return nil
}

func (es *editorService) AddSection(ctx context.Context, protocolID uuid.UUID, in *SectionInput) (*types.Section, error) {
  var problems []string
  if strings.TrimSpace(in.Title) == "" {
    problems = append(problems, "title is required")
  }
  if !types.ValidSectionType(in.SectionType) {
    problems = append(problems, fmt.Sprintf("invalid section type %q", in.SectionType))
  }
  if len(problems) > 0 {
    return nil, &ValidationError{Problems: problems}
  }
  found, err := es.protocolRepo.GetByIDs(ctx, nil, []uuid.UUID{protocolID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load protocol: %w", err)
  }
  if len(found) == 0 {
    return nil, ErrProtocolNotFound
  }
  existing, err := es.sectionRepo.GetByProtocolIDs(ctx, nil, []uuid.UUID{protocolID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load sections: %w", err)
  }
  section := &types.Section{
    ID:          uuid.New(),
    ProtocolID:  protocolID,
    Title:       normalization.TrimInputString(in.Title),
    Description: normalization.TrimInputString(in.Description),
    SectionType: in.SectionType,
    SortOrder:   len(existing),
  }
  if _, err := es.sectionRepo.Create(ctx, nil, []*types.Section{section}); err != nil {
    es.log.Error("AddSection failed", "error", err, "protocol_id", protocolID)
    return nil, fmt.Errorf("Failed to create section: %w", err)
  }
  es.invalidateView(ctx, protocolID)
  return section, nil
}

func (es *editorService) AddItem(ctx context.Context, sectionID uuid.UUID, in *ItemInput) (*types.Item, error) {
  if strings.TrimSpace(in.Title) == "" {
    return nil, &ValidationError{Problems: []string{"title is required"}}
  }
  linkType := in.LinkType
  if linkType == "" {
    linkType = types.LinkTypeNone
  }
  if linkType != types.LinkTypeNone && linkType != types.LinkTypeProtocol {
    return nil, &ValidationError{Problems: []string{fmt.Sprintf("invalid link type %q", linkType)}}
  }
  if linkType == types.LinkTypeProtocol && in.TargetProtocolID == nil {
    return nil, &ValidationError{Problems: []string{"protocol link requires a target protocol"}}
  }
  section, err := es.getSection(ctx, sectionID)
  if err != nil {
    return nil, err
  }
  existing, err := es.itemRepo.GetBySectionIDs(ctx, nil, []uuid.UUID{sectionID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load items: %w", err)
  }
  topCount := 0
  for _, it := range existing {
    if it.ParentID == nil {
      topCount++
    }
  }
  item := &types.Item{
    ID:               uuid.New(),
    SectionID:        sectionID,
    Title:            normalization.TrimInputString(in.Title),
    Content:          in.Content,
    DetailedInfo:     in.DetailedInfo,
    SortOrder:        topCount,
    IsDecision:       in.IsDecision,
    LinkType:         linkType,
    TargetProtocolID: in.TargetProtocolID,
  }
  err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, cErr := es.itemRepo.Create(ctx, tx, []*types.Item{item}); cErr != nil {
      return fmt.Errorf("Failed to create item: %w", cErr)
    }
    links := make([]*types.ItemProviderLevel, 0, len(in.ProviderLevels))
    for _, pl := range in.ProviderLevels {
      links = append(links, &types.ItemProviderLevel{
        ID:              uuid.New(),
        ItemID:          item.ID,
        ProviderLevelID: pl.ProviderLevelID,
        Percentage:      pl.Percentage,
      })
    }
    if _, lErr := es.linkRepo.Create(ctx, tx, links); lErr != nil {
      return fmt.Errorf("Failed to create provider links: %w", lErr)
    }
    return nil
  })
  if err != nil {
    es.log.Error("AddItem failed", "error", err, "section_id", sectionID)
    return nil, err
  }
  es.invalidateView(ctx, section.ProtocolID)
  return item, nil
}

func (es *editorService) AddCriterion(ctx context.Context, parentItemID uuid.UUID, in *CriterionInput) (*types.Item, error) {
  if strings.TrimSpace(in.Title) == "" {
    return nil, &ValidationError{Problems: []string{"title is required"}}
  }
  parent, err := es.getItem(ctx, parentItemID)
  if err != nil {
    return nil, err
  }
  if parent.ParentID != nil {
    return nil, &ValidationError{Problems: []string{"criteria cannot be nested"}}
  }
  siblings, err := es.itemRepo.GetByParentIDs(ctx, nil, []uuid.UUID{parentItemID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load criteria: %w", err)
  }
  parentID := parentItemID
  criterion := &types.Item{
    ID:           uuid.New(),
    SectionID:    parent.SectionID,
    ParentID:     &parentID,
    Title:        normalization.TrimInputString(in.Title),
    Content:      in.Content,
    DetailedInfo: in.DetailedInfo,
    SortOrder:    len(siblings),
    LinkType:     types.LinkTypeNone,
  }
  if _, err := es.itemRepo.Create(ctx, nil, []*types.Item{criterion}); err != nil {
    es.log.Error("AddCriterion failed", "error", err, "parent_id", parentItemID)
    return nil, fmt.Errorf("Failed to create criterion: %w", err)
  }
  es.invalidateViewForSection(ctx, parent.SectionID)
  return criterion, nil
}

func (es *editorService) DeleteSection(ctx context.Context, sectionID uuid.UUID) error {
  section, err := es.getSection(ctx, sectionID)
  if err != nil {
    return err
  }
  err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    items, iErr := es.itemRepo.GetBySectionIDs(ctx, tx, []uuid.UUID{sectionID})
    if iErr != nil {
      return fmt.Errorf("Failed to load items: %w", iErr)
    }
    itemIDs := make([]uuid.UUID, 0, len(items))
    for _, it := range items {
      itemIDs = append(itemIDs, it.ID)
    }
    if dErr := es.linkRepo.DeleteByItemIDs(ctx, tx, itemIDs); dErr != nil {
      return fmt.Errorf("Failed to delete provider links: %w", dErr)
    }
    if dErr := es.itemRepo.DeleteBySectionIDs(ctx, tx, []uuid.UUID{sectionID}); dErr != nil {
      return fmt.Errorf("Failed to delete items: %w", dErr)
    }
    if dErr := es.sectionRepo.DeleteByIDs(ctx, tx, []uuid.UUID{sectionID}); dErr != nil {
      return fmt.Errorf("Failed to delete section: %w", dErr)
    }
    return nil
  })
  if err != nil {
    es.log.Error("DeleteSection failed", "error", err, "section_id", sectionID)
    return err
  }
  es.invalidateView(ctx, section.ProtocolID)
  return nil
}

func (es *editorService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
  item, err := es.getItem(ctx, itemID)
  if err != nil {
    return err
  }
  err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    removed := []uuid.UUID{itemID}
    if item.ParentID == nil {
      children, cErr := es.itemRepo.GetByParentIDs(ctx, tx, []uuid.UUID{itemID})
      if cErr != nil {
        return fmt.Errorf("Failed to load criteria: %w", cErr)
      }
      for _, child := range children {
        removed = append(removed, child.ID)
      }
    }
    if dErr := es.linkRepo.DeleteByItemIDs(ctx, tx, removed); dErr != nil {
      return fmt.Errorf("Failed to delete provider links: %w", dErr)
    }
    if item.ParentID == nil {
      if dErr := es.itemRepo.DeleteByParentIDs(ctx, tx, []uuid.UUID{itemID}); dErr != nil {
        return fmt.Errorf("Failed to delete criteria: %w", dErr)
      }
    }
    if dErr := es.itemRepo.DeleteByIDs(ctx, tx, []uuid.UUID{itemID}); dErr != nil {
      return fmt.Errorf("Failed to delete item: %w", dErr)
    }
    // siblings pointing at the removed step keep rendering without a branch
    siblings, sErr := es.itemRepo.GetBySectionIDs(ctx, tx, []uuid.UUID{item.SectionID})
    if sErr != nil {
      return fmt.Errorf("Failed to load section items: %w", sErr)
    }
    for _, sib := range siblings {
      fields := map[string]interface{}{}
      if sib.YesTargetID != nil && *sib.YesTargetID == itemID {
        fields["yes_target_id"] = nil
      }
      if sib.NoTargetID != nil && *sib.NoTargetID == itemID {
        fields["no_target_id"] = nil
      }
      if len(fields) == 0 {
        continue
      }
      if uErr := es.itemRepo.UpdateFields(ctx, tx, sib.ID, fields); uErr != nil {
        return fmt.Errorf("Failed to clear branch target: %w", uErr)
      }
    }
    return nil
  })
  if err != nil {
    es.log.Error("DeleteItem failed", "error", err, "item_id", itemID)
    return err
  }
  es.invalidateViewForSection(ctx, item.SectionID)
  return nil
}

func (es *editorService) getSection(ctx context.Context, sectionID uuid.UUID) (*types.Section, error) {
  found, err := es.sectionRepo.GetByIDs(ctx, nil, []uuid.UUID{sectionID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load section: %w", err)
  }
  if len(found) == 0 {
    return nil, ErrSectionNotFound
  }
  return found[0], nil
}

func (es *editorService) getItem(ctx context.Context, itemID uuid.UUID) (*types.Item, error) {
  found, err := es.itemRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load item: %w", err)
  }
  if len(found) == 0 {
    return nil, ErrItemNotFound
  }
  return found[0], nil
}

func (es *editorService) invalidateView(ctx context.Context, protocolID uuid.UUID) {
  if es.viewCache == nil {
    return
  }
  if err := es.viewCache.InvalidateProtocol(ctx, protocolID); err != nil {
    es.log.Warn("view cache invalidation failed", "error", err, "protocol_id", protocolID)
  }
}

func (es *editorService) invalidateViewForSection(ctx context.Context, sectionID uuid.UUID) {
  section, err := es.getSection(ctx, sectionID)
  if err != nil {
    es.log.Warn("view cache invalidation skipped", "error", err, "section_id", sectionID)
    return
  }
  es.invalidateView(ctx, section.ProtocolID)
}
