package services

import (
  "context"
  "encoding/json"
  "fmt"
  "gorm.io/gorm"
  "gorm.io/datatypes"
  "github.com/google/uuid"
  redisclient "github.com/firelightacademy/protocols-backend/internal/clients/redis"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/normalization"
  "github.com/firelightacademy/protocols-backend/internal/repos"
  "github.com/firelightacademy/protocols-backend/internal/requestdata"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

// ProtocolTree is the admin-facing document: the protocol row plus its
// sections and items, criteria and provider links nested in place.
type ProtocolTree struct {
  Protocol *types.Protocol `json:"protocol"`
  Sections []*SectionTree  `json:"sections"`
}

type SectionTree struct {
  Section *types.Section `json:"section"`
  Items   []*ItemTree    `json:"items"`
}

type ItemTree struct {
  Item           *types.Item                `json:"item"`
  Criteria       []*types.Item              `json:"criteria,omitempty"`
  ProviderLevels []*types.ItemProviderLevel `json:"provider_levels,omitempty"`
}

type ProtocolService interface {
  CreateProtocol(ctx context.Context, in *ProtocolInput) (*ProtocolTree, error)
  UpdateProtocol(ctx context.Context, protocolID uuid.UUID, in *ProtocolInput) (*ProtocolTree, error)
  DeleteProtocol(ctx context.Context, protocolID uuid.UUID) error
  SetPublished(ctx context.Context, protocolID uuid.UUID, published bool) error
  GetProtocol(ctx context.Context, protocolID uuid.UUID) (*ProtocolTree, error)
  ListProtocols(ctx context.Context, categoryID *uuid.UUID) ([]*types.Protocol, error)
  ListRevisions(ctx context.Context, protocolID uuid.UUID) ([]*types.ProtocolRevision, error)
}

type protocolService struct {
  db           *gorm.DB
  log          *logger.Logger
  protocolRepo repos.ProtocolRepo
  categoryRepo repos.CategoryRepo
  sectionRepo  repos.SectionRepo
  itemRepo     repos.ItemRepo
  linkRepo     repos.ItemProviderLevelRepo
  revisionRepo repos.ProtocolRevisionRepo
  viewCache    redisclient.ViewCache
}

func NewProtocolService(
  db *gorm.DB,
  baseLog *logger.Logger,
  protocolRepo repos.ProtocolRepo,
  categoryRepo repos.CategoryRepo,
  sectionRepo repos.SectionRepo,
  itemRepo repos.ItemRepo,
  linkRepo repos.ItemProviderLevelRepo,
  revisionRepo repos.ProtocolRevisionRepo,
  viewCache redisclient.ViewCache,
) ProtocolService {
  serviceLog := baseLog.With("service", "ProtocolService")
  return &protocolService{
    db:           db,
    log:          serviceLog,
    protocolRepo: protocolRepo,
    categoryRepo: categoryRepo,
    sectionRepo:  sectionRepo,
    itemRepo:     itemRepo,
    linkRepo:     linkRepo,
    revisionRepo: revisionRepo,
    viewCache:    viewCache,
  }
}

func (ps *protocolService) CreateProtocol(ctx context.Context, in *ProtocolInput) (*ProtocolTree, error) {
  if vErr := ValidateProtocolInput(in); vErr != nil {
    return nil, vErr
  }
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Request data not set in context")
  }
  categories, err := ps.categoryRepo.GetByIDs(ctx, nil, []uuid.UUID{in.CategoryID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load category: %w", err)
  }
  if len(categories) == 0 {
    return nil, ErrCategoryNotFound
  }

  protocol := &types.Protocol{
    ID:             uuid.New(),
    CategoryID:     in.CategoryID,
    Title:          normalization.TrimInputString(in.Title),
    ProtocolNumber: normalization.TrimInputString(in.ProtocolNumber),
    Description:    normalization.TrimInputString(in.Description),
    IsPublished:    in.IsPublished,
    CreatedBy:      rd.UserID,
    UpdatedBy:      rd.UserID,
  }

  err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, cErr := ps.protocolRepo.Create(ctx, tx, []*types.Protocol{protocol}); cErr != nil {
      return fmt.Errorf("Failed to create protocol: %w", cErr)
    }
    for si, sin := range in.Sections {
      section := &types.Section{
        ID:          uuid.New(),
        ProtocolID:  protocol.ID,
        Title:       normalization.TrimInputString(sin.Title),
        Description: normalization.TrimInputString(sin.Description),
        SectionType: sin.SectionType,
        SortOrder:   si,
      }
      if _, sErr := ps.sectionRepo.Create(ctx, tx, []*types.Section{section}); sErr != nil {
        return fmt.Errorf("Failed to create section: %w", sErr)
      }
      if iErr := ps.syncSectionItems(ctx, tx, section.ID, nil, sin.Items); iErr != nil {
        return iErr
      }
    }
    return ps.appendRevision(ctx, tx, protocol, rd.UserID, in.RevisionNotes)
  })
  if err != nil {
    ps.log.Error("CreateProtocol failed", "error", err)
    return nil, err
  }

  ps.invalidateView(ctx, protocol.ID)
  return ps.GetProtocol(ctx, protocol.ID)
}

func (ps *protocolService) UpdateProtocol(ctx context.Context, protocolID uuid.UUID, in *ProtocolInput) (*ProtocolTree, error) {
  if vErr := ValidateProtocolInput(in); vErr != nil {
    return nil, vErr
  }
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Request data not set in context")
  }

  err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    found, fErr := ps.protocolRepo.GetByIDs(ctx, tx, []uuid.UUID{protocolID})
    if fErr != nil {
      return fmt.Errorf("Failed to load protocol: %w", fErr)
    }
    if len(found) == 0 {
      return ErrProtocolNotFound
    }
    protocol := found[0]

    categories, cErr := ps.categoryRepo.GetByIDs(ctx, tx, []uuid.UUID{in.CategoryID})
    if cErr != nil {
      return fmt.Errorf("Failed to load category: %w", cErr)
    }
    if len(categories) == 0 {
      return ErrCategoryNotFound
    }

    protocol.Title = normalization.TrimInputString(in.Title)
    protocol.ProtocolNumber = normalization.TrimInputString(in.ProtocolNumber)
    protocol.Description = normalization.TrimInputString(in.Description)
    protocol.CategoryID = in.CategoryID
    protocol.IsPublished = in.IsPublished
    protocol.UpdatedBy = rd.UserID
    if uErr := ps.protocolRepo.UpdateFields(ctx, tx, protocolID, map[string]interface{}{
      "title":           protocol.Title,
      "protocol_number": protocol.ProtocolNumber,
      "description":     protocol.Description,
      "category_id":     protocol.CategoryID,
      "is_published":    protocol.IsPublished,
      "updated_by":      protocol.UpdatedBy,
    }); uErr != nil {
      return fmt.Errorf("Failed to update protocol: %w", uErr)
    }

    existingSections, sErr := ps.sectionRepo.GetByProtocolIDs(ctx, tx, []uuid.UUID{protocolID})
    if sErr != nil {
      return fmt.Errorf("Failed to load sections: %w", sErr)
    }
    existingSectionIDs := make([]uuid.UUID, 0, len(existingSections))
    existingSectionByID := make(map[uuid.UUID]*types.Section, len(existingSections))
    for _, s := range existingSections {
      existingSectionIDs = append(existingSectionIDs, s.ID)
      existingSectionByID[s.ID] = s
    }
    submittedSectionIDs := make([]*uuid.UUID, 0, len(in.Sections))
    for _, sin := range in.Sections {
      submittedSectionIDs = append(submittedSectionIDs, sin.ID)
    }
    if orphans := orphanIDs(existingSectionIDs, submittedSectionIDs); len(orphans) > 0 {
      if dErr := ps.deleteSectionContents(ctx, tx, orphans); dErr != nil {
        return dErr
      }
      if dErr := ps.sectionRepo.DeleteByIDs(ctx, tx, orphans); dErr != nil {
        return fmt.Errorf("Failed to delete removed sections: %w", dErr)
      }
    }

    for si, sin := range in.Sections {
      var sectionID uuid.UUID
      if sin.ID != nil && existingSectionByID[*sin.ID] != nil {
        sectionID = *sin.ID
        if uErr := ps.sectionRepo.UpdateFields(ctx, tx, sectionID, map[string]interface{}{
          "title":        normalization.TrimInputString(sin.Title),
          "description":  normalization.TrimInputString(sin.Description),
          "section_type": sin.SectionType,
          "sort_order":   si,
        }); uErr != nil {
          return fmt.Errorf("Failed to update section: %w", uErr)
        }
      } else {
        section := &types.Section{
          ID:          uuid.New(),
          ProtocolID:  protocolID,
          Title:       normalization.TrimInputString(sin.Title),
          Description: normalization.TrimInputString(sin.Description),
          SectionType: sin.SectionType,
          SortOrder:   si,
        }
        if _, scErr := ps.sectionRepo.Create(ctx, tx, []*types.Section{section}); scErr != nil {
          return fmt.Errorf("Failed to create section: %w", scErr)
        }
        sectionID = section.ID
      }

      existingItems, iErr := ps.itemRepo.GetBySectionIDs(ctx, tx, []uuid.UUID{sectionID})
      if iErr != nil {
        return fmt.Errorf("Failed to load section items: %w", iErr)
      }
      if syncErr := ps.syncSectionItems(ctx, tx, sectionID, existingItems, sin.Items); syncErr != nil {
        return syncErr
      }
    }

    return ps.appendRevision(ctx, tx, protocol, rd.UserID, in.RevisionNotes)
  })
  if err != nil {
    ps.log.Error("UpdateProtocol failed", "error", err, "protocol_id", protocolID)
    return nil, err
  }

  ps.invalidateView(ctx, protocolID)
  return ps.GetProtocol(ctx, protocolID)
}

func (ps *protocolService) DeleteProtocol(ctx context.Context, protocolID uuid.UUID) error {
  err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    found, fErr := ps.protocolRepo.GetByIDs(ctx, tx, []uuid.UUID{protocolID})
    if fErr != nil {
      return fmt.Errorf("Failed to load protocol: %w", fErr)
    }
    if len(found) == 0 {
      return ErrProtocolNotFound
    }
    sections, sErr := ps.sectionRepo.GetByProtocolIDs(ctx, tx, []uuid.UUID{protocolID})
    if sErr != nil {
      return fmt.Errorf("Failed to load sections: %w", sErr)
    }
    sectionIDs := make([]uuid.UUID, 0, len(sections))
    for _, s := range sections {
      sectionIDs = append(sectionIDs, s.ID)
    }
    if dErr := ps.deleteSectionContents(ctx, tx, sectionIDs); dErr != nil {
      return dErr
    }
    if dErr := ps.sectionRepo.DeleteByProtocolIDs(ctx, tx, []uuid.UUID{protocolID}); dErr != nil {
      return fmt.Errorf("Failed to delete sections: %w", dErr)
    }
    if dErr := ps.protocolRepo.DeleteByIDs(ctx, tx, []uuid.UUID{protocolID}); dErr != nil {
      return fmt.Errorf("Failed to delete protocol: %w", dErr)
    }
    return nil
  })
  if err != nil {
    ps.log.Error("DeleteProtocol failed", "error", err, "protocol_id", protocolID)
    return err
  }
  ps.invalidateView(ctx, protocolID)
  return nil
}

func (ps *protocolService) SetPublished(ctx context.Context, protocolID uuid.UUID, published bool) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return fmt.Errorf("Request data not set in context")
  }
  found, err := ps.protocolRepo.GetByIDs(ctx, nil, []uuid.UUID{protocolID})
  if err != nil {
    return fmt.Errorf("Failed to load protocol: %w", err)
  }
  if len(found) == 0 {
    return ErrProtocolNotFound
  }
  if err := ps.protocolRepo.UpdateFields(ctx, nil, protocolID, map[string]interface{}{
    "is_published": published,
    "updated_by":   rd.UserID,
  }); err != nil {
    ps.log.Error("SetPublished failed", "error", err, "protocol_id", protocolID)
    return fmt.Errorf("Failed to update publish state: %w", err)
  }
  ps.invalidateView(ctx, protocolID)
  return nil
}

func (ps *protocolService) GetProtocol(ctx context.Context, protocolID uuid.UUID) (*ProtocolTree, error) {
  found, err := ps.protocolRepo.GetByIDs(ctx, nil, []uuid.UUID{protocolID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load protocol: %w", err)
  }
  if len(found) == 0 {
    return nil, ErrProtocolNotFound
  }
  protocol := found[0]

  sections, itemsBySection, linksByItem, err := ps.loadDocument(ctx, nil, protocolID)
  if err != nil {
    return nil, err
  }

  tree := &ProtocolTree{Protocol: protocol}
  for _, section := range sections {
    st := &SectionTree{Section: section}
    childrenByParent := make(map[uuid.UUID][]*types.Item)
    for _, item := range itemsBySection[section.ID] {
      if item.ParentID != nil {
        childrenByParent[*item.ParentID] = append(childrenByParent[*item.ParentID], item)
      }
    }
    for _, item := range itemsBySection[section.ID] {
      if item.ParentID != nil {
        continue
      }
      st.Items = append(st.Items, &ItemTree{
        Item:           item,
        Criteria:       childrenByParent[item.ID],
        ProviderLevels: linksByItem[item.ID],
      })
    }
    tree.Sections = append(tree.Sections, st)
  }
  return tree, nil
}

func (ps *protocolService) ListProtocols(ctx context.Context, categoryID *uuid.UUID) ([]*types.Protocol, error) {
  if categoryID == nil {
    protocols, err := ps.protocolRepo.GetAll(ctx, nil)
    if err != nil {
      return nil, fmt.Errorf("Failed to list protocols: %w", err)
    }
    return protocols, nil
  }
  protocols, err := ps.protocolRepo.GetByCategoryIDs(ctx, nil, []uuid.UUID{*categoryID}, false)
  if err != nil {
    return nil, fmt.Errorf("Failed to list protocols: %w", err)
  }
  return protocols, nil
}

func (ps *protocolService) ListRevisions(ctx context.Context, protocolID uuid.UUID) ([]*types.ProtocolRevision, error) {
  found, err := ps.protocolRepo.GetByIDs(ctx, nil, []uuid.UUID{protocolID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load protocol: %w", err)
  }
  if len(found) == 0 {
    return nil, ErrProtocolNotFound
  }
  revisions, err := ps.revisionRepo.GetByProtocolIDs(ctx, nil, []uuid.UUID{protocolID})
  if err != nil {
    return nil, fmt.Errorf("Failed to list revisions: %w", err)
  }
  return revisions, nil
}

// syncSectionItems reconciles the items of one section against the
// submitted list. Existing holds every row of the section (top-level
// items and criteria). Submitted ids that match survive in place; rows
// absent from the submission are removed with their criteria and
// provider links. Branch targets are resolved in a second pass once
// every item id is known.
func (ps *protocolService) syncSectionItems(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, existing []*types.Item, inputs []ItemInput) error {
  existingTopIDs := make([]uuid.UUID, 0, len(existing))
  existingTopByID := make(map[uuid.UUID]*types.Item)
  childrenByParent := make(map[uuid.UUID][]*types.Item)
  for _, item := range existing {
    if item.ParentID != nil {
      childrenByParent[*item.ParentID] = append(childrenByParent[*item.ParentID], item)
      continue
    }
    existingTopIDs = append(existingTopIDs, item.ID)
    existingTopByID[item.ID] = item
  }

  submittedIDs := make([]*uuid.UUID, 0, len(inputs))
  for _, in := range inputs {
    submittedIDs = append(submittedIDs, in.ID)
  }
  if orphans := orphanIDs(existingTopIDs, submittedIDs); len(orphans) > 0 {
    removed := make([]uuid.UUID, 0, len(orphans))
    removed = append(removed, orphans...)
    for _, parentID := range orphans {
      for _, child := range childrenByParent[parentID] {
        removed = append(removed, child.ID)
      }
    }
    if dErr := ps.linkRepo.DeleteByItemIDs(ctx, tx, removed); dErr != nil {
      return fmt.Errorf("Failed to delete provider links of removed items: %w", dErr)
    }
    if dErr := ps.itemRepo.DeleteByParentIDs(ctx, tx, orphans); dErr != nil {
      return fmt.Errorf("Failed to delete criteria of removed items: %w", dErr)
    }
    if dErr := ps.itemRepo.DeleteByIDs(ctx, tx, orphans); dErr != nil {
      return fmt.Errorf("Failed to delete removed items: %w", dErr)
    }
  }

  itemIDs := make([]uuid.UUID, len(inputs))
  for j, in := range inputs {
    linkType := in.LinkType
    if linkType == "" {
      linkType = types.LinkTypeNone
    }
    if in.ID != nil && existingTopByID[*in.ID] != nil {
      itemIDs[j] = *in.ID
      if uErr := ps.itemRepo.UpdateFields(ctx, tx, itemIDs[j], map[string]interface{}{
        "title":              normalization.TrimInputString(in.Title),
        "content":            in.Content,
        "detailed_info":      in.DetailedInfo,
        "sort_order":         j,
        "is_decision":        in.IsDecision,
        "link_type":          linkType,
        "target_protocol_id": in.TargetProtocolID,
      }); uErr != nil {
        return fmt.Errorf("Failed to update item: %w", uErr)
      }
    } else {
      item := &types.Item{
        ID:               uuid.New(),
        SectionID:        sectionID,
        Title:            normalization.TrimInputString(in.Title),
        Content:          in.Content,
        DetailedInfo:     in.DetailedInfo,
        SortOrder:        j,
        IsDecision:       in.IsDecision,
        LinkType:         linkType,
        TargetProtocolID: in.TargetProtocolID,
      }
      if _, cErr := ps.itemRepo.Create(ctx, tx, []*types.Item{item}); cErr != nil {
        return fmt.Errorf("Failed to create item: %w", cErr)
      }
      itemIDs[j] = item.ID
    }

    if rcErr := ps.reconcileCriteria(ctx, tx, sectionID, itemIDs[j], childrenByParent[itemIDs[j]], in.Criteria); rcErr != nil {
      return rcErr
    }

    links := make([]*types.ItemProviderLevel, 0, len(in.ProviderLevels))
    for _, pl := range in.ProviderLevels {
      links = append(links, &types.ItemProviderLevel{
        ID:              uuid.New(),
        ItemID:          itemIDs[j],
        ProviderLevelID: pl.ProviderLevelID,
        Percentage:      pl.Percentage,
      })
    }
    if lErr := ps.linkRepo.ReplaceForItem(ctx, tx, itemIDs[j], links); lErr != nil {
      return fmt.Errorf("Failed to replace provider links: %w", lErr)
    }
  }

  for j, in := range inputs {
    var yesID, noID *uuid.UUID
    if in.IsDecision {
      if in.YesTargetIndex != nil {
        id := itemIDs[*in.YesTargetIndex]
        yesID = &id
      }
      if in.NoTargetIndex != nil {
        id := itemIDs[*in.NoTargetIndex]
        noID = &id
      }
    }
    if uErr := ps.itemRepo.UpdateFields(ctx, tx, itemIDs[j], map[string]interface{}{
      "yes_target_id": yesID,
      "no_target_id":  noID,
    }); uErr != nil {
      return fmt.Errorf("Failed to set branch targets: %w", uErr)
    }
  }
  return nil
}

func (ps *protocolService) reconcileCriteria(ctx context.Context, tx *gorm.DB, sectionID, parentID uuid.UUID, existing []*types.Item, inputs []CriterionInput) error {
  existingIDs := make([]uuid.UUID, 0, len(existing))
  existingByID := make(map[uuid.UUID]*types.Item, len(existing))
  for _, c := range existing {
    existingIDs = append(existingIDs, c.ID)
    existingByID[c.ID] = c
  }
  submittedIDs := make([]*uuid.UUID, 0, len(inputs))
  for _, in := range inputs {
    submittedIDs = append(submittedIDs, in.ID)
  }
  if orphans := orphanIDs(existingIDs, submittedIDs); len(orphans) > 0 {
    if dErr := ps.linkRepo.DeleteByItemIDs(ctx, tx, orphans); dErr != nil {
      return fmt.Errorf("Failed to delete provider links of removed criteria: %w", dErr)
    }
    if dErr := ps.itemRepo.DeleteByIDs(ctx, tx, orphans); dErr != nil {
      return fmt.Errorf("Failed to delete removed criteria: %w", dErr)
    }
  }
  for k, in := range inputs {
    if in.ID != nil && existingByID[*in.ID] != nil {
      if uErr := ps.itemRepo.UpdateFields(ctx, tx, *in.ID, map[string]interface{}{
        "title":         normalization.TrimInputString(in.Title),
        "content":       in.Content,
        "detailed_info": in.DetailedInfo,
        "sort_order":    k,
      }); uErr != nil {
        return fmt.Errorf("Failed to update criterion: %w", uErr)
      }
      continue
    }
    parent := parentID
    criterion := &types.Item{
      ID:           uuid.New(),
      SectionID:    sectionID,
      ParentID:     &parent,
      Title:        normalization.TrimInputString(in.Title),
      Content:      in.Content,
      DetailedInfo: in.DetailedInfo,
      SortOrder:    k,
      LinkType:     types.LinkTypeNone,
    }
    if _, cErr := ps.itemRepo.Create(ctx, tx, []*types.Item{criterion}); cErr != nil {
      return fmt.Errorf("Failed to create criterion: %w", cErr)
    }
  }
  return nil
}

func (ps *protocolService) deleteSectionContents(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) error {
  if len(sectionIDs) == 0 {
    return nil
  }
  items, err := ps.itemRepo.GetBySectionIDs(ctx, tx, sectionIDs)
  if err != nil {
    return fmt.Errorf("Failed to load items for delete: %w", err)
  }
  itemIDs := make([]uuid.UUID, 0, len(items))
  for _, item := range items {
    itemIDs = append(itemIDs, item.ID)
  }
  if err := ps.linkRepo.DeleteByItemIDs(ctx, tx, itemIDs); err != nil {
    return fmt.Errorf("Failed to delete provider links: %w", err)
  }
  if err := ps.itemRepo.DeleteBySectionIDs(ctx, tx, sectionIDs); err != nil {
    return fmt.Errorf("Failed to delete items: %w", err)
  }
  return nil
}

func (ps *protocolService) loadDocument(ctx context.Context, tx *gorm.DB, protocolID uuid.UUID) ([]*types.Section, map[uuid.UUID][]*types.Item, map[uuid.UUID][]*types.ItemProviderLevel, error) {
  sections, err := ps.sectionRepo.GetByProtocolIDs(ctx, tx, []uuid.UUID{protocolID})
  if err != nil {
    return nil, nil, nil, fmt.Errorf("Failed to load sections: %w", err)
  }
  sectionIDs := make([]uuid.UUID, 0, len(sections))
  for _, s := range sections {
    sectionIDs = append(sectionIDs, s.ID)
  }
  items, err := ps.itemRepo.GetBySectionIDs(ctx, tx, sectionIDs)
  if err != nil {
    return nil, nil, nil, fmt.Errorf("Failed to load items: %w", err)
  }
  itemsBySection := make(map[uuid.UUID][]*types.Item)
  itemIDs := make([]uuid.UUID, 0, len(items))
  for _, item := range items {
    itemsBySection[item.SectionID] = append(itemsBySection[item.SectionID], item)
    itemIDs = append(itemIDs, item.ID)
  }
  links, err := ps.linkRepo.GetByItemIDs(ctx, tx, itemIDs)
  if err != nil {
    return nil, nil, nil, fmt.Errorf("Failed to load provider links: %w", err)
  }
  linksByItem := make(map[uuid.UUID][]*types.ItemProviderLevel)
  for _, link := range links {
    linksByItem[link.ItemID] = append(linksByItem[link.ItemID], link)
  }
  return sections, itemsBySection, linksByItem, nil
}

func (ps *protocolService) appendRevision(ctx context.Context, tx *gorm.DB, protocol *types.Protocol, userID uuid.UUID, notes string) error {
  sections, itemsBySection, linksByItem, err := ps.loadDocument(ctx, tx, protocol.ID)
  if err != nil {
    return err
  }
  snap := buildSnapshot(protocol, sections, itemsBySection, linksByItem)
  raw, err := json.Marshal(snap)
  if err != nil {
    return fmt.Errorf("Failed to marshal revision snapshot: %w", err)
  }
  revision := &types.ProtocolRevision{
    ID:         uuid.New(),
    ProtocolID: protocol.ID,
    UserID:     userID,
    Snapshot:   datatypes.JSON(raw),
    Notes:      notes,
  }
  if _, err := ps.revisionRepo.Create(ctx, tx, []*types.ProtocolRevision{revision}); err != nil {
    return fmt.Errorf("Failed to append revision: %w", err)
  }
  return nil
}

func (ps *protocolService) invalidateView(ctx context.Context, protocolID uuid.UUID) {
  if ps.viewCache == nil {
    return
  }
  if err := ps.viewCache.InvalidateProtocol(ctx, protocolID); err != nil {
    ps.log.Warn("view cache invalidation failed", "error", err, "protocol_id", protocolID)
  }
}
