package services

import (
  "fmt"
  "strings"
  "github.com/google/uuid"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

// ProtocolInput is the full document an admin submits on create or edit.
// Section and item order is the array order; sort_order values are
// assigned from array position server-side.
type ProtocolInput struct {
  Title          string         `json:"title"`
  ProtocolNumber string         `json:"protocol_number"`
  Description    string         `json:"description"`
  CategoryID     uuid.UUID      `json:"category_id"`
  IsPublished    bool           `json:"is_published"`
  RevisionNotes  string         `json:"revision_notes"`
  Sections       []SectionInput `json:"sections"`
}

type SectionInput struct {
  ID          *uuid.UUID  `json:"id,omitempty"`
  Title       string      `json:"title"`
  Description string      `json:"description"`
  SectionType string      `json:"section_type"`
  Items       []ItemInput `json:"items"`
}

// ItemInput describes one top-level item. Decision branch targets
// reference positions in the same Items array; they are resolved to the
// stored item ids after the write.
type ItemInput struct {
  ID               *uuid.UUID          `json:"id,omitempty"`
  Title            string              `json:"title"`
  Content          string              `json:"content"`
  DetailedInfo     string              `json:"detailed_info"`
  IsDecision       bool                `json:"is_decision"`
  YesTargetIndex   *int                `json:"yes_target_index,omitempty"`
  NoTargetIndex    *int                `json:"no_target_index,omitempty"`
  LinkType         string              `json:"link_type"`
  TargetProtocolID *uuid.UUID          `json:"target_protocol_id,omitempty"`
  ProviderLevels   []ProviderLinkInput `json:"provider_levels"`
  Criteria         []CriterionInput    `json:"criteria"`
}

type CriterionInput struct {
  ID           *uuid.UUID `json:"id,omitempty"`
  Title        string     `json:"title"`
  Content      string     `json:"content"`
  DetailedInfo string     `json:"detailed_info"`
}

type ProviderLinkInput struct {
  ProviderLevelID uuid.UUID `json:"provider_level_id"`
  Percentage      *float64  `json:"percentage,omitempty"`
}

// ValidationError carries every problem found in a submission so the
// admin form can re-render all of them at once. Nothing is written when
// validation fails.
type ValidationError struct {
  Problems []string
}

func (ve *ValidationError) Error() string {
  return "validation failed: " + strings.Join(ve.Problems, "; ")
}

func ValidateProtocolInput(in *ProtocolInput) *ValidationError {
  var problems []string
  if strings.TrimSpace(in.Title) == "" {
    problems = append(problems, "title is required")
  }
  if in.CategoryID == uuid.Nil {
    problems = append(problems, "category is required")
  }
  for si, section := range in.Sections {
    if strings.TrimSpace(section.Title) == "" {
      problems = append(problems, fmt.Sprintf("section %d: title is required", si+1))
    }
    if !types.ValidSectionType(section.SectionType) {
      problems = append(problems, fmt.Sprintf("section %d: invalid section type %q", si+1, section.SectionType))
    }
    for ii, item := range section.Items {
      if item.LinkType != "" && item.LinkType != types.LinkTypeNone && item.LinkType != types.LinkTypeProtocol {
        problems = append(problems, fmt.Sprintf("section %d item %d: invalid link type %q", si+1, ii+1, item.LinkType))
      }
      if item.LinkType == types.LinkTypeProtocol && item.TargetProtocolID == nil {
        problems = append(problems, fmt.Sprintf("section %d item %d: protocol link requires a target protocol", si+1, ii+1))
      }
      for _, idx := range []*int{item.YesTargetIndex, item.NoTargetIndex} {
        if idx == nil {
          continue
        }
        if !item.IsDecision {
          problems = append(problems, fmt.Sprintf("section %d item %d: branch target on a non-decision step", si+1, ii+1))
          break
        }
        if *idx < 0 || *idx >= len(section.Items) {
          problems = append(problems, fmt.Sprintf("section %d item %d: branch target index %d out of range", si+1, ii+1, *idx))
        } else if *idx == ii {
          problems = append(problems, fmt.Sprintf("section %d item %d: branch target references itself", si+1, ii+1))
        }
      }
    }
  }
  if len(problems) == 0 {
    return nil
  }
  return &ValidationError{Problems: problems}
}

// orphanIDs returns the existing ids absent from the submission. Those
// rows are deleted by the reconcile pass; ids present in both survive
// with their database id intact.
func orphanIDs(existing []uuid.UUID, submitted []*uuid.UUID) []uuid.UUID {
  keep := make(map[uuid.UUID]bool, len(submitted))
  for _, id := range submitted {
    if id != nil {
      keep[*id] = true
    }
  }
  var orphans []uuid.UUID
  for _, id := range existing {
    if !keep[id] {
      orphans = append(orphans, id)
    }
  }
  return orphans
}

// protocolSnapshot is the revision payload: the scalar fields plus the
// complete section/item tree, so a revision row can restore structure,
// not just metadata.
type protocolSnapshot struct {
  Title          string            `json:"title"`
  ProtocolNumber string            `json:"protocol_number"`
  Description    string            `json:"description"`
  CategoryID     uuid.UUID         `json:"category_id"`
  IsPublished    bool              `json:"is_published"`
  Sections       []sectionSnapshot `json:"sections"`
}

type sectionSnapshot struct {
  ID          uuid.UUID      `json:"id"`
  Title       string         `json:"title"`
  Description string         `json:"description"`
  SectionType string         `json:"section_type"`
  SortOrder   int            `json:"sort_order"`
  Items       []itemSnapshot `json:"items"`
}

type itemSnapshot struct {
  ID               uuid.UUID            `json:"id"`
  ParentID         *uuid.UUID           `json:"parent_id,omitempty"`
  Title            string               `json:"title"`
  Content          string               `json:"content"`
  DetailedInfo     string               `json:"detailed_info,omitempty"`
  SortOrder        int                  `json:"sort_order"`
  IsDecision       bool                 `json:"is_decision"`
  YesTargetID      *uuid.UUID           `json:"yes_target_id,omitempty"`
  NoTargetID       *uuid.UUID           `json:"no_target_id,omitempty"`
  LinkType         string               `json:"link_type"`
  TargetProtocolID *uuid.UUID           `json:"target_protocol_id,omitempty"`
  ProviderLevels   []providerSnapshot   `json:"provider_levels,omitempty"`
}

type providerSnapshot struct {
  ProviderLevelID uuid.UUID `json:"provider_level_id"`
  Percentage      *float64  `json:"percentage,omitempty"`
}

func buildSnapshot(protocol *types.Protocol, sections []*types.Section, itemsBySection map[uuid.UUID][]*types.Item, linksByItem map[uuid.UUID][]*types.ItemProviderLevel) protocolSnapshot {
  snap := protocolSnapshot{
    Title:          protocol.Title,
    ProtocolNumber: protocol.ProtocolNumber,
    Description:    protocol.Description,
    CategoryID:     protocol.CategoryID,
    IsPublished:    protocol.IsPublished,
  }
  for _, section := range sections {
    ss := sectionSnapshot{
      ID:          section.ID,
      Title:       section.Title,
      Description: section.Description,
      SectionType: section.SectionType,
      SortOrder:   section.SortOrder,
    }
    for _, item := range itemsBySection[section.ID] {
      is := itemSnapshot{
        ID:               item.ID,
        ParentID:         item.ParentID,
        Title:            item.Title,
        Content:          item.Content,
        DetailedInfo:     item.DetailedInfo,
        SortOrder:        item.SortOrder,
        IsDecision:       item.IsDecision,
        YesTargetID:      item.YesTargetID,
        NoTargetID:       item.NoTargetID,
        LinkType:         item.LinkType,
        TargetProtocolID: item.TargetProtocolID,
      }
      for _, link := range linksByItem[item.ID] {
        is.ProviderLevels = append(is.ProviderLevels, providerSnapshot{
          ProviderLevelID: link.ProviderLevelID,
          Percentage:      link.Percentage,
        })
      }
      ss.Items = append(ss.Items, is)
    }
    snap.Sections = append(snap.Sections, ss)
  }
  return snap
}
