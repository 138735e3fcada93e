package services

import (
  "context"
  "fmt"
  "strings"
  "golang.org/x/sync/errgroup"
  "gorm.io/gorm"
  "github.com/google/uuid"
  redisclient "github.com/firelightacademy/protocols-backend/internal/clients/redis"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/render"
  "github.com/firelightacademy/protocols-backend/internal/repos"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

// CategorySummary is a category tile on the public index: the category
// row plus how many published protocols it holds.
type CategorySummary struct {
  Category       *types.Category `json:"category"`
  ProtocolCount  int64           `json:"protocol_count"`
}

type CategoryView struct {
  Category  *types.Category   `json:"category"`
  Protocols []*types.Protocol `json:"protocols"`
}

// ProtocolView is the full public document: metadata plus the rendered
// layout.
type ProtocolView struct {
  Protocol *types.Protocol `json:"protocol"`
  Category *types.Category `json:"category"`
  Layout   *render.Layout  `json:"layout"`
}

type ViewService interface {
  ListCategories(ctx context.Context) ([]*CategorySummary, error)
  GetCategory(ctx context.Context, categoryID uuid.UUID) (*CategoryView, error)
  GetProtocolView(ctx context.Context, protocolID uuid.UUID) (*ProtocolView, error)
  Search(ctx context.Context, query string) ([]*types.Protocol, error)
}

type viewService struct {
  db           *gorm.DB
  log          *logger.Logger
  categoryRepo repos.CategoryRepo
  protocolRepo repos.ProtocolRepo
  sectionRepo  repos.SectionRepo
  itemRepo     repos.ItemRepo
  linkRepo     repos.ItemProviderLevelRepo
  viewCache    redisclient.ViewCache
}

func NewViewService(
  db *gorm.DB,
  baseLog *logger.Logger,
  categoryRepo repos.CategoryRepo,
  protocolRepo repos.ProtocolRepo,
  sectionRepo repos.SectionRepo,
  itemRepo repos.ItemRepo,
  linkRepo repos.ItemProviderLevelRepo,
  viewCache redisclient.ViewCache,
) ViewService {
  serviceLog := baseLog.With("service", "ViewService")
  return &viewService{
    db:           db,
    log:          serviceLog,
    categoryRepo: categoryRepo,
    protocolRepo: protocolRepo,
    sectionRepo:  sectionRepo,
    itemRepo:     itemRepo,
    linkRepo:     linkRepo,
    viewCache:    viewCache,
  }
}

func (vs *viewService) ListCategories(ctx context.Context) ([]*CategorySummary, error) {
  categories, err := vs.categoryRepo.GetAll(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("Failed to list categories: %w", err)
  }
  categoryIDs := make([]uuid.UUID, 0, len(categories))
  for _, c := range categories {
    categoryIDs = append(categoryIDs, c.ID)
  }
  counts, err := vs.protocolRepo.CountPublishedByCategoryIDs(ctx, nil, categoryIDs)
  if err != nil {
    return nil, fmt.Errorf("Failed to count protocols: %w", err)
  }
  summaries := make([]*CategorySummary, 0, len(categories))
  for _, c := range categories {
    summaries = append(summaries, &CategorySummary{
      Category:      c,
      ProtocolCount: counts[c.ID],
    })
  }
  return summaries, nil
}

func (vs *viewService) GetCategory(ctx context.Context, categoryID uuid.UUID) (*CategoryView, error) {
  found, err := vs.categoryRepo.GetByIDs(ctx, nil, []uuid.UUID{categoryID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load category: %w", err)
  }
  if len(found) == 0 {
    return nil, ErrCategoryNotFound
  }
  protocols, err := vs.protocolRepo.GetByCategoryIDs(ctx, nil, []uuid.UUID{categoryID}, true)
  if err != nil {
    return nil, fmt.Errorf("Failed to list protocols: %w", err)
  }
  return &CategoryView{Category: found[0], Protocols: protocols}, nil
}

// GetProtocolView serves the public document. Unpublished protocols are
// indistinguishable from missing ones. The rendered layout comes from
// the view cache when fresh; writes to the protocol drop the entry.
func (vs *viewService) GetProtocolView(ctx context.Context, protocolID uuid.UUID) (*ProtocolView, error) {
  found, err := vs.protocolRepo.GetByIDs(ctx, nil, []uuid.UUID{protocolID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load protocol: %w", err)
  }
  if len(found) == 0 || !found[0].IsPublished {
    return nil, ErrProtocolNotFound
  }
  protocol := found[0]

  var category *types.Category
  var layout *render.Layout

  g, gctx := errgroup.WithContext(ctx)
  g.Go(func() error {
    categories, cErr := vs.categoryRepo.GetByIDs(gctx, nil, []uuid.UUID{protocol.CategoryID})
    if cErr != nil {
      return fmt.Errorf("Failed to load category: %w", cErr)
    }
    if len(categories) > 0 {
      category = categories[0]
    }
    return nil
  })
  g.Go(func() error {
    built, lErr := vs.buildLayout(gctx, protocolID)
    if lErr != nil {
      return lErr
    }
    layout = built
    return nil
  })
  if err := g.Wait(); err != nil {
    vs.log.Error("GetProtocolView failed", "error", err, "protocol_id", protocolID)
    return nil, err
  }

  return &ProtocolView{Protocol: protocol, Category: category, Layout: layout}, nil
}

func (vs *viewService) buildLayout(ctx context.Context, protocolID uuid.UUID) (*render.Layout, error) {
  if vs.viewCache != nil {
    if cached, ok := vs.viewCache.GetLayout(ctx, protocolID); ok {
      return cached, nil
    }
  }

  sections, err := vs.sectionRepo.GetByProtocolIDs(ctx, nil, []uuid.UUID{protocolID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load sections: %w", err)
  }
  sectionIDs := make([]uuid.UUID, 0, len(sections))
  for _, s := range sections {
    sectionIDs = append(sectionIDs, s.ID)
  }
  items, err := vs.itemRepo.GetBySectionIDs(ctx, nil, sectionIDs)
  if err != nil {
    return nil, fmt.Errorf("Failed to load items: %w", err)
  }
  itemsBySection := make(map[uuid.UUID][]*types.Item)
  childrenByParent := make(map[uuid.UUID][]*types.Item)
  itemIDs := make([]uuid.UUID, 0, len(items))
  for _, item := range items {
    itemIDs = append(itemIDs, item.ID)
    if item.ParentID != nil {
      childrenByParent[*item.ParentID] = append(childrenByParent[*item.ParentID], item)
      continue
    }
    itemsBySection[item.SectionID] = append(itemsBySection[item.SectionID], item)
  }
  links, err := vs.linkRepo.GetByItemIDs(ctx, nil, itemIDs)
  if err != nil {
    return nil, fmt.Errorf("Failed to load provider links: %w", err)
  }
  providersByItem := make(map[uuid.UUID][]*types.ItemProviderLevel)
  for _, link := range links {
    providersByItem[link.ItemID] = append(providersByItem[link.ItemID], link)
  }

  layout := render.BuildLayout(render.Input{
    ProtocolID:       protocolID,
    Sections:         sections,
    ItemsBySection:   itemsBySection,
    ChildrenByParent: childrenByParent,
    ProvidersByItem:  providersByItem,
  })

  if vs.viewCache != nil {
    if err := vs.viewCache.SetLayout(ctx, protocolID, &layout); err != nil {
      vs.log.Warn("view cache write failed", "error", err, "protocol_id", protocolID)
    }
  }
  return &layout, nil
}

func (vs *viewService) Search(ctx context.Context, query string) ([]*types.Protocol, error) {
  q := strings.TrimSpace(query)
  if q == "" {
    return []*types.Protocol{}, nil
  }
  protocols, err := vs.protocolRepo.SearchPublished(ctx, nil, q)
  if err != nil {
    vs.log.Error("Search failed", "error", err)
    return nil, fmt.Errorf("Failed to search protocols: %w", err)
  }
  return protocols, nil
}
