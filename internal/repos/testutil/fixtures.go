package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/firelightacademy/protocols-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      types.RoleEditor,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Category {
	tb.Helper()
	c := &types.Category{
		ID:     uuid.New(),
		Name:   name,
		Prefix: "T",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedProtocol(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID, userID uuid.UUID, published bool) *types.Protocol {
	tb.Helper()
	p := &types.Protocol{
		ID:          uuid.New(),
		CategoryID:  categoryID,
		Title:       "protocol",
		IsPublished: published,
		CreatedBy:   userID,
		UpdatedBy:   userID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed protocol: %v", err)
	}
	return p
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, protocolID uuid.UUID, sectionType string, order int) *types.Section {
	tb.Helper()
	s := &types.Section{
		ID:          uuid.New(),
		ProtocolID:  protocolID,
		Title:       "section",
		SectionType: sectionType,
		SortOrder:   order,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, title string, order int) *types.Item {
	tb.Helper()
	i := &types.Item{
		ID:        uuid.New(),
		SectionID: sectionID,
		Title:     title,
		SortOrder: order,
		LinkType:  types.LinkTypeNone,
	}
	if err := tx.WithContext(ctx).Create(i).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return i
}

func SeedProviderLevel(tb testing.TB, ctx context.Context, tx *gorm.DB, name, abbr string, order int) *types.ProviderLevel {
	tb.Helper()
	pl := &types.ProviderLevel{
		ID:           uuid.New(),
		Name:         name,
		Abbreviation: abbr,
		SortOrder:    order,
	}
	if err := tx.WithContext(ctx).Create(pl).Error; err != nil {
		tb.Fatalf("seed provider level: %v", err)
	}
	return pl
}
