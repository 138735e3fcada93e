package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/firelightacademy/protocols-backend/internal/repos/testutil"
	"github.com/firelightacademy/protocols-backend/internal/types"
)

func TestProtocolRepo_PublishedFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewProtocolRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "protocolrepo@example.com")
	category := testutil.SeedCategory(t, ctx, tx, "Cardiac")
	otherCategory := testutil.SeedCategory(t, ctx, tx, "Trauma")

	published := testutil.SeedProtocol(t, ctx, tx, category.ID, user.ID, true)
	testutil.SeedProtocol(t, ctx, tx, category.ID, user.ID, false)
	testutil.SeedProtocol(t, ctx, tx, otherCategory.ID, user.ID, true)

	publicOnly, err := repo.GetByCategoryIDs(ctx, tx, []uuid.UUID{category.ID}, true)
	if err != nil {
		t.Fatalf("GetByCategoryIDs published: %v", err)
	}
	if len(publicOnly) != 1 || publicOnly[0].ID != published.ID {
		t.Fatalf("expected only the published protocol, got %+v", publicOnly)
	}

	all, err := repo.GetByCategoryIDs(ctx, tx, []uuid.UUID{category.ID}, false)
	if err != nil {
		t.Fatalf("GetByCategoryIDs all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both protocols, got %d", len(all))
	}

	counts, err := repo.CountPublishedByCategoryIDs(ctx, tx, []uuid.UUID{category.ID, otherCategory.ID})
	if err != nil {
		t.Fatalf("CountPublishedByCategoryIDs: %v", err)
	}
	if counts[category.ID] != 1 || counts[otherCategory.ID] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestProtocolRepo_SearchPublished(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewProtocolRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "protocolsearch@example.com")
	category := testutil.SeedCategory(t, ctx, tx, "Medical")

	match := &types.Protocol{
		ID:             uuid.New(),
		CategoryID:     category.ID,
		Title:          "Anaphylaxis",
		ProtocolNumber: "M-12",
		IsPublished:    true,
		CreatedBy:      user.ID,
		UpdatedBy:      user.ID,
	}
	if err := tx.WithContext(ctx).Create(match).Error; err != nil {
		t.Fatalf("seed protocol: %v", err)
	}
	hidden := &types.Protocol{
		ID:          uuid.New(),
		CategoryID:  category.ID,
		Title:       "Anaphylaxis (draft rewrite)",
		IsPublished: false,
		CreatedBy:   user.ID,
		UpdatedBy:   user.ID,
	}
	if err := tx.WithContext(ctx).Create(hidden).Error; err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	byTitle, err := repo.SearchPublished(ctx, tx, "anaphyl")
	if err != nil {
		t.Fatalf("SearchPublished: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].ID != match.ID {
		t.Fatalf("expected one published match, got %+v", byTitle)
	}

	byNumber, err := repo.SearchPublished(ctx, tx, "m-12")
	if err != nil {
		t.Fatalf("SearchPublished by number: %v", err)
	}
	if len(byNumber) != 1 || byNumber[0].ID != match.ID {
		t.Fatalf("expected match by protocol number, got %+v", byNumber)
	}

	empty, err := repo.SearchPublished(ctx, tx, "   ")
	if err != nil {
		t.Fatalf("SearchPublished blank: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no results for blank query, got %d", len(empty))
	}
}
