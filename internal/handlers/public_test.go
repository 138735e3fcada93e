package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/firelightacademy/protocols-backend/internal/render"
	"github.com/firelightacademy/protocols-backend/internal/services"
	"github.com/firelightacademy/protocols-backend/internal/types"
)

type fakeViewService struct {
	published map[uuid.UUID]*services.ProtocolView
	searched  []*types.Protocol
}

func (f *fakeViewService) ListCategories(ctx context.Context) ([]*services.CategorySummary, error) {
	return nil, nil
}

func (f *fakeViewService) GetCategory(ctx context.Context, categoryID uuid.UUID) (*services.CategoryView, error) {
	return nil, services.ErrCategoryNotFound
}

func (f *fakeViewService) GetProtocolView(ctx context.Context, protocolID uuid.UUID) (*services.ProtocolView, error) {
	if view, ok := f.published[protocolID]; ok {
		return view, nil
	}
	return nil, services.ErrProtocolNotFound
}

func (f *fakeViewService) Search(ctx context.Context, query string) ([]*types.Protocol, error) {
	return f.searched, nil
}

func newPublicRouter(fake *fakeViewService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewPublicHandler(fake)
	router.GET("/api/protocols/:id", handler.GetProtocol)
	router.GET("/api/categories/:id", handler.GetCategory)
	router.GET("/api/search", handler.Search)
	return router
}

func TestPublicGetProtocol_UnpublishedIsNotFound(t *testing.T) {
	fake := &fakeViewService{published: map[uuid.UUID]*services.ProtocolView{}}
	router := newPublicRouter(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/protocols/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", rec.Code)
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Error.Code != "not_found" {
		t.Fatalf("want code not_found, got %q", envelope.Error.Code)
	}
}

func TestPublicGetProtocol_PublishedReturnsLayout(t *testing.T) {
	protocolID := uuid.New()
	fake := &fakeViewService{published: map[uuid.UUID]*services.ProtocolView{
		protocolID: {
			Protocol: &types.Protocol{ID: protocolID, Title: "Stroke", IsPublished: true},
			Layout:   &render.Layout{ProtocolID: protocolID},
		},
	}}
	router := newPublicRouter(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/protocols/"+protocolID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view struct {
		Protocol *types.Protocol `json:"protocol"`
		Layout   *render.Layout  `json:"layout"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if view.Protocol == nil || view.Protocol.Title != "Stroke" {
		t.Fatalf("unexpected protocol: %+v", view.Protocol)
	}
	if view.Layout == nil || view.Layout.ProtocolID != protocolID {
		t.Fatalf("unexpected layout: %+v", view.Layout)
	}
}

func TestPublicGetProtocol_BadIDIsBadRequest(t *testing.T) {
	fake := &fakeViewService{}
	router := newPublicRouter(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/protocols/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}
