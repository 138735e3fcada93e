package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/firelightacademy/protocols-backend/internal/logger"
	"github.com/firelightacademy/protocols-backend/internal/requestdata"
	"github.com/firelightacademy/protocols-backend/internal/types"
)

// fakeAuthService accepts one known token and binds it to a fixed
// user id and role.
type fakeAuthService struct {
	token  string
	userID uuid.UUID
	role   string
}

func (f *fakeAuthService) RegisterUser(ctx context.Context, user *types.User) error { return nil }

func (f *fakeAuthService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	return "", "", nil
}

func (f *fakeAuthService) RefreshUser(ctx context.Context) (string, string, error) {
	return "", "", nil
}

func (f *fakeAuthService) LogoutUser(ctx context.Context) error { return nil }

func (f *fakeAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString != f.token {
		return ctx, fmt.Errorf("Invalid or expired JWT token")
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      f.userID,
		Role:        f.role,
	}), nil
}

func (f *fakeAuthService) GetAccessTTL() time.Duration { return time.Hour }

func newAuthTestRouter(tb testing.TB, fake *fakeAuthService, requiredRoles ...string) *gin.Engine {
	tb.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("logger: %v", err)
	}
	am := NewAuthMiddleware(log, fake)

	router := gin.New()
	group := router.Group("/")
	group.Use(am.RequireAuth())
	if len(requiredRoles) > 0 {
		group.Use(am.RequireRole(requiredRoles...))
	}
	group.GET("/probe", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestRequireAuth_MissingTokenIs401(t *testing.T) {
	fake := &fakeAuthService{token: "good", userID: uuid.New(), role: types.RoleEditor}
	router := newAuthTestRouter(t, fake)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestRequireAuth_BadTokenIs401(t *testing.T) {
	fake := &fakeAuthService{token: "good", userID: uuid.New(), role: types.RoleEditor}
	router := newAuthTestRouter(t, fake)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestRequireAuth_ValidTokenPasses(t *testing.T) {
	fake := &fakeAuthService{token: "good", userID: uuid.New(), role: types.RoleEditor}
	router := newAuthTestRouter(t, fake)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}

func TestRequireRole_WrongRoleIs403(t *testing.T) {
	fake := &fakeAuthService{token: "good", userID: uuid.New(), role: "viewer"}
	router := newAuthTestRouter(t, fake, types.RoleEditor)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("want 403, got %d", rec.Code)
	}
}

func TestRequireRole_AdminAlwaysPasses(t *testing.T) {
	fake := &fakeAuthService{token: "good", userID: uuid.New(), role: types.RoleAdmin}
	router := newAuthTestRouter(t, fake, types.RoleEditor)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}
