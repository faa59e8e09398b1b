package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"campaign_portal_backend/internal/access/service"
	"campaign_portal_backend/internal/events"
	"campaign_portal_backend/platform/httpkit"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type staticRoles []string

func (s staticRoles) ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s, nil
}

type noPrefs struct{}

func (noPrefs) Get(ctx context.Context, userID uuid.UUID, key string) (string, bool, error) {
	return "", false, nil
}
func (noPrefs) Set(ctx context.Context, userID uuid.UUID, key, value string) error { return nil }

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)           {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

func newTestRouter(roles staticRoles, tokenRoles []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.New(roles, noPrefs{}, nopBus{}, logger.Discard())
	h := New(svc, validator.New())

	r := gin.New()
	authed := r.Group("/", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		httpkit.SetRoles(c, tokenRoles)
	}, h.LoadRoles())
	h.RegisterRoutes(authed)
	authed.GET("/admin-only", httpkit.RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/resolve", h.LoadRoles(), h.Resolve)
	return r
}

func TestLoadRolesUsesStoredRoles(t *testing.T) {
	// Token claims admin but the role store does not.
	r := newTestRouter(staticRoles{"partner"}, []string{"admin"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin-only", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestSetActiveRoleForbiddenWhenNotHeld(t *testing.T) {
	r := newTestRouter(staticRoles{"partner"}, nil)

	body := bytes.NewBufferString(`{"role":"admin"}`)
	req := httptest.NewRequest(http.MethodPut, "/me/active-role", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSetActiveRoleRejectsUnknownRole(t *testing.T) {
	r := newTestRouter(staticRoles{"partner"}, nil)

	req := httptest.NewRequest(http.MethodPut, "/me/active-role", bytes.NewBufferString(`{"role":"owner"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestResolveAnonymous(t *testing.T) {
	r := newTestRouter(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/resolve", bytes.NewBufferString(`{"requiredRole":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Decision string `json:"decision"`
		Path     string `json:"path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Decision != "redirect" || resp.Path != "/admin/login" {
		t.Fatalf("unexpected decision %+v", resp)
	}
}
