package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lcfauto/config"
	"lcfauto/internal/auth"
	"lcfauto/internal/domain"

	"github.com/gin-gonic/gin"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "lcfauto-test",
	}
}

func protectedRouter(cfg *config.JWTConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthRequiredNoHeader(t *testing.T) {
	r := protectedRouter(testJWTConfig())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRequiredBadFormat(t *testing.T) {
	r := protectedRouter(testJWTConfig())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	r := protectedRouter(testJWTConfig())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRequiredValidToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := auth.GenerateAccessToken(cfg, 7, "c@example.com", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	r := protectedRouter(cfg)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	cfg := testJWTConfig()

	tests := []struct {
		name     string
		role     string
		mw       gin.HandlerFunc
		wantCode int
	}{
		{"admin passes admin gate", domain.RoleAdmin, AdminRequired(), http.StatusOK},
		{"customer blocked by admin gate", domain.RoleCustomer, AdminRequired(), http.StatusForbidden},
		{"mechanic passes staff gate", domain.RoleMechanic, StaffRequired(), http.StatusOK},
		{"admin passes staff gate", domain.RoleAdmin, StaffRequired(), http.StatusOK},
		{"customer blocked by staff gate", domain.RoleCustomer, StaffRequired(), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := auth.GenerateAccessToken(cfg, 1, "u@example.com", tt.role)
			if err != nil {
				t.Fatalf("GenerateAccessToken: %v", err)
			}
			r := protectedRouter(cfg, tt.mw)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}
