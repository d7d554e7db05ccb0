package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"primex/api/internal/models"
)

func authRouter(users fakeUsers) *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(testConfig(), users), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	return r
}

func TestAuthTokenErrors(t *testing.T) {
	r := authRouter(fakeUsers{})

	tests := []struct {
		name        string
		auth        string
		wantMessage string
	}{
		{"no header", "", "Access token required"},
		{"wrong scheme", "Basic abc", "Access token required"},
		{"garbage token", "Bearer not-a-jwt", "Invalid token"},
		{"expired token", "Bearer " + mustToken(t, 1, false, -time.Hour), "Token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := perform(r, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			if e := decodeEnvelope(t, w); e.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", e.Message, tt.wantMessage)
			}
		})
	}
}

func TestAuthUserNotFound(t *testing.T) {
	r := authRouter(fakeUsers{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, 42, false, time.Hour))
	w := perform(r, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Message != "User not found" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestAuthInactiveUser(t *testing.T) {
	r := authRouter(fakeUsers{
		7: {ID: 7, Status: models.UserStatusSuspended},
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, 7, false, time.Hour))
	w := perform(r, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Message != "Account is not active" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestAuthActiveUserPasses(t *testing.T) {
	r := authRouter(fakeUsers{
		7: {ID: 7, Status: models.UserStatusActive},
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, 7, false, time.Hour))
	w := perform(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestAuthAdminRejectsUserToken(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthAdmin(testConfig(), fakeAdmins{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, 7, false, time.Hour))
	w := perform(r, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Message != "Admin access required" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestAuthAdminExpiredToken(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthAdmin(testConfig(), fakeAdmins{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, 7, true, -time.Hour))
	w := perform(r, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Message != "Invalid or expired token" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestAuthAdminAttachesPermissions(t *testing.T) {
	admins := fakeAdmins{
		3: {ID: 3, Role: models.AdminRoleCodesSeller, Status: models.UserStatusActive},
	}

	r := gin.New()
	r.GET("/admin", AuthAdmin(testConfig(), admins), func(c *gin.Context) {
		perms := AdminPermissions(c)
		c.JSON(http.StatusOK, gin.H{"codes": perms["codes"], "users": perms["users"]})
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, 3, true, time.Hour))
	w := perform(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var got map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got["codes"] || got["users"] {
		t.Errorf("codes_seller permissions = %v", got)
	}
}

func TestAuthAdminInactive(t *testing.T) {
	admins := fakeAdmins{
		3: {ID: 3, Role: models.AdminRoleAdmin, Status: models.UserStatusInactive},
	}

	r := gin.New()
	r.GET("/admin", AuthAdmin(testConfig(), admins), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, 3, true, time.Hour))
	w := perform(r, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Message != "Invalid admin credentials" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestAuthAnyBranchesOnTokenKind(t *testing.T) {
	users := fakeUsers{7: {ID: 7, Status: models.UserStatusActive}}
	admins := fakeAdmins{3: {ID: 3, Role: models.AdminRoleAdmin, Status: models.UserStatusActive}}

	r := gin.New()
	r.GET("/stream", AuthAny(testConfig(), users, admins), func(c *gin.Context) {
		if _, ok := CurrentAdmin(c); ok {
			c.JSON(http.StatusOK, gin.H{"kind": "admin"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"kind": "user"})
	})

	for _, tt := range []struct {
		token string
		want  string
	}{
		{mustToken(t, 7, false, time.Hour), `"kind":"user"`},
		{mustToken(t, 3, true, time.Hour), `"kind":"admin"`},
	} {
		req := httptest.NewRequest(http.MethodGet, "/stream", nil)
		req.Header.Set("Authorization", "Bearer "+tt.token)
		w := perform(r, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		if body := w.Body.String(); !strings.Contains(body, tt.want) {
			t.Errorf("body = %s, want it to contain %s", body, tt.want)
		}
	}
}
