package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"primex/api/internal/config"
	"primex/api/internal/models"
	"primex/api/internal/repository"
	"primex/api/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTSecret:    testSecret,
			JWTAccessTTL: time.Hour,
		},
	}
}

func mustToken(t *testing.T, principalID int64, isAdmin bool, ttl time.Duration) string {
	t.Helper()
	token, err := security.GenerateAccessToken(testSecret, principalID, isAdmin, ttl)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func perform(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	// httptest.NewRequest pre-fills RemoteAddr with "192.0.2.1:1234", so
	// treat that sentinel like unset; tests that care set their own.
	if req.RemoteAddr == "" || req.RemoteAddr == "192.0.2.1:1234" {
		req.RemoteAddr = "203.0.113.7:40000"
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return e
}

type fakeUsers map[int64]models.User

func (f fakeUsers) GetByID(_ context.Context, id int64) (models.User, error) {
	user, ok := f[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeAdmins map[int64]models.Admin

func (f fakeAdmins) GetByID(_ context.Context, id int64) (models.Admin, error) {
	admin, ok := f[id]
	if !ok {
		return models.Admin{}, repository.ErrAdminNotFound
	}
	return admin, nil
}

type fakeDevices struct {
	existing map[string]models.Device
	active   int

	inserted []models.Device
	touched  []int64
}

func (f *fakeDevices) FindActive(_ context.Context, userID int64, deviceID string) (models.Device, error) {
	device, ok := f.existing[deviceID]
	if !ok || device.UserID != userID {
		return models.Device{}, repository.ErrDeviceNotFound
	}
	return device, nil
}

func (f *fakeDevices) CountActive(_ context.Context, _ int64) (int, error) {
	return f.active, nil
}

func (f *fakeDevices) Insert(_ context.Context, device models.Device) error {
	f.inserted = append(f.inserted, device)
	return nil
}

func (f *fakeDevices) Touch(_ context.Context, id int64) error {
	f.touched = append(f.touched, id)
	return nil
}
