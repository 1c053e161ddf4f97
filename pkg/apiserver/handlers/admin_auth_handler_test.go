package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/apiserver/middleware"
	"github.com/empresasintegra/leykarin/pkg/auth"
	"github.com/empresasintegra/leykarin/pkg/model"
)

type fakeAdminAccounts struct {
	admins map[string]*model.Admin
}

func (f *fakeAdminAccounts) FindByLogin(_ context.Context, login string) (*model.Admin, error) {
	for _, admin := range f.admins {
		if admin.Username == login || admin.Email == login {
			return admin, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminAccounts) GetByID(_ context.Context, id string) (*model.Admin, error) {
	return f.admins[id], nil
}

func (f *fakeAdminAccounts) SetPassword(_ context.Context, id string, password string) error {
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	f.admins[id].PasswordHash = hash
	return nil
}

func newTestAdmin(t *testing.T, password string) *model.Admin {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &model.Admin{
		ID:           uuid.New(),
		Username:     "gestor",
		Email:        "gestor@example.com",
		Name:         "Gestora de Denuncias",
		PasswordHash: hash,
	}
}

func adminAuthTestRouter(accounts *fakeAdminAccounts, admin *model.Admin) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokenManager([]byte("test-signing-key"), time.Hour)
	handler := NewAdminAuthHandler(accounts, tokens, zap.NewNop())

	r := gin.New()
	r.POST("/login", handler.Login)
	r.POST("/password", func(c *gin.Context) {
		claims, _ := tokens.Validate(mustToken(tokens, admin))
		c.Set(middleware.ClaimsKey, claims)
		handler.ChangePassword(c)
	})
	return r
}

func mustToken(tokens *auth.TokenManager, admin *model.Admin) string {
	token, err := tokens.Generate(admin)
	if err != nil {
		panic(err)
	}
	return token
}

func TestLogin(t *testing.T) {
	admin := newTestAdmin(t, "Segura123!")
	accounts := &fakeAdminAccounts{admins: map[string]*model.Admin{admin.ID.String(): admin}}
	router := adminAuthTestRouter(accounts, admin)

	recorder := postJSON(t, router, "/login", map[string]string{
		"username": "gestor",
		"password": "Segura123!",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["token"] == "" || body["token"] == nil {
		t.Fatal("expected a token in the response")
	}
}

func TestLoginByEmail(t *testing.T) {
	admin := newTestAdmin(t, "Segura123!")
	accounts := &fakeAdminAccounts{admins: map[string]*model.Admin{admin.ID.String(): admin}}
	router := adminAuthTestRouter(accounts, admin)

	recorder := postJSON(t, router, "/login", map[string]string{
		"username": "gestor@example.com",
		"password": "Segura123!",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	admin := newTestAdmin(t, "Segura123!")
	accounts := &fakeAdminAccounts{admins: map[string]*model.Admin{admin.ID.String(): admin}}
	router := adminAuthTestRouter(accounts, admin)

	recorder := postJSON(t, router, "/login", map[string]string{
		"username": "gestor",
		"password": "equivocada",
	})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
}

func TestChangePassword(t *testing.T) {
	admin := newTestAdmin(t, "Segura123!")
	accounts := &fakeAdminAccounts{admins: map[string]*model.Admin{admin.ID.String(): admin}}
	router := adminAuthTestRouter(accounts, admin)

	recorder := postJSON(t, router, "/password", map[string]string{
		"password_actual": "Segura123!",
		"password_nueva":  "NuevaClave9#",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !auth.CheckPassword(admin.PasswordHash, "NuevaClave9#") {
		t.Fatal("expected the stored hash to match the new password")
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	admin := newTestAdmin(t, "Segura123!")
	accounts := &fakeAdminAccounts{admins: map[string]*model.Admin{admin.ID.String(): admin}}
	router := adminAuthTestRouter(accounts, admin)

	recorder := postJSON(t, router, "/password", map[string]string{
		"password_actual": "equivocada",
		"password_nueva":  "NuevaClave9#",
	})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
	if !auth.CheckPassword(admin.PasswordHash, "Segura123!") {
		t.Fatal("password must not change on a failed re-authentication")
	}
}

func TestChangePasswordPolicyEnforced(t *testing.T) {
	admin := newTestAdmin(t, "Segura123!")
	accounts := &fakeAdminAccounts{admins: map[string]*model.Admin{admin.ID.String(): admin}}
	router := adminAuthTestRouter(accounts, admin)

	recorder := postJSON(t, router, "/password", map[string]string{
		"password_actual": "Segura123!",
		"password_nueva":  "corta",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if _, ok := body["errors"].(map[string]interface{}); !ok {
		t.Fatalf("expected per-field errors, got %v", body["errors"])
	}
}
