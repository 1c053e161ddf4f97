package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/apiserver/middleware"
	"github.com/empresasintegra/leykarin/pkg/auth"
	"github.com/empresasintegra/leykarin/pkg/model"
)

// AdminAccounts is the slice of admin storage the auth endpoints need.
type AdminAccounts interface {
	FindByLogin(ctx context.Context, login string) (*model.Admin, error)
	GetByID(ctx context.Context, id string) (*model.Admin, error)
	SetPassword(ctx context.Context, id string, password string) error
}

type AdminAuthHandler struct {
	admins AdminAccounts
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewAdminAuthHandler(admins AdminAccounts, tokens *auth.TokenManager, logger *zap.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{admins: admins, tokens: tokens, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login accepts username or email in the same field. Failed lookups and bad
// passwords get the same response so logins cannot be enumerated.
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	login := strings.TrimSpace(req.Username)
	admin, err := h.admins.FindByLogin(c.Request.Context(), login)
	if err != nil {
		h.logger.Error("failed to look up admin", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if admin == nil || !auth.CheckPassword(admin.PasswordHash, req.Password) {
		respondError(c, http.StatusUnauthorized, "credenciales inválidas")
		return
	}

	token, err := h.tokens.Generate(admin)
	if err != nil {
		h.logger.Error("failed to generate token", zap.String("admin", admin.Username), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	c.SetCookie(middleware.TokenCookie, token, 24*60*60, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"admin":   adminView(admin),
	})
}

func (h *AdminAuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "sesión cerrada"})
}

// Check reloads the authenticated admin so the dashboard sees current scope
// even when the token predates a category reassignment.
func (h *AdminAuthHandler) Check(c *gin.Context) {
	claims := adminClaims(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, "no autenticado")
		return
	}

	admin, err := h.admins.GetByID(c.Request.Context(), claims.AdminID)
	if err != nil {
		h.logger.Error("failed to load admin", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if admin == nil {
		respondError(c, http.StatusUnauthorized, "cuenta no encontrada")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "admin": adminView(admin)})
}

type changePasswordRequest struct {
	Actual string `json:"password_actual" binding:"required"`
	Nueva  string `json:"password_nueva" binding:"required"`
}

// ChangePassword re-authenticates with the current password before applying
// the policy to the new one.
func (h *AdminAuthHandler) ChangePassword(c *gin.Context) {
	claims := adminClaims(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, "no autenticado")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	admin, err := h.admins.GetByID(c.Request.Context(), claims.AdminID)
	if err != nil {
		h.logger.Error("failed to load admin", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if admin == nil {
		respondError(c, http.StatusUnauthorized, "cuenta no encontrada")
		return
	}
	if !auth.CheckPassword(admin.PasswordHash, req.Actual) {
		respondError(c, http.StatusUnauthorized, "contraseña actual incorrecta")
		return
	}

	if err := h.admins.SetPassword(c.Request.Context(), claims.AdminID, req.Nueva); err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) ||
			errors.Is(err, auth.ErrPasswordNoUpper) ||
			errors.Is(err, auth.ErrPasswordNoDigit) ||
			errors.Is(err, auth.ErrPasswordNoSymbol) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "errores de validación",
				"errors":  gin.H{"password_nueva": err.Error()},
			})
			return
		}
		h.logger.Error("failed to update password", zap.String("admin", admin.Username), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "contraseña actualizada"})
}

func adminView(admin *model.Admin) gin.H {
	view := gin.H{
		"id":        admin.ID.String(),
		"username":  admin.Username,
		"nombre":    admin.Name,
		"correo":    admin.Email,
		"superuser": admin.Superuser,
	}
	if admin.Category != nil {
		view["categoria"] = admin.Category.Name
	}
	return view
}
