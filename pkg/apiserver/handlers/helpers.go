package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/apiserver/middleware"
	"github.com/empresasintegra/leykarin/pkg/attachment"
	"github.com/empresasintegra/leykarin/pkg/auth"
	"github.com/empresasintegra/leykarin/pkg/model"
	"github.com/empresasintegra/leykarin/pkg/wizard"
)

// SessionCookie carries the wizard session id for browser clients; API
// clients send the X-Session-ID header instead.
const SessionCookie = "leykarin_session"

const sessionCookieMaxAge = 2 * 60 * 60

func sessionID(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-ID"); sid != "" {
		return sid
	}
	if sid, err := c.Cookie(SessionCookie); err == nil {
		return sid
	}
	return ""
}

// ensureSession returns the current session id, minting one when the request
// carries none.
func ensureSession(c *gin.Context) string {
	sid := sessionID(c)
	if sid == "" {
		sid = uuid.NewString()
	}
	c.SetCookie(SessionCookie, sid, sessionCookieMaxAge, "/", "", false, true)
	c.Header("X-Session-ID", sid)
	return sid
}

// requireSession rejects wizard requests that never initialized a session.
func requireSession(c *gin.Context) (string, bool) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":      false,
			"message":      wizard.ErrIncompleteSession.Error(),
			"redirect_url": "/",
		})
		return "", false
	}
	return sid, true
}

func adminClaims(c *gin.Context) *auth.Claims {
	value, ok := c.Get(middleware.ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*auth.Claims)
	return claims
}

// adminFromClaims rebuilds the authorization view of the admin from the token
// claims, without a database round trip.
func adminFromClaims(claims *auth.Claims) *model.Admin {
	admin := &model.Admin{Superuser: claims.Superuser}
	if id, err := uuid.Parse(claims.AdminID); err == nil {
		admin.ID = id
	}
	if claims.CategoryID != "" {
		if id, err := uuid.Parse(claims.CategoryID); err == nil {
			admin.CategoryID = &id
		}
	}
	return admin
}

// categoryScope returns the category filter an admin is restricted to; empty
// means unrestricted.
func categoryScope(claims *auth.Claims) string {
	if claims.Superuser {
		return ""
	}
	return claims.CategoryID
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondWizardError maps the wizard's error taxonomy onto HTTP responses.
// Validation failures enumerate every offending field; an incomplete session
// sends the client back to step one.
func respondWizardError(c *gin.Context, logger *zap.Logger, err error) {
	var validation *wizard.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "errores de validación",
			"errors":  validation.Fields,
		})
		return
	}

	var reject *attachment.RejectError
	if errors.As(err, &reject) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": reject.Error(),
			"errors":  gin.H{"archivos": reject.Reason},
		})
		return
	}

	switch {
	case errors.Is(err, wizard.ErrIncompleteSession):
		c.JSON(http.StatusBadRequest, gin.H{
			"success":      false,
			"message":      err.Error(),
			"redirect_url": "/",
		})
	case errors.Is(err, wizard.ErrCompanyUnknown):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("wizard step failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
	}
}

func parseLimit(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parsePage(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return 1
	}
	return parsed
}
