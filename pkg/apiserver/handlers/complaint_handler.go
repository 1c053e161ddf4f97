package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/empresasintegra/leykarin/pkg/auth"
	"github.com/empresasintegra/leykarin/pkg/metrics"
	"github.com/empresasintegra/leykarin/pkg/model"
	"github.com/empresasintegra/leykarin/pkg/report"
	"github.com/empresasintegra/leykarin/pkg/store/postgres"
)

const exportLimit = 10000

// ComplaintAdmin is the slice of complaint storage the dashboard needs.
type ComplaintAdmin interface {
	List(ctx context.Context, filter postgres.ListFilter) ([]model.Complaint, int64, error)
	GetByCode(ctx context.Context, code string) (*model.Complaint, error)
	Stats(ctx context.Context, categoryID string) (*postgres.Stats, error)
	UpdateStatus(ctx context.Context, code string, status model.ComplaintStatus) error
}

type ComplaintHandler struct {
	complaints ComplaintAdmin
	forum      Forum
	logger     *zap.Logger
}

func NewComplaintHandler(complaints ComplaintAdmin, forum Forum, logger *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, forum: forum, logger: logger}
}

func (h *ComplaintHandler) listFilter(c *gin.Context) postgres.ListFilter {
	claims := adminClaims(c)

	filter := postgres.ListFilter{
		CategoryID: categoryScope(claims),
		CompanyID:  strings.TrimSpace(c.Query("empresa")),
		Status:     strings.TrimSpace(c.Query("estado")),
		Search:     strings.TrimSpace(c.Query("buscar")),
	}
	if from, err := time.Parse("2006-01-02", c.Query("desde")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("hasta")); err == nil {
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	return filter
}

// List serves the dashboard listing: filtered, searched and paginated, always
// inside the admin's category scope.
func (h *ComplaintHandler) List(c *gin.Context) {
	filter := h.listFilter(c)
	limit := parseLimit(c.Query("limit"), 10)
	page := parsePage(c.Query("page"))
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	complaints, total, err := h.complaints.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list complaints", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	views := make([]gin.H, 0, len(complaints))
	for i := range complaints {
		view := complaintSummaryView(&complaints[i])
		if complaints[i].Company != nil {
			view["empresa"] = complaints[i].Company.Name
		}
		if complaints[i].Complainant != nil {
			view["denunciante"] = complaints[i].Complainant.DisplayName()
		}
		view["archivos"] = len(complaints[i].Attachments)
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"denuncias": views,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// loadAuthorized fetches a complaint and enforces the admin's category scope.
func (h *ComplaintHandler) loadAuthorized(c *gin.Context) (*model.Complaint, bool) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("codigo")))
	complaint, err := h.complaints.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("failed to load complaint", zap.String("code", code), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return nil, false
	}
	if complaint == nil {
		respondError(c, http.StatusNotFound, "denuncia no encontrada")
		return nil, false
	}

	admin := adminFromClaims(adminClaims(c))
	if !auth.CanView(admin, complaint) {
		respondError(c, http.StatusForbidden, "no autorizado para ver esta denuncia")
		return nil, false
	}
	return complaint, true
}

func (h *ComplaintHandler) Detail(c *gin.Context) {
	complaint, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	messages, err := h.forum.List(c.Request.Context(), complaint.Code)
	if err != nil {
		h.logger.Error("failed to list messages", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"denuncia": complaintDetailView(complaint, messages),
	})
}

// Messages lists the complaint's forum and marks complainant messages read.
func (h *ComplaintHandler) Messages(c *gin.Context) {
	complaint, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	messages, err := h.forum.List(c.Request.Context(), complaint.Code)
	if err != nil {
		h.logger.Error("failed to list messages", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if err := h.forum.MarkRead(c.Request.Context(), complaint.Code); err != nil {
		h.logger.Warn("failed to mark messages read", zap.String("code", complaint.Code), zap.Error(err))
	}

	views := make([]gin.H, 0, len(messages))
	for i := range messages {
		views = append(views, forumMessageView(&messages[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mensajes": views})
}

type adminMessageRequest struct {
	Mensaje string `json:"mensaje" binding:"required"`
}

func (h *ComplaintHandler) PostMessage(c *gin.Context) {
	complaint, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req adminMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}
	message := strings.TrimSpace(req.Mensaje)
	if message == "" {
		respondError(c, http.StatusBadRequest, "el mensaje es obligatorio")
		return
	}
	if len([]rune(message)) > 2000 {
		respondError(c, http.StatusBadRequest, "el mensaje no puede exceder 2000 caracteres")
		return
	}

	claims := adminClaims(c)
	adminID, err := uuid.Parse(claims.AdminID)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "sesión inválida")
		return
	}

	if err := h.forum.Append(c.Request.Context(), &model.ForumMessage{
		ComplaintCode: complaint.Code,
		AdminID:       &adminID,
		Message:       message,
	}); err != nil {
		h.logger.Error("failed to append message", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	metrics.ForumMessagesTotal.WithLabelValues("admin").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "mensaje enviado"})
}

type changeStatusRequest struct {
	Estado string `json:"estado" binding:"required"`
}

// ChangeStatus transitions a complaint and appends the audit entry.
func (h *ComplaintHandler) ChangeStatus(c *gin.Context) {
	complaint, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	status := model.ComplaintStatus(strings.ToUpper(strings.TrimSpace(req.Estado)))
	err := h.complaints.UpdateStatus(c.Request.Context(), complaint.Code, status)
	switch {
	case errors.Is(err, postgres.ErrUnknownStatus):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "denuncia no encontrada")
		return
	case err != nil:
		h.logger.Error("failed to update status", zap.String("code", complaint.Code), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	metrics.StatusChangesTotal.WithLabelValues(string(status)).Inc()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "estado actualizado",
		"estado":  string(status),
	})
}

// Stats aggregates the dashboard counters inside the admin's scope.
func (h *ComplaintHandler) Stats(c *gin.Context) {
	scope := categoryScope(adminClaims(c))

	stats, err := h.complaints.Stats(c.Request.Context(), scope)
	if err != nil {
		h.logger.Error("failed to aggregate stats", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	unread, err := h.forum.UnreadCount(c.Request.Context(), scope)
	if err != nil {
		h.logger.Error("failed to count unread messages", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"stats":             stats,
		"mensajes_sin_leer": unread,
	})
}

// Export streams the scoped, filtered listing as a spreadsheet.
func (h *ComplaintHandler) Export(c *gin.Context) {
	filter := h.listFilter(c)
	filter.Limit = exportLimit

	complaints, _, err := h.complaints.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list complaints for export", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	f, filename, err := report.ExportExcel(complaints)
	if err != nil {
		h.logger.Error("failed to build spreadsheet", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("failed to write spreadsheet", zap.Error(err))
	}
}

// Download renders the one-page PDF summary of a complaint.
func (h *ComplaintHandler) Download(c *gin.Context) {
	complaint, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	data, filename, err := report.ExportPDF(complaint)
	if err != nil {
		h.logger.Error("failed to render pdf", zap.String("code", complaint.Code), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
