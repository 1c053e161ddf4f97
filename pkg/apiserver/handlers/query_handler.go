package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/identifier"
	"github.com/empresasintegra/leykarin/pkg/metrics"
	"github.com/empresasintegra/leykarin/pkg/model"
	"github.com/empresasintegra/leykarin/pkg/rut"
)

// ComplaintQueries is the read slice of complaint storage the public
// consultation endpoints need.
type ComplaintQueries interface {
	GetByCode(ctx context.Context, code string) (*model.Complaint, error)
	ByComplainantPublicID(ctx context.Context, publicID string) ([]model.Complaint, error)
}

type ComplainantQueries interface {
	FindByRUT(ctx context.Context, canonical string) (*model.Complainant, error)
	FindByPublicID(ctx context.Context, publicID string) (*model.Complainant, error)
}

// Forum is the message storage shared by the public and admin endpoints.
type Forum interface {
	Append(ctx context.Context, message *model.ForumMessage) error
	List(ctx context.Context, code string) ([]model.ForumMessage, error)
	MarkRead(ctx context.Context, code string) error
	UnreadCount(ctx context.Context, categoryID string) (int64, error)
}

type QueryHandler struct {
	complaints   ComplaintQueries
	complainants ComplainantQueries
	forum        Forum
	logger       *zap.Logger
}

func NewQueryHandler(complaints ComplaintQueries, complainants ComplainantQueries, forum Forum, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{complaints: complaints, complainants: complainants, forum: forum, logger: logger}
}

type consultaRequest struct {
	Codigo string `json:"codigo" binding:"required"`
}

// Consulta looks up complaint status by either kind of tracking code: the
// DN- complaint code of an anonymous submission, or the 5-character public id
// of an identified complainant.
func (h *QueryHandler) Consulta(c *gin.Context) {
	var req consultaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Codigo))
	switch {
	case strings.HasPrefix(code, identifier.CodePrefix):
		h.consultaByCode(c, code)
	case len(code) == 5:
		h.consultaByPublicID(c, code)
	default:
		respondError(c, http.StatusBadRequest, "formato de código no válido")
	}
}

func (h *QueryHandler) consultaByCode(c *gin.Context, code string) {
	complaint, err := h.complaints.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("failed to look up complaint", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if complaint == nil {
		respondError(c, http.StatusNotFound, "código no encontrado")
		return
	}

	messages, err := h.forum.List(c.Request.Context(), code)
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

func (h *QueryHandler) consultaByPublicID(c *gin.Context, publicID string) {
	complainant, err := h.complainants.FindByPublicID(c.Request.Context(), publicID)
	if err != nil {
		h.logger.Error("failed to look up complainant", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if complainant == nil {
		respondError(c, http.StatusNotFound, "código no encontrado")
		return
	}

	complaints, err := h.complaints.ByComplainantPublicID(c.Request.Context(), publicID)
	if err != nil {
		h.logger.Error("failed to list complaints", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	views := make([]gin.H, 0, len(complaints))
	for i := range complaints {
		views = append(views, complaintSummaryView(&complaints[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"denuncias":   views,
		"anonimo":     complainant.Anonymous,
		"denunciante": complainant.DisplayName(),
	})
}

type validateRUTRequest struct {
	RUT string `json:"rut" binding:"required"`
}

// ValidateRUT checks the verifier digit and returns the canonical form.
func (h *QueryHandler) ValidateRUT(c *gin.Context) {
	var req validateRUTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	formatted, err := rut.Format(req.RUT)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"valido":  false,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"valido":         true,
		"rut_formateado": formatted,
	})
}

// AutocompleteUser prefills the identity step for returning complainants.
func (h *QueryHandler) AutocompleteUser(c *gin.Context) {
	var req validateRUTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	formatted, err := rut.Format(req.RUT)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "encontrado": false})
		return
	}

	complainant, err := h.complainants.FindByRUT(c.Request.Context(), formatted)
	if err != nil {
		h.logger.Error("failed to look up complainant", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if complainant == nil || complainant.Anonymous {
		c.JSON(http.StatusOK, gin.H{"success": true, "encontrado": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"encontrado": true,
		"nombre":     strValue(complainant.FirstName),
		"apellidos":  strValue(complainant.LastName),
		"correo":     strValue(complainant.Email),
		"celular":    strValue(complainant.Phone),
	})
}

type publicMessageRequest struct {
	Codigo  string `json:"codigo" binding:"required"`
	Mensaje string `json:"mensaje" binding:"required"`
}

// PublicMessage appends a complainant message to the complaint's forum. The
// message starts unread so it badges the admin dashboard.
func (h *QueryHandler) PublicMessage(c *gin.Context) {
	var req publicMessageRequest
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

	code := strings.ToUpper(strings.TrimSpace(req.Codigo))
	complaint, err := h.complaints.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("failed to look up complaint", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	if complaint == nil {
		respondError(c, http.StatusNotFound, "código no encontrado")
		return
	}

	if err := h.forum.Append(c.Request.Context(), &model.ForumMessage{
		ComplaintCode: code,
		Message:       message,
	}); err != nil {
		h.logger.Error("failed to append message", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	metrics.ForumMessagesTotal.WithLabelValues("complainant").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "mensaje enviado"})
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func complaintSummaryView(complaint *model.Complaint) gin.H {
	view := gin.H{
		"codigo": complaint.Code,
		"fecha":  complaint.CreatedAt.Format("02/01/2006 15:04"),
		"estado": string(complaint.Status),
	}
	if complaint.Item != nil {
		view["tipo"] = complaint.Item.Statement
		if complaint.Item.Category != nil {
			view["categoria"] = complaint.Item.Category.Name
		}
	}
	return view
}

func complaintDetailView(complaint *model.Complaint, messages []model.ForumMessage) gin.H {
	view := complaintSummaryView(complaint)
	view["descripcion"] = complaint.Description

	if complaint.Company != nil {
		view["empresa"] = complaint.Company.Name
	}
	if complaint.Relation != nil {
		view["relacion"] = complaint.Relation.Role
	}
	if complaint.RelationDetail != "" {
		view["descripcion_relacion"] = complaint.RelationDetail
	}
	if complaint.TimeBucket != nil {
		view["tiempo"] = complaint.TimeBucket.Interval
	}
	if complaint.Complainant != nil {
		view["denunciante"] = complaint.Complainant.DisplayName()
	}

	attachments := make([]gin.H, 0, len(complaint.Attachments))
	for _, a := range complaint.Attachments {
		attachments = append(attachments, gin.H{"nombre": a.Name, "url": a.URL, "tamano": a.Size})
	}
	view["archivos"] = attachments

	history := make([]gin.H, 0, len(complaint.History))
	for _, entry := range complaint.History {
		history = append(history, gin.H{
			"estado": string(entry.Status),
			"fecha":  entry.CreatedAt.Format("02/01/2006 15:04"),
		})
	}
	view["historial"] = history

	messageViews := make([]gin.H, 0, len(messages))
	for i := range messages {
		messageViews = append(messageViews, forumMessageView(&messages[i]))
	}
	view["mensajes"] = messageViews

	return view
}

func forumMessageView(message *model.ForumMessage) gin.H {
	author := "denunciante"
	if message.FromAdmin() {
		author = "administrador"
		if message.Admin != nil && message.Admin.Name != "" {
			author = message.Admin.Name
		}
	}
	return gin.H{
		"autor":   author,
		"mensaje": message.Message,
		"fecha":   message.CreatedAt.Format("02/01/2006 15:04"),
		"leido":   message.Read,
	}
}
