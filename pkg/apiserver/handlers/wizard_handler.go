package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/attachment"
	"github.com/empresasintegra/leykarin/pkg/metrics"
	"github.com/empresasintegra/leykarin/pkg/model"
	"github.com/empresasintegra/leykarin/pkg/wizard"
)

// WizardCatalog lists the reference data the public form renders.
type WizardCatalog interface {
	Companies(ctx context.Context) ([]model.Company, error)
	CategoriesWithItems(ctx context.Context) ([]model.Category, error)
	Relations(ctx context.Context) ([]model.CompanyRelation, error)
	TimeBuckets(ctx context.Context) ([]model.TimeBucket, error)
}

// AdminDirectory resolves the notification targets of a new complaint.
type AdminDirectory interface {
	EmailsByCategory(ctx context.Context, categoryID string) ([]string, error)
}

// ConfirmationMailer sends the registration confirmation email.
type ConfirmationMailer interface {
	ComplaintRegistered(ctx context.Context, to, code string, cc []string) error
}

type WizardHandler struct {
	flow      *wizard.Wizard
	catalog   WizardCatalog
	validator *attachment.Validator
	stager    *attachment.Stager
	admins    AdminDirectory
	mail      ConfirmationMailer
	logger    *zap.Logger
}

func NewWizardHandler(
	flow *wizard.Wizard,
	catalog WizardCatalog,
	validator *attachment.Validator,
	stager *attachment.Stager,
	admins AdminDirectory,
	mail ConfirmationMailer,
	logger *zap.Logger,
) *WizardHandler {
	return &WizardHandler{
		flow:      flow,
		catalog:   catalog,
		validator: validator,
		stager:    stager,
		admins:    admins,
		mail:      mail,
		logger:    logger,
	}
}

type initializeRequest struct {
	Empresa string `json:"empresa"`
}

// Initialize opens the wizard session for the selected company. The session
// id is minted here and returned in the X-Session-ID header and cookie.
func (h *WizardHandler) Initialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	sid := ensureSession(c)
	if err := h.flow.Initialize(c.Request.Context(), sid, req.Empresa); err != nil {
		respondWizardError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "empresa registrada",
		"session_id":   sid,
		"redirect_url": "/items",
	})
}

type selectItemRequest struct {
	Item string `json:"denuncia_item" binding:"required"`
}

func (h *WizardHandler) SelectItem(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var req selectItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	item, err := h.flow.SelectItem(c.Request.Context(), sid, req.Item)
	if err != nil {
		respondWizardError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "tipo de denuncia registrado",
		"categoria":    item.Category.Name,
		"redirect_url": "/wizard",
	})
}

// SubmitDetails is the multipart details step: relation, time bucket,
// description and zero or more attachments. Each file passes the declared
// checks before it is staged; staging adds the magic-byte sniff.
func (h *WizardHandler) SubmitDetails(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	staged := make([]attachment.Staged, 0)
	for _, header := range form.File["archivos"] {
		if err := h.validator.Check(header.Filename, header.Header.Get("Content-Type"), header.Size); err != nil {
			metrics.AttachmentsRejected.WithLabelValues("declared").Inc()
			respondWizardError(c, h.logger, err)
			return
		}

		file, err := header.Open()
		if err != nil {
			h.logger.Error("failed to open upload", zap.String("file", header.Filename), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "error interno del servidor")
			return
		}
		entry, err := h.stager.Stage(sid, h.validator, header.Filename, header.Header.Get("Content-Type"), file)
		file.Close()
		if err != nil {
			metrics.AttachmentsRejected.WithLabelValues("sniffed").Inc()
			respondWizardError(c, h.logger, err)
			return
		}
		staged = append(staged, entry)
	}

	input := wizard.DetailsInput{
		RelationID:     c.PostForm("denuncia_relacion"),
		TimeBucketID:   c.PostForm("denuncia_tiempo"),
		Description:    c.PostForm("descripcion"),
		RelationDetail: c.PostForm("descripcion_relacion"),
		Staged:         staged,
	}
	if err := h.flow.SubmitDetails(c.Request.Context(), sid, input); err != nil {
		respondWizardError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "detalles registrados",
		"archivos":     len(staged),
		"redirect_url": "/user",
	})
}

type registerUserRequest struct {
	Anonimo   bool   `json:"anonimo"`
	RUT       string `json:"rut"`
	Nombre    string `json:"nombre"`
	Apellidos string `json:"apellidos"`
	Correo    string `json:"correo"`
	Celular   string `json:"celular"`
}

// RegisterUser is the terminal step: it resolves the complainant, commits the
// complaint and queues the confirmation email. The email is best-effort; a
// failed send never undoes the registered complaint.
func (h *WizardHandler) RegisterUser(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "solicitud inválida")
		return
	}

	result, err := h.flow.RegisterComplainant(c.Request.Context(), sid, wizard.ComplainantInput{
		Anonymous: req.Anonimo,
		RUT:       req.RUT,
		FirstName: req.Nombre,
		LastName:  req.Apellidos,
		Email:     req.Correo,
		Phone:     req.Celular,
	})
	if err != nil {
		respondWizardError(c, h.logger, err)
		return
	}

	h.notifyRegistered(result)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "denuncia registrada exitosamente",
		"redirect_url": "/confirmation",
	})
}

func (h *WizardHandler) notifyRegistered(result *wizard.Result) {
	if result.Anonymous || result.Complaint.Complainant == nil {
		return
	}
	complainant := result.Complaint.Complainant
	if complainant.Email == nil || *complainant.Email == "" {
		return
	}

	email := *complainant.Email
	code := result.Complaint.Code
	categoryID := result.CategoryID
	go func() {
		ctx := context.Background()
		cc, err := h.admins.EmailsByCategory(ctx, categoryID)
		if err != nil {
			h.logger.Warn("failed to resolve notification recipients",
				zap.String("code", code), zap.Error(err))
		}
		_ = h.mail.ComplaintRegistered(ctx, email, code, cc)
	}()
}

// Confirmation returns the code exactly once and closes the session.
func (h *WizardHandler) Confirmation(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}

	code, err := h.flow.Confirmation(c.Request.Context(), sid)
	if err != nil {
		respondWizardError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "codigo": code})
}

func (h *WizardHandler) Abort(c *gin.Context) {
	sid, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.flow.Abort(c.Request.Context(), sid); err != nil {
		h.logger.Error("failed to abort wizard session", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect_url": "/"})
}

// WizardData serves the reference data of the details step.
func (h *WizardHandler) WizardData(c *gin.Context) {
	ctx := c.Request.Context()

	companies, err := h.catalog.Companies(ctx)
	if err != nil {
		h.logger.Error("failed to list companies", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	relations, err := h.catalog.Relations(ctx)
	if err != nil {
		h.logger.Error("failed to list relations", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}
	buckets, err := h.catalog.TimeBuckets(ctx)
	if err != nil {
		h.logger.Error("failed to list time buckets", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	companyViews := make([]gin.H, 0, len(companies))
	for _, company := range companies {
		companyViews = append(companyViews, gin.H{"id": company.ID.String(), "nombre": company.Name})
	}
	relationViews := make([]gin.H, 0, len(relations))
	for _, r := range relations {
		relationViews = append(relationViews, gin.H{"id": r.ID.String(), "rol": r.Role})
	}
	bucketViews := make([]gin.H, 0, len(buckets))
	for _, b := range buckets {
		bucketViews = append(bucketViews, gin.H{"id": b.ID.String(), "intervalo": b.Interval})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"empresas":   companyViews,
		"relaciones": relationViews,
		"tiempos":    bucketViews,
	})
}

// Categories serves the complaint taxonomy for the item selection step.
func (h *WizardHandler) Categories(c *gin.Context) {
	categories, err := h.catalog.CategoriesWithItems(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "error interno del servidor")
		return
	}

	views := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		items := make([]gin.H, 0, len(category.Items))
		for _, item := range category.Items {
			items = append(items, gin.H{"id": item.ID.String(), "enunciado": item.Statement})
		}
		views = append(views, gin.H{
			"id":     category.ID.String(),
			"nombre": category.Name,
			"items":  items,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categorias": views})
}
