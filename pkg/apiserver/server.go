// Package apiserver wires the HTTP surface: the public complaint wizard, the
// status consultation endpoints and the authenticated admin dashboard.
package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/apiserver/handlers"
	"github.com/empresasintegra/leykarin/pkg/apiserver/middleware"
	"github.com/empresasintegra/leykarin/pkg/attachment"
	"github.com/empresasintegra/leykarin/pkg/auth"
	"github.com/empresasintegra/leykarin/pkg/config"
	"github.com/empresasintegra/leykarin/pkg/store/postgres"
	"github.com/empresasintegra/leykarin/pkg/wizard"
)

// Deps carries everything the server needs, already constructed by main.
type Deps struct {
	Flow         *wizard.Wizard
	Validator    *attachment.Validator
	Stager       *attachment.Stager
	Catalog      *postgres.CatalogRepository
	Complainants *postgres.ComplainantRepository
	Complaints   *postgres.ComplaintRepository
	Forum        *postgres.ForumRepository
	Admins       *postgres.AdminRepository
	Mailer       handlers.ConfirmationMailer
	Tokens       *auth.TokenManager
}

type Server struct {
	router *gin.Engine
	cfg    *config.Config
	logger *zap.Logger
}

func NewServer(deps Deps, cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{cfg: cfg, logger: logger}
	s.setupRouter(deps)
	return s
}

func (s *Server) setupRouter(deps Deps) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	wizardHandler := handlers.NewWizardHandler(
		deps.Flow, deps.Catalog, deps.Validator, deps.Stager, deps.Admins, deps.Mailer, s.logger)
	queryHandler := handlers.NewQueryHandler(deps.Complaints, deps.Complainants, deps.Forum, s.logger)
	adminAuthHandler := handlers.NewAdminAuthHandler(deps.Admins, deps.Tokens, s.logger)
	complaintHandler := handlers.NewComplaintHandler(deps.Complaints, deps.Forum, s.logger)

	denuncia := r.Group("/api/v1/denuncia")
	{
		process := denuncia.Group("/process")
		process.POST("/initialize", wizardHandler.Initialize)
		process.POST("/items", wizardHandler.SelectItem)
		process.POST("/wizard", wizardHandler.SubmitDetails)
		process.POST("/user", wizardHandler.RegisterUser)
		process.POST("/abort", wizardHandler.Abort)
		process.GET("/wizard-data", wizardHandler.WizardData)
		process.GET("/categories", wizardHandler.Categories)

		process.POST("/consulta", queryHandler.Consulta)
		process.POST("/validate-rut", queryHandler.ValidateRUT)
		process.POST("/autocomplete-user", queryHandler.AutocompleteUser)

		denuncia.GET("/confirmation", wizardHandler.Confirmation)
		denuncia.POST("/mensaje", queryHandler.PublicMessage)
	}

	admin := r.Group("/api/v1/admin")
	{
		admin.POST("/auth/login", adminAuthHandler.Login)
		admin.POST("/auth/logout", adminAuthHandler.Logout)

		authorized := admin.Group("")
		authorized.Use(middleware.AdminAuth(deps.Tokens))
		authorized.GET("/auth/check", adminAuthHandler.Check)
		authorized.POST("/auth/password", adminAuthHandler.ChangePassword)

		authorized.GET("/denuncias", complaintHandler.List)
		authorized.GET("/stats", complaintHandler.Stats)
		authorized.GET("/export", complaintHandler.Export)
		authorized.GET("/denuncias/:codigo/detalle", complaintHandler.Detail)
		authorized.GET("/denuncias/:codigo/mensajes", complaintHandler.Messages)
		authorized.POST("/denuncias/:codigo/mensajes", complaintHandler.PostMessage)
		authorized.POST("/denuncias/:codigo/cambiar-estado", complaintHandler.ChangeStatus)
		authorized.GET("/denuncias/:codigo/descargar", complaintHandler.Download)
	}

	s.router = r
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
