// internal/server/server.go
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"nexoprec/internal/assistant"
	"nexoprec/internal/common/config"
	apperrors "nexoprec/internal/common/errors"
	"nexoprec/internal/common/logger"
	"nexoprec/internal/common/observability"
	"nexoprec/internal/notify"
	"nexoprec/internal/search"
	"nexoprec/internal/storage"
	"nexoprec/internal/store"
	"nexoprec/pkg/templates"
)

// Server wires the HTTP surface. Organizer routes trust the user id
// injected upstream in the X-User-ID header; applicant routes are
// anonymous.
type Server struct {
	cfg         *config.Config
	events      *store.EventStore
	submissions *store.SubmissionStore
	chats       *store.ChatStore
	cache       *store.EventCache
	index       *search.SubmissionIndex
	uploader    *storage.Uploader
	assistant   *assistant.Service
	notifier    *notify.Notifier
	templates   *templates.Catalog
	obs         *observability.Observability
	errs        *apperrors.ErrorHandler
	logger      logger.Logger
}

// Deps carries everything the server needs. The cache, index, uploader,
// assistant and notifier may be nil; the matching features degrade.
type Deps struct {
	Config      *config.Config
	Events      *store.EventStore
	Submissions *store.SubmissionStore
	Chats       *store.ChatStore
	Cache       *store.EventCache
	Index       *search.SubmissionIndex
	Uploader    *storage.Uploader
	Assistant   *assistant.Service
	Notifier    *notify.Notifier
	Templates   *templates.Catalog
	Obs         *observability.Observability
	Logger      logger.Logger
}

func New(deps Deps) *Server {
	log := deps.Logger.WithFields(map[string]interface{}{"component": "server"})
	return &Server{
		cfg:         deps.Config,
		events:      deps.Events,
		submissions: deps.Submissions,
		chats:       deps.Chats,
		cache:       deps.Cache,
		index:       deps.Index,
		uploader:    deps.Uploader,
		assistant:   deps.Assistant,
		notifier:    deps.Notifier,
		templates:   deps.Templates,
		obs:         deps.Obs,
		errs:        apperrors.NewErrorHandler(log),
		logger:      log,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.Server.CORSAllowedOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.Server.CORSAllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-User-ID"}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)

		// Applicant-facing routes.
		api.GET("/events/:id/form", s.getPublicForm)
		api.POST("/events/:id/submissions", s.submitForm)
		api.POST("/events/:id/uploads", s.uploadFile)
		api.POST("/events/:id/chat", s.chat)

		// Organizer routes.
		org := api.Group("/org", s.requireUser())
		{
			org.GET("/templates", s.listTemplates)
			org.POST("/events", s.createEvent)
			org.GET("/events", s.listEvents)
			org.GET("/events/:id", s.getEvent)
			org.PUT("/events/:id", s.updateEvent)
			org.DELETE("/events/:id", s.deleteEvent)
			org.GET("/events/:id/submissions", s.listSubmissions)
			org.GET("/events/:id/export", s.exportCSV)
			org.GET("/events/:id/chats", s.listChats)
		}
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}

// renderError maps an error to the standardized JSON body.
func (s *Server) renderError(c *gin.Context, err error) {
	status, body := s.errs.Render(err)
	c.AbortWithStatusJSON(status, body)
}
