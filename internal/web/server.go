// Package web serves the single-page digest form.
package web

import (
	"context"
	stderrors "errors"
	"html/template"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"igdigest/pkg/config"
	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
)

// Runner executes one digest run for a raw username or profile URL.
type Runner interface {
	Run(ctx context.Context, rawUsername string) (string, error)
}

// Server hosts the form page. Each submission runs the whole pipeline
// synchronously inside the request; there is no session state and no
// queueing.
type Server struct {
	engine *gin.Engine
	addr   string
	runner Runner
	logger logger.Logger
}

func NewServer(cfg *config.ServerConfig, runner Runner, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}
	engine.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	engine.SetHTMLTemplate(template.Must(template.New("index").Parse(indexTemplate)))

	s := &Server{engine: engine, addr: cfg.Addr, runner: runner, logger: log}

	engine.GET("/", s.renderForm)
	engine.POST("/", s.handleSubmit)
	engine.GET("/health", s.handleHealth)

	return s
}

// Handler exposes the router for tests and custom listener setups.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.logger.WithField("addr", s.addr).Info("starting web server")
	return s.engine.Run(s.addr)
}

func (s *Server) renderForm(c *gin.Context) {
	c.HTML(http.StatusOK, "index", gin.H{})
}

func (s *Server) handleSubmit(c *gin.Context) {
	raw := c.PostForm("instagram_username")
	if raw == "" {
		// older clients post the field under the URL name
		raw = c.PostForm("instagram_url")
	}

	text, err := s.runner.Run(c.Request.Context(), raw)
	if err != nil {
		status, msg := statusForError(err)
		s.logger.WithFields(map[string]interface{}{
			"input": raw,
			"error": err.Error(),
		}).Error("digest run failed")
		c.HTML(status, "index", gin.H{"Error": msg})
		return
	}

	c.HTML(http.StatusOK, "index", gin.H{"Summary": text})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusForError maps the error taxonomy onto a response status and a
// message safe to show the user.
func statusForError(err error) (int, string) {
	var typed *errors.Error
	if stderrors.As(err, &typed) {
		switch typed.Type {
		case errors.ErrorTypeParsing:
			return http.StatusBadRequest, "That doesn't look like an Instagram username or profile URL."
		case errors.ErrorTypeConfig:
			return http.StatusInternalServerError, "The service is misconfigured. Check the server logs."
		case errors.ErrorTypeScrape:
			return http.StatusBadGateway, "Fetching the profile's posts failed. Try again in a minute."
		case errors.ErrorTypeStorage:
			return http.StatusInternalServerError, "Saving the scraped posts failed. Try again in a minute."
		}
	}
	return http.StatusInternalServerError, "Something went wrong generating the digest."
}
