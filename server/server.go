package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"seo_article_writer/apperr"
	"seo_article_writer/generator"
	"seo_article_writer/render"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	sessionCookie  = "seowriter_session"
	defaultTimeout = 90 * time.Second
)

// Options configures a Server.
type Options struct {
	Logger *zap.Logger
	// Timeout bounds each request's upstream work.
	Timeout time.Duration
}

type Server struct {
	agent   *generator.Agent
	store   *sessionStore
	logger  *zap.Logger
	timeout time.Duration
	tmpl    *template.Template
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func New(agent *generator.Agent, opts Options) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Server{
		agent:   agent,
		store:   newStore(),
		logger:  logger.Named("server"),
		timeout: timeout,
		tmpl:    tmpl,
	}, nil
}

// Routes builds the gin engine.
func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.SetHTMLTemplate(s.tmpl)
	r.Use(requestLogger(s.logger), gin.Recovery())

	r.GET("/", s.handleIndex)
	r.POST("/generate", s.handleGenerate)
	r.POST("/sections/:index/edit", s.handleEditSection)
	r.POST("/sections/:index/regenerate", s.handleRegenerateSection)
	r.POST("/faqs/:index/edit", s.handleEditFAQ)
	r.POST("/evaluate", s.handleEvaluate)

	r.GET("/preview", s.handlePreview)
	r.GET("/jsonld", s.handleJSONLDPage)
	r.GET("/article.jsonld", s.handleJSONLDRaw)
	r.GET("/llm.txt", s.handleLLMText)
	r.GET("/api/article", s.handleArticleAPI)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// --- Sessions ---

func (s *Server) currentSession(c *gin.Context) (*generator.Session, bool) {
	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		return nil, false
	}
	return s.store.get(id)
}

func (s *Server) ensureSession(c *gin.Context) *generator.Session {
	if sess, ok := s.currentSession(c); ok {
		return sess
	}
	id := uuid.NewString()
	sess := generator.NewSession(id, s.agent)
	s.store.set(id, sess)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	s.logger.Debug("session created", zap.String("session", id))
	return sess
}

func (s *Server) requireSession(c *gin.Context) (*generator.Session, error) {
	sess, ok := s.currentSession(c)
	if !ok {
		return nil, generator.ErrNoArticle
	}
	return sess, nil
}

func (s *Server) currentArticle(c *gin.Context) (*generator.Article, error) {
	sess, err := s.requireSession(c)
	if err != nil {
		return nil, err
	}
	art, ok := sess.Article()
	if !ok {
		return nil, generator.ErrNoArticle
	}
	return art, nil
}

func (s *Server) upstreamContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.timeout)
}

// --- Helpers ---

func indexParam(c *gin.Context) (int, error) {
	raw := c.Param("index")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.NotFound("no item with index " + strconv.Quote(raw))
	}
	return n, nil
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEJSON || strings.Contains(c.GetHeader("Accept"), binding.MIMEJSON)
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUpstream, apperr.KindParse:
		return http.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// fail renders err in place of the expected view.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	kind := apperr.KindOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	if status >= 500 {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.String("kind", string(kind)), zap.Error(err))
	} else {
		s.logger.Info("request rejected", zap.String("path", c.FullPath()), zap.String("kind", string(kind)), zap.Error(err))
	}

	raw := apperr.RawOf(err)
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": msg, "kind": kind, "raw": raw})
		return
	}
	c.HTML(status, "error.tmpl", gin.H{
		"Title":     http.StatusText(status),
		"Status":    status,
		"Kind":      kind,
		"Message":   msg,
		"Raw":       raw,
		"NoArticle": errors.Is(err, generator.ErrNoArticle),
	})
}

// respondMutation answers an edit-type request: JSON with fresh projections
// for fetch clients, a redirect back to the article for forms.
func (s *Server) respondMutation(c *gin.Context, sess *generator.Session, key string, value any) {
	if !wantsJSON(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	art, ok := sess.Article()
	if !ok {
		s.fail(c, generator.ErrNoArticle)
		return
	}
	markup, err := render.HTML(art)
	if err != nil {
		s.fail(c, err)
		return
	}
	jsonld, err := render.JSONLD(art)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: value, "markup": markup, "jsonld": jsonld})
}
