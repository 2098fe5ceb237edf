package server

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"seo_article_writer/apperr"
	"seo_article_writer/generator"
	"seo_article_writer/render"
)

type generateForm struct {
	Keyword    string `form:"keyword" json:"keyword"`
	CustomData string `form:"custom_data" json:"custom_data"`
}

type sectionForm struct {
	Body    string `form:"body_text" json:"body_text"`
	Heading string `form:"heading_text" json:"heading_text"`
}

type faqForm struct {
	Question string `form:"question" json:"question"`
	Answer   string `form:"answer" json:"answer"`
}

func (s *Server) handleIndex(c *gin.Context) {
	data := gin.H{"Title": "SEO Article Writer"}
	if sess, ok := s.currentSession(c); ok {
		if art, ok := sess.Article(); ok {
			data["Article"] = art
			data["History"] = sess.History()
		}
	}
	c.HTML(http.StatusOK, "index.tmpl", data)
}

func (s *Server) handleGenerate(c *gin.Context) {
	var form generateForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, apperr.Validation("malformed generate request"))
		return
	}
	if strings.TrimSpace(form.Keyword) == "" {
		s.fail(c, apperr.Validation("keyword is required"))
		return
	}

	sess := s.ensureSession(c)
	ctx, cancel := s.upstreamContext(c)
	defer cancel()

	art, err := sess.Generate(ctx, generator.Request{Keyword: form.Keyword, CustomData: form.CustomData})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("article generated",
		zap.String("session", sess.ID),
		zap.String("keyword", art.Keyword),
		zap.Int("sections", len(art.Sections)),
		zap.Int("faqs", len(art.FAQs)),
	)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"article": art})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleEditSection(c *gin.Context) {
	sess, err := s.requireSession(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	index, err := indexParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var form sectionForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, apperr.Validation("malformed edit request"))
		return
	}

	sec, err := sess.EditSection(index, form.Body, strings.TrimSpace(form.Heading))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondMutation(c, sess, "section", sec)
}

func (s *Server) handleRegenerateSection(c *gin.Context) {
	sess, err := s.requireSession(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	index, err := indexParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx, cancel := s.upstreamContext(c)
	defer cancel()
	sec, err := sess.RegenerateSection(ctx, index)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("section regenerated", zap.String("session", sess.ID), zap.Int("index", index))
	s.respondMutation(c, sess, "section", sec)
}

func (s *Server) handleEditFAQ(c *gin.Context) {
	sess, err := s.requireSession(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	index, err := indexParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var form faqForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, apperr.Validation("malformed faq request"))
		return
	}

	faq, err := sess.EditFAQ(index, form.Question, form.Answer)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondMutation(c, sess, "faq", faq)
}

func (s *Server) handleEvaluate(c *gin.Context) {
	sess, err := s.requireSession(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx, cancel := s.upstreamContext(c)
	defer cancel()
	ev, err := sess.Evaluate(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"evaluation": ev})
		return
	}
	art, _ := sess.Article()
	c.HTML(http.StatusOK, "evaluation.tmpl", gin.H{
		"Title":      "Evaluation",
		"Article":    art,
		"Evaluation": ev,
		"Scores": []scoreRow{
			newScoreRow("Comprehensiveness", ev.Comprehensiveness),
			newScoreRow("Readability", ev.Readability),
			newScoreRow("Authority", ev.Authority),
			newScoreRow("SEO fitness", ev.SEOFitness),
		},
	})
}

type scoreRow struct {
	Label  string
	Score  int
	Reason string
}

func newScoreRow(label string, sc generator.Score) scoreRow {
	return scoreRow{Label: label, Score: sc.Score, Reason: sc.Reason}
}

func (s *Server) handlePreview(c *gin.Context) {
	art, err := s.currentArticle(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	markup, err := render.HTML(art)
	if err != nil {
		s.fail(c, err)
		return
	}
	// render.HTML escapes headings and omits raw HTML from bodies.
	c.HTML(http.StatusOK, "preview.tmpl", gin.H{
		"Title":   art.Title(),
		"Article": art,
		"Markup":  template.HTML(markup),
	})
}

func (s *Server) handleJSONLDPage(c *gin.Context) {
	art, err := s.currentArticle(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	doc, err := render.JSONLD(art)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "jsonld.tmpl", gin.H{"Title": "JSON-LD", "Article": art, "JSONLD": doc})
}

func (s *Server) handleJSONLDRaw(c *gin.Context) {
	art, err := s.currentArticle(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	doc, err := render.JSONLD(art)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/ld+json; charset=utf-8", []byte(doc))
}

func (s *Server) handleLLMText(c *gin.Context) {
	art, err := s.currentArticle(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(render.LLMText(art)))
}

func (s *Server) handleArticleAPI(c *gin.Context) {
	sess, err := s.requireSession(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	art, ok := sess.Article()
	if !ok {
		s.fail(c, generator.ErrNoArticle)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": art, "history": sess.History()})
}
