package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"seo_article_writer/apperr"
	"seo_article_writer/metrics"
	"seo_article_writer/search"
)

// Searcher fetches evidence for a keyword.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]search.Result, error)
}

// AgentOptions tunes the pipeline.
type AgentOptions struct {
	ResultCount int
	Language    string
	Model       string
	Logger      *zap.Logger
	Now         func() time.Time
}

// Agent runs search → prompt → generation → parse.
type Agent struct {
	llm      LLMClient
	searcher Searcher
	opts     AgentOptions
	logger   *zap.Logger
}

func NewAgent(llm LLMClient, searcher Searcher, opts AgentOptions) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if opts.ResultCount <= 0 {
		opts.ResultCount = search.DefaultCount
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{llm: llm, searcher: searcher, opts: opts, logger: logger.Named("agent")}, nil
}

// Generate builds a new article for req.Keyword.
func (a *Agent) Generate(ctx context.Context, req Request) (*Article, error) {
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return nil, apperr.Validation("enter a keyword or topic for the article")
	}

	results, err := a.searcher.Search(ctx, keyword, a.opts.ResultCount)
	if err != nil {
		return nil, err
	}
	a.logger.Info("search done", zap.String("keyword", keyword), zap.Int("results", len(results)))
	if len(results) == 0 {
		a.logger.Warn("no search results; generating without evidence", zap.String("keyword", keyword))
	}

	prompt := BuildArticlePrompt(keyword, results, req.CustomData, a.opts.Language)
	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	art, err := ParseArticle(raw)
	if err != nil {
		a.logger.Warn("article output rejected", zap.Error(err), zap.Int("raw_len", len(raw)))
		return nil, err
	}

	now := a.opts.Now()
	art.Keyword = keyword
	art.CustomData = strings.TrimSpace(req.CustomData)
	if appendOriginalData(art) {
		a.logger.Warn("model left out the original data section; appended it", zap.String("keyword", keyword))
	}
	art.Model = a.opts.Model
	art.GeneratedAt = now
	art.UpdatedAt = now
	a.logger.Info("article generated",
		zap.String("keyword", keyword),
		zap.Int("sections", len(art.Sections)),
		zap.Int("faqs", len(art.FAQs)))
	return art, nil
}

// appendOriginalData adds the user's data as a trailing H2 section when the
// model did not give it one. It reports whether a section was added.
func appendOriginalData(art *Article) bool {
	if art.CustomData == "" {
		return false
	}
	for _, s := range art.Sections {
		if strings.EqualFold(strings.TrimSpace(s.Heading), OriginalDataHeading) {
			return false
		}
	}
	art.Sections = append(art.Sections, Section{
		Index:   len(art.Sections),
		Level:   H2,
		Heading: OriginalDataHeading,
		Body:    art.CustomData,
	})
	return true
}

// RegenerateSection rewrites one section. The returned section keeps the
// input's index and level; its heading is empty unless the model renamed it.
func (a *Agent) RegenerateSection(ctx context.Context, keyword string, sec Section) (Section, error) {
	raw, err := a.complete(ctx, BuildSectionPrompt(keyword, sec, a.opts.Language))
	if err != nil {
		return Section{}, err
	}
	out, err := ParseSection(raw)
	if err != nil {
		return Section{}, err
	}
	out.Index = sec.Index
	out.Level = sec.Level
	return out, nil
}

func (a *Agent) Evaluate(ctx context.Context, art *Article) (Evaluation, error) {
	raw, err := a.complete(ctx, BuildEvaluationPrompt(art))
	if err != nil {
		return Evaluation{}, err
	}
	return ParseEvaluation(raw)
}

func (a *Agent) complete(ctx context.Context, prompt Prompt) (raw string, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveUpstream(metrics.ServiceGeneration, start, err)
		a.logger.Debug("generation finished",
			zap.String("kind", string(prompt.Kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}()

	raw, err = a.llm.Complete(ctx, prompt)
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.Upstream("generation request failed", err)
		}
		return "", err
	}
	return raw, nil
}
