package generator

import (
	"context"
	"fmt"
	"sync"

	"seo_article_writer/apperr"
	"seo_article_writer/metrics"
)

// ErrNoArticle is returned by article operations before the first generation.
var ErrNoArticle = apperr.NotFound("no article has been generated yet")

// Session holds one browser's article and its edit history. Mutations are
// serialised per session.
type Session struct {
	ID string

	mu      sync.Mutex
	article *Article
	history []Turn
	agent   *Agent
}

// NewSession creates a session with no article yet.
func NewSession(id string, agent *Agent) *Session {
	return &Session{ID: id, agent: agent}
}

// Article returns a snapshot of the current article.
func (s *Session) Article() (*Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.article == nil {
		return nil, false
	}
	return s.article.Clone(), true
}

func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.history...)
}

// Generate runs the full pipeline and replaces the article wholesale. On
// failure the previous article is kept.
func (s *Session) Generate(ctx context.Context, req Request) (*Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	art, err := s.agent.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.article = art
	s.history = nil
	s.appendTurn("generate", -1, fmt.Sprintf("generated %d sections for %q", len(art.Sections), art.Keyword))
	metrics.RecordOperation("generate")
	return art.Clone(), nil
}

// EditSection replaces the body at index and, if heading is non-empty, the heading.
func (s *Session) EditSection(index int, body, heading string) (Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.article == nil {
		return Section{}, ErrNoArticle
	}

	if err := s.article.EditSection(index, body); err != nil {
		return Section{}, err
	}
	if heading != "" {
		if err := s.article.RenameSection(index, heading); err != nil {
			return Section{}, err
		}
	}
	s.touch()
	s.appendTurn("edit", index, fmt.Sprintf("edited section %d", index))
	metrics.RecordOperation("edit")
	return s.article.Sections[index], nil
}

// RegenerateSection asks the model for a new version of one section and
// swaps it in place.
func (s *Session) RegenerateSection(ctx context.Context, index int) (Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.article == nil {
		return Section{}, ErrNoArticle
	}

	cur, err := s.article.Section(index)
	if err != nil {
		return Section{}, err
	}
	fresh, err := s.agent.RegenerateSection(ctx, s.article.Keyword, cur)
	if err != nil {
		return Section{}, err
	}
	if err := s.article.ReplaceSection(index, fresh); err != nil {
		return Section{}, err
	}
	s.touch()
	s.appendTurn("regenerate", index, fmt.Sprintf("regenerated section %d", index))
	metrics.RecordOperation("regenerate")
	return s.article.Sections[index], nil
}

func (s *Session) EditFAQ(index int, question, answer string) (FAQItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.article == nil {
		return FAQItem{}, ErrNoArticle
	}

	if err := s.article.EditFAQ(index, question, answer); err != nil {
		return FAQItem{}, err
	}
	s.touch()
	s.appendTurn("edit-faq", index, fmt.Sprintf("edited faq %d", index))
	metrics.RecordOperation("edit_faq")
	return s.article.FAQs[index], nil
}

// Evaluate asks the model to review the current article. It does not mutate it.
func (s *Session) Evaluate(ctx context.Context) (Evaluation, error) {
	art, ok := s.Article()
	if !ok {
		return Evaluation{}, ErrNoArticle
	}
	ev, err := s.agent.Evaluate(ctx, art)
	if err != nil {
		return Evaluation{}, err
	}
	metrics.RecordOperation("evaluate")
	return ev, nil
}

func (s *Session) touch() {
	s.article.UpdatedAt = s.agent.opts.Now()
}

func (s *Session) appendTurn(action string, index int, summary string) {
	s.history = append(s.history, Turn{
		Action:       action,
		SectionIndex: index,
		Summary:      summary,
		CreatedAt:    s.agent.opts.Now(),
	})
}
