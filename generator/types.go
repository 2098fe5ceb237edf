package generator

import (
	"fmt"
	"time"

	"seo_article_writer/apperr"
)

// HeadingLevel is the markup level of a section heading.
type HeadingLevel string

const (
	H1 HeadingLevel = "H1"
	H2 HeadingLevel = "H2"
	H3 HeadingLevel = "H3"
)

// ParseHeadingLevel accepts exactly H1, H2 or H3.
func ParseHeadingLevel(s string) (HeadingLevel, bool) {
	switch HeadingLevel(s) {
	case H1, H2, H3:
		return HeadingLevel(s), true
	}
	return "", false
}

// Tag returns the HTML element name for the level.
func (l HeadingLevel) Tag() string {
	switch l {
	case H1:
		return "h1"
	case H3:
		return "h3"
	default:
		return "h2"
	}
}

// Section is one heading + body unit. Body is Markdown.
type Section struct {
	Index   int          `json:"index"`
	Level   HeadingLevel `json:"heading_level"`
	Heading string       `json:"heading_text"`
	Body    string       `json:"body_text"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Article is the generated document held by a session.
type Article struct {
	Keyword     string    `json:"keyword"`
	CustomData  string    `json:"custom_data,omitempty"`
	Sections    []Section `json:"sections"`
	FAQs        []FAQItem `json:"faqs"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Request starts a new article.
type Request struct {
	Keyword    string
	CustomData string
}

// Turn records one action taken on a session's article.
type Turn struct {
	Action       string    `json:"action"`
	SectionIndex int       `json:"section_index"`
	Summary      string    `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
}

// Score is one graded dimension of an Evaluation.
type Score struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Evaluation is the model's review of an article.
type Evaluation struct {
	Comprehensiveness      Score    `json:"comprehensiveness"`
	Readability            Score    `json:"readability"`
	Authority              Score    `json:"authority"`
	SEOFitness             Score    `json:"seo_fitness"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	OverallComment         string   `json:"overall_comment"`
}

// Clone returns a deep copy so callers can render without holding locks.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Sections = append([]Section(nil), a.Sections...)
	cp.FAQs = append([]FAQItem(nil), a.FAQs...)
	return &cp
}

// Title is the H1 heading if present, else the keyword.
func (a *Article) Title() string {
	for _, s := range a.Sections {
		if s.Level == H1 {
			return s.Heading
		}
	}
	return a.Keyword
}

func (a *Article) Section(index int) (Section, error) {
	if index < 0 || index >= len(a.Sections) {
		return Section{}, sectionNotFound(index, len(a.Sections))
	}
	return a.Sections[index], nil
}

// EditSection replaces the body at index verbatim.
func (a *Article) EditSection(index int, body string) error {
	if index < 0 || index >= len(a.Sections) {
		return sectionNotFound(index, len(a.Sections))
	}
	a.Sections[index].Body = body
	return nil
}

func (a *Article) RenameSection(index int, heading string) error {
	if index < 0 || index >= len(a.Sections) {
		return sectionNotFound(index, len(a.Sections))
	}
	if heading == "" {
		return apperr.Validation("section heading cannot be empty")
	}
	a.Sections[index].Heading = heading
	return nil
}

// ReplaceSection swaps in regenerated content. Index and Level are kept; the
// heading changes only when sec carries one.
func (a *Article) ReplaceSection(index int, sec Section) error {
	if index < 0 || index >= len(a.Sections) {
		return sectionNotFound(index, len(a.Sections))
	}
	cur := &a.Sections[index]
	if sec.Heading != "" {
		cur.Heading = sec.Heading
	}
	cur.Body = sec.Body
	return nil
}

func (a *Article) EditFAQ(index int, question, answer string) error {
	if index < 0 || index >= len(a.FAQs) {
		return apperr.NotFound(fmt.Sprintf("faq %d does not exist (article has %d)", index, len(a.FAQs)))
	}
	if question == "" {
		return apperr.Validation("faq question cannot be empty")
	}
	a.FAQs[index] = FAQItem{Question: question, Answer: answer}
	return nil
}

func sectionNotFound(index, n int) error {
	return apperr.NotFound(fmt.Sprintf("section %d does not exist (article has %d)", index, n))
}
