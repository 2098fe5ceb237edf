package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"seo_article_writer/apperr"
)

var (
	markerRe        = regexp.MustCompile(`^@@\s*([A-Za-z0-9]+)\s*(?:\|(.*))?$`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

const faqMarker = "FAQ"

// ParseArticle parses model output written in the "@@ Hn | heading" grammar.
// Any deviation is a parse error carrying the raw text.
func ParseArticle(raw string) (*Article, error) {
	text := stripFence(raw)
	if text == "" {
		return nil, apperr.Parse("model returned empty output", raw, nil)
	}

	p := &articleParser{raw: raw}
	for i, line := range splitLines(text) {
		if err := p.line(i+1, line); err != nil {
			return nil, err
		}
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return &Article{Sections: p.sections, FAQs: p.faqs}, nil
}

type articleParser struct {
	raw string

	sections []Section
	cur      *Section
	body     []string

	inFAQ  bool
	faqs   []FAQItem
	q, a   []string
	hasQ   bool
	hasAns bool
}

func (p *articleParser) fail(lineNo int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if lineNo > 0 {
		msg = fmt.Sprintf("line %d: %s", lineNo, msg)
	}
	return apperr.Parse("generated article does not follow the section format: "+msg, p.raw, nil)
}

func (p *articleParser) line(n int, line string) error {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "@@") {
		m := markerRe.FindStringSubmatch(trimmed)
		if m == nil {
			return p.fail(n, "malformed marker %q", trimmed)
		}
		if m[1] == faqMarker {
			if p.inFAQ {
				return p.fail(n, "second FAQ block")
			}
			p.flushSection()
			p.inFAQ = true
			return nil
		}
		level, ok := ParseHeadingLevel(m[1])
		if !ok {
			return p.fail(n, "unknown heading level %q", m[1])
		}
		if p.inFAQ {
			return p.fail(n, "section after the FAQ block")
		}
		heading := strings.TrimSpace(m[2])
		if heading == "" {
			return p.fail(n, "empty heading")
		}
		p.flushSection()
		p.cur = &Section{Index: len(p.sections), Level: level, Heading: heading}
		return nil
	}

	switch {
	case p.inFAQ:
		return p.faqLine(n, trimmed)
	case p.cur != nil:
		p.body = append(p.body, line)
	case trimmed != "":
		return p.fail(n, "text before the first section marker")
	}
	return nil
}

func (p *articleParser) faqLine(n int, trimmed string) error {
	if kind, rest, ok := cutFAQPrefix(trimmed); ok {
		switch kind {
		case 'Q':
			if p.hasQ && !p.hasAns {
				return p.fail(n, "question without an answer")
			}
			p.flushFAQ()
			p.q, p.hasQ = []string{rest}, true
		case 'A':
			if !p.hasQ || p.hasAns {
				return p.fail(n, "answer without a question")
			}
			p.a, p.hasAns = []string{rest}, true
		}
		return nil
	}

	switch {
	case p.hasAns:
		p.a = append(p.a, trimmed)
	case trimmed == "":
	case p.hasQ:
		p.q = append(p.q, trimmed)
	default:
		return p.fail(n, "unexpected text in the FAQ block")
	}
	return nil
}

func (p *articleParser) flushSection() {
	if p.cur == nil {
		return
	}
	p.cur.Body = strings.TrimSpace(strings.Join(p.body, "\n"))
	p.sections = append(p.sections, *p.cur)
	p.cur, p.body = nil, nil
}

func (p *articleParser) flushFAQ() {
	if !p.hasQ {
		return
	}
	p.faqs = append(p.faqs, FAQItem{
		Question: strings.TrimSpace(strings.Join(p.q, " ")),
		Answer:   strings.TrimSpace(strings.Join(p.a, "\n")),
	})
	p.q, p.a, p.hasQ, p.hasAns = nil, nil, false, false
}

func (p *articleParser) finish() error {
	p.flushSection()
	if p.hasQ && !p.hasAns {
		return p.fail(0, "last question has no answer")
	}
	p.flushFAQ()
	if len(p.sections) == 0 {
		return p.fail(0, "no sections found")
	}
	return nil
}

// ParseSection parses a regenerated section: an optional "@@ Hn | heading"
// line followed by the body. The level in the marker is not used.
func ParseSection(raw string) (Section, error) {
	text := stripFence(raw)
	fail := func(msg string) error {
		return apperr.Parse("regenerated section does not follow the format: "+msg, raw, nil)
	}

	var (
		sec    Section
		body   []string
		seenTx bool
	)
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@@") {
			if seenTx {
				return Section{}, fail("marker after body text")
			}
			m := markerRe.FindStringSubmatch(trimmed)
			if m == nil {
				return Section{}, fail(fmt.Sprintf("malformed marker %q", trimmed))
			}
			if _, ok := ParseHeadingLevel(m[1]); !ok {
				return Section{}, fail(fmt.Sprintf("unexpected marker %q", m[1]))
			}
			sec.Heading = strings.TrimSpace(m[2])
			seenTx = true
			continue
		}
		if trimmed != "" {
			seenTx = true
		}
		body = append(body, line)
	}

	sec.Body = strings.TrimSpace(strings.Join(body, "\n"))
	if sec.Body == "" {
		return Section{}, fail("empty body")
	}
	return sec, nil
}

// ParseEvaluation extracts the review JSON from model output.
func ParseEvaluation(raw string) (Evaluation, error) {
	s := stripFence(raw)
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return Evaluation{}, apperr.Parse("evaluation is not JSON", raw, nil)
	}
	js := trailingCommaRe.ReplaceAllString(s[start:end+1], "$1")
	if !gjson.Valid(js) {
		return Evaluation{}, apperr.Parse("evaluation is not valid JSON", raw, nil)
	}

	doc := gjson.Parse(js)
	if !doc.Get("overall_comment").Exists() && !doc.Get("comprehensiveness").Exists() {
		return Evaluation{}, apperr.Parse("evaluation is missing the expected keys", raw, nil)
	}

	score := func(key string) Score {
		return Score{
			Score:  int(doc.Get(key + ".score").Int()),
			Reason: doc.Get(key + ".reason").String(),
		}
	}
	ev := Evaluation{
		Comprehensiveness: score("comprehensiveness"),
		Readability:       score("readability"),
		Authority:         score("authority"),
		SEOFitness:        score("seo_fitness"),
		OverallComment:    doc.Get("overall_comment").String(),
	}
	for _, s := range doc.Get("improvement_suggestions").Array() {
		ev.ImprovementSuggestions = append(ev.ImprovementSuggestions, s.String())
	}
	return ev, nil
}

// stripFence removes one enclosing Markdown code fence.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// cutFAQPrefix recognises "Q:" / "A:" with ASCII or full-width colons.
func cutFAQPrefix(line string) (byte, string, bool) {
	if line == "" {
		return 0, "", false
	}
	kind := line[0]
	if kind != 'Q' && kind != 'A' {
		return 0, "", false
	}
	rest := line[1:]
	for _, colon := range []string{":", "："} {
		if strings.HasPrefix(rest, colon) {
			return kind, strings.TrimSpace(rest[len(colon):]), true
		}
	}
	return 0, "", false
}
