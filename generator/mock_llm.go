package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM is an offline backend for local UI work. It never calls a model and
// answers every prompt kind in the expected grammar.
type MockLLM struct{}

var mockHeadings = []string{
	"Overview",
	"Key points",
	"How it works",
	"Advantages",
	"Disadvantages",
	"Use cases",
	"Choosing well",
	"Future outlook",
	"Conclusion",
}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	switch prompt.Kind {
	case KindSection:
		return mockSection(prompt.User), nil
	case KindEvaluation:
		return mockEvaluation, nil
	default:
		return mockArticle(promptField(prompt.User, "# Topic")), nil
	}
}

func mockArticle(topic string) string {
	if topic == "" {
		topic = "Untitled topic"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("@@ H1 | %s: a practical guide\n", topic))
	sb.WriteString(fmt.Sprintf("This guide covers %s end to end.\n\n", topic))
	for i, h := range mockHeadings {
		level := H2
		if i == 2 || i == 6 {
			level = H3
		}
		sb.WriteString(fmt.Sprintf("@@ %s | %s\n", level, h))
		sb.WriteString(fmt.Sprintf("Notes on %s for %s.\n\n- first point\n- second point\n\n", strings.ToLower(h), topic))
	}
	sb.WriteString("@@ FAQ\n")
	sb.WriteString(fmt.Sprintf("Q: What is %s?\nA: A topic worth a closer look.\n", topic))
	sb.WriteString("Q: Where do I start?\nA: Read the overview first.\n")
	return sb.String()
}

func mockSection(user string) string {
	heading := promptField(user, "# Section heading")
	current := promptField(user, "# Current text")
	return fmt.Sprintf("Revised take on %s.\n\nPrevious version began with: %q", heading, firstLine(current))
}

const mockEvaluation = "```json\n" + `{
  "comprehensiveness": {"score": 4, "reason": "Covers the main angles."},
  "readability": {"score": 4, "reason": "Short paragraphs."},
  "authority": {"score": 3, "reason": "Few cited sources."},
  "seo_fitness": {"score": 4, "reason": "Keyword used in headings."},
  "improvement_suggestions": ["Cite more sources", "Add a comparison table"],
  "overall_comment": "Solid draft."
}` + "\n```"

// promptField returns the first non-blank line after a "# Name" header line
// (the header may carry a suffix such as "(H2)").
func promptField(user, header string) string {
	lines := splitLines(user)
	for i, line := range lines {
		if !strings.HasPrefix(line, header) {
			continue
		}
		for _, next := range lines[i+1:] {
			if t := strings.TrimSpace(next); t != "" {
				return t
			}
		}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
