package render

import (
	"fmt"
	"strings"

	"seo_article_writer/generator"
)

// LLMText is the crawler-facing structural summary: headings and questions,
// never body text or answers.
func LLMText(a *generator.Article) string {
	lines := []string{
		"Article Title: " + a.Title(),
		"Keyword: " + a.Keyword,
		"Generated: " + a.GeneratedAt.Format("2006-01-02 15:04:05"),
		"Updated: " + a.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if a.Model != "" {
		lines = append(lines, "Model: "+a.Model)
	}

	lines = append(lines, "", "Sections:")
	for _, s := range a.Sections {
		lines = append(lines, fmt.Sprintf("- %s: %s", s.Level, oneLine(s.Heading)))
	}

	if len(a.FAQs) > 0 {
		lines = append(lines, "", "FAQ:")
		for _, f := range a.FAQs {
			lines = append(lines, "- Q: "+oneLine(f.Question))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
