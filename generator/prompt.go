package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"seo_article_writer/search"
)

// PromptKind tells a client which output grammar the prompt asks for.
type PromptKind string

const (
	KindArticle    PromptKind = "article"
	KindSection    PromptKind = "section"
	KindEvaluation PromptKind = "evaluation"
)

// MinSections is the number of sections requested from the model.
const MinSections = 10

// OriginalDataHeading titles the section that carries user-supplied data.
const OriginalDataHeading = "Original data"

// Prompt is what gets sent to the LLM.
type Prompt struct {
	Kind   PromptKind
	System string
	User   string
}

const grammar = `Output format (follow exactly, no other text, no code fences):
@@ H1 | <article title>
<body in Markdown; paragraphs and "-" lists allowed; never start a line with "#" or "@@">
@@ H2 | <section heading>
<body>
@@ H3 | <sub-section heading>
<body>
@@ FAQ
Q: <question>
A: <answer>
`

// BuildArticlePrompt builds the full-article prompt from the keyword and the
// search evidence. It is deterministic for the same inputs.
func BuildArticlePrompt(keyword string, results []search.Result, customData, language string) Prompt {
	var sys strings.Builder
	sys.WriteString("You are the managing editor of an SEO content team.\n")
	sys.WriteString("Requirements:\n")
	sys.WriteString(fmt.Sprintf("- Write the article in language %q.\n", languageOrDefault(language)))
	sys.WriteString(fmt.Sprintf("- Split the article into at least %d sections.\n", MinSections))
	sys.WriteString("- Start with exactly one H1 section holding the article title and a short lead.\n")
	sys.WriteString("- Use H2 for main sections and H3 for sub-sections.\n")
	sys.WriteString("- Cover overview, key points, methodology, advantages, disadvantages, use cases, future outlook and a conclusion.\n")
	sys.WriteString("- Finish with an FAQ block of 3 to 6 question/answer pairs.\n")
	sys.WriteString("- Cite sources by URL inside the body where you rely on them.\n")
	if strings.TrimSpace(customData) != "" {
		sys.WriteString("- The user supplied original data: include an H2 section titled \"" + OriginalDataHeading + "\" and reference it in the rest of the article.\n")
	}
	sys.WriteString("\n")
	sys.WriteString(grammar)

	var user strings.Builder
	user.WriteString("# Topic\n")
	user.WriteString(strings.TrimSpace(keyword))
	user.WriteString("\n\n")
	if len(results) > 0 {
		user.WriteString(fmt.Sprintf("# Search results (top %d)\n", len(results)))
		for i, r := range results {
			user.WriteString(fmt.Sprintf("%d. %s\n   URL: %s\n   %s\n", i+1, oneLine(r.Title), r.URL, oneLine(r.Snippet)))
		}
	} else {
		user.WriteString("# Search results\n")
		user.WriteString("No search results were available. Write from general knowledge and mark any claim that would need a source with \"[citation needed]\".\n")
	}
	if cd := strings.TrimSpace(customData); cd != "" {
		user.WriteString("\n# Original data (use as-is)\n")
		user.WriteString(cd)
		user.WriteString("\n")
	}

	return Prompt{Kind: KindArticle, System: sys.String(), User: user.String()}
}

// BuildSectionPrompt asks for a rewrite of one section.
func BuildSectionPrompt(keyword string, sec Section, language string) Prompt {
	var sys strings.Builder
	sys.WriteString("You are an SEO editor improving one section of an article.\n")
	sys.WriteString(fmt.Sprintf("- Write in language %q.\n", languageOrDefault(language)))
	sys.WriteString("- Output only the rewritten section body in Markdown (paragraphs and \"-\" lists).\n")
	sys.WriteString("- Never start a line with \"#\".\n")
	sys.WriteString(fmt.Sprintf("- To rename the heading, put one first line of the form \"@@ %s | <new heading>\"; otherwise omit it.\n", sec.Level))
	sys.WriteString("- Keep it consistent with the topic and any original data the article cites.\n")

	user := fmt.Sprintf("# Topic\n%s\n\n# Section heading (%s)\n%s\n\n# Current text\n%s\n",
		strings.TrimSpace(keyword), sec.Level, sec.Heading, sec.Body)

	return Prompt{Kind: KindSection, System: sys.String(), User: user}
}

// BuildEvaluationPrompt asks the model to grade the article.
func BuildEvaluationPrompt(a *Article) Prompt {
	sys := `Evaluate the following SEO article (JSON). Reply with JSON only, using these keys:
{"comprehensiveness": {"score": 1-5, "reason": "..."},
 "readability": {"score": 1-5, "reason": "..."},
 "authority": {"score": 1-5, "reason": "..."},
 "seo_fitness": {"score": 1-5, "reason": "..."},
 "improvement_suggestions": ["...", "..."],
 "overall_comment": "..."}
Reflect how well any original data is used in "authority".`

	body, _ := json.MarshalIndent(a, "", "  ")
	return Prompt{Kind: KindEvaluation, System: sys, User: string(body)}
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return "en"
	}
	return lang
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
