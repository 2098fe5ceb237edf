package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_article_writer/generator"
)

func testArticle() *generator.Article {
	return &generator.Article{
		Keyword: "best running shoes",
		Model:   "gemini-2.0-flash",
		Sections: []generator.Section{
			{Index: 0, Level: generator.H1, Heading: "Best running shoes", Body: "Lead paragraph."},
			{Index: 1, Level: generator.H2, Heading: "Cushioning & <support>", Body: "Why it matters:\n\n- soft foam\n- stable base"},
			{Index: 2, Level: generator.H3, Heading: "Trail options", Body: "# Not a heading\n\nSetext attempt\n---\n\n<h2>raw html</h2>"},
			{Index: 3, Level: generator.H2, Heading: "Conclusion", Body: "Pick what *fits*."},
		},
		FAQs: []generator.FAQItem{
			{Question: "How long do shoes last?", Answer: "500-800 km."},
			{Question: "Are carbon plates worth it?", Answer: "For racing."},
		},
		GeneratedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC),
	}
}

func parseHTML(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestHTMLHeadingsMatchSections(t *testing.T) {
	a := testArticle()
	out, err := HTML(a)
	require.NoError(t, err)

	doc := parseHTML(t, out)
	headings := doc.Find("h1, h2, h3, h4, h5, h6")
	require.Equal(t, len(a.Sections), headings.Length())

	headings.Each(func(i int, s *goquery.Selection) {
		assert.Equal(t, a.Sections[i].Level.Tag(), goquery.NodeName(s))
		assert.Equal(t, a.Sections[i].Heading, s.Text())
	})
}

func TestHTMLHeadingCountForManySections(t *testing.T) {
	a := &generator.Article{Keyword: "k"}
	levels := []generator.HeadingLevel{generator.H1, generator.H2, generator.H3}
	for i := 0; i < 12; i++ {
		a.Sections = append(a.Sections, generator.Section{
			Index:   i,
			Level:   levels[i%3],
			Heading: fmt.Sprintf("Heading %d", i),
			Body:    "## sneaky\nbody\n===",
		})
	}
	out, err := HTML(a)
	require.NoError(t, err)

	doc := parseHTML(t, out)
	assert.Equal(t, 12, doc.Find("h1, h2, h3, h4, h5, h6").Length())
}

func TestHTMLBodyMarkdown(t *testing.T) {
	out, err := HTML(testArticle())
	require.NoError(t, err)
	doc := parseHTML(t, out)

	items := doc.Find("#section-1 ul li")
	require.Equal(t, 2, items.Length())
	assert.Equal(t, "soft foam", items.First().Text())
	assert.Equal(t, "fits", doc.Find("#section-3 em").Text())

	assert.Contains(t, out, "Cushioning &amp; &lt;support&gt;")
	assert.NotContains(t, out, "<h2>raw html</h2>")
	assert.Contains(t, doc.Find("#section-2").Text(), "# Not a heading")
}

func TestHTMLFAQList(t *testing.T) {
	out, err := HTML(testArticle())
	require.NoError(t, err)
	doc := parseHTML(t, out)

	dts := doc.Find("section.faq dl dt")
	require.Equal(t, 2, dts.Length())
	assert.Equal(t, "How long do shoes last?", dts.First().Text())
	assert.Equal(t, "500-800 km.", doc.Find("section.faq dl dd").First().Text())
}

func TestHTMLWithoutFAQs(t *testing.T) {
	a := testArticle()
	a.FAQs = nil
	out, err := HTML(a)
	require.NoError(t, err)
	assert.NotContains(t, out, "faq")
}

func TestJSONLDWithFAQs(t *testing.T) {
	out, err := JSONLD(testArticle())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "https://schema.org", doc["@context"])
	assert.Equal(t, "Article", doc["@type"])
	assert.Equal(t, "Best running shoes", doc["headline"])
	assert.Equal(t, "2026-10-15", doc["datePublished"])
	assert.Equal(t, "2026-10-16", doc["dateModified"])

	entities := doc["mainEntity"].([]any)
	require.Len(t, entities, 1)
	page := entities[0].(map[string]any)
	assert.Equal(t, "FAQPage", page["@type"])

	questions := page["mainEntity"].([]any)
	require.Len(t, questions, 2)
	q := questions[1].(map[string]any)
	assert.Equal(t, "Question", q["@type"])
	assert.Equal(t, "Are carbon plates worth it?", q["name"])
	assert.Equal(t, map[string]any{"@type": "Answer", "text": "For racing."}, q["acceptedAnswer"])
}

func TestJSONLDWithoutFAQs(t *testing.T) {
	a := testArticle()
	a.FAQs = nil
	out, err := JSONLD(a)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotContains(t, doc, "mainEntity")
	assert.NotContains(t, out, "FAQPage")
	assert.NotContains(t, out, "Question")
}

func TestJSONLDKeepsNonASCII(t *testing.T) {
	a := testArticle()
	a.FAQs = []generator.FAQItem{{Question: "ランニングシューズの寿命は？", Answer: "約500〜800km & more"}}
	out, err := JSONLD(a)
	require.NoError(t, err)

	assert.Contains(t, out, "ランニングシューズの寿命は？")
	assert.Contains(t, out, "& more")
}

func TestRenderingIsDeterministic(t *testing.T) {
	a := testArticle()
	h1, _ := HTML(a)
	h2, _ := HTML(a)
	j1, _ := JSONLD(a)
	j2, _ := JSONLD(a)
	assert.Equal(t, h1, h2)
	assert.Equal(t, j1, j2)
	assert.Equal(t, LLMText(a), LLMText(a))
}

func TestLLMText(t *testing.T) {
	a := testArticle()
	out := LLMText(a)

	want := `Article Title: Best running shoes
Keyword: best running shoes
Generated: 2026-10-15 09:30:00
Updated: 2026-10-16 08:00:00
Model: gemini-2.0-flash

Sections:
- H1: Best running shoes
- H2: Cushioning & <support>
- H3: Trail options
- H2: Conclusion

FAQ:
- Q: How long do shoes last?
- Q: Are carbon plates worth it?
`
	assert.Equal(t, want, out)

	for _, s := range a.Sections {
		assert.NotContains(t, out, s.Body)
	}
	for _, f := range a.FAQs {
		assert.NotContains(t, out, f.Answer)
	}
}
