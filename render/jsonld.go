package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"seo_article_writer/generator"
)

// AuthorName is the publisher named in structured data.
const AuthorName = "Local AI Writer"

type ldThing struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type ldAnswer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type ldQuestion struct {
	Type           string   `json:"@type"`
	Name           string   `json:"name"`
	AcceptedAnswer ldAnswer `json:"acceptedAnswer"`
}

type ldFAQPage struct {
	Type       string       `json:"@type"`
	MainEntity []ldQuestion `json:"mainEntity"`
}

type ldArticle struct {
	Context       string      `json:"@context"`
	Type          string      `json:"@type"`
	Headline      string      `json:"headline"`
	Keywords      string      `json:"keywords,omitempty"`
	DatePublished string      `json:"datePublished"`
	DateModified  string      `json:"dateModified"`
	Author        ldThing     `json:"author"`
	MainEntity    []ldFAQPage `json:"mainEntity,omitempty"`
}

// JSONLD returns schema.org Article markup. The FAQPage entity is present only
// when the article has FAQ items.
func JSONLD(a *generator.Article) (string, error) {
	doc := ldArticle{
		Context:       "https://schema.org",
		Type:          "Article",
		Headline:      a.Title(),
		Keywords:      a.Keyword,
		DatePublished: a.GeneratedAt.Format("2006-01-02"),
		DateModified:  a.UpdatedAt.Format("2006-01-02"),
		Author:        ldThing{Type: "Organization", Name: AuthorName},
	}
	if len(a.FAQs) > 0 {
		page := ldFAQPage{Type: "FAQPage"}
		for _, f := range a.FAQs {
			page.MainEntity = append(page.MainEntity, ldQuestion{
				Type:           "Question",
				Name:           f.Question,
				AcceptedAnswer: ldAnswer{Type: "Answer", Text: f.Answer},
			})
		}
		doc.MainEntity = []ldFAQPage{page}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
