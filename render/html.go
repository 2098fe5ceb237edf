// Package render projects an article into its export formats.
package render

import (
	"bytes"
	"html/template"
	"reflect"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"

	"seo_article_writer/generator"
)

// bodyMarkdown converts section bodies. Heading parsers are removed so a body
// can never add heading tags of its own; raw HTML is omitted by default.
var bodyMarkdown = goldmark.New(goldmark.WithParser(newBodyParser()))

func newBodyParser() parser.Parser {
	drop := map[reflect.Type]bool{
		reflect.TypeOf(parser.NewATXHeadingParser()):    true,
		reflect.TypeOf(parser.NewSetextHeadingParser()): true,
	}
	var blocks []util.PrioritizedValue
	for _, v := range parser.DefaultBlockParsers() {
		if !drop[reflect.TypeOf(v.Value)] {
			blocks = append(blocks, v)
		}
	}
	return parser.NewParser(
		parser.WithBlockParsers(blocks...),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)
}

var articleTmpl = template.Must(template.New("article").Parse(`<article>
{{- range .Sections}}
<section id="section-{{.Index}}">
{{if eq .Tag "h1"}}<h1>{{.Heading}}</h1>{{else if eq .Tag "h3"}}<h3>{{.Heading}}</h3>{{else}}<h2>{{.Heading}}</h2>{{end}}
{{.Body}}</section>
{{- end}}
{{- if .FAQs}}
<section class="faq">
<dl>
{{- range .FAQs}}
<dt>{{.Question}}</dt>
<dd>{{.Answer}}</dd>
{{- end}}
</dl>
</section>
{{- end}}
</article>
`))

type htmlSection struct {
	Index   int
	Tag     string
	Heading string
	Body    template.HTML
}

// HTML renders the article as markup: one heading element per section in
// order, Markdown bodies, and the FAQ as a description list.
func HTML(a *generator.Article) (string, error) {
	data := struct {
		Sections []htmlSection
		FAQs     []generator.FAQItem
	}{FAQs: a.FAQs}

	for _, s := range a.Sections {
		body, err := markdownToHTML(s.Body)
		if err != nil {
			return "", err
		}
		data.Sections = append(data.Sections, htmlSection{
			Index:   s.Index,
			Tag:     s.Level.Tag(),
			Heading: s.Heading,
			Body:    template.HTML(body),
		})
	}

	var buf bytes.Buffer
	if err := articleTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func markdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := bodyMarkdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
