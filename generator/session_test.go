package generator

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_article_writer/apperr"
)

func generatedSession(t *testing.T, extra ...string) (*Session, *scriptedLLM) {
	t.Helper()
	llm := &scriptedLLM{responses: append([]string{tenSectionOutput()}, extra...)}
	s := NewSession("sess-1", newTestAgent(t, llm, &fakeSearcher{results: fiveResults()}))
	_, err := s.Generate(context.Background(), Request{Keyword: "best running shoes"})
	require.NoError(t, err)
	return s, llm
}

func TestSessionOperationsBeforeGenerate(t *testing.T) {
	s := NewSession("empty", newTestAgent(t, &scriptedLLM{}, &fakeSearcher{}))

	_, ok := s.Article()
	assert.False(t, ok)

	_, err := s.EditSection(0, "x", "")
	assert.ErrorIs(t, err, ErrNoArticle)
	_, err = s.RegenerateSection(context.Background(), 0)
	assert.True(t, apperr.IsNotFound(err))
	_, err = s.EditFAQ(0, "q", "a")
	assert.True(t, apperr.IsNotFound(err))
	_, err = s.Evaluate(context.Background())
	assert.True(t, apperr.IsNotFound(err))
}

func TestSessionRegenerateSectionThree(t *testing.T) {
	s, _ := generatedSession(t, "A completely new take on section three.")
	before, _ := s.Article()

	got, err := s.RegenerateSection(context.Background(), 3)
	require.NoError(t, err)

	after, _ := s.Article()
	assert.Equal(t, got, after.Sections[3])
	assert.Equal(t, before.Sections[3].Level, after.Sections[3].Level)
	assert.Equal(t, before.Sections[3].Heading, after.Sections[3].Heading)
	assert.Equal(t, 3, after.Sections[3].Index)
	assert.NotEqual(t, before.Sections[3].Body, after.Sections[3].Body)
	assert.Equal(t, "A completely new take on section three.", after.Sections[3].Body)

	if diff := cmp.Diff(before.Sections[:3], after.Sections[:3]); diff != "" {
		t.Errorf("sections before 3 changed:\n%s", diff)
	}
	if diff := cmp.Diff(before.Sections[4:], after.Sections[4:]); diff != "" {
		t.Errorf("sections after 3 changed:\n%s", diff)
	}
	assert.Equal(t, before.FAQs, after.FAQs)
}

func TestSessionRegenerateParseFailureLeavesArticle(t *testing.T) {
	s, _ := generatedSession(t, "@@ FAQ\nQ: wrong\nA: shape")
	before, _ := s.Article()

	_, err := s.RegenerateSection(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, apperr.IsParse(err))

	after, _ := s.Article()
	assert.Empty(t, cmp.Diff(before, after))
}

func TestSessionEditSection(t *testing.T) {
	s, _ := generatedSession(t)
	before, _ := s.Article()

	sec, err := s.EditSection(5, "Hand-written body", "Hand-written heading")
	require.NoError(t, err)
	assert.Equal(t, Section{Index: 5, Level: before.Sections[5].Level, Heading: "Hand-written heading", Body: "Hand-written body"}, sec)

	_, err = s.EditSection(10, "nope", "")
	assert.True(t, apperr.IsNotFound(err))

	after, _ := s.Article()
	before.Sections[5] = sec
	assert.Empty(t, cmp.Diff(before, after))

	hist := s.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "generate", hist[0].Action)
	assert.Equal(t, "edit", hist[1].Action)
	assert.Equal(t, 5, hist[1].SectionIndex)
}

func TestSessionEditFAQ(t *testing.T) {
	s, _ := generatedSession(t)

	item, err := s.EditFAQ(0, "New question?", "New answer.")
	require.NoError(t, err)
	assert.Equal(t, FAQItem{Question: "New question?", Answer: "New answer."}, item)

	art, _ := s.Article()
	assert.Equal(t, item, art.FAQs[0])
}

func TestSessionFailedGenerateKeepsPreviousArticle(t *testing.T) {
	s, llm := generatedSession(t)
	before, _ := s.Article()

	llm.responses = []string{"not the format"}
	_, err := s.Generate(context.Background(), Request{Keyword: "trail shoes"})
	require.Error(t, err)

	after, ok := s.Article()
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(before, after))
}

func TestSessionGenerateReplacesArticleAndHistory(t *testing.T) {
	s, llm := generatedSession(t)
	_, err := s.EditSection(1, "edited", "")
	require.NoError(t, err)

	llm.responses = []string{"@@ H1 | Trail shoes\nLead"}
	art, err := s.Generate(context.Background(), Request{Keyword: "trail shoes"})
	require.NoError(t, err)

	assert.Equal(t, "trail shoes", art.Keyword)
	assert.Len(t, art.Sections, 1)
	assert.Len(t, s.History(), 1)
}

func TestSessionArticleIsSnapshot(t *testing.T) {
	s, _ := generatedSession(t)
	snap, _ := s.Article()
	snap.Sections[0].Body = "mutated outside"

	cur, _ := s.Article()
	assert.NotEqual(t, "mutated outside", cur.Sections[0].Body)
}
