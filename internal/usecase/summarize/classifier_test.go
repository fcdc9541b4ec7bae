package summarize_test

import (
	"strings"
	"testing"

	"booksum/internal/domain/entity"
	"booksum/internal/usecase/summarize"
)

// loremWords builds a body with exactly n whitespace-separated words.
func loremWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "palabra"
	}
	return strings.Join(words, " ")
}

func section(idx int, title, body string) entity.Section {
	return entity.Section{
		OrderIndex: idx,
		ID:         "sec",
		Href:       "chapter.xhtml",
		Title:      title,
		RawText:    body,
	}
}

func TestClassify_FilteringCorrectness(t *testing.T) {
	policy := summarize.DefaultPolicy()

	tests := []struct {
		name     string
		sec      entity.Section
		minWords int
		included bool
	}{
		{
			"toc excluded regardless of length",
			section(0, "Table of Contents", loremWords(900)),
			300,
			false,
		},
		{
			"short chapter excluded",
			section(1, "Chapter 1", loremWords(100)),
			300,
			false,
		},
		{
			"long chapter included",
			section(2, "Chapter 1", loremWords(500)),
			300,
			true,
		},
		{
			"cover excluded",
			section(3, "Cover", loremWords(400)),
			300,
			false,
		},
		{
			"bibliography excluded",
			section(4, "Bibliography", loremWords(900)),
			300,
			false,
		},
		{
			"spanish prologue excluded",
			section(5, "Prólogo", loremWords(600)),
			300,
			false,
		},
		{
			"appendix excluded",
			section(6, "Appendix A", loremWords(600)),
			300,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarize.Classify([]entity.Section{tt.sec}, tt.minWords, policy)

			if included := len(got) == 1; included != tt.included {
				t.Errorf("Classify(%q) included=%v, want %v", tt.sec.Title, included, tt.included)
			}
		})
	}
}

func TestClassify_WorkedExample(t *testing.T) {
	// Input from the pipeline's canonical example: cover, one real
	// chapter, bibliography; min words 300.
	sections := []entity.Section{
		section(0, "Cover", loremWords(40)),
		section(1, "Chapter 1", "Alice fell "+loremWords(498)),
		section(2, "Bibliography", loremWords(900)),
	}

	got := summarize.Classify(sections, 300, summarize.DefaultPolicy())

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 chapter, got %d", len(got))
	}
	if got[0].Title != "Chapter 1" {
		t.Errorf("expected Chapter 1, got %q", got[0].Title)
	}
	if got[0].WordCount != 500 {
		t.Errorf("expected WordCount=500, got %d", got[0].WordCount)
	}
	if got[0].ProcessedText != got[0].RawText {
		t.Error("ProcessedText must default to RawText")
	}
}

func TestClassify_OrderPreserved(t *testing.T) {
	sections := []entity.Section{
		section(0, "Cover", loremWords(40)),
		section(1, "Chapter 1", loremWords(400)),
		section(2, "Notes", loremWords(500)),
		section(3, "Chapter 2", loremWords(400)),
		section(4, "Chapter 3", loremWords(400)),
	}

	got := summarize.Classify(sections, 300, summarize.DefaultPolicy())

	want := []int{1, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d chapters, got %d", len(want), len(got))
	}
	for i, ch := range got {
		if ch.OrderIndex != want[i] {
			t.Errorf("chapter %d has OrderIndex %d, want %d", i, ch.OrderIndex, want[i])
		}
	}
}

func TestClassify_PathHints(t *testing.T) {
	sec := entity.Section{
		OrderIndex: 0,
		ID:         "copyright-page",
		Href:       "text/copyright.xhtml",
		Title:      "Untitled",
		RawText:    loremWords(500),
	}

	got := summarize.Classify([]entity.Section{sec}, 300, summarize.DefaultPolicy())

	if len(got) != 0 {
		t.Errorf("expected section excluded by path hint, got %d chapters", len(got))
	}
}

func TestClassify_TOCBodyDetection(t *testing.T) {
	// A TOC page with a misleading title: keyword on top plus dot
	// leaders and page numbers, padded long enough to pass min words.
	var b strings.Builder
	b.WriteString("Contents\n")
	for i := 1; i <= 10; i++ {
		b.WriteString("Some Long Chapter Heading Name Here ............ \n")
		b.WriteString("42\n")
	}
	b.WriteString(loremWords(400))

	sec := section(0, "Untitled Front Page", b.String())
	got := summarize.Classify([]entity.Section{sec}, 300, summarize.DefaultPolicy())

	if len(got) != 0 {
		t.Error("expected TOC-shaped body to be excluded")
	}
}

func TestClassify_ImprintBodyDetection(t *testing.T) {
	body := "Copyright 2020 Editorial Example\nISBN 978-1-23456-789-0\n" + loremWords(500)

	sec := section(0, "Untitled", body)
	got := summarize.Classify([]entity.Section{sec}, 300, summarize.DefaultPolicy())

	if len(got) != 0 {
		t.Error("expected imprint-shaped body to be excluded")
	}
}

func TestClassify_AllExcludedIsValid(t *testing.T) {
	sections := []entity.Section{
		section(0, "Cover", loremWords(10)),
		section(1, "Table of Contents", loremWords(900)),
	}

	got := summarize.Classify(sections, 300, summarize.DefaultPolicy())

	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected degenerate empty run, got %d chapters", len(got))
	}
}

func TestClassify_Deterministic(t *testing.T) {
	sections := []entity.Section{
		section(0, "Chapter 1", loremWords(400)),
		section(1, "Chapter 2", loremWords(400)),
	}
	policy := summarize.DefaultPolicy()

	first := summarize.Classify(sections, 300, policy)
	second := summarize.Classify(sections, 300, policy)

	if len(first) != len(second) {
		t.Fatalf("non-deterministic result lengths: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chapter %d differs between runs", i)
		}
	}
}
