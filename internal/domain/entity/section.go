// Package entity defines the core domain types for the summarization
// pipeline: raw document sections, classified chapters, and the ordered
// summary results handed to the output writer.
package entity

// Section is a single spine document read from the input book, in
// reading order. Sections are immutable once read.
type Section struct {
	// OrderIndex is the stable, unique position of the section in the
	// book's spine.
	OrderIndex int

	// ID is the spine idref of the section inside the container.
	ID string

	// Href is the section's internal archive path.
	Href string

	// Title is the best available display title for the section
	// (navigation label, heading element, document title, or idref
	// fallback, in that order of preference).
	Title string

	// RawText is the extracted plain text of the section body, one
	// line per block element.
	RawText string
}

// Chapter is a Section that passed classification as summarizable
// narrative content. Chapters are never mutated after preprocessing.
type Chapter struct {
	Section

	// WordCount is the whitespace-token count of RawText.
	WordCount int

	// ProcessedText is the text submitted to the model. It equals
	// RawText unless compression is enabled, and it is the text the
	// cache key is derived from.
	ProcessedText string
}

// ChapterSummary is one ordered element of the pipeline result. The
// result sequence has exactly one entry per classified chapter, in
// spine order.
type ChapterSummary struct {
	OrderIndex int
	Title      string
	Summary    string

	// FromCache reports whether the summary was served from the store
	// without a model call.
	FromCache bool

	// Failed marks a placeholder entry produced after retries were
	// exhausted in lenient mode. Failed entries keep their position.
	Failed bool
}

// Book carries input document metadata forwarded to the output book.
type Book struct {
	Title   string
	Authors []string
}
