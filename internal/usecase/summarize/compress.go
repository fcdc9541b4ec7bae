package summarize

import (
	"regexp"
	"strings"

	"booksum/internal/utils/text"
)

// CompressOptions tunes the size-reducing transform applied to chapter
// text before model invocation. The transform is deterministic for a
// given input and options, which matters because its output feeds the
// cache key: changing any knob changes the processed text and
// therefore invalidates exactly the affected entries.
type CompressOptions struct {
	// HeadWords is the number of opening words kept verbatim.
	HeadWords int `yaml:"head_words"`

	// TailWords is the number of closing words kept verbatim.
	TailWords int `yaml:"tail_words"`

	// MaxSignalLines caps the high-signal lines (dates, numbers,
	// proper nouns) sampled from the body.
	MaxSignalLines int `yaml:"max_signal_lines"`

	// MaxLineLength truncates individual signal lines to keep single
	// long paragraphs from bloating the prompt.
	MaxLineLength int `yaml:"max_line_length"`

	// MiddleEvery samples every n-th qualifying paragraph for the
	// middle excerpt.
	MiddleEvery int `yaml:"middle_every"`

	// MiddleMaxSamples caps the number of middle paragraphs.
	MiddleMaxSamples int `yaml:"middle_max_samples"`

	// MiddleMinWords is the minimum paragraph length to qualify for
	// the middle excerpt.
	MiddleMinWords int `yaml:"middle_min_words"`

	// IncludeMiddle toggles the middle excerpt entirely.
	IncludeMiddle bool `yaml:"include_middle"`
}

// DefaultCompressOptions returns the built-in compression tuning.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{
		HeadWords:        320,
		TailWords:        320,
		MaxSignalLines:   18,
		MaxLineLength:    220,
		MiddleEvery:      12,
		MiddleMaxSamples: 8,
		MiddleMinWords:   40,
		IncludeMiddle:    true,
	}
}

var (
	yearRe       = regexp.MustCompile(`\b(1[6-9]\d{2}|20\d{2})\b`)
	numberRe     = regexp.MustCompile(`\b\d+\b`)
	properNounRe = regexp.MustCompile(`\b[A-ZÁÉÍÓÚÑ][a-záéíóúñ]{2,}\b`)
)

// Compress shortens chapter text while preserving enough signal for
// summarization: the opening and closing context verbatim, a few
// representative middle paragraphs, and lines carrying dates, numbers,
// or proper nouns. Texts short enough to summarize whole pass through
// unchanged.
func Compress(body string, opts CompressOptions) string {
	words := strings.Fields(body)
	if len(words) <= opts.HeadWords+opts.TailWords+250 {
		return body
	}

	head := strings.Join(words[:opts.HeadWords], " ")
	tail := strings.Join(words[len(words)-opts.TailWords:], " ")

	parts := []string{"[OPENING]", head}

	if opts.IncludeMiddle {
		if middle := sampleMiddle(body, opts); middle != "" {
			parts = append(parts, "", "[MIDDLE]", middle)
		}
	}

	if signal := signalLines(body, opts); signal != "" {
		parts = append(parts, "", "[SIGNALS]", signal)
	}

	parts = append(parts, "", "[CLOSING]", tail)
	return strings.Join(parts, "\n")
}

// sampleMiddle selects a few representative long paragraphs to recover
// narrative flow between the opening and closing excerpts.
func sampleMiddle(body string, opts CompressOptions) string {
	var paragraphs []string
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if text.CountWords(ln) >= opts.MiddleMinWords {
			paragraphs = append(paragraphs, ln)
		}
	}

	if len(paragraphs) <= opts.MiddleMaxSamples {
		return strings.Join(paragraphs, "\n")
	}

	var samples []string
	for i := 0; i < len(paragraphs) && len(samples) < opts.MiddleMaxSamples; i += opts.MiddleEvery {
		samples = append(samples, paragraphs[i])
	}
	return strings.Join(samples, "\n")
}

// signalLines collects lines likely to anchor the summary: years,
// numbers, or capitalized proper nouns.
func signalLines(body string, opts CompressOptions) string {
	var lines []string
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if len(ln) < 60 {
			continue
		}

		if yearRe.MatchString(ln) || numberRe.MatchString(ln) || properNounRe.MatchString(ln) {
			if runes := []rune(ln); len(runes) > opts.MaxLineLength {
				// Slice by rune so accented characters never split.
				ln = strings.TrimRight(string(runes[:opts.MaxLineLength]), " ") + "…"
			}
			lines = append(lines, ln)
		}

		if len(lines) >= opts.MaxSignalLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}
