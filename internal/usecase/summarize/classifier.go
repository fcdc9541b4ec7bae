package summarize

import (
	"log/slog"
	"regexp"
	"strings"

	"booksum/internal/domain/entity"
	"booksum/internal/utils/text"
)

var (
	dotLeaderRe   = regexp.MustCompile(`\.{8,}`)
	numericOnlyRe = regexp.MustCompile(`^\d{1,4}$`)
)

// Classify filters raw sections down to summarizable chapters. It is
// pure and deterministic: the same sections, threshold, and policy
// always produce the same chapters in the same relative order.
//
// A section is excluded when any of these holds:
//   - its word count is below minWords (covers, title pages, short
//     front matter);
//   - its title contains a denylisted keyword;
//   - its archive path or spine id contains a non-chapter hint;
//   - its body looks like a table of contents;
//   - its body looks like a copyright/imprint page.
//
// An empty result is a valid degenerate run, not an error.
func Classify(sections []entity.Section, minWords int, policy Policy) []entity.Chapter {
	chapters := make([]entity.Chapter, 0, len(sections))

	for _, sec := range sections {
		words := text.CountWords(sec.RawText)

		switch {
		case words < minWords:
			slog.Debug("skipping short section",
				slog.String("title", sec.Title),
				slog.Int("words", words),
				slog.Int("min_words", minWords))
		case matchesAny(sec.Title, policy.TitleDenylist):
			slog.Debug("skipping denylisted title", slog.String("title", sec.Title))
		case matchesAny(sec.Href+" "+sec.ID, policy.PathHints):
			slog.Debug("skipping non-chapter path",
				slog.String("title", sec.Title),
				slog.String("href", sec.Href))
		case looksLikeTOC(sec.RawText, policy):
			slog.Debug("skipping TOC-like section", slog.String("title", sec.Title))
		case looksLikeImprint(sec.RawText, policy):
			slog.Debug("skipping copyright/imprint section", slog.String("title", sec.Title))
		default:
			chapters = append(chapters, entity.Chapter{
				Section:       sec,
				WordCount:     words,
				ProcessedText: sec.RawText,
			})
			slog.Info("added chapter",
				slog.String("title", sec.Title),
				slog.Int("words", words))
		}
	}

	return chapters
}

// matchesAny reports whether the lowercased subject contains any of
// the lowercased keywords.
func matchesAny(subject string, keywords []string) bool {
	s := strings.ToLower(subject)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// looksLikeTOC detects table-of-contents pages even when the guessed
// title is misleading. It requires a TOC keyword near the top AND
// enough dot-leader lines AND enough bare page-number lines, the shape
// of a printed-book style TOC.
func looksLikeTOC(body string, policy Policy) bool {
	lines := nonEmptyLines(body)
	if len(lines) == 0 {
		return false
	}

	top := strings.Join(lines[:min(60, len(lines))], "\n")
	if !matchesAny(top, policy.TOCKeywords) {
		return false
	}

	scan := lines[:min(300, len(lines))]
	dotLeaders, numericOnly := 0, 0
	for _, ln := range scan {
		if dotLeaderRe.MatchString(ln) {
			dotLeaders++
		}
		if numericOnlyRe.MatchString(ln) {
			numericOnly++
		}
	}

	return dotLeaders >= policy.TOCDotLeaderLines && numericOnly >= policy.TOCNumericLines
}

// looksLikeImprint catches copyright/imprint pages that can be long
// enough to pass the word-count check. It counts distinct imprint
// keywords in the top of the body.
func looksLikeImprint(body string, policy Policy) bool {
	lines := nonEmptyLines(body)
	top := strings.ToLower(strings.Join(lines[:min(80, len(lines))], "\n"))

	hits := 0
	for _, kw := range policy.ImprintKeywords {
		if strings.Contains(top, strings.ToLower(kw)) {
			hits++
		}
	}
	return hits >= policy.ImprintKeywordHits
}

func nonEmptyLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
