// Package text provides small text-measurement helpers shared by the
// classifier, the preprocessor, and the model clients.
package text

import "strings"

// CountRunes counts the number of Unicode characters (runes) in the
// given text. Counting runes instead of bytes keeps lengths correct
// for accented and multi-byte characters.
func CountRunes(text string) int {
	return len([]rune(text))
}

// CountWords counts whitespace-delimited tokens. This is the word
// count the chapter classifier thresholds against; it intentionally
// matches strings.Fields semantics (any run of whitespace separates
// words, leading/trailing whitespace is ignored).
//
// Examples:
//
//	CountWords("one two three") // returns 3
//	CountWords("  padded  ")    // returns 1
//	CountWords("")              // returns 0
func CountWords(text string) int {
	return len(strings.Fields(text))
}
