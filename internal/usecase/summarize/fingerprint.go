package summarize

import (
	"crypto/sha256"
	"encoding/hex"
)

// CacheKey derives the deterministic fingerprint identifying one
// cached summary. Any byte change to the model identifier, the
// template body, the chapter title, or the processed chapter text
// yields a different key; two chapters with identical title and text
// under the same model and template collide on purpose (same inputs,
// same answer).
//
// Construction: sha256hex(model | sha256hex(template) | title | sha256hex(text)),
// with "|" separators. Hashing template and text first keeps the outer
// preimage short and unambiguous regardless of their content.
func CacheKey(model, templateBody, title, processedText string) string {
	inner := model + "|" + sha256hex(templateBody) + "|" + title + "|" + sha256hex(processedText)
	return sha256hex(inner)
}

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
