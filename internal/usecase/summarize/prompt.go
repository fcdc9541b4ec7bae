package summarize

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Template is an external prompt text with named placeholders, loaded
// once per run. Its literal body participates in the cache key, so any
// byte change is a different template identity.
type Template struct {
	Name string
	Body string
}

// placeholderRe matches "{name}" placeholder references.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// recognized is the closed set of placeholders a template may use.
var recognized = map[string]bool{
	"title": true,
	"text":  true,
}

// LoadTemplate reads "<dir>/<name>.txt" and validates its placeholder
// set up front, failing closed before any model call: a placeholder
// outside {title, text}, or a missing required one, is ErrTemplate.
func LoadTemplate(dir, name string) (Template, error) {
	path := filepath.Join(dir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("%w: read %s: %v", ErrTemplate, path, err)
	}

	tpl := Template{Name: name, Body: string(data)}
	if err := tpl.validate(); err != nil {
		return Template{}, err
	}
	return tpl, nil
}

// validate checks the placeholder grammar of the template body.
func (t Template) validate() error {
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(t.Body, -1) {
		name := m[1]
		if !recognized[name] {
			return fmt.Errorf("%w: unknown placeholder {%s} in template %q", ErrTemplate, name, t.Name)
		}
		seen[name] = true
	}

	for _, name := range []string{"title", "text"} {
		if !seen[name] {
			return fmt.Errorf("%w: template %q is missing required placeholder {%s}", ErrTemplate, t.Name, name)
		}
	}
	return nil
}

// Render substitutes the literal title and text into the template and
// trims surrounding whitespace. No other context is ever injected.
// Templates are validated at load time, so rendering is total.
func (t Template) Render(title, text string) string {
	r := strings.NewReplacer(
		"{title}", title,
		"{text}", text,
	)
	return strings.TrimSpace(r.Replace(t.Body))
}
