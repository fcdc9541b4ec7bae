package summarize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy is the classifier's tunable table: which titles, paths, and
// body shapes mark a section as non-chapter front or back matter. It
// is a maintained denylist, not a learned classifier, and it is
// deliberately a data value so per-corpus tuning needs no code change.
//
// Matching is lowercase substring. The default lists carry both
// accented and unaccented forms of every Spanish term, so no Unicode
// folding is applied at match time.
type Policy struct {
	// TitleDenylist excludes sections whose title contains any entry.
	TitleDenylist []string `yaml:"title_denylist"`

	// PathHints excludes sections whose archive path or spine id
	// contains any entry.
	PathHints []string `yaml:"path_hints"`

	// TOCKeywords are the headings that, near the top of a body,
	// suggest a table of contents.
	TOCKeywords []string `yaml:"toc_keywords"`

	// ImprintKeywords are the phrases counted on copyright/imprint pages.
	ImprintKeywords []string `yaml:"imprint_keywords"`

	// TOCDotLeaderLines is the minimum number of dot-leader lines
	// ("Chapter ... 17") required to confirm a TOC page.
	TOCDotLeaderLines int `yaml:"toc_dot_leader_lines"`

	// TOCNumericLines is the minimum number of bare page-number lines
	// required to confirm a TOC page.
	TOCNumericLines int `yaml:"toc_numeric_lines"`

	// ImprintKeywordHits is the minimum number of distinct imprint
	// keywords required to exclude a page as copyright/imprint matter.
	ImprintKeywordHits int `yaml:"imprint_keyword_hits"`
}

// DefaultPolicy returns the built-in denylist, tuned on English and
// Spanish trade books.
func DefaultPolicy() Policy {
	return Policy{
		TitleDenylist: []string{
			// front matter
			"cover", "portada",
			"title page", "título", "titulo",
			"copyright", "derechos",
			"dedication", "dedicatoria",
			"epigraph", "epígrafe", "epigrafe",
			"preface", "prefacio",
			"foreword", "prólogo", "prologo",
			"introduction", "introducción", "introduccion",
			"acknowledgements", "acknowledgments", "agradecimientos",
			"contents", "table of contents", "toc", "índice", "indice", "sumario",

			// back matter
			"notes", "notas",
			"endnotes",
			"bibliography", "bibliografía", "bibliografia",
			"references", "referencias",
			"glossary", "glosario",
			"appendix", "apéndice", "apendice", "anexo",
			"afterword", "epílogo", "epilogo",
			"colophon", "colofón", "colofon",
			"credits", "créditos", "creditos",
			"index",
			"reconocimientos",
		},
		PathHints: []string{
			"cover", "portada",
			"titlepage", "titulo",
			"toc", "contents",
			"nav", "ncx",
			"copyright",
			"preface", "foreword", "prologue", "epilogue",
			"acknowledg", "agrade",
			"epigraph", "epigrafe",
			"bibliograph", "bibliograf",
			"notes", "notas",
			"dedication",
			"appendix", "apendice", "anexo",
			"glossary", "glosario",
		},
		TOCKeywords: []string{
			"contents", "table of contents", "index", "índice", "indice", "sumario",
		},
		ImprintKeywords: []string{
			"copyright",
			"isbn",
			"all rights reserved",
			"reservados todos los derechos",
			"depósito legal", "deposito legal",
			"printed in", "impreso en",
			"editorial",
			"derechos",
		},
		TOCDotLeaderLines:  8,
		TOCNumericLines:    8,
		ImprintKeywordHits: 2,
	}
}

// LoadPolicy reads a YAML policy file and overlays it on the defaults:
// keys present in the file replace the default value wholesale, absent
// keys keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}

	return policy, nil
}

// Validate checks the numeric thresholds.
func (p Policy) Validate() error {
	if p.TOCDotLeaderLines < 1 {
		return fmt.Errorf("toc_dot_leader_lines must be at least 1, got %d", p.TOCDotLeaderLines)
	}
	if p.TOCNumericLines < 1 {
		return fmt.Errorf("toc_numeric_lines must be at least 1, got %d", p.TOCNumericLines)
	}
	if p.ImprintKeywordHits < 1 {
		return fmt.Errorf("imprint_keyword_hits must be at least 1, got %d", p.ImprintKeywordHits)
	}
	return nil
}
