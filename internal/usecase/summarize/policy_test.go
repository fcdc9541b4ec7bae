package summarize_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booksum/internal/usecase/summarize"
)

func TestDefaultPolicy_IsValid(t *testing.T) {
	policy := summarize.DefaultPolicy()

	require.NoError(t, policy.Validate())
	assert.NotEmpty(t, policy.TitleDenylist)
	assert.Contains(t, policy.TitleDenylist, "table of contents")
	assert.Contains(t, policy.TitleDenylist, "prólogo")
}

func TestLoadPolicy_OverlaysOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := "title_denylist:\n  - banned section\ntoc_numeric_lines: 12\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	policy, err := summarize.LoadPolicy(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"banned section"}, policy.TitleDenylist,
		"keys in the file replace the default wholesale")
	assert.Equal(t, 12, policy.TOCNumericLines)
	assert.Equal(t, summarize.DefaultPolicy().ImprintKeywords, policy.ImprintKeywords,
		"absent keys keep their defaults")
}

func TestLoadPolicy_RejectsInvalidThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("imprint_keyword_hits: 0\n"), 0o644))

	_, err := summarize.LoadPolicy(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "imprint_keyword_hits")
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := summarize.LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
}
