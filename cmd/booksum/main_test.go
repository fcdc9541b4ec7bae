package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := parseArgs([]string{"in.epub", "out.epub"})

	require.NoError(t, err)
	assert.Equal(t, "in.epub", opts.input)
	assert.Equal(t, "out.epub", opts.output)
	assert.Equal(t, "qwen2.5:3b", opts.model)
	assert.Equal(t, "summarize_chapter_v1", opts.prompt)
	assert.Equal(t, 300, opts.minWords)
	assert.Equal(t, "ollama", opts.backend)
	assert.False(t, opts.compress)
	assert.False(t, opts.strict)
	assert.False(t, opts.logfile)
}

func TestParseArgs_TrailingFlags(t *testing.T) {
	opts, err := parseArgs([]string{
		"in.epub", "out.epub",
		"--model", "llama3.2:3b",
		"--min-words", "150",
		"--compress-chapters",
		"--logfile",
	})

	require.NoError(t, err)
	assert.Equal(t, "llama3.2:3b", opts.model)
	assert.Equal(t, 150, opts.minWords)
	assert.True(t, opts.compress)
	assert.True(t, opts.logfile)
}

func TestParseArgs_InterleavedFlags(t *testing.T) {
	opts, err := parseArgs([]string{"--strict", "in.epub", "--backend", "openai", "out.epub"})

	require.NoError(t, err)
	assert.Equal(t, "in.epub", opts.input)
	assert.Equal(t, "out.epub", opts.output)
	assert.Equal(t, "openai", opts.backend)
	assert.True(t, opts.strict)
}

func TestParseArgs_WrongArity(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one positional", []string{"in.epub"}},
		{"three positionals", []string{"a.epub", "b.epub", "c.epub"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestParseArgs_NegativeMinWords(t *testing.T) {
	_, err := parseArgs([]string{"in.epub", "out.epub", "--min-words", "-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "min-words")
}

func TestNewGenerator_UnknownBackend(t *testing.T) {
	_, err := newGenerator("vllm", "m", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "vllm")
}
