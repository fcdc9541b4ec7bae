// Command booksum summarizes the chapters of an EPUB book against a
// locally hosted language model and writes the summaries as a new
// EPUB. Completed summaries are cached on disk, so an interrupted run
// resumes where it stopped.
//
// Usage:
//
//	booksum <input.epub> <output.epub> [flags]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"booksum/internal/config"
	"booksum/internal/infra/cache"
	"booksum/internal/infra/epub"
	"booksum/internal/infra/llm"
	"booksum/internal/observability/logging"
	"booksum/internal/resilience/retry"
	"booksum/internal/usecase/summarize"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type cliOptions struct {
	input     string
	output    string
	model     string
	prompt    string
	promptDir string
	minWords  int
	compress  bool
	logfile   bool
	strict    bool
	backend   string
	cacheDir  string
	policy    string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	_, closeLog, err := logging.Setup(opts.logfile, opts.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		return exitError
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := summarizeBook(ctx, opts); err != nil {
		slog.Error("run failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "booksum: %v\n", err)
		return exitError
	}
	return exitOK
}

func summarizeBook(ctx context.Context, opts cliOptions) error {
	genCfg, err := config.LoadGenerationConfig()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	policy, err := loadPolicy(opts.policy)
	if err != nil {
		return err
	}

	tpl, err := summarize.LoadTemplate(opts.promptDir, opts.prompt)
	if err != nil {
		return err
	}

	book, sections, err := epub.ReadBook(opts.input)
	if err != nil {
		return err
	}

	chapters := summarize.Classify(sections, opts.minWords, policy)
	slog.Info("chapters classified",
		slog.Int("spine_documents", len(sections)),
		slog.Int("chapters", len(chapters)),
		slog.Int("min_words", opts.minWords))
	if len(chapters) == 0 {
		slog.Warn("no sections qualified as chapters; output will carry no summaries")
	}

	generator, err := newGenerator(opts.backend, opts.model, genCfg)
	if err != nil {
		return err
	}

	cacheDir := opts.cacheDir
	if cacheDir == "" {
		cacheDir = cache.DirFor(opts.input)
	}
	store, err := cache.Open(cacheDir)
	if err != nil {
		return fmt.Errorf("open summary store: %w", err)
	}

	svc := summarize.NewService(generator, tpl, store, summarize.Options{
		Compress:        opts.compress,
		CompressOptions: summarize.DefaultCompressOptions(),
		Strict:          opts.strict,
		Retry:           retry.ModelInvocationConfig(),
	})

	summaries, err := svc.Run(ctx, chapters)
	if err != nil {
		return err
	}

	return epub.WriteSummaryBook(opts.output, book, summaries)
}

func loadPolicy(path string) (summarize.Policy, error) {
	if path == "" {
		return summarize.DefaultPolicy(), nil
	}
	return summarize.LoadPolicy(path)
}

func newGenerator(backend, model string, cfg *config.GenerationConfig) (summarize.Generator, error) {
	switch backend {
	case "ollama":
		return llm.NewOllama(model, cfg)
	case "openai":
		return llm.NewOpenAICompat(model, cfg), nil
	case "noop":
		return llm.NewNoOp(model), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want ollama, openai, or noop)", backend)
	}
}

// parseArgs accepts flags before, between, or after the two positional
// arguments. The standard flag package stops at the first positional,
// so parsing restarts after each one.
func parseArgs(args []string) (cliOptions, error) {
	var opts cliOptions

	fs := flag.NewFlagSet("booksum", flag.ContinueOnError)
	fs.StringVar(&opts.model, "model", "qwen2.5:3b", "model identifier passed to the inference host")
	fs.StringVar(&opts.prompt, "prompt", "summarize_chapter_v1", "prompt template name (without .txt)")
	fs.StringVar(&opts.promptDir, "prompt-dir", "prompts", "directory holding prompt templates")
	fs.IntVar(&opts.minWords, "min-words", 300, "minimum word count for a section to qualify as a chapter")
	fs.BoolVar(&opts.compress, "compress-chapters", false, "compress long chapters into structured excerpts before summarizing")
	fs.BoolVar(&opts.logfile, "logfile", false, "also write logs to <input stem>.log next to the input")
	fs.BoolVar(&opts.strict, "strict", false, "abort the run on the first chapter that exhausts its retries")
	fs.StringVar(&opts.backend, "backend", "ollama", "inference backend: ollama, openai, or noop")
	fs.StringVar(&opts.cacheDir, "cache-dir", "", "summary cache directory (default: derived from the input path)")
	fs.StringVar(&opts.policy, "policy", "", "YAML file overriding the chapter classification policy")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: booksum <input.epub> <output.epub> [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return cliOptions{}, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}

	if len(positional) != 2 {
		fs.Usage()
		return cliOptions{}, fmt.Errorf("expected 2 positional arguments, got %d", len(positional))
	}
	opts.input = positional[0]
	opts.output = positional[1]

	if opts.minWords < 0 {
		return cliOptions{}, fmt.Errorf("min-words must be non-negative, got %d", opts.minWords)
	}
	if !strings.HasSuffix(strings.ToLower(opts.input), ".epub") {
		slog.Debug("input does not carry an .epub extension", slog.String("input", opts.input))
	}

	return opts, nil
}
