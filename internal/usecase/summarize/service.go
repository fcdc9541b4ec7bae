package summarize

import (
	"context"
	"fmt"
	"log/slog"

	"booksum/internal/domain/entity"
	"booksum/internal/resilience/retry"
	"booksum/internal/utils/text"
)

// Generator produces text from a rendered prompt against a fixed
// model. Implementations block for the duration of the call and honor
// context cancellation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// SummaryStore is the durable cache surface the orchestrator depends
// on. It is injected explicitly so the core stays testable against an
// in-memory fake.
type SummaryStore interface {
	// Get returns the stored summary and whether the key was present.
	Get(key string) (string, bool, error)

	// Put durably stores the summary before returning.
	Put(key, summary string) error
}

// Options selects the run policy for a Service.
type Options struct {
	// Compress enables the chapter preprocessor.
	Compress bool

	// CompressOptions tunes the preprocessor when Compress is set.
	CompressOptions CompressOptions

	// Strict aborts the whole run on the first chapter whose retries
	// exhaust; when false such chapters get a marked placeholder and
	// the run continues.
	Strict bool

	// Retry is the per-chapter invocation retry policy.
	Retry retry.Config
}

// Service drives the summarization of classified chapters: one cache
// lookup and at most one (retried) model call per chapter, strictly in
// order and strictly sequential. Sequencing is intentional — the
// shared inference host has fixed device resources, and serial calls
// also keep store writes trivially race-free.
type Service struct {
	generator Generator
	template  Template
	store     SummaryStore
	opts      Options
}

// NewService creates a Service with its collaborators injected.
func NewService(generator Generator, template Template, store SummaryStore, opts Options) *Service {
	return &Service{
		generator: generator,
		template:  template,
		store:     store,
		opts:      opts,
	}
}

// Run produces one summary per chapter, in the chapters' order. Every
// chapter yields exactly one result entry: a cached summary, a fresh
// one, or (lenient mode) a marked placeholder — positions are never
// silently dropped.
//
// Completed summaries are persisted before the loop advances, so an
// interrupt at any point is safe: a rerun with identical inputs
// resumes at the first chapter without a store hit and issues no model
// calls for chapters already done.
func (s *Service) Run(ctx context.Context, chapters []entity.Chapter) ([]entity.ChapterSummary, error) {
	results := make([]entity.ChapterSummary, 0, len(chapters))
	failed := 0

	for _, ch := range chapters {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run aborted: %w", err)
		}

		ch = s.preprocess(ch)
		key := CacheKey(s.generator.Model(), s.template.Body, ch.Title, ch.ProcessedText)

		cached, ok, err := s.store.Get(key)
		if err != nil {
			// Unreadable entries degrade to a miss; losing a lookup
			// costs one model call, not correctness.
			slog.Warn("store read failed, treating as miss",
				slog.String("title", ch.Title),
				slog.Any("error", err))
		}
		if ok {
			slog.Info("summary served from store",
				slog.String("title", ch.Title))
			results = append(results, entity.ChapterSummary{
				OrderIndex: ch.OrderIndex,
				Title:      ch.Title,
				Summary:    cached,
				FromCache:  true,
			})
			continue
		}

		slog.Info("summarizing chapter",
			slog.String("title", ch.Title),
			slog.Int("words", text.CountWords(ch.ProcessedText)))

		prompt := s.template.Render(ch.Title, ch.ProcessedText)

		var summary string
		err = retry.WithBackoff(ctx, s.opts.Retry, func() error {
			out, genErr := s.generator.Generate(ctx, prompt)
			if genErr != nil {
				return genErr
			}
			summary = out
			return nil
		})

		if err != nil {
			if s.opts.Strict {
				return nil, fmt.Errorf("chapter %q: %w", ch.Title, err)
			}
			// Placeholders are never cached: a later run retries this
			// chapter instead of serving the failure marker.
			slog.Error("chapter failed after retries, recording placeholder",
				slog.String("title", ch.Title),
				slog.Any("error", err))
			failed++
			results = append(results, entity.ChapterSummary{
				OrderIndex: ch.OrderIndex,
				Title:      ch.Title,
				Summary:    fmt.Sprintf("[summary unavailable: %v]", err),
				Failed:     true,
			})
			continue
		}

		// Persist before advancing: this is the restart guarantee.
		if err := s.store.Put(key, summary); err != nil {
			return nil, fmt.Errorf("persist summary for %q: %w", ch.Title, err)
		}

		results = append(results, entity.ChapterSummary{
			OrderIndex: ch.OrderIndex,
			Title:      ch.Title,
			Summary:    summary,
		})
	}

	if failed > 0 {
		slog.Warn("run completed with placeholder summaries",
			slog.Int("failed_chapters", failed),
			slog.Int("total_chapters", len(chapters)))
	}

	return results, nil
}

// preprocess applies the compression transform when enabled. The
// processed text is fixed here, before key derivation, so the cache
// key always reflects exactly the text sent to the model.
func (s *Service) preprocess(ch entity.Chapter) entity.Chapter {
	if !s.opts.Compress {
		return ch
	}
	ch.ProcessedText = Compress(ch.RawText, s.opts.CompressOptions)
	return ch
}
