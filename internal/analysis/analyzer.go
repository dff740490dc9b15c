// Package analysis runs the four CTA analyses. Every task is a serial
// pipeline: build the prompt, call the generation service once, extract the
// structured document, validate it and aggregate statistics. Task entry
// points never return errors or panic; the outcome carries the failure.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/ctalab/ctaeval/internal/extract"
	"github.com/ctalab/ctaeval/internal/llm"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/prompts"
	"github.com/ctalab/ctaeval/internal/session"
	"github.com/ctalab/ctaeval/internal/tokens"
)

// DefaultWorkers bounds batch concurrency when Options.Workers is unset.
const DefaultWorkers = 4

// Options configure an Analyzer.
type Options struct {
	// Settings holds the credential and model. Each task works from the
	// snapshot taken when it starts.
	Settings *llm.Settings

	// NewClient builds the generation client from a snapshot. Defaults to
	// [llm.New].
	NewClient llm.NewFunc

	// Params override the per-task sampling parameters; zero fields keep
	// the defaults.
	Params map[models.TaskKind]prompts.Params

	Effectiveness prompts.EffectivenessOptions

	// Events receives the session event log. Defaults to a no-op logger.
	Events session.Logger

	// Workers bounds batch concurrency.
	Workers int

	// Seed makes the bootstrap interval of batch summaries reproducible.
	Seed int64
}

// Analyzer is safe for concurrent use; tasks share nothing but the settings.
type Analyzer struct {
	settings      *llm.Settings
	newClient     llm.NewFunc
	params        map[models.TaskKind]prompts.Params
	effectiveness prompts.EffectivenessOptions
	events        session.Logger
	workers       int
	seed          int64
}

// New creates an Analyzer. A nil Settings starts from defaults.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		settings:      opts.Settings,
		newClient:     opts.NewClient,
		params:        opts.Params,
		effectiveness: opts.Effectiveness,
		events:        opts.Events,
		workers:       opts.Workers,
		seed:          opts.Seed,
	}
	if a.settings == nil {
		a.settings = llm.NewSettings(llm.Config{})
	}
	if a.newClient == nil {
		a.newClient = llm.New
	}
	if a.events == nil {
		a.events = session.NopLogger{}
	}
	if a.workers <= 0 {
		a.workers = DefaultWorkers
	}
	return a
}

// Settings returns the shared credential and model settings.
func (a *Analyzer) Settings() *llm.Settings { return a.settings }

// stage is what a pipeline reports besides its value.
type stage struct {
	kept    int
	dropped int
	gen     *models.GenerationMeta
}

type pipeline[T any] func(ctx context.Context, cfg llm.Config) (T, stage, error)

// run executes one task and converts everything that goes wrong into the
// failure variant of the outcome, including panics.
func run[T any](ctx context.Context, a *Analyzer, kind models.TaskKind, label string, fn pipeline[T]) (out models.Outcome[T]) {
	start := time.Now()
	cfg := a.settings.Snapshot()
	a.log(session.EventTaskStart, session.TaskStartData(string(kind), label))

	var st stage
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Task panicked", "kind", kind, "panic", r, "stack", string(debug.Stack()))
			out = models.Fail[T](kind, models.Failure{Kind: models.FailureInternal, Message: fmt.Sprint(r)})
		}
		out.StartedAt = start
		out.DurationMs = time.Since(start).Milliseconds()

		status := "ok"
		if out.Failure != nil {
			status = string(out.Failure.Kind)
			a.log(session.EventError, session.ErrorData(out.Failure.Message, map[string]any{"kind": string(kind), "failure": status}))
		}
		a.log(session.EventTaskComplete, session.TaskCompleteData(string(kind), label, status, st.kept, out.DurationMs))
	}()

	v, st, err := fn(ctx, cfg)
	if err != nil {
		out = models.Fail[T](kind, failureFrom(err))
		out.Generation = st.gen
		return out
	}

	out = models.Succeed(kind, v)
	out.Dropped = st.dropped
	out.Generation = st.gen
	return out
}

// generate performs the build-independent part of every task: one call to
// the generation service followed by extraction.
func (a *Analyzer) generate(ctx context.Context, cfg llm.Config, kind models.TaskKind, p prompts.Prompt) (extract.Document, *models.GenerationMeta, error) {
	client, err := a.newClient(cfg)
	if err != nil {
		return extract.Document{}, nil, err
	}
	if s, ok := client.(llm.Shutdowner); ok {
		defer s.Shutdown()
	}

	p = a.applyParams(kind, p)
	slog.Debug("Sending request", "kind", kind, "client", client.Name(),
		"temperature", p.Temperature, "max_tokens", p.MaxTokens,
		"prompt_tokens_est", tokens.Estimate(p.Instruction)+tokens.Estimate(p.Context))
	res, err := client.Generate(ctx, llm.Request{
		Instruction: p.Instruction,
		Context:     p.Context,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		slog.Warn("Generation failed", "kind", kind, "client", client.Name(), "error", err)
		return extract.Document{}, nil, err
	}

	gen := &models.GenerationMeta{
		Provider: res.Provider,
		Model:    res.Model,
		Usage: models.TokenUsage{
			Prompt:     res.Usage.PromptTokens,
			Completion: res.Usage.CompletionTokens,
			Total:      res.Usage.TotalTokens,
		},
		ElapsedSec: res.Elapsed.Seconds(),
	}
	a.log(session.EventGeneration, session.GenerationData(string(kind), res.Provider, res.Model, res.Usage.TotalTokens, res.Elapsed.Milliseconds()))

	doc, err := extract.Extract(res.Text)
	if err != nil {
		a.log(session.EventExtractionFailed, session.ExtractionFailedData(string(kind), res.Text))
		return extract.Document{}, gen, err
	}
	return doc, gen, nil
}

func (a *Analyzer) applyParams(kind models.TaskKind, p prompts.Prompt) prompts.Prompt {
	o, ok := a.params[kind]
	if !ok {
		return p
	}
	if o.Temperature != 0 {
		p.Temperature = o.Temperature
	}
	if o.MaxTokens != 0 {
		p.MaxTokens = o.MaxTokens
	}
	return p
}

func (a *Analyzer) validated(kind models.TaskKind, kept, dropped int) {
	if dropped > 0 {
		slog.Debug("Dropped invalid records", "kind", kind, "dropped", dropped)
	}
	a.log(session.EventValidation, session.ValidationData(string(kind), kept, dropped))
}

func (a *Analyzer) log(t session.EventType, data map[string]any) {
	if err := a.events.Log(session.NewEvent(t, data)); err != nil {
		slog.Warn("failed to write session event", "type", t, "error", err)
	}
}

func inputFailure(format string, args ...any) error {
	return &models.Failure{Kind: models.FailureInput, Message: fmt.Sprintf(format, args...)}
}

// failureFrom maps pipeline errors onto failure kinds.
func failureFrom(err error) models.Failure {
	var (
		failure    *models.Failure
		authErr    *llm.AuthenticationError
		quotaErr   *llm.QuotaError
		extractErr *extract.ExtractionError
	)
	switch {
	case errors.As(err, &failure):
		return *failure
	case errors.As(err, &authErr):
		return models.Failure{Kind: models.FailureConfiguration, Message: err.Error()}
	case errors.As(err, &quotaErr):
		return models.Failure{Kind: models.FailureQuota, Message: err.Error()}
	case llm.IsTransport(err):
		return models.Failure{Kind: models.FailureTransport, Message: err.Error()}
	case errors.As(err, &extractErr):
		return models.Failure{Kind: models.FailureExtraction, Message: err.Error(), RawResponse: extractErr.Raw}
	default:
		// llm.New reports unknown providers as plain errors.
		return models.Failure{Kind: models.FailureConfiguration, Message: err.Error()}
	}
}
