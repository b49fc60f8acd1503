package pipeline

import (
	"context"
	"log/slog"

	"github.com/mati7337/itchy-graphs/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the statistics of the
// round being run.
type Step interface {
	// Do executes the pipeline step. It receives the context for
	// cancellation and the round statistics to update.
	Do(ctx context.Context, round *model.RoundStats) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// StepFunc adapts a function into a named Step.
type StepFunc struct {
	name string
	fn   func(ctx context.Context, round *model.RoundStats) error
}

// NewStep creates a Step from a name and a function.
func NewStep(name string, fn func(ctx context.Context, round *model.RoundStats) error) *StepFunc {
	return &StepFunc{name: name, fn: fn}
}

// Do calls the wrapped function.
func (s *StepFunc) Do(ctx context.Context, round *model.RoundStats) error {
	return s.fn(ctx, round)
}

// Name returns the step name.
func (s *StepFunc) Name() string {
	return s.name
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence for one round and stops at
// the first failing step. Cancellation is checked before each step; a step is responsible for its
// own cancellation once started. Names of completed steps are appended to
// round.Phases.
func (p *Pipeline) Execute(ctx context.Context, round *model.RoundStats) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"round", round.Round,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"round", round.Round,
		)

		if err := step.Do(ctx, round); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"round", round.Round,
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"round", round.Round,
		)
		round.Phases = append(round.Phases, step.Name())
	}

	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
