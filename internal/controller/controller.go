// Package controller runs one form submission end to end: collect, validate,
// predict and render.
//
// A Controller owns exactly one render target. Submissions against it may
// overlap; only the most recently started one is allowed to render.
package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/aanand-mishra/readmission-client/internal/form"
	"github.com/aanand-mishra/readmission-client/internal/render"
	"github.com/aanand-mishra/readmission-client/internal/types"
	"github.com/aanand-mishra/readmission-client/internal/validation"
)

// State is a step in a submission's lifecycle.
type State int

const (
	Idle State = iota
	Collecting
	Validating
	Invalid
	Requesting
	Succeeded
	Failed
	Rendered
)

var stateNames = [...]string{
	Idle:       "idle",
	Collecting: "collecting",
	Validating: "validating",
	Invalid:    "invalid",
	Requesting: "requesting",
	Succeeded:  "succeeded",
	Failed:     "failed",
	Rendered:   "rendered",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Predictor sends a validated feature set to the backend.
// *predictor.Client satisfies it.
type Predictor interface {
	Predict(ctx context.Context, features types.PatientFeatures) types.Result
}

// Outcome describes how a submission ended.
type Outcome struct {
	ID     uuid.UUID
	Errors validation.Errors // set when validation failed
	Result types.Result      // set when a request was sent
	State  State             // Rendered, or the last state reached when Stale
	Stale  bool              // a newer submission started first; nothing rendered
}

// OK reports whether the submission produced a prediction.
func (o Outcome) OK() bool { return o.Result.OK() }

// Controller wires the pipeline stages to a single render target.
type Controller struct {
	collector *form.Collector
	validator *validation.Validator
	predictor Predictor
	renderer  *render.Renderer
	target    render.Target
	log       *slog.Logger

	mu     sync.Mutex
	latest uuid.UUID
	state  State // of the latest submission; Idle once it has rendered
}

// New returns a Controller rendering to target.
func New(
	collector *form.Collector,
	validator *validation.Validator,
	predictor Predictor,
	renderer *render.Renderer,
	target render.Target,
	log *slog.Logger,
) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		collector: collector,
		validator: validator,
		predictor: predictor,
		renderer:  renderer,
		target:    target,
		log:       log,
	}
}

// Submit runs one submission with values read from src. It never returns an
// error: every failure ends up on the target as panel content.
func (c *Controller) Submit(ctx context.Context, src form.Source) Outcome {
	out := Outcome{ID: uuid.New()}
	log := c.log.With(slog.String("submission", out.ID.String()))

	// ── Collecting ───────────────────────────────────────────────────────
	c.mu.Lock()
	c.latest = out.ID
	c.mu.Unlock()
	c.transition(ctx, log, &out, Collecting)

	raw, err := c.collector.Collect(src)
	if err != nil {
		// Decode failures are programmer errors (a converter is missing);
		// the blank form still validates, so keep going.
		log.ErrorContext(ctx, "collect failed", slog.String("error", err.Error()))
	}

	// ── Validating ───────────────────────────────────────────────────────
	c.transition(ctx, log, &out, Validating)

	features, errs := c.validator.Features(raw)
	if len(errs) > 0 {
		out.Errors = errs
		c.transition(ctx, log, &out, Invalid)
		c.render(ctx, log, &out, func(t render.Target) { c.renderer.RenderErrors(t, errs) })
		return out
	}

	// ── Requesting ───────────────────────────────────────────────────────
	c.transition(ctx, log, &out, Requesting)

	out.Result = c.predictor.Predict(ctx, features)
	if out.Result.OK() {
		c.transition(ctx, log, &out, Succeeded)
	} else {
		c.transition(ctx, log, &out, Failed)
		if f := out.Result.Failure; f != nil {
			log.WarnContext(ctx, "prediction failed",
				slog.String("kind", string(f.Kind)),
				slog.String("message", f.Message),
			)
		}
	}

	res := out.Result
	c.render(ctx, log, &out, func(t render.Target) { c.renderer.RenderResult(t, res) })
	return out
}

// render writes to the target unless a newer submission has started.
func (c *Controller) render(ctx context.Context, log *slog.Logger, out *Outcome, draw func(render.Target)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.latest != out.ID {
		out.Stale = true
		log.DebugContext(ctx, "dropping stale submission",
			slog.String("state", out.State.String()),
			slog.String("latest", c.latest.String()),
		)
		return
	}

	draw(c.target)
	log.DebugContext(ctx, "submission rendered", slog.String("from", out.State.String()))

	out.State = Rendered
	c.state = Idle
}

// State reports where the most recent submission is. It is Idle before the
// first submission and again once the latest one has rendered.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) transition(ctx context.Context, log *slog.Logger, out *Outcome, s State) {
	out.State = s

	c.mu.Lock()
	if c.latest == out.ID {
		c.state = s
	}
	c.mu.Unlock()

	log.DebugContext(ctx, "submission state", slog.String("state", s.String()))
}
