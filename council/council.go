// Package council implements the deliberation pipeline the orchestrator agent
// runs for every request: four personas, strictly in order, each a single
// stateless model call whose output feeds the next.
//
//	Decompose  (The Architect,   primary)   request            -> plan
//	Gather     (The Researcher,  secondary) plan               -> facts
//	Critique   (The Critic,      secondary) plan + facts       -> critique
//	Synthesize (The Synthesizer, primary)   request+plan+crit. -> synthesis
//
// A failing stage does not stop the pipeline; its error text becomes the
// stage output and is threaded forward like any other text.
package council

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/gashibujar1988-crypto/Robotrna/broadcast"
	"github.com/gashibujar1988-crypto/Robotrna/internal/tracer"
	"github.com/gashibujar1988-crypto/Robotrna/logging"
	"github.com/gashibujar1988-crypto/Robotrna/router"
)

// Completer issues one model call.
type Completer interface {
	Complete(ctx context.Context, call router.Call) (string, error)
}

// Reporter receives the stage announcements.
type Reporter interface {
	BroadcastLog(ctx context.Context, message, level string)
}

// Stage identifies one pipeline step.
type Stage int

const (
	Decompose Stage = iota
	Gather
	Critique
	Synthesize
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case Decompose:
		return "decompose"
	case Gather:
		return "gather"
	case Critique:
		return "critique"
	case Synthesize:
		return "synthesize"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

type stageDef struct {
	stage      Stage
	role       string
	preference router.Preference
	announce   string
}

var stages = [...]stageDef{
	{Decompose, "The Architect", router.Primary, "The Architect is planning..."},
	{Gather, "The Researcher", router.Secondary, "The Researcher is gathering facts..."},
	{Critique, "The Critic", router.Secondary, "The Critic is reviewing..."},
	{Synthesize, "The Synthesizer", router.Primary, "The Synthesizer is merging results..."},
}

// Role returns the persona a stage speaks as.
func (s Stage) Role() string {
	if s < Decompose || s > Synthesize {
		return ""
	}
	return stages[s].role
}

// State holds the outputs of one deliberation. Only Synthesis leaves the
// pipeline; the rest exist for logging and tests.
type State struct {
	Plan      string
	Facts     string
	Critique  string
	Synthesis string
}

// Options configures a Council.
type Options struct {
	// Name prefixes the stage announcements (default "High_Council").
	Name string
	// Logger (defaults to NoOpLogger)
	Logger logging.Logger
}

// Council runs the deliberation pipeline. It keeps no per-request state and
// is safe for concurrent use.
type Council struct {
	completer Completer
	reporter  Reporter
	opts      Options
}

// New creates a Council. A nil reporter disables announcements.
func New(completer Completer, reporter Reporter, optFns ...func(o *Options)) *Council {
	opts := Options{
		Name:   "High_Council",
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Council{
		completer: completer,
		reporter:  reporter,
		opts:      opts,
	}
}

// Deliberate runs the pipeline and returns the synthesis.
func (c *Council) Deliberate(ctx context.Context, request string) string {
	return c.Run(ctx, request).Synthesis
}

// Run runs all four stages in order and returns every stage output.
func (c *Council) Run(ctx context.Context, request string) State {
	ctx, span := tracer.StartSpan(ctx, "council.deliberate")
	defer span.End()

	var st State

	st.Plan = c.runStage(ctx, stages[Decompose],
		fmt.Sprintf("Analyze this request: '%s'. Break it down into 3 clear steps for the Hive Mind.", request))

	st.Facts = c.runStage(ctx, stages[Gather],
		fmt.Sprintf("Based on this plan: %s\n\nIdentify what KEY FACTS we need to answer this.", st.Plan))

	st.Critique = c.runStage(ctx, stages[Critique],
		fmt.Sprintf("Review this plan and these facts: %s + %s. Are we missing anything critical? Be brief.", st.Plan, st.Facts))

	st.Synthesis = c.runStage(ctx, stages[Synthesize],
		fmt.Sprintf("Synthesize everything into a final instruction for the Agents:\nRequest: %s\nPlan: %s\nCritique: %s", request, st.Plan, st.Critique))

	tracer.SetOK(span)
	return st
}

func (c *Council) runStage(ctx context.Context, def stageDef, prompt string) string {
	if c.reporter != nil {
		c.reporter.BroadcastLog(ctx, fmt.Sprintf("[%s] -> %s: %s", c.opts.Name, def.stage, def.announce), broadcast.LevelInfo)
	}

	ctx, span := tracer.StartSpan(ctx, "council.stage",
		trace.WithAttributes(
			tracer.StringAttr("council.stage", def.stage.String()),
			tracer.StringAttr("council.role", def.role),
		),
	)
	defer span.End()

	out, err := c.completer.Complete(ctx, router.Call{
		Role:       def.role,
		Prompt:     prompt,
		Preference: def.preference,
	})
	if err != nil {
		tracer.RecordError(span, err)
		c.opts.Logger.Warn("council.stage_failed", "stage", def.stage.String(), "error", err)
		return fmt.Sprintf("%s error: %v", def.role, err)
	}

	c.opts.Logger.Debug("council.stage_done", "stage", def.stage.String(), "chars", len(out))
	tracer.SetOK(span)
	return out
}
