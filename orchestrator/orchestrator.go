// Package orchestrator implements the per-request state machine that sits in
// front of every agent.
//
//	Start -> Working -> council path      -> Idle
//	                 -> tool decision path -> Idle
//	any unhandled failure                  -> Error (fixed apology)
//
// Requests naming the orchestrator agent go to the deliberation council.
// Every other agent gets one decision call, at most one tool invocation and,
// when a tool ran, one synthesis call. Process never returns an error: tool
// failures become text for the model, and anything else becomes an apology.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/gashibujar1988-crypto/Robotrna/agent"
	"github.com/gashibujar1988-crypto/Robotrna/broadcast"
	"github.com/gashibujar1988-crypto/Robotrna/internal/tracer"
	"github.com/gashibujar1988-crypto/Robotrna/logging"
	"github.com/gashibujar1988-crypto/Robotrna/router"
)

// Apology is returned to the caller whenever a request fails unexpectedly.
const Apology = "I apologize. My neural link was severed. Please check the backend logs."

// Profiles resolves agent profiles. Lookup must never fail.
type Profiles interface {
	Lookup(name string) agent.Profile
}

// ToolExecutor runs a named tool.
type ToolExecutor interface {
	Execute(ctx context.Context, name, input string) (string, error)
}

// Completer issues one model call.
type Completer interface {
	Complete(ctx context.Context, call router.Call) (string, error)
}

// Deliberator runs the orchestrator agent's council.
type Deliberator interface {
	Deliberate(ctx context.Context, request string) string
}

// Events receives progress logs and agent status changes.
type Events interface {
	BroadcastLog(ctx context.Context, message, level string)
	BroadcastAgentStatus(ctx context.Context, agent string, status broadcast.Status)
}

// Deps are the collaborators of an Orchestrator. All fields are required.
type Deps struct {
	Agents    Profiles
	Tools     ToolExecutor
	Completer Completer
	Council   Deliberator
	Events    Events
}

// Request is one inbound task.
type Request struct {
	Message   string `json:"message"`
	AgentName string `json:"agent_name"`
}

// Response carries the final text.
type Response struct {
	Response string `json:"response"`
}

// Options configures an Orchestrator.
type Options struct {
	// Logger (defaults to NoOpLogger)
	Logger logging.Logger
}

// Orchestrator is safe for concurrent use; each Process call owns its state.
type Orchestrator struct {
	deps Deps
	opts Options
}

// New creates an Orchestrator.
func New(deps Deps, optFns ...func(o *Options)) (*Orchestrator, error) {
	switch {
	case deps.Agents == nil:
		return nil, fmt.Errorf("orchestrator: agents are required")
	case deps.Tools == nil:
		return nil, fmt.Errorf("orchestrator: tools are required")
	case deps.Completer == nil:
		return nil, fmt.Errorf("orchestrator: completer is required")
	case deps.Council == nil:
		return nil, fmt.Errorf("orchestrator: council is required")
	case deps.Events == nil:
		return nil, fmt.Errorf("orchestrator: events are required")
	}

	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{deps: deps, opts: opts}, nil
}

// Process handles one request. An empty agent name selects the orchestrator
// agent.
func (o *Orchestrator) Process(ctx context.Context, req Request) Response {
	name := strings.TrimSpace(req.AgentName)
	if name == "" {
		name = agent.OrchestratorName
	}

	requestID := uuid.NewString()

	ctx, span := tracer.StartSpan(ctx, "orchestrator.process",
		trace.WithAttributes(
			tracer.StringAttr("agent.name", name),
			tracer.StringAttr("request.id", requestID),
		),
	)
	defer span.End()

	o.opts.Logger.Info("orchestrator.request", "request_id", requestID, "agent", name)

	text, err := o.run(ctx, name, req.Message)
	if err != nil {
		o.opts.Logger.Error("orchestrator.failed", "request_id", requestID, "agent", name, "error", err)
		o.log(ctx, name, fmt.Sprintf("CRITICAL CORTEX FAILURE: %v", err), broadcast.LevelError)
		o.deps.Events.BroadcastAgentStatus(ctx, name, broadcast.StatusError)
		tracer.RecordError(span, err)
		return Response{Response: Apology}
	}

	tracer.SetOK(span)
	return Response{Response: text}
}

func (o *Orchestrator) run(ctx context.Context, name, message string) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	o.deps.Events.BroadcastAgentStatus(ctx, name, broadcast.StatusWorking)

	if agent.IsOrchestrator(name) {
		text = o.deps.Council.Deliberate(ctx, message)
	} else {
		text, err = o.decide(ctx, name, message)
		if err != nil {
			return "", err
		}
	}

	o.deps.Events.BroadcastAgentStatus(ctx, name, broadcast.StatusIdle)
	return text, nil
}

// decide runs the single-turn tool decision cycle for a non-orchestrator agent.
func (o *Orchestrator) decide(ctx context.Context, name, task string) (string, error) {
	o.log(ctx, name, "Uploading neural context...", broadcast.LevelInfo)

	profile := o.deps.Agents.Lookup(name)
	o.log(ctx, name, fmt.Sprintf("Role: %s | Active Tools: %s", profile.Role, formatTools(profile.AllowedTools)), broadcast.LevelInfo)

	decision, err := o.deps.Completer.Complete(ctx, router.Call{
		Role:       name,
		Prompt:     BuildDecisionPrompt(profile, task),
		Preference: router.Secondary,
	})
	if err != nil {
		return "", fmt.Errorf("decision call: %w", err)
	}

	response := decision

	if toolName, toolInput, ok := ParseAction(decision); ok {
		o.log(ctx, name, fmt.Sprintf("Executing Tool: %s...", toolName), broadcast.LevelInfo)

		result, err := o.deps.Tools.Execute(ctx, toolName, toolInput)
		level := broadcast.LevelInfo
		if err != nil {
			o.opts.Logger.Warn("orchestrator.tool_failed", "agent", name, "tool", toolName, "error", err)
			result = err.Error()
			level = broadcast.LevelWarn
		}
		o.log(ctx, name, fmt.Sprintf("Tool Output: %s", result), level)

		response, err = o.deps.Completer.Complete(ctx, router.Call{
			Role:       name,
			Prompt:     BuildFinalPrompt(task, result),
			Preference: router.Secondary,
		})
		if err != nil {
			return "", fmt.Errorf("final call: %w", err)
		}
	}

	o.log(ctx, name, "Task Complete.", broadcast.LevelInfo)
	return response, nil
}

func (o *Orchestrator) log(ctx context.Context, name, msg, level string) {
	o.deps.Events.BroadcastLog(ctx, fmt.Sprintf("[%s] -> %s", name, msg), level)
}
