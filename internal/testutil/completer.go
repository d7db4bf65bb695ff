package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gashibujar1988-crypto/Robotrna/router"
)

type rule struct {
	role     string
	contains string
	text     string
	err      error
	panicMsg string
}

func (r rule) matches(call router.Call) bool {
	if r.role != "" && r.role != call.Role {
		return false
	}
	if r.contains != "" && !strings.Contains(call.Prompt, r.contains) {
		return false
	}
	return true
}

// ScriptedCompleter answers router calls from a list of rules, first match
// wins. Calls matching no rule get "<role> says: ok".
// Example:
//
//	c := NewScriptedCompleter().
//		OnRole("The Architect", "1. plan").
//		FailPrompt("USER TASK", errors.New("both backends down"))
type ScriptedCompleter struct {
	mu    sync.Mutex
	rules []rule
	calls []router.Call
}

// NewScriptedCompleter creates a completer with no rules.
func NewScriptedCompleter() *ScriptedCompleter { return &ScriptedCompleter{} }

// OnRole answers calls with the given role (chainable).
func (s *ScriptedCompleter) OnRole(role, text string) *ScriptedCompleter {
	return s.add(rule{role: role, text: text})
}

// OnPrompt answers calls whose prompt contains substr (chainable).
func (s *ScriptedCompleter) OnPrompt(substr, text string) *ScriptedCompleter {
	return s.add(rule{contains: substr, text: text})
}

// FailRole fails calls with the given role (chainable).
func (s *ScriptedCompleter) FailRole(role string, err error) *ScriptedCompleter {
	return s.add(rule{role: role, err: err})
}

// FailPrompt fails calls whose prompt contains substr (chainable).
func (s *ScriptedCompleter) FailPrompt(substr string, err error) *ScriptedCompleter {
	return s.add(rule{contains: substr, err: err})
}

// PanicPrompt panics on calls whose prompt contains substr (chainable).
func (s *ScriptedCompleter) PanicPrompt(substr, msg string) *ScriptedCompleter {
	return s.add(rule{contains: substr, panicMsg: msg})
}

func (s *ScriptedCompleter) add(r rule) *ScriptedCompleter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, r)
	return s
}

// Complete implements the orchestrator and council completer contract.
func (s *ScriptedCompleter) Complete(ctx context.Context, call router.Call) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	rules := s.rules
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	for _, r := range rules {
		if !r.matches(call) {
			continue
		}
		if r.panicMsg != "" {
			panic(r.panicMsg)
		}
		return r.text, r.err
	}

	return fmt.Sprintf("%s says: ok", call.Role), nil
}

// Calls returns the calls received so far.
func (s *ScriptedCompleter) Calls() []router.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]router.Call, len(s.calls))
	copy(out, s.calls)
	return out
}
