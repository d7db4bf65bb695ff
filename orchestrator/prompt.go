package orchestrator

import (
	"fmt"
	"strings"

	"github.com/gashibujar1988-crypto/Robotrna/agent"
)

// Markers of the tool decision protocol.
const (
	ActionMarker = "ACTION:"
	InputMarker  = "INPUT:"
)

// BuildDecisionPrompt combines the agent's instructions, its allowed tools and
// the ACTION/INPUT convention with the user task.
func BuildDecisionPrompt(p agent.Profile, task string) string {
	var sb strings.Builder

	sb.WriteString(p.Instructions)
	sb.WriteString("\n\nYOU HAVE ACCESS TO THESE TOOLS: ")
	sb.WriteString(formatTools(p.AllowedTools))
	sb.WriteString("\n\nINSTRUCTIONS:\n")
	sb.WriteString("- If you can answer directly, do so.\n")
	sb.WriteString("- If you need to use a tool, output EXACTLY this format:\n")
	sb.WriteString("  ACTION: tool_name\n")
	sb.WriteString("  INPUT: the input for the tool\n")
	sb.WriteString("\nExample:\n")
	sb.WriteString("ACTION: google_search\n")
	sb.WriteString("INPUT: tesla stock price")
	sb.WriteString("\n\nUSER TASK: ")
	sb.WriteString(task)

	return sb.String()
}

// BuildFinalPrompt asks for a user-facing answer from the task and the tool
// result (or the tool's error text).
func BuildFinalPrompt(task, toolResult string) string {
	return fmt.Sprintf("Original Task: %s\nTool Result: %s\n\nGive a final answer to the user.", task, toolResult)
}

// ParseAction extracts a tool invocation from a decision response.
//
// For each marker the first line containing it wins, and the value is the
// rest of that line after the marker's first occurrence, trimmed. Both values
// must be non-empty. Markers are case-sensitive and may appear anywhere in a
// line, so prose such as "take ACTION: now" still counts.
func ParseAction(text string) (name, input string, ok bool) {
	name, hasName := firstMarkedLine(text, ActionMarker)
	input, hasInput := firstMarkedLine(text, InputMarker)

	if !hasName || !hasInput || name == "" || input == "" {
		return "", "", false
	}
	return name, input, true
}

func firstMarkedLine(text, marker string) (string, bool) {
	for line := range strings.SplitSeq(text, "\n") {
		if _, after, found := strings.Cut(line, marker); found {
			return strings.TrimSpace(after), true
		}
	}
	return "", false
}

func formatTools(tools []string) string {
	return "[" + strings.Join(tools, ", ") + "]"
}
