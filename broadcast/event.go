package broadcast

// Status is an agent's point-in-time state as shown to observers.
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusWorking Status = "WORKING"
	StatusError   Status = "ERROR"
	// StatusSuccess is reserved for callers; the orchestrator never emits it.
	StatusSuccess Status = "SUCCESS"
)

// Log levels carried by LogEvent.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Event type tags on the wire.
const (
	TypeLog         = "log"
	TypeAgentStatus = "agent_status"
)

// LogEvent is a progress line for the dashboard console.
type LogEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

// NewLogEvent builds a LogEvent. An empty level becomes INFO.
func NewLogEvent(message, level string) LogEvent {
	if level == "" {
		level = LevelInfo
	}
	return LogEvent{Type: TypeLog, Message: message, Level: level}
}

// AgentStatusEvent updates the state of one agent card.
type AgentStatusEvent struct {
	Type   string `json:"type"`
	Agent  string `json:"agent"`
	Status Status `json:"status"`
}

// NewAgentStatusEvent builds an AgentStatusEvent.
func NewAgentStatusEvent(agent string, status Status) AgentStatusEvent {
	return AgentStatusEvent{Type: TypeAgentStatus, Agent: agent, Status: status}
}
