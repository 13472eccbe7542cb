package domain

import "time"

// MessageType identifies the kind of outbound message sent to clients.
type MessageType string

const (
	// MessageInsight is a user-facing card generated by an agent.
	MessageInsight MessageType = "insight"
	// MessageError reports a failure. Control operations answer with it;
	// fatal connection setup sends one before closing the socket.
	MessageError MessageType = "error"
	// MessageSilentError is telemetry-only; clients must not render it
	// as a card.
	MessageSilentError MessageType = "silent_error"
	// MessageSystem is a control-channel acknowledgement or notice.
	MessageSystem MessageType = "system_message"
	// MessageAgentPrompt carries an agent's prompt template back to the
	// requesting client.
	MessageAgentPrompt MessageType = "agent_prompt"
	// MessageAgentVersions carries the stored version list for an agent.
	MessageAgentVersions MessageType = "agent_versions"
)

// InsightMessage is the wire-level message broadcast to connected
// clients. Content is set for insights, Message for errors and system
// notices. Fire-and-forget: there is no acknowledgement or retry.
type InsightMessage struct {
	Type    MessageType `json:"type"`
	Agent   string      `json:"agent,omitempty"`
	Content string      `json:"content,omitempty"`
	Message string      `json:"message,omitempty"`
	Payload any         `json:"payload,omitempty"`
}

// Segment is one finalized unit of speech-to-text output. Only final
// segments feed the router; interim segments are informational.
type Segment struct {
	Text    string    `json:"text"`
	IsFinal bool      `json:"is_final"`
	At      time.Time `json:"at"`
}
