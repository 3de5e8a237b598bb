// Package stream decodes the newline-delimited JSON event stream emitted by a
// spawned agent process. Events are decoded once at the stream boundary into a
// closed set of variants; anything unrecognized becomes an UnknownEvent and
// malformed lines are reported as undecodable so callers can drop them.
package stream

import (
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Event type discriminators on the wire.
const (
	TypeMessageEnd    = "message_end"
	TypeToolResultEnd = "tool_result_end"
)

// Content part kinds inside a message.
const (
	PartText     = "text"
	PartToolCall = "toolCall"
)

// RoleAssistant marks messages that count as assistant turns.
const RoleAssistant = "assistant"

// Cost carries the reported spend for one message.
type Cost struct {
	Total decimal.Decimal `json:"total"`
}

// Usage is the per-message token/cost delta reported by the agent process.
type Usage struct {
	Input      int64 `json:"input"`
	Output     int64 `json:"output"`
	CacheRead  int64 `json:"cacheRead"`
	CacheWrite int64 `json:"cacheWrite"`
	Cost       Cost  `json:"cost"`
}

// ContentPart is one element of a message's content array.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Name string `json:"name,omitempty"`
}

// Message is the message object carried by message_end and tool_result_end
// events.
type Message struct {
	Role         string        `json:"role"`
	Content      []ContentPart `json:"content"`
	Usage        *Usage        `json:"usage,omitempty"`
	StopReason   string        `json:"stopReason,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// LastText returns the text of the last text part in the message, or "".
func (m Message) LastText() string {
	for i := len(m.Content) - 1; i >= 0; i-- {
		if m.Content[i].Type == PartText {
			return m.Content[i].Text
		}
	}
	return ""
}

// Event is the closed set of decoded stream events.
type Event interface {
	eventType() string
}

// MessageEndEvent signals a completed message.
type MessageEndEvent struct {
	Message Message
}

func (MessageEndEvent) eventType() string { return TypeMessageEnd }

// ToolResultEvent signals a completed tool result. It is recorded for
// transcript purposes only and never alters usage or turn counts.
type ToolResultEvent struct {
	Message Message
}

func (ToolResultEvent) eventType() string { return TypeToolResultEnd }

// UnknownEvent is the fallback variant for any other type discriminator.
type UnknownEvent struct {
	Type string
}

func (UnknownEvent) eventType() string { return "unknown" }

// envelope is the single-unmarshal wire shape shared by all event kinds.
type envelope struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message,omitempty"`
}

// DecodeEvent parses one complete line. ok is false when the line is not a
// JSON object with a type discriminator; such lines are expected noise in a
// chunked stream and callers discard them silently.
func DecodeEvent(line []byte) (Event, bool) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, false
	}
	if env.Type == "" {
		return nil, false
	}

	switch env.Type {
	case TypeMessageEnd:
		var msg Message
		if len(env.Message) > 0 {
			if err := json.Unmarshal(env.Message, &msg); err != nil {
				return nil, false
			}
		}
		return MessageEndEvent{Message: msg}, true
	case TypeToolResultEnd:
		var msg Message
		if len(env.Message) > 0 {
			if err := json.Unmarshal(env.Message, &msg); err != nil {
				return nil, false
			}
		}
		return ToolResultEvent{Message: msg}, true
	default:
		return UnknownEvent{Type: env.Type}, true
	}
}

// TruncateBytes renders a byte slice preview capped at maxLen.
func TruncateBytes(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	if maxLen < 0 {
		return ""
	}
	return string(b[:maxLen]) + "..."
}
