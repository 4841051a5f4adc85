package project

import "encoding/json"

// Role identifies who authored a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part represents a polymorphic segment of a conversation turn. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string `json:"text"`
}

func (TextPart) isPart() {}

// InlineMediaPart carries attached media bytes (uploaded reference images,
// voice samples) inline with a turn.
type InlineMediaPart struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
	Name     string `json:"name,omitempty"`
}

func (InlineMediaPart) isPart() {}

// ToolCall is a structured operation request emitted by the conversational
// model. Continuation is an opaque provider token that must be echoed back
// verbatim on the matching response; this system never inspects it.
type ToolCall struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	Args         json.RawMessage `json:"args,omitempty"`
	Continuation []byte          `json:"continuation,omitempty"`
}

// ToolCallPart wraps a ToolCall as a turn part.
type ToolCallPart struct {
	Call ToolCall `json:"call"`
}

func (ToolCallPart) isPart() {}

// ToolResponse records the outcome of a previously emitted tool call. Every
// tool call requested in turn n must be matched by exactly one response part
// before turn n+1 is sent to the provider.
type ToolResponse struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Response     any    `json:"response,omitempty"`
	Continuation []byte `json:"continuation,omitempty"`
}

// ToolResponsePart wraps a ToolResponse as a turn part.
type ToolResponsePart struct {
	Response ToolResponse `json:"response"`
}

func (ToolResponsePart) isPart() {}

// Turn is one entry of the conversation history: a role plus ordered parts.
type Turn struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewUserTextTurn builds a user turn with a single text part.
func NewUserTextTurn(text string) Turn {
	return Turn{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// ToolCalls returns the tool call parts of the turn preserving order.
func (t Turn) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range t.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc.Call)
		}
	}
	return calls
}

// ToolResponses returns the tool response parts of the turn preserving order.
func (t Turn) ToolResponses() []ToolResponse {
	var responses []ToolResponse
	for _, p := range t.Parts {
		if tr, ok := p.(ToolResponsePart); ok {
			responses = append(responses, tr.Response)
		}
	}
	return responses
}

// Text concatenates the text parts of the turn.
func (t Turn) Text() string {
	var out string
	for _, p := range t.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

// Attachment is an uploaded file handed to the orchestrator alongside a user
// message, typically resuming a pending upload request.
type Attachment struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}
