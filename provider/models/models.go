package models

import "encoding/json"

// Roles in a conversation
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Stop reasons reported with a model response
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// Content block types
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// ContentBlock is one element of a message body. Type selects which fields
// are meaningful: text blocks carry Text; tool_use blocks carry ID, Name and
// Input; tool_result blocks carry ToolUseID and Content.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

// Message represents a single turn in a conversation
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Tool describes one entry of the tool catalog offered to the model
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// Request is a single call to the language-model service
type Request struct {
	Messages    []Message
	Tools       []Tool
	System      string
	MaxTokens   int
	Temperature float64
}

// Response is the model's reply: a stop reason plus ordered content blocks.
// Synthetic fallback responses use the same shape, so callers never
// special-case real versus fabricated replies.
type Response struct {
	StopReason string         `json:"stop_reason"`
	Content    []ContentBlock `json:"content"`
}

// FirstText returns the text of the first text block, or "" when there is none.
func (r Response) FirstText() string {
	for _, block := range r.Content {
		if block.Type == BlockText {
			return block.Text
		}
	}
	return ""
}

// TextMessage builds a single-turn message carrying plain text.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{TextBlock(text)}}
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ToolResultBlock builds a tool_result block echoing the tool_use id it answers.
func ToolResultBlock(toolUseID, content string) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, Content: content}
}

// TextResponse fabricates a terminal response carrying a single text block.
func TextResponse(text string) Response {
	return Response{StopReason: StopEndTurn, Content: []ContentBlock{TextBlock(text)}}
}
