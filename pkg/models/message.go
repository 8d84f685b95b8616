package models

import "time"

// MessageRole identifies the author of a transcript message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// MessageType distinguishes conversational text from attachments and
// engine status lines.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageStatus MessageType = "status"
)

// Message is one entry in the conversation transcript.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	FileName  string      `json:"file_name,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// PipelineStatus is the single source of truth for run state. Transitions
// are monotonic within one run (idle → parsing → generating → success or
// error); only starting a new run returns it to idle.
type PipelineStatus string

const (
	StatusIdle       PipelineStatus = "idle"
	StatusParsing    PipelineStatus = "parsing"
	StatusGenerating PipelineStatus = "generating"
	StatusSuccess    PipelineStatus = "success"
	StatusError      PipelineStatus = "error"
)

// Valid returns true if the status is a known value.
func (s PipelineStatus) Valid() bool {
	switch s {
	case StatusIdle, StatusParsing, StatusGenerating, StatusSuccess, StatusError:
		return true
	default:
		return false
	}
}

// Terminal returns true once a run has finished, successfully or not.
func (s PipelineStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}
