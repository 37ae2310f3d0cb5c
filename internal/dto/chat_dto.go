package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title" validate:"omitempty,max=200"`
}

type CreateSessionResponse struct {
	Id       uuid.UUID `json:"id"`
	ThreadId string    `json:"thread_id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	ThreadId  string     `json:"thread_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id          uuid.UUID       `json:"id"`
	Role        string          `json:"role"`
	Chat        string          `json:"chat"`
	MessageType string          `json:"message_type"`
	ExtraData   json.RawMessage `json:"extra_data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StreamChatRequest starts or continues an agent run over SSE.
type StreamChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Chat          string    `json:"chat" validate:"required"`
	// CvText optionally attaches an uploaded CV to this turn.
	CvText string `json:"cv_text,omitempty"`
}

// ChatResponse is the collected outcome of a synchronous turn, for
// clients that do not consume SSE.
type ChatResponse struct {
	State        string      `json:"state"`
	Content      string      `json:"content,omitempty"`
	Data         interface{} `json:"data,omitempty"`
	PendingTools []string    `json:"pending_tools,omitempty"`
	Label        string      `json:"label,omitempty"`
}

// ConfirmRequest answers a pending tool approval.
type ConfirmRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Approved      bool      `json:"approved"`
	Note          string    `json:"note,omitempty" validate:"max=500"`
}

// GetDetailsRequest asks for deep details on selected job URLs.
type GetDetailsRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	URLs          []string  `json:"urls" validate:"required,min=1,max=5,dive,url"`
}

// SessionStatusResponse reports whether a session waits on approval.
type SessionStatusResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Suspended     bool      `json:"suspended"`
	PendingTools  []string  `json:"pending_tools,omitempty"`
	Label         string    `json:"label,omitempty"`
}
