package types

import "time"

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation transcript. Messages are
// append-only: once created they are never mutated or deleted.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Task mirrors a row of the tasks table. The same shape is used for tasks
// the assistant proposes from conversation; proposed tasks always carry
// Completed=false until the user approves and they are persisted.
type Task struct {
	Title     string `json:"title"`
	DueDate   string `json:"due_date,omitempty"`
	DueTime   string `json:"due_time,omitempty"`
	Priority  string `json:"priority"`
	UserID    string `json:"user_id,omitempty"`
	Completed bool   `json:"completed"`
}

// AIResponse is the structured reply of POST /api/ai-response.
//
// TasksFetched distinguishes "not requested" from "requested, none found":
// nil means the assistant did not consult the task store; a non-nil empty
// slice means it did and the query matched nothing. The omitempty tag
// preserves that distinction on the wire.
type AIResponse struct {
	FreeformAnswer string `json:"freeform_answer"`
	TasksFetched   []Task `json:"tasks_fetched,omitempty"`
	ProposedTasks  []Task `json:"proposed_tasks,omitempty"`
	// CheckInDelay is milliseconds until the assistant should check in; 0 means none requested.
	CheckInDelay int64 `json:"check_in_delay,omitempty"`
}

// ConfirmResult is the reply of POST /api/confirm-tasks. TTSAudio, when
// present, is a base64 MP3 confirmation clip synthesized server-side.
type ConfirmResult struct {
	Success       bool   `json:"success"`
	TasksInserted int    `json:"tasks_inserted"`
	TTSAudio      string `json:"tts_audio,omitempty"`
}
