package store

import (
	"context"

	"github.com/pranavmanoj1/productivityai/internal/types"
)

// Task windows the assistant may request when fetching a user's tasks.
// Range windows filter by due date; the order windows return everything
// sorted by the named column.
const (
	WindowAll       = "all"
	WindowToday     = "today"
	WindowThisWeek  = "thisWeek"
	WindowThisMonth = "thisMonth"
	WindowPriority  = "priority"
	WindowDueDate   = "dueDate"
	WindowDueTime   = "dueTime"
)

// TaskStore persists and queries the user's task list.
type TaskStore interface {
	// FetchTasks returns the user's tasks filtered or sorted by window.
	// Unknown windows behave like WindowAll.
	FetchTasks(ctx context.Context, userID, window string) ([]types.Task, error)
	// InsertTasks persists a batch in one operation and reports how many
	// rows were written. All-or-nothing: a failure writes no rows.
	InsertTasks(ctx context.Context, tasks []types.Task) (int, error)
}
