package store

import (
	"context"
	"testing"
	"time"

	"github.com/pranavmanoj1/productivityai/internal/types"
)

// fixedStore pins the clock to a mid-month Wednesday so the date windows
// are deterministic.
func fixedStore(t *testing.T) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	m.now = func() time.Time { return time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC) }
	_, err := m.InsertTasks(context.Background(), []types.Task{
		{Title: "due today", DueDate: "2026-08-12", DueTime: "14:00", Priority: "low", UserID: "u1"},
		{Title: "due in three days", DueDate: "2026-08-15", DueTime: "09:00", Priority: "high", UserID: "u1"},
		{Title: "due next month", DueDate: "2026-09-02", DueTime: "12:00", Priority: "medium", UserID: "u1"},
		{Title: "last day of month", DueDate: "2026-08-31", Priority: "medium", UserID: "u1"},
		{Title: "other user's", DueDate: "2026-08-12", Priority: "high", UserID: "u2"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return m
}

func titles(tasks []types.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestFetchTasks_RequiresUserID(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.FetchTasks(context.Background(), "", WindowAll); err == nil {
		t.Fatalf("expected error without user id")
	}
}

func TestFetchTasks_ScopedToUser(t *testing.T) {
	m := fixedStore(t)
	got, err := m.FetchTasks(context.Background(), "u1", WindowAll)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 tasks for u1, got %v", titles(got))
	}
	for _, task := range got {
		if task.UserID != "u1" {
			t.Fatalf("leaked another user's task: %+v", task)
		}
	}
}

func TestFetchTasks_Windows(t *testing.T) {
	m := fixedStore(t)
	tests := []struct {
		window string
		want   []string
	}{
		{WindowToday, []string{"due today"}},
		{WindowThisWeek, []string{"due today", "due in three days"}},
		{WindowThisMonth, []string{"due today", "due in three days", "last day of month"}},
		{WindowDueDate, []string{"due today", "due in three days", "last day of month", "due next month"}},
	}
	for _, tt := range tests {
		t.Run(tt.window, func(t *testing.T) {
			got, err := m.FetchTasks(context.Background(), "u1", tt.window)
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			names := titles(got)
			if len(names) != len(tt.want) {
				t.Fatalf("want %v, got %v", tt.want, names)
			}
			for i := range tt.want {
				if names[i] != tt.want[i] {
					t.Fatalf("want %v, got %v", tt.want, names)
				}
			}
		})
	}
}

func TestFetchTasks_PriorityOrdersHighFirst(t *testing.T) {
	m := fixedStore(t)
	got, err := m.FetchTasks(context.Background(), "u1", WindowPriority)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	names := titles(got)
	if names[0] != "due in three days" {
		t.Fatalf("expected the high-priority task first, got %v", names)
	}
	if got[len(got)-1].Priority != "low" {
		t.Fatalf("expected low priority last, got %v", names)
	}
}

func TestFetchTasks_DueTimeOrdering(t *testing.T) {
	m := fixedStore(t)
	got, err := m.FetchTasks(context.Background(), "u1", WindowDueTime)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// Tasks without a due time sort first on the empty string.
	names := titles(got)
	if names[0] != "last day of month" || names[1] != "due in three days" {
		t.Fatalf("unexpected due-time order: %v", names)
	}
}

func TestFetchTasks_NoMatchesReturnsEmptyNotNil(t *testing.T) {
	m := fixedStore(t)
	got, err := m.FetchTasks(context.Background(), "nobody", WindowAll)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected non-nil empty slice, got %#v", got)
	}
}

func TestInsertTasks_ValidatesBatch(t *testing.T) {
	m := NewMemoryStore()
	_, err := m.InsertTasks(context.Background(), []types.Task{
		{Title: "good", UserID: "u1"},
		{Title: "", UserID: "u1"},
	})
	if err == nil {
		t.Fatalf("expected error on missing title")
	}
	got, err := m.FetchTasks(context.Background(), "u1", WindowAll)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("partial batch written: %v", titles(got))
	}
}
