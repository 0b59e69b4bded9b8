package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pranavmanoj1/productivityai/internal/store"
	"github.com/pranavmanoj1/productivityai/internal/types"
)

type scriptedLLM struct {
	reply   string
	err     error
	prompts []string
}

func (l *scriptedLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	return l.reply, l.err
}

func seededStore(t *testing.T, userID string) *store.MemoryStore {
	t.Helper()
	m := store.NewMemoryStore()
	today := time.Now().Format("2006-01-02")
	_, err := m.InsertTasks(context.Background(), []types.Task{
		{Title: "standup notes", DueDate: today, Priority: "medium", UserID: userID},
		{Title: "plan offsite", DueDate: "2099-01-01", Priority: "high", UserID: userID},
		{Title: "someone else's task", DueDate: today, Priority: "low", UserID: "other"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return m
}

func TestRespond_PlainAnswer(t *testing.T) {
	llm := &scriptedLLM{reply: `{"answer":"You're doing great."}`}
	svc := New(llm, store.NewMemoryStore())

	res, err := svc.Respond(context.Background(), "u1", "how am I doing")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if res.FreeformAnswer != "You're doing great." {
		t.Fatalf("unexpected answer %q", res.FreeformAnswer)
	}
	if res.TasksFetched != nil {
		t.Fatalf("fetch ran without being requested: %#v", res.TasksFetched)
	}
	if len(res.ProposedTasks) != 0 || res.CheckInDelay != 0 {
		t.Fatalf("unexpected extras: %+v", res)
	}
	if len(llm.prompts) != 1 || llm.prompts[0] != "how am I doing" {
		t.Fatalf("user message not forwarded: %v", llm.prompts)
	}
}

func TestRespond_FetchTodayFiltersByUserAndDate(t *testing.T) {
	llm := &scriptedLLM{reply: `{"answer":"Here are today's tasks.","fetch_tasks":"today"}`}
	svc := New(llm, seededStore(t, "u1"))

	res, err := svc.Respond(context.Background(), "u1", "what's due today")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if res.TasksFetched == nil {
		t.Fatalf("fetch requested but result absent")
	}
	if len(res.TasksFetched) != 1 || res.TasksFetched[0].Title != "standup notes" {
		t.Fatalf("unexpected fetch result: %v", res.TasksFetched)
	}
}

func TestRespond_FetchWithNoMatchesIsPresentAndEmpty(t *testing.T) {
	llm := &scriptedLLM{reply: `{"answer":"Nothing there.","fetch_tasks":"today"}`}
	svc := New(llm, store.NewMemoryStore())

	res, err := svc.Respond(context.Background(), "u1", "what's due today")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if res.TasksFetched == nil || len(res.TasksFetched) != 0 {
		t.Fatalf("expected present-but-empty fetch, got %#v", res.TasksFetched)
	}
}

type failingStore struct{}

func (failingStore) FetchTasks(ctx context.Context, userID, window string) ([]types.Task, error) {
	return nil, errors.New("store down")
}

func (failingStore) InsertTasks(ctx context.Context, tasks []types.Task) (int, error) {
	return 0, errors.New("store down")
}

func TestRespond_StoreOutageKeepsAnswer(t *testing.T) {
	llm := &scriptedLLM{reply: `{"answer":"Let me look.","fetch_tasks":"all"}`}
	svc := New(llm, failingStore{})

	res, err := svc.Respond(context.Background(), "u1", "list everything")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if res.FreeformAnswer != "Let me look." {
		t.Fatalf("answer lost on store outage: %q", res.FreeformAnswer)
	}
	if res.TasksFetched != nil {
		t.Fatalf("failed fetch must stay absent, got %#v", res.TasksFetched)
	}
}

func TestRespond_ProposedTasksGetOwnerAndDefaults(t *testing.T) {
	llm := &scriptedLLM{reply: `{"answer":"Noted.","proposed_tasks":[{"title":"buy milk","due_date":"2026-09-01"},{"title":"  "},{"title":"file taxes","priority":"high"}]}`}
	svc := New(llm, store.NewMemoryStore())

	res, err := svc.Respond(context.Background(), "u1", "I need to buy milk and file taxes")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if len(res.ProposedTasks) != 2 {
		t.Fatalf("expected blank titles dropped, got %v", res.ProposedTasks)
	}
	first := res.ProposedTasks[0]
	if first.UserID != "u1" || first.Priority != "medium" || first.Completed {
		t.Fatalf("defaults not applied: %+v", first)
	}
	if res.ProposedTasks[1].Priority != "high" {
		t.Fatalf("explicit priority overwritten: %+v", res.ProposedTasks[1])
	}
}

func TestRespond_CheckInDelayPassedThrough(t *testing.T) {
	llm := &scriptedLLM{reply: `{"answer":"Will do.","check_in_delay_ms":300000}`}
	svc := New(llm, store.NewMemoryStore())

	res, err := svc.Respond(context.Background(), "u1", "check in after five minutes")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if res.CheckInDelay != 300000 {
		t.Fatalf("unexpected delay %d", res.CheckInDelay)
	}
}

func TestRespond_ToleratesCodeFences(t *testing.T) {
	llm := &scriptedLLM{reply: "```json\n{\"answer\":\"Fenced but fine.\"}\n```"}
	svc := New(llm, store.NewMemoryStore())

	res, err := svc.Respond(context.Background(), "u1", "hi")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if res.FreeformAnswer != "Fenced but fine." {
		t.Fatalf("unexpected answer %q", res.FreeformAnswer)
	}
}

func TestRespond_RejectsReplyWithoutAnswer(t *testing.T) {
	llm := &scriptedLLM{reply: `{"fetch_tasks":"today"}`}
	svc := New(llm, store.NewMemoryStore())

	if _, err := svc.Respond(context.Background(), "u1", "hi"); err == nil {
		t.Fatalf("expected error on missing answer")
	}
}

func TestRespond_ModelFailure(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("timeout")}
	svc := New(llm, store.NewMemoryStore())

	if _, err := svc.Respond(context.Background(), "u1", "hi"); err == nil {
		t.Fatalf("expected error on model failure")
	}
}

func TestConfirm_StampsOwnerAndInserts(t *testing.T) {
	m := store.NewMemoryStore()
	svc := New(&scriptedLLM{}, m)

	n, err := svc.Confirm(context.Background(), "u1", []types.Task{
		{Title: "send invoice", Priority: "high", Completed: true},
		{Title: "water plants", Priority: "low"},
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 inserted, got %d", n)
	}
	got, err := m.FetchTasks(context.Background(), "u1", store.WindowAll)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 stored tasks, got %v", got)
	}
	for _, task := range got {
		if task.UserID != "u1" || task.Completed {
			t.Fatalf("owner or completed flag not normalized: %+v", task)
		}
	}
}

func TestConfirm_EmptyBatchRejected(t *testing.T) {
	svc := New(&scriptedLLM{}, store.NewMemoryStore())
	if _, err := svc.Confirm(context.Background(), "u1", nil); err == nil {
		t.Fatalf("expected error on empty batch")
	}
}
