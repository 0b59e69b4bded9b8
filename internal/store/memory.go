package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pranavmanoj1/productivityai/internal/types"
)

// MemoryStore keeps tasks in memory; thread-safe. It backs tests and
// unconfigured development runs where no Supabase project is available.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks []types.Task
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) FetchTasks(ctx context.Context, userID, window string) ([]types.Task, error) {
	if userID == "" {
		return nil, fmt.Errorf("store: user id required")
	}
	m.mu.RLock()
	var out []types.Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	m.mu.RUnlock()

	today := m.now().Format("2006-01-02")
	switch window {
	case WindowToday:
		out = filterTasks(out, func(t types.Task) bool { return t.DueDate == today })
	case WindowThisWeek:
		end := m.now().AddDate(0, 0, 7).Format("2006-01-02")
		out = filterTasks(out, func(t types.Task) bool { return t.DueDate >= today && t.DueDate <= end })
	case WindowThisMonth:
		first := m.now().AddDate(0, 0, 1-m.now().Day()).Format("2006-01-02")
		last := m.now().AddDate(0, 1, -m.now().Day()).Format("2006-01-02")
		out = filterTasks(out, func(t types.Task) bool { return t.DueDate >= first && t.DueDate <= last })
	case WindowPriority:
		sort.SliceStable(out, func(i, j int) bool { return priorityRank(out[i].Priority) > priorityRank(out[j].Priority) })
	case WindowDueDate:
		sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate < out[j].DueDate })
	case WindowDueTime:
		sort.SliceStable(out, func(i, j int) bool { return out[i].DueTime < out[j].DueTime })
	}
	if out == nil {
		out = []types.Task{}
	}
	return out, nil
}

func (m *MemoryStore) InsertTasks(ctx context.Context, tasks []types.Task) (int, error) {
	for _, t := range tasks {
		if t.Title == "" || t.UserID == "" {
			return 0, fmt.Errorf("store: task missing title or user id")
		}
	}
	m.mu.Lock()
	m.tasks = append(m.tasks, tasks...)
	m.mu.Unlock()
	return len(tasks), nil
}

func filterTasks(in []types.Task, keep func(types.Task) bool) []types.Task {
	var out []types.Task
	for _, t := range in {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func priorityRank(p string) int {
	switch p {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	}
	return 0
}
