package store

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/pranavmanoj1/productivityai/internal/types"
)

// SupabaseStore persists tasks in the Supabase `tasks` table through the
// PostgREST query builder, using the service-role key so row-level security
// does not apply; callers are responsible for scoping queries by user id.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

// NewSupabaseStore connects to the project at baseURL with the service role key.
func NewSupabaseStore(baseURL, serviceKey string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(baseURL, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("store: create supabase client: %w", err)
	}
	return &SupabaseStore{client: client, table: "tasks"}, nil
}

func (s *SupabaseStore) FetchTasks(ctx context.Context, userID, window string) ([]types.Task, error) {
	if userID == "" {
		return nil, fmt.Errorf("store: user id required")
	}

	q := s.client.From(s.table).Select("*", "", false).Eq("user_id", userID)
	now := time.Now()
	switch window {
	case WindowToday:
		q = q.Eq("due_date", now.Format("2006-01-02"))
	case WindowThisWeek:
		q = q.Gte("due_date", now.Format("2006-01-02")).
			Lte("due_date", now.AddDate(0, 0, 7).Format("2006-01-02"))
	case WindowThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		last := first.AddDate(0, 1, -1)
		q = q.Gte("due_date", first.Format("2006-01-02")).
			Lte("due_date", last.Format("2006-01-02"))
	case WindowPriority:
		q = q.Order("priority", &postgrest.OrderOpts{Ascending: false})
	case WindowDueDate:
		q = q.Order("due_date", &postgrest.OrderOpts{Ascending: true})
	case WindowDueTime:
		q = q.Order("due_time", &postgrest.OrderOpts{Ascending: true})
	}

	var tasks []types.Task
	if _, err := q.ExecuteTo(&tasks); err != nil {
		return nil, fmt.Errorf("store: fetch tasks: %w", err)
	}
	if tasks == nil {
		tasks = []types.Task{}
	}
	return tasks, nil
}

func (s *SupabaseStore) InsertTasks(ctx context.Context, tasks []types.Task) (int, error) {
	if len(tasks) == 0 {
		return 0, nil
	}
	for _, t := range tasks {
		if t.Title == "" || t.UserID == "" {
			return 0, fmt.Errorf("store: task missing title or user id")
		}
	}
	var inserted []types.Task
	if _, err := s.client.From(s.table).Insert(tasks, false, "", "representation", "").ExecuteTo(&inserted); err != nil {
		return 0, fmt.Errorf("store: insert tasks: %w", err)
	}
	return len(inserted), nil
}
