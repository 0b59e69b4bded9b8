// Package assistant implements the backend side of /api/ai-response: it
// prompts the language model for a structured reply, runs any task-store
// lookup the model requested, and assembles the response the conversational
// client consumes.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pranavmanoj1/productivityai/internal/store"
	"github.com/pranavmanoj1/productivityai/internal/types"
)

// LLM generates one assistant reply for a system+user prompt pair.
type LLM interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

const systemPrompt = `You are a friendly productivity assistant on a voice call. Reply with a single JSON object and nothing else, using these fields:
- "answer": what you say to the user (plain conversational text, required)
- "fetch_tasks": include ONLY when the user asks to see or hear their tasks; one of "today", "thisWeek", "thisMonth", "priority", "dueDate", "dueTime", "all"
- "proposed_tasks": include ONLY when the user describes new things to do; an array of {"title", "due_date" (YYYY-MM-DD, optional), "due_time" (HH:MM, optional), "priority" ("high"|"medium"|"low")}
- "check_in_delay_ms": include ONLY when the user asks you to check in after some time; the delay in milliseconds
Today's date is %s. Keep answers short enough to speak aloud.`

// modelReply is the JSON shape elicited from the model.
type modelReply struct {
	Answer        string       `json:"answer"`
	FetchTasks    string       `json:"fetch_tasks"`
	ProposedTasks []types.Task `json:"proposed_tasks"`
	CheckInDelay  int64        `json:"check_in_delay_ms"`
}

// Service orchestrates one exchange: model call, optional store lookup,
// response assembly.
type Service struct {
	llm   LLM
	tasks store.TaskStore
}

func New(llm LLM, tasks store.TaskStore) *Service {
	return &Service{llm: llm, tasks: tasks}
}

// Respond produces the structured reply for one user message.
func (s *Service) Respond(ctx context.Context, userID, message string) (*types.AIResponse, error) {
	system := fmt.Sprintf(systemPrompt, time.Now().Format("2006-01-02"))
	raw, err := s.llm.Generate(ctx, system, message)
	if err != nil {
		return nil, fmt.Errorf("assistant: model call failed: %w", err)
	}

	reply, err := parseModelReply(raw)
	if err != nil {
		return nil, fmt.Errorf("assistant: %w", err)
	}

	out := &types.AIResponse{
		FreeformAnswer: reply.Answer,
		CheckInDelay:   reply.CheckInDelay,
	}

	if reply.FetchTasks != "" {
		fetched, ferr := s.tasks.FetchTasks(ctx, userID, reply.FetchTasks)
		if ferr != nil {
			// The conversation survives a store outage; the answer still goes out.
			log.Printf("assistant: task fetch failed: %v", ferr)
		} else {
			out.TasksFetched = fetched
		}
	}

	for _, t := range reply.ProposedTasks {
		if strings.TrimSpace(t.Title) == "" {
			continue
		}
		t.UserID = userID
		t.Completed = false
		if t.Priority == "" {
			t.Priority = "medium"
		}
		out.ProposedTasks = append(out.ProposedTasks, t)
	}
	return out, nil
}

// Confirm persists an approved proposal batch for the user in one write.
func (s *Service) Confirm(ctx context.Context, userID string, tasks []types.Task) (int, error) {
	if len(tasks) == 0 {
		return 0, fmt.Errorf("assistant: empty confirmation batch")
	}
	batch := make([]types.Task, len(tasks))
	for i, t := range tasks {
		t.UserID = userID
		t.Completed = false
		batch[i] = t
	}
	n, err := s.tasks.InsertTasks(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("assistant: confirm tasks: %w", err)
	}
	return n, nil
}

// parseModelReply decodes the model's JSON, tolerating markdown code fences
// some models wrap around object output.
func parseModelReply(raw string) (*modelReply, error) {
	txt := strings.TrimSpace(raw)
	if strings.HasPrefix(txt, "```") {
		txt = strings.TrimPrefix(txt, "```json")
		txt = strings.TrimPrefix(txt, "```")
		txt = strings.TrimSuffix(strings.TrimSpace(txt), "```")
		txt = strings.TrimSpace(txt)
	}
	var reply modelReply
	if err := json.Unmarshal([]byte(txt), &reply); err != nil {
		return nil, fmt.Errorf("malformed model reply: %v", err)
	}
	if strings.TrimSpace(reply.Answer) == "" {
		return nil, fmt.Errorf("model reply missing answer")
	}
	return &reply, nil
}
