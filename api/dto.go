package api

import (
	"encoding/json"
	"time"

	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/entity"
)

// optional tells an absent JSON field apart from an explicit null.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// ptr returns the value when it was sent and not null.
func (o optional[T]) ptr() *T {
	if !o.Set {
		return nil
	}
	return o.Value
}

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    int        `json:"priority"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTaskResponse(t *core.Task) *taskResponse {
	if t == nil {
		return nil
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return &taskResponse{
		ID:          t.Id,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    int(t.Priority),
		Category:    t.Category,
		Tags:        tags,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []*core.Task) []*taskResponse {
	out := make([]*taskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	return out
}

// toTask converts a task sent by a client, as in a prioritize request.
func (t *taskResponse) toTask() *core.Task {
	return &core.Task{
		Id:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    core.Priority(t.Priority),
		Category:    t.Category,
		Tags:        t.Tags,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    int        `json:"priority"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
}

func (req *createTaskRequest) input() entity.TaskInput {
	return entity.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    core.Priority(req.Priority),
		Category:    req.Category,
		Tags:        req.Tags,
	}
}

// updateTaskRequest leaves absent fields unchanged. A null due_date clears
// the due date; other nulls are ignored.
type updateTaskRequest struct {
	Title       optional[string]    `json:"title"`
	Description optional[string]    `json:"description"`
	DueDate     optional[time.Time] `json:"due_date"`
	Priority    optional[int]       `json:"priority"`
	Category    optional[string]    `json:"category"`
	Tags        optional[[]string]  `json:"tags"`
	Completed   optional[bool]      `json:"completed"`
}

func (req *updateTaskRequest) patch() entity.TaskPatch {
	p := entity.TaskPatch{
		Title:       req.Title.ptr(),
		Description: req.Description.ptr(),
		Category:    req.Category.ptr(),
		Completed:   req.Completed.ptr(),
	}
	if req.DueDate.Set {
		p.DueDate = req.DueDate.Value
		p.ClearDueDate = req.DueDate.Value == nil
	}
	if v := req.Priority.ptr(); v != nil {
		prio := core.Priority(*v)
		p.Priority = &prio
	}
	if v := req.Tags.ptr(); v != nil {
		p.Tags = *v
		if p.Tags == nil {
			p.Tags = []string{}
		}
	}
	return p
}

type noteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toNoteResponse(n *core.Note) *noteResponse {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return &noteResponse{
		ID:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		Summary:   n.Summary,
		Category:  n.Category,
		Tags:      tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

type createNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

type updateNoteRequest struct {
	Title    optional[string]   `json:"title"`
	Content  optional[string]   `json:"content"`
	Category optional[string]   `json:"category"`
	Tags     optional[[]string] `json:"tags"`
}

func (req *updateNoteRequest) patch() entity.NotePatch {
	p := entity.NotePatch{
		Title:    req.Title.ptr(),
		Content:  req.Content.ptr(),
		Category: req.Category.ptr(),
	}
	if v := req.Tags.ptr(); v != nil {
		p.Tags = *v
		if p.Tags == nil {
			p.Tags = []string{}
		}
	}
	return p
}

type searchRequest struct {
	Query      string `json:"query"`
	EntityType string `json:"entity_type"`
	Limit      int    `json:"limit"`
}

type searchResult struct {
	EntityType      string  `json:"entity_type"`
	EntityID        string  `json:"entity_id"`
	Title           string  `json:"title"`
	SimilarityScore float32 `json:"similarity_score"`
	Content         string  `json:"content,omitempty"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
	Query   string         `json:"query"`
}

type summarizeRequest struct {
	Content   string `json:"content"`
	MaxPoints int    `json:"max_points"`
}

type summarizeResponse struct {
	Summary      string   `json:"summary"`
	BulletPoints []string `json:"bullet_points"`
	Degraded     bool     `json:"degraded"`
}

// prioritizeRequest carries tasks inline, by ID, or both.
type prioritizeRequest struct {
	Tasks   []*taskResponse `json:"tasks"`
	TaskIDs []string        `json:"task_ids"`
}

type prioritizeResponse struct {
	PrioritizedTasks []*taskResponse `json:"prioritized_tasks"`
	NextBestAction   *taskResponse   `json:"next_best_action"`
	Reasoning        string          `json:"reasoning"`
	Degraded         bool            `json:"degraded"`
}
