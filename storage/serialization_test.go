package storage

import (
	"testing"
	"time"

	"github.com/poiesic/pocketgenie/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalTask(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	due := now.Add(48 * time.Hour)

	tests := []struct {
		name string
		task *core.Task
	}{
		{
			name: "minimal task",
			task: &core.Task{Id: core.NewID(), Title: "Buy milk", CreatedAt: now, UpdatedAt: now, Revision: 1},
		},
		{
			name: "task with everything",
			task: &core.Task{
				Id:           core.NewID(),
				Title:        "File taxes",
				Description:  "Collect receipts first",
				DueDate:      &due,
				Priority:     core.PriorityUrgent,
				Category:     "finance",
				Tags:         []string{"home", "paperwork"},
				Completed:    true,
				Vector:       []float32{0.1, -0.2, 0.3, 0.4},
				EmbeddingSum: core.Fingerprint("File taxes"),
				Revision:     7,
				CreatedAt:    now,
				UpdatedAt:    now.Add(time.Minute),
			},
		},
		{
			name: "unicode title",
			task: &core.Task{Id: "t-unicode", Title: "Réserver le 世界 🌍", CreatedAt: now, UpdatedAt: now},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalTask(tt.task)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalTask(data)
			require.NoError(t, err)

			assert.Equal(t, tt.task.Id, decoded.Id)
			assert.Equal(t, tt.task.Title, decoded.Title)
			assert.Equal(t, tt.task.Description, decoded.Description)
			assert.Equal(t, tt.task.Priority, decoded.Priority)
			assert.Equal(t, tt.task.Category, decoded.Category)
			assert.Equal(t, tt.task.Completed, decoded.Completed)
			assert.Equal(t, tt.task.EmbeddingSum, decoded.EmbeddingSum)
			assert.Equal(t, tt.task.Revision, decoded.Revision)
			assert.True(t, tt.task.CreatedAt.Equal(decoded.CreatedAt))
			assert.True(t, tt.task.UpdatedAt.Equal(decoded.UpdatedAt))
			if tt.task.DueDate == nil {
				assert.Nil(t, decoded.DueDate)
			} else {
				require.NotNil(t, decoded.DueDate)
				assert.True(t, tt.task.DueDate.Equal(*decoded.DueDate))
			}
			// nil and empty slices both decode as nil
			if len(tt.task.Tags) == 0 {
				assert.Empty(t, decoded.Tags)
			} else {
				assert.Equal(t, tt.task.Tags, decoded.Tags)
			}
			if len(tt.task.Vector) == 0 {
				assert.Empty(t, decoded.Vector)
			} else {
				assert.Equal(t, tt.task.Vector, decoded.Vector)
			}
		})
	}
}

func TestMarshalUnmarshalNote(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	note := &core.Note{
		Id:           core.NewID(),
		Title:        "Trip ideas",
		Content:      "Lisbon in spring. Porto after.",
		Summary:      "Portugal trip",
		Category:     "travel",
		Tags:         []string{"2026"},
		Vector:       make([]float32, 1536),
		EmbeddingSum: core.Fingerprint("Trip ideas"),
		Revision:     2,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	note.Vector[17] = 0.5

	decoded, err := UnmarshalNote(MarshalNote(note))
	require.NoError(t, err)

	assert.Equal(t, note.Id, decoded.Id)
	assert.Equal(t, note.Title, decoded.Title)
	assert.Equal(t, note.Content, decoded.Content)
	assert.Equal(t, note.Summary, decoded.Summary)
	assert.Equal(t, note.Category, decoded.Category)
	assert.Equal(t, note.Tags, decoded.Tags)
	assert.Equal(t, note.Vector, decoded.Vector)
	assert.Equal(t, note.EmbeddingSum, decoded.EmbeddingSum)
	assert.Equal(t, note.Revision, decoded.Revision)
	assert.True(t, note.CreatedAt.Equal(decoded.CreatedAt))
}

func TestUnmarshal_Invalid(t *testing.T) {
	corrupt := func(valid []byte) map[string][]byte {
		return map[string][]byte{
			"empty data":      {},
			"unknown version": {0x7e},
			"truncated":       valid[:len(valid)/2],
			"trailing bytes":  append(append([]byte{}, valid...), 0x00),
		}
	}

	t.Run("task", func(t *testing.T) {
		valid := MarshalTask(&core.Task{Id: "x", Title: "Title", Tags: []string{"a"}, Vector: []float32{1, 2}})
		for name, data := range corrupt(valid) {
			t.Run(name, func(t *testing.T) {
				_, err := UnmarshalTask(data)
				assert.ErrorIs(t, err, ErrSerializationFailed)
			})
		}
	})

	t.Run("note", func(t *testing.T) {
		valid := MarshalNote(&core.Note{Id: "x", Title: "Title", Content: "body", Vector: []float32{1, 2}})
		for name, data := range corrupt(valid) {
			t.Run(name, func(t *testing.T) {
				_, err := UnmarshalNote(data)
				assert.ErrorIs(t, err, ErrSerializationFailed)
			})
		}
	})
}

func TestFilters(t *testing.T) {
	done := true
	task := &core.Task{Category: "work", Completed: true}

	assert.True(t, TaskFilter{}.Matches(task))
	assert.True(t, TaskFilter{Completed: &done, Category: "work"}.Matches(task))
	assert.False(t, TaskFilter{Category: "home"}.Matches(task))

	open := false
	assert.False(t, TaskFilter{Completed: &open}.Matches(task))

	assert.True(t, NoteFilter{}.Matches(&core.Note{Category: "x"}))
	assert.False(t, NoteFilter{Category: "y"}.Matches(&core.Note{Category: "x"}))

	assert.ErrorIs(t, TaskFilter{Skip: -1}.Validate(), ErrInvalidQuery)
	assert.ErrorIs(t, NoteFilter{Limit: -1}.Validate(), ErrInvalidQuery)
	assert.NoError(t, TaskFilter{Skip: 2, Limit: 5}.Validate())
}
