package core

import (
	"encoding/binary"
	"slices"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// NewID returns a fresh opaque entity identifier.
func NewID() string {
	return uuid.NewString()
}

// Fingerprint returns a stable 64-bit BLAKE2b digest of text.
// It records which text a stored embedding was computed from.
func Fingerprint(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// StoredTime returns t in UTC at the microsecond precision records are
// persisted with, so a value handed back by a write equals later reads.
func StoredTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// EntityType tags the kind of an embeddable entity.
type EntityType string

const (
	EntityTypeTask EntityType = "task"
	EntityTypeNote EntityType = "note"
)

// EntityFilter selects which entity kinds a search considers.
type EntityFilter string

const (
	FilterTask EntityFilter = "task"
	FilterNote EntityFilter = "note"
	FilterAll  EntityFilter = "all"
)

// ParseEntityFilter converts user input into an EntityFilter.
// An empty string selects all kinds.
func ParseEntityFilter(s string) (EntityFilter, error) {
	if s == "" {
		return FilterAll, nil
	}
	f := EntityFilter(s)
	if !f.Valid() {
		return "", ErrInvalidFilter
	}
	return f, nil
}

// Valid reports whether f is one of the known filters.
func (f EntityFilter) Valid() bool {
	return f == FilterTask || f == FilterNote || f == FilterAll
}

// Includes reports whether entities of kind t pass the filter.
func (f EntityFilter) Includes(t EntityType) bool {
	return f == FilterAll || string(f) == string(t)
}

// Priority is a task urgency level.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

// Embeddable is implemented by every entity that carries an embedding.
type Embeddable interface {
	ID() string
	Kind() EntityType
	// PrimaryText is the text the embedding is computed from.
	PrimaryText() string
	// EmbeddableSecondaryText is the free text shown alongside search hits.
	EmbeddableSecondaryText() string
	Embedding() []float32
}

// Task is a to-do item.
type Task struct {
	Id           string
	Title        string
	Description  string
	DueDate      *time.Time
	Priority     Priority
	Category     string
	Tags         []string
	Completed    bool
	Vector       []float32 // Embedding of Title; empty when Title is blank
	EmbeddingSum uint64    // Fingerprint of the text Vector was computed from
	Revision     uint64    // Incremented on every write
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var _ Embeddable = (*Task)(nil)

func (t *Task) ID() string                      { return t.Id }
func (t *Task) Kind() EntityType                { return EntityTypeTask }
func (t *Task) PrimaryText() string             { return t.Title }
func (t *Task) EmbeddableSecondaryText() string { return t.Description }
func (t *Task) Embedding() []float32            { return t.Vector }

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	c.Tags = slices.Clone(t.Tags)
	c.Vector = slices.Clone(t.Vector)
	return &c
}

// Note is a free-form text note.
type Note struct {
	Id           string
	Title        string
	Content      string
	Summary      string // Generated from Content
	Category     string
	Tags         []string
	Vector       []float32
	EmbeddingSum uint64
	Revision     uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var _ Embeddable = (*Note)(nil)

func (n *Note) ID() string                      { return n.Id }
func (n *Note) Kind() EntityType                { return EntityTypeNote }
func (n *Note) PrimaryText() string             { return n.Title }
func (n *Note) EmbeddableSecondaryText() string { return n.Content }
func (n *Note) Embedding() []float32            { return n.Vector }

// Clone returns a deep copy of the note.
func (n *Note) Clone() *Note {
	c := *n
	c.Tags = slices.Clone(n.Tags)
	c.Vector = slices.Clone(n.Vector)
	return &c
}

// IsEmbeddingCurrent reports whether e's stored embedding was computed from
// its current primary text.
func IsEmbeddingCurrent(e Embeddable, sum uint64) bool {
	return sum == Fingerprint(e.PrimaryText())
}

// SearchResult is a single semantic search hit.
type SearchResult struct {
	EntityType EntityType
	EntityId   string
	Title      string
	Score      float32 // Clamped cosine similarity in [0,1]
	Content    string  // Description for tasks, truncated content for notes
}
