package core

import (
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Fingerprint(tt.content)
			b := Fingerprint(tt.content)
			if a != b {
				t.Errorf("Fingerprint() produced different sums for same content: %d vs %d", a, b)
			}
		})
	}
}

func TestFingerprint_Different(t *testing.T) {
	if Fingerprint("content1") == Fingerprint("content2") {
		t.Errorf("Fingerprint() produced same sum for different content")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == "" || b == "" {
		t.Fatal("NewID() returned empty id")
	}
	if a == b {
		t.Errorf("NewID() returned duplicate id %q", a)
	}
}

func TestParseEntityFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    EntityFilter
		wantErr bool
	}{
		{in: "", want: FilterAll},
		{in: "all", want: FilterAll},
		{in: "task", want: FilterTask},
		{in: "note", want: FilterNote},
		{in: "tasks", wantErr: true},
		{in: "TASK", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEntityFilter(tt.in)
			if tt.wantErr {
				if err != ErrInvalidFilter {
					t.Errorf("ParseEntityFilter(%q) error = %v, want ErrInvalidFilter", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEntityFilter(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseEntityFilter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEntityFilter_Includes(t *testing.T) {
	if !FilterAll.Includes(EntityTypeTask) || !FilterAll.Includes(EntityTypeNote) {
		t.Error("FilterAll should include both kinds")
	}
	if !FilterTask.Includes(EntityTypeTask) || FilterTask.Includes(EntityTypeNote) {
		t.Error("FilterTask should include only tasks")
	}
	if FilterNote.Includes(EntityTypeTask) || !FilterNote.Includes(EntityTypeNote) {
		t.Error("FilterNote should include only notes")
	}
}

func TestStoredTime(t *testing.T) {
	in := time.Date(2030, 1, 2, 3, 4, 5, 123456789, time.FixedZone("CET", 3600))
	got := StoredTime(in)

	if got.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", got.Location())
	}
	if got.Nanosecond() != 123456000 {
		t.Errorf("expected microsecond precision, got %d ns", got.Nanosecond())
	}
	if !got.Equal(time.UnixMicro(in.UnixMicro())) {
		t.Errorf("expected %v to equal its stored form", got)
	}
}

func TestTask_Clone(t *testing.T) {
	due := time.Now().UTC()
	task := &Task{
		Id:      "t1",
		Title:   "Write report",
		DueDate: &due,
		Tags:    []string{"work"},
		Vector:  []float32{0.1, 0.2},
	}

	c := task.Clone()
	c.Tags[0] = "home"
	c.Vector[0] = 9
	*c.DueDate = due.Add(time.Hour)

	if task.Tags[0] != "work" {
		t.Error("Clone() shares Tags with original")
	}
	if task.Vector[0] != 0.1 {
		t.Error("Clone() shares Vector with original")
	}
	if !task.DueDate.Equal(due) {
		t.Error("Clone() shares DueDate with original")
	}
}

func TestEmbeddable(t *testing.T) {
	task := &Task{Id: "t1", Title: "Title", Description: "desc", Vector: []float32{1}}
	note := &Note{Id: "n1", Title: "Note", Content: "body"}

	var e Embeddable = task
	if e.ID() != "t1" || e.Kind() != EntityTypeTask || e.PrimaryText() != "Title" || e.EmbeddableSecondaryText() != "desc" {
		t.Errorf("unexpected task accessors: %+v", e)
	}
	e = note
	if e.ID() != "n1" || e.Kind() != EntityTypeNote || e.PrimaryText() != "Note" || e.EmbeddableSecondaryText() != "body" {
		t.Errorf("unexpected note accessors: %+v", e)
	}
	if len(e.Embedding()) != 0 {
		t.Error("note without vector should report empty embedding")
	}
}

func TestIsEmbeddingCurrent(t *testing.T) {
	task := &Task{Title: "Buy milk"}
	sum := Fingerprint("Buy milk")
	if !IsEmbeddingCurrent(task, sum) {
		t.Error("expected embedding to be current")
	}
	task.Title = "Buy bread"
	if IsEmbeddingCurrent(task, sum) {
		t.Error("expected embedding to be stale after title change")
	}
}
