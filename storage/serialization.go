// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/poiesic/pocketgenie/core"
)

// Record format versions. Bump when a field is added or reordered.
const (
	taskFormatVersion = 1
	noteFormatVersion = 1
)

// MarshalTask serializes a Task to bytes.
func MarshalTask(t *core.Task) []byte {
	return encode(func(w *recordWriter) {
		w.integer(taskFormatVersion)
		w.str(t.Id)
		w.str(t.Title)
		w.str(t.Description)
		w.optionalTime(t.DueDate)
		w.integer(int(t.Priority))
		w.str(t.Category)
		w.strings(t.Tags)
		w.boolean(t.Completed)
		w.vector(t.Vector)
		w.uint64(t.EmbeddingSum)
		w.uint64(t.Revision)
		w.time(t.CreatedAt)
		w.time(t.UpdatedAt)
	})
}

// UnmarshalTask deserializes a Task from bytes.
func UnmarshalTask(data []byte) (*core.Task, error) {
	r := &recordReader{bs: data}
	if v := r.integer(); r.err == nil && v != taskFormatVersion {
		r.fail(fmt.Errorf("unknown task format version %d", v))
	}
	t := &core.Task{
		Id:           r.str(),
		Title:        r.str(),
		Description:  r.str(),
		DueDate:      r.optionalTime(),
		Priority:     core.Priority(r.integer()),
		Category:     r.str(),
		Tags:         r.strings(),
		Completed:    r.boolean(),
		Vector:       r.vector(),
		EmbeddingSum: r.uint64(),
		Revision:     r.uint64(),
		CreatedAt:    r.time(),
		UpdatedAt:    r.time(),
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return t, nil
}

// MarshalNote serializes a Note to bytes.
func MarshalNote(n *core.Note) []byte {
	return encode(func(w *recordWriter) {
		w.integer(noteFormatVersion)
		w.str(n.Id)
		w.str(n.Title)
		w.str(n.Content)
		w.str(n.Summary)
		w.str(n.Category)
		w.strings(n.Tags)
		w.vector(n.Vector)
		w.uint64(n.EmbeddingSum)
		w.uint64(n.Revision)
		w.time(n.CreatedAt)
		w.time(n.UpdatedAt)
	})
}

// UnmarshalNote deserializes a Note from bytes.
func UnmarshalNote(data []byte) (*core.Note, error) {
	r := &recordReader{bs: data}
	if v := r.integer(); r.err == nil && v != noteFormatVersion {
		r.fail(fmt.Errorf("unknown note format version %d", v))
	}
	n := &core.Note{
		Id:           r.str(),
		Title:        r.str(),
		Content:      r.str(),
		Summary:      r.str(),
		Category:     r.str(),
		Tags:         r.strings(),
		Vector:       r.vector(),
		EmbeddingSum: r.uint64(),
		Revision:     r.uint64(),
		CreatedAt:    r.time(),
		UpdatedAt:    r.time(),
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return n, nil
}
