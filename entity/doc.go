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


// Package entity implements task and note operations on top of the storage
// repositories.
//
// Services keep each entity's embedding consistent with its title: a create
// or an update that changes the title computes the new vector before the
// write, and the vector, its fingerprint and the new field values are stored
// in one repository transaction. Writes are revision-checked; when another
// writer gets there first the service re-reads the entity, re-applies the
// change and tries again.
//
// # Usage
//
//	tasks, err := entity.NewTaskService(taskRepo, provider.Embedder())
//	task, err := tasks.Create(ctx, entity.TaskInput{Title: "Renew passport"})
//
//	title := "Renew passport and visa"
//	task, err = tasks.Update(ctx, task.Id, entity.TaskPatch{Title: &title})
package entity
