package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/poiesic/pocketgenie/search"
	"github.com/poiesic/pocketgenie/storage"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.svc.Tasks.Create(r.Context(), req.input())
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to create task"))
		return
	}
	s.writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, limit, err := pageParams(q.Get("skip"), q.Get("limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter := storage.TaskFilter{Category: q.Get("category"), Skip: skip, Limit: limit}
	if raw := q.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: completed must be true or false", errBadRequest))
			return
		}
		filter.Completed = &completed
	}

	tasks, err := s.svc.Tasks.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to list tasks"))
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, err := s.svc.Tasks.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to get task", goerr.V("task_id", id)))
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.svc.Tasks.Update(r.Context(), id, req.patch())
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to update task", goerr.V("task_id", id)))
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Tasks.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to delete task", goerr.V("task_id", id)))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, err := s.svc.Tasks.Complete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to complete task", goerr.V("task_id", id)))
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// pageParams parses skip (>= 0, default 0) and limit (1..100, default 10).
func pageParams(rawSkip, rawLimit string) (int, int, error) {
	skip := 0
	if rawSkip != "" {
		n, err := strconv.Atoi(rawSkip)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("%w: skip must be a non-negative integer", errBadRequest)
		}
		skip = n
	}
	limit := search.DefaultLimit
	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n == 0 {
			return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d", errBadRequest, search.MaxLimit)
		}
		if limit, err = search.ClampLimit(n); err != nil {
			return 0, 0, err
		}
	}
	return skip, limit, nil
}
