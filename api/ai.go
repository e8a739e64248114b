package api

import (
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/search"
)

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	filter, err := core.ParseEntityFilter(req.EntityType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := search.ClampLimit(req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results, err := s.svc.Searcher.Search(r.Context(), req.Query, filter, limit)
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "semantic search failed", goerr.V("entity_type", filter)))
		return
	}

	resp := searchResponse{Results: make([]searchResult, len(results)), Query: req.Query}
	for i, hit := range results {
		resp.Results[i] = searchResult{
			EntityType:      string(hit.EntityType),
			EntityID:        hit.EntityId,
			Title:           hit.Title,
			SimilarityScore: hit.Score,
			Content:         hit.Content,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.svc.Summarizer.Summarize(r.Context(), req.Content, req.MaxPoints)
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to summarize", goerr.V("max_points", req.MaxPoints)))
		return
	}
	bullets := result.BulletPoints
	if bullets == nil {
		bullets = []string{}
	}
	s.writeJSON(w, http.StatusOK, summarizeResponse{
		Summary:      result.Summary,
		BulletPoints: bullets,
		Degraded:     result.Degraded,
	})
}

func (s *Server) handlePrioritize(w http.ResponseWriter, r *http.Request) {
	var req prioritizeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tasks := make([]*core.Task, 0, len(req.Tasks)+len(req.TaskIDs))
	for i, t := range req.Tasks {
		if t == nil {
			s.writeError(w, r, fmt.Errorf("%w: tasks[%d] is null", errBadRequest, i))
			return
		}
		task := t.toTask()
		if err := core.ValidatePriority(task.Priority); err != nil {
			s.writeError(w, r, goerr.Wrap(err, "invalid task", goerr.V("index", i)))
			return
		}
		tasks = append(tasks, task)
	}
	for _, id := range req.TaskIDs {
		task, err := s.svc.Tasks.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, goerr.Wrap(err, "failed to load task", goerr.V("task_id", id)))
			return
		}
		tasks = append(tasks, task)
	}

	result, err := s.svc.Prioritizer.Prioritize(r.Context(), tasks)
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to prioritize"))
		return
	}
	s.writeJSON(w, http.StatusOK, prioritizeResponse{
		PrioritizedTasks: toTaskResponses(result.Tasks),
		NextBestAction:   toTaskResponse(result.NextBestAction),
		Reasoning:        result.Reasoning,
		Degraded:         result.Degraded,
	})
}
