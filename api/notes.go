package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/poiesic/pocketgenie/entity"
	"github.com/poiesic/pocketgenie/storage"
)

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	note, err := s.svc.Notes.Create(r.Context(), entity.NoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
	})
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to create note"))
		return
	}
	s.writeJSON(w, http.StatusCreated, toNoteResponse(note))
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, limit, err := pageParams(q.Get("skip"), q.Get("limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	notes, err := s.svc.Notes.List(r.Context(), storage.NoteFilter{
		Category: q.Get("category"),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to list notes"))
		return
	}
	out := make([]*noteResponse, len(notes))
	for i, n := range notes {
		out[i] = toNoteResponse(n)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := s.svc.Notes.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to get note", goerr.V("note_id", id)))
		return
	}
	s.writeJSON(w, http.StatusOK, toNoteResponse(note))
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	note, err := s.svc.Notes.Update(r.Context(), id, req.patch())
	if err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to update note", goerr.V("note_id", id)))
		return
	}
	s.writeJSON(w, http.StatusOK, toNoteResponse(note))
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Notes.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, goerr.Wrap(err, "failed to delete note", goerr.V("note_id", id)))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
}
