package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	task, err := s.service.CreateTask(r.Context(), req.row())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	task, err := s.service.UpdateTask(r.Context(), chi.URLParam(r, "id"), req.row())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTasks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	n, err := s.service.DeleteTasks(r.Context(), req.IDs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleCreateReference(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Parent string `json:"parent"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	v, err := s.service.CreateReference(r.Context(), core.ReferenceValue{
		Kind:   core.ReferenceKind(chi.URLParam(r, "kind")),
		Name:   req.Name,
		Parent: req.Parent,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleSetCaptain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Captain string `json:"captain"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	assignee := chi.URLParam(r, "name")
	if err := s.service.SetCaptain(r.Context(), assignee, req.Captain); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.AssigneeRow{AssigneeName: assignee, CaptainName: req.Captain})
}

func (s *Server) handleDeleteAssignees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	n, err := s.service.DeleteAssignees(r.Context(), req.Names)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
