package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.service.ListTasks(r.Context(), taskFilter(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []core.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.service.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.service.Counts(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleListReference(w http.ResponseWriter, r *http.Request) {
	kind := core.ReferenceKind(chi.URLParam(r, "kind"))
	values, err := s.service.ListReference(r.Context(), kind)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if values == nil {
		values = []core.ReferenceValue{}
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleListAssignees(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.service.ListAssignees(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if pairs == nil {
		pairs = []core.AssigneeRow{}
	}
	writeJSON(w, http.StatusOK, pairs)
}
