package web

import (
	"net/http"

	"github.com/JonMunkholm/taskdesk/internal/web/templates"
)

// dashboardHistory is how many recent imports the dashboard lists.
const dashboardHistory = 10

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := s.service.Counts(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	history, err := s.service.ImportHistory(ctx, dashboardHistory)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Dashboard(templates.DashboardParams{
		Counts:  counts,
		Imports: s.service.ListImports(),
		History: history,
	}).Render(ctx, w)
}
