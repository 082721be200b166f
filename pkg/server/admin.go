package server

import (
	"log/slog"
	"net/http"

	"github.com/gridscope/gridscope/pkg/log"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	if !user.Admin {
		writeJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list users", slog.Any("error", err))
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, struct {
		Users []string `json:"users"`
	}{Users: users})
}
