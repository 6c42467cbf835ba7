package handlers

import (
	"fmt"
	"net/http"

	"blog-platform/internal/api"
	"blog-platform/internal/middleware"
)

// HandleFixOrphanedComments runs the orphaned-comment repair and reports how many comments it reassigned.
func (s *Server) HandleFixOrphanedComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFromContext(r.Context())
		s.Logger.Info("orphaned comment repair requested", "admin_id", user.ID)

		result, err := s.Engine.FixOrphanedComments()
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		message := "No orphaned comments found"
		if result.Fixed > 0 {
			message = fmt.Sprintf("Fixed %d orphaned comments", result.Fixed)
		}
		api.WriteJSON(w, http.StatusOK, api.ReconcileResponse{
			Success: true,
			Message: message,
			Fixed:   result.Fixed,
		})
	}
}
