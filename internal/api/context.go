package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abhisek/examcoach/internal/session"
)

// SessionCookie names the cookie carrying the session ID.
const SessionCookie = "examcoach_session"

type contextKey string

const sessionContextKey contextKey = "api_session"

// SessionFromContext extracts the request's session from context
func SessionFromContext(ctx context.Context) *session.Session {
	s, ok := ctx.Value(sessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return s
}

// ContextWithSession adds a session to context
func ContextWithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// sessionMiddleware loads the caller's session, refreshes its cookie and
// commits it once the handler returns. Only a cursor the handler moved is
// written back.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}

		sess, err := s.sessions.Load(r.Context(), id)
		if err != nil {
			slog.Error("failed to load session", "error", err)
			respondJSON(w, http.StatusInternalServerError, messageResponse{Message: "Unable to load your session."})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.sessions.TTL().Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))

		// The request may have been canceled while the handler ran; the
		// activity time should still be recorded.
		if err := s.sessions.Commit(context.WithoutCancel(r.Context()), sess); err != nil {
			slog.Warn("failed to save session", "session", sess.ID, "error", err)
		}
	})
}
