package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/examcoach/internal/llm"
	"github.com/abhisek/examcoach/internal/marking"
	"github.com/abhisek/examcoach/internal/store"
)

type direction string

const (
	directionPrevious direction = "previous"
	directionNext     direction = "next"
)

const (
	msgFirstQuestion = "This is the first question"
	msgLastQuestion  = "No more questions available"
	msgNoQuestions   = "No questions found in the database."
	msgDatabase      = "Unable to connect to the database."
)

type questionResponse struct {
	Success      bool    `json:"success"`
	Question     string  `json:"question"`
	QuestionText string  `json:"question_text"`
	InsertText   *string `json:"insert_text"`
	Marks        int     `json:"marks"`
	Number       int     `json:"number"`
	Total        int     `json:"total"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type navigationResponse struct {
	Number int `json:"number"`
	Total  int `json:"total"`
}

type feedbackResponse struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Question handlers

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	bank, ok := s.loadBank(w, r)
	if !ok {
		return
	}
	sess := SessionFromContext(r.Context())
	sess.Clamp(len(bank))
	respondJSON(w, http.StatusOK, newQuestionResponse(bank, sess.Number))
}

// handleNavigate moves the cursor one step. At either end the cursor stays
// put and the response carries a refusal message instead of a question.
func (s *Server) handleNavigate(dir direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bank, ok := s.loadBank(w, r)
		if !ok {
			return
		}
		sess := SessionFromContext(r.Context())
		sess.Clamp(len(bank))

		switch dir {
		case directionPrevious:
			if sess.Number == 0 {
				respondJSON(w, http.StatusOK, messageResponse{Message: msgFirstQuestion})
				return
			}
			sess.Number--
		case directionNext:
			if sess.Number >= len(bank)-1 {
				respondJSON(w, http.StatusOK, messageResponse{Message: msgLastQuestion})
				return
			}
			sess.Number++
		}

		slog.Debug("navigated", "direction", dir, "session", sess.ID, "number", sess.Number)
		respondJSON(w, http.StatusOK, newQuestionResponse(bank, sess.Number))
	}
}

func (s *Server) handleNavigationInfo(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if bank, err := s.questions.Questions(r.Context()); err == nil {
		sess.Clamp(len(bank))
	} else {
		slog.Warn("navigation info from session only", "error", err)
	}
	respondJSON(w, http.StatusOK, navigationResponse{Number: sess.Number, Total: sess.Total})
}

func (s *Server) handleNumber(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strconv.Itoa(sess.Number)))
}

// Feedback handlers

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	tier, ok := marking.ParseTier(chi.URLParam(r, "tier"))
	if !ok {
		respondJSON(w, http.StatusNotFound, feedbackResponse{Error: "unknown feedback tier"})
		return
	}

	bank, err := s.questions.Questions(r.Context())
	if err != nil {
		status, msg := bankError(err)
		respondJSON(w, status, feedbackResponse{Error: msg})
		return
	}
	sess := SessionFromContext(r.Context())
	sess.Clamp(len(bank))

	q := bank[sess.Number]
	item := marking.Item{
		Question:   renderQuestion(q),
		Marks:      q.Marks,
		MarkScheme: q.MarkScheme,
	}
	if q.InsertText != nil {
		item.InsertText = *q.InsertText
	}

	ctx := llm.WithSession(r.Context(), sess.ID)
	text, err := s.marker.Feedback(ctx, tier, item, r.URL.Query().Get("answer"))
	if err != nil {
		msg := err.Error()
		var merr *marking.Error
		if errors.As(err, &merr) {
			msg = merr.Message
		}
		respondJSON(w, http.StatusServiceUnavailable, feedbackResponse{Error: msg})
		return
	}
	respondJSON(w, http.StatusOK, feedbackResponse{Response: text})
}

// loadBank fetches the question bank, writing the failure response itself
// when it cannot.
func (s *Server) loadBank(w http.ResponseWriter, r *http.Request) ([]store.Question, bool) {
	bank, err := s.questions.Questions(r.Context())
	if err != nil {
		status, msg := bankError(err)
		respondJSON(w, status, messageResponse{Message: msg})
		return nil, false
	}
	return bank, true
}

func bankError(err error) (int, string) {
	if errors.Is(err, store.ErrNoQuestions) {
		return http.StatusNotFound, msgNoQuestions
	}
	slog.Error("question bank unavailable", "error", err)
	return http.StatusInternalServerError, msgDatabase
}
