package store

import (
	"context"
	"errors"
	"time"
)

// ErrNoQuestions is returned when the question bank is empty.
var ErrNoQuestions = errors.New("no questions found in the database")

// Question is one row of the question bank joined with its passage.
type Question struct {
	QID        int
	IID        *int
	Text       string
	Marks      int
	MarkScheme string

	// InsertText is the passage the question refers to, if any.
	InsertText *string
}

// Insert is a passage shared by one or more questions.
type Insert struct {
	IID  int
	Text string
}

// QuestionRepo reads and loads the question bank.
type QuestionRepo interface {
	// Questions returns every question ordered by QID, or ErrNoQuestions.
	Questions(ctx context.Context) ([]Question, error)

	// Import upserts passages and questions in one transaction.
	Import(ctx context.Context, inserts []Insert, questions []Question) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo records LLM usage.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// RecentLLMRequests returns up to limit events, newest first.
	RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequestEvent, error)

	// LLMUsage aggregates recorded requests per purpose and model.
	LLMUsage(ctx context.Context) ([]LLMUsage, error)
}

// LLMUsage is the aggregated usage of one model for one purpose.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}
