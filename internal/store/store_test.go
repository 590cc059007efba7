package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func intptr(v int) *int { return &v }

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestQuestions_EmptyBank(t *testing.T) {
	s := openTestStore(t)
	_, err := s.QuestionRepo().Questions(context.Background())
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestImportAndQuestions(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	inserts := []Insert{{IID: 1, Text: "El perro come."}}
	questions := []Question{
		{QID: 20, Text: "Describe your weekend.", Marks: 6, MarkScheme: "Past tense"},
		{QID: 10, IID: intptr(1), Text: "What does the dog do?", Marks: 2, MarkScheme: "Eats"},
	}
	if err := repo.Import(ctx, inserts, questions); err != nil {
		t.Fatalf("import: %v", err)
	}

	got, err := repo.Questions(ctx)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}

	first := got[0]
	if first.QID != 10 {
		t.Errorf("expected questions ordered by QID, first is %d", first.QID)
	}
	if first.InsertText == nil || *first.InsertText != "El perro come." {
		t.Errorf("expected joined insert text, got %v", first.InsertText)
	}
	if first.MarkScheme != "Eats" || first.Marks != 2 {
		t.Errorf("unexpected row: %+v", first)
	}

	if got[1].IID != nil || got[1].InsertText != nil {
		t.Errorf("expected no insert for question 20, got %+v", got[1])
	}
}

func TestImport_Upserts(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	q := Question{QID: 1, Text: "old", Marks: 1}
	if err := repo.Import(ctx, nil, []Question{q}); err != nil {
		t.Fatalf("import: %v", err)
	}
	q.Text = "new"
	if err := repo.Import(ctx, nil, []Question{q}); err != nil {
		t.Fatalf("re-import: %v", err)
	}

	got, err := repo.Questions(ctx)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(got) != 1 || got[0].Text != "new" {
		t.Errorf("expected one updated question, got %+v", got)
	}
}

func TestImport_RollsBackOnBadInsertReference(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	err := repo.Import(ctx, nil, []Question{
		{QID: 1, Text: "fine", Marks: 1},
		{QID: 2, IID: intptr(99), Text: "dangling", Marks: 1},
	})
	if err == nil {
		t.Fatal("expected foreign key failure")
	}
	if _, err := repo.Questions(ctx); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("expected rollback to leave the bank empty, got %v", err)
	}
}

func TestLLMRequestEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"flash-feedback", "pro-feedback"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock-model",
			Purpose:      purpose,
			InputTokens:  10,
			OutputTokens: 5,
			LatencyMs:    42,
			Success:      true,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := repo.RecentLLMRequests(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Purpose != "pro-feedback" {
		t.Errorf("expected newest first, got %q", events[0].Purpose)
	}
	if !events[0].Success || events[0].LatencyMs != 42 || events[0].Timestamp.IsZero() {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestLLMUsage_GroupsByPurposeAndModel(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "pro-feedback", InputTokens: 100, OutputTokens: 50, LatencyMs: 1000, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "pro-feedback", InputTokens: 20, LatencyMs: 200, ErrorMessage: "rate limited"},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "flash-feedback", InputTokens: 30, OutputTokens: 10, LatencyMs: 300, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	usage, err := repo.LLMUsage(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(usage))
	}
	pro := usage[1]
	if pro.Purpose != "pro-feedback" || pro.Calls != 2 || pro.Failures != 1 {
		t.Errorf("unexpected pro usage: %+v", pro)
	}
	if pro.InputTokens != 120 || pro.OutputTokens != 50 || pro.AvgLatencyMs != 600 {
		t.Errorf("unexpected pro totals: %+v", pro)
	}
}

func TestDefaultDBPath_UsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	want := filepath.Join(dir, "examcoach", "examcoach.db")
	if p != want {
		t.Errorf("got %q, want %q", p, want)
	}
}
