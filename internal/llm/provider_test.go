package llm

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/abhisek/examcoach/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "first", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "second"},
	)

	resp1, err := mock.Generate(context.Background(), Prompt("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != "first" {
		t.Fatalf("expected 'first', got %q", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), Prompt("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "second" {
		t.Fatalf("expected 'second', got %q", resp2.Text)
	}
	if mock.CallCount() != 2 || mock.Calls[1].Messages[0].Content != "b" {
		t.Fatalf("calls not recorded: %+v", mock.Calls)
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}

	mock.Fallback = "fallback"
	resp, err := mock.Generate(context.Background(), Request{})
	if err != nil || resp.Text != "fallback" {
		t.Fatalf("expected fallback, got %v, %v", resp, err)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "pro-feedback")
	if p := PurposeFrom(ctx); p != "pro-feedback" {
		t.Fatalf("expected 'pro-feedback', got %q", p)
	}
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	if s := SessionFrom(ctx); s != "" {
		t.Fatalf("expected no session, got %q", s)
	}

	ctx = WithPurpose(WithSession(ctx, "abc"), "flash-feedback")
	if s := SessionFrom(ctx); s != "abc" {
		t.Fatalf("expected 'abc', got %q", s)
	}
	if p := PurposeFrom(ctx); p != "flash-feedback" {
		t.Fatalf("session tag clobbered purpose, got %q", p)
	}
}

// fakeEventRepo records appended events in memory.
type fakeEventRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.events = append(f.events, data)
	return f.err
}

func (f *fakeEventRepo) RecentLLMRequests(context.Context, int) ([]store.LLMRequestEvent, error) {
	return nil, nil
}

func (f *fakeEventRepo) LLMUsage(context.Context) ([]store.LLMUsage, error) {
	return nil, nil
}

func TestLoggingProvider_RecordsSuccessAndFailure(t *testing.T) {
	repo := &fakeEventRepo{}
	mock := NewMockProvider(
		MockResponse{Text: "ok", Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("quota")}},
	)
	p := WithLogging(mock, "mock", repo)
	ctx := WithPurpose(context.Background(), "flash-feedback")

	if _, err := p.Generate(ctx, Prompt("one")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Prompt("two")); err == nil {
		t.Fatal("expected error to pass through")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	first, second := repo.events[0], repo.events[1]
	if !first.Success || first.InputTokens != 7 || first.Purpose != "flash-feedback" || first.Provider != "mock" {
		t.Fatalf("unexpected first event %+v", first)
	}
	if second.Success || second.ErrorMessage == "" {
		t.Fatalf("unexpected second event %+v", second)
	}
}

func TestLoggingProvider_RepoFailureDoesNotFailRequest(t *testing.T) {
	repo := &fakeEventRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), "mock", repo)

	resp, err := p.Generate(context.Background(), Prompt("x"))
	if err != nil || resp.Text != "ok" {
		t.Fatalf("expected success, got %v, %v", resp, err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_WithModel(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.WithModel("gemini-flash").Gemini.Model; got != "gemini-flash" {
		t.Fatalf("expected gemini-flash, got %q", got)
	}
	if got := cfg.WithModel("").Gemini.Model; got != "gemini-pro" {
		t.Fatalf("empty model must leave config unchanged, got %q", got)
	}
	if cfg.Gemini.Model != "gemini-pro" {
		t.Fatal("WithModel must not modify the receiver")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("EXAMCOACH_LLM_PROVIDER", "anthropic")
	t.Setenv("EXAMCOACH_ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("EXAMCOACH_FLASH_MODEL", "claude-haiku")
	t.Setenv("EXAMCOACH_LLM_TIMEOUT", "45s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "sk-test" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.FlashModel != "claude-haiku" || cfg.ProModel != "" {
		t.Fatalf("unexpected tier models %q %q", cfg.FlashModel, cfg.ProModel)
	}
	if cfg.Timeout != 45*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Timeout)
	}
}

func TestResolve_FallsBackToDiscovery(t *testing.T) {
	t.Setenv("EXAMCOACH_LLM_PROVIDER", "")
	t.Setenv("EXAMCOACH_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg := Resolve()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-openai" {
		t.Fatalf("expected discovered openai config, got %+v", cfg)
	}
}

func TestNewTieredProviders_Mock(t *testing.T) {
	repo := &fakeEventRepo{}
	flash, pro, err := NewTieredProviders(context.Background(), Config{Provider: "mock"}, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := flash.Generate(context.Background(), Prompt("q"))
	if err != nil || resp.Text != mockFeedback {
		t.Fatalf("unexpected flash response %v, %v", resp, err)
	}
	if pro.ModelID() != "mock" {
		t.Fatalf("unexpected pro model %q", pro.ModelID())
	}
	if len(repo.events) != 1 || repo.events[0].Provider != "mock" {
		t.Fatalf("expected one logged request, got %+v", repo.events)
	}
}

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  float64
		found bool
	}{
		{"gemini-2.5-pro", 1.25 + 10, true},
		{"google/gemini-2.5-flash", 0.3 + 2.5, true},
		{"mock", 0, false},
	}
	for _, tt := range tests {
		c := LookupCost(tt.model)
		if (c != nil) != tt.found {
			t.Fatalf("LookupCost(%q) found = %v, want %v", tt.model, c != nil, tt.found)
		}
		if c != nil {
			if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cost for %q = %v, want %v", tt.model, got, tt.want)
			}
		}
	}
}
