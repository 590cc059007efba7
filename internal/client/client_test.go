package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c, err := New(ts.URL)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadScheme(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)
}

func TestFeedback_EncodesAnswer(t *testing.T) {
	var gotPath, gotAnswer string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAnswer = r.URL.Query().Get("answer")
		w.Write([]byte(`{"response":"Good start"}`))
	})

	p, err := c.Feedback(context.Background(), TierFlash, "x & y = 42?")
	require.NoError(t, err)
	assert.Equal(t, "/ai_response/flash", gotPath)
	assert.Equal(t, "x & y = 42?", gotAnswer)
	assert.Equal(t, "Good start", p.Response)
	assert.False(t, p.HasError())
}

func TestFeedback_ServerErrorIsPayloadNotTransportFailure(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"rate limited"}`))
	})

	p, err := c.Feedback(context.Background(), TierPro, "42")
	require.NoError(t, err)
	assert.True(t, p.HasError())
	assert.Equal(t, "rate limited", p.Error)
}

func TestFeedback_MalformedBodyIsTransportError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"wrong shape", `{"message":"hi"}`},
		{"wrong type", `{"response":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := c.Feedback(context.Background(), TierFlash, "42")
			require.Error(t, err)

			var te *TransportError
			require.True(t, errors.As(err, &te))
			var ip *ErrInvalidPayload
			assert.True(t, errors.As(err, &ip))
		})
	}
}

func TestFeedback_NetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	c, err := New(ts.URL)
	require.NoError(t, err)
	ts.Close()

	_, err = c.Feedback(context.Background(), TierFlash, "42")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.Status)
}

func TestFeedback_ContextCanceled(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"late"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Feedback(ctx, TierFlash, "42")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNavigate(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/next":
			w.Write([]byte(`{"success":true,"question_text":"Translate","insert_text":null,"marks":4,"number":1,"total":3}`))
		case "/previous":
			w.Write([]byte(`{"success":false,"message":"This is the first question"}`))
		default:
			http.NotFound(w, r)
		}
	})

	next, err := c.Navigate(context.Background(), Next)
	require.NoError(t, err)
	assert.True(t, next.Success)
	assert.Equal(t, "Translate", next.QuestionText)
	assert.Nil(t, next.InsertText)
	assert.Equal(t, 4, next.Marks)

	prev, err := c.Navigate(context.Background(), Previous)
	require.NoError(t, err)
	assert.False(t, prev.Success)
	assert.Equal(t, "This is the first question", prev.Message)
}

func TestNavigate_SuccessWithoutQuestionIsInvalid(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	_, err := c.Navigate(context.Background(), Next)
	var ip *ErrInvalidPayload
	assert.True(t, errors.As(err, &ip))
}

func TestNavigationInfo(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_navigation_info", r.URL.Path)
		w.Write([]byte(`{"number":2,"total":3}`))
	})

	info, err := c.NavigationInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, info.Number)
	assert.Equal(t, 3, info.Total)
}

func TestClient_KeepsSessionCookie(t *testing.T) {
	var seen []string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("session"); err == nil {
			seen = append(seen, ck.Value)
		} else {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			seen = append(seen, "")
		}
		w.Write([]byte(`{"number":0,"total":1}`))
	})

	_, err := c.NavigationInfo(context.Background())
	require.NoError(t, err)
	_, err = c.NavigationInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "abc"}, seen)
}
