package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// Tier selects which feedback endpoint to call.
type Tier string

const (
	TierFlash Tier = "flash"
	TierPro   Tier = "pro"
)

// Direction selects the question navigation endpoint.
type Direction string

const (
	Previous Direction = "previous"
	Next     Direction = "next"
)

// Client talks to the examcoach server. The server keeps the question
// cursor in a session cookie, so a Client keeps a cookie jar for its
// lifetime.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. A cookie jar is attached if the
// client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// FeedbackPayload is the body of /ai_response/{tier}. Exactly one of
// Response or Error is normally set.
type FeedbackPayload struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HasError reports whether the server reported a feedback error.
func (p *FeedbackPayload) HasError() bool {
	return p.Error != ""
}

// QuestionPayload is the body of /, /previous and /next.
type QuestionPayload struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message,omitempty"`
	Question     string  `json:"question,omitempty"`
	QuestionText string  `json:"question_text,omitempty"`
	InsertText   *string `json:"insert_text,omitempty"`
	Marks        int     `json:"marks,omitempty"`
	Number       int     `json:"number"`
	Total        int     `json:"total"`
}

// NavigationPayload is the body of /get_navigation_info.
type NavigationPayload struct {
	Number int `json:"number"`
	Total  int `json:"total"`
}

// Feedback requests flash or pro feedback for answer. A server-reported
// error is returned in the payload, not as an error.
func (c *Client) Feedback(ctx context.Context, tier Tier, answer string) (*FeedbackPayload, error) {
	q := url.Values{"answer": {answer}}
	var out FeedbackPayload
	if err := c.get(ctx, "/ai_response/"+string(tier), q, feedbackSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Navigate moves the server-side cursor and returns the new question.
// A refused move comes back with Success false and a Message.
func (c *Client) Navigate(ctx context.Context, dir Direction) (*QuestionPayload, error) {
	var out QuestionPayload
	if err := c.get(ctx, "/"+string(dir), nil, questionSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Current returns the question at the server-side cursor.
func (c *Client) Current(ctx context.Context) (*QuestionPayload, error) {
	var out QuestionPayload
	if err := c.get(ctx, "/", nil, questionSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NavigationInfo returns the cursor position and question count.
func (c *Client) NavigationInfo(ctx context.Context) (*NavigationPayload, error) {
	var out NavigationPayload
	if err := c.get(ctx, "/get_navigation_info", nil, navigationSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get performs a GET and decodes the JSON body into out after validating
// it against schema. The HTTP status is not inspected: the server reports
// domain errors inside the body (with 503 for feedback errors).
func (c *Client) get(ctx context.Context, path string, query url.Values, schema *schemaDef, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	op := "GET " + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if err := validate(schema, body); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
