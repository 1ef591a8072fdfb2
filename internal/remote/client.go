// Package remote submits course outlines to a coursemap server, which builds
// and renders the mind map on its side.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dgallion1/coursemap/internal/mindmap"
	"github.com/dgallion1/coursemap/internal/outline"
)

const (
	CoursesPath    = "/courses"
	ScreenshotPath = "/screenshot"

	DefaultTimeout = 30 * time.Second
)

// Client talks to the remote /courses endpoint.
type Client struct {
	baseURL string
	http    *resty.Client
	log     *slog.Logger
	seq     atomic.Uint64
}

// Submission is the server's answer to an accepted outline.
type Submission struct {
	Document *mindmap.Document
	// Locator is where the rendered page can be fetched.
	Locator string
}

// StatusError is returned when the server answers with anything but 201.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: status %d", e.Status)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		baseURL: baseURL,
		log:     log,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
	c.http.OnBeforeRequest(c.onBeforeRequest)
	c.http.OnAfterResponse(c.onAfterResponse)
	c.http.OnError(c.onError)
	return c
}

// BaseURL returns the server origin requests go to.
func (c *Client) BaseURL() string { return c.baseURL }

type requestIDKey struct{}

func (c *Client) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	id := c.seq.Add(1)
	req.SetContext(context.WithValue(req.Context(), requestIDKey{}, id))
	c.log.Debug("start request", "method", req.Method, "url", req.URL, "request_seq", id)
	return nil
}

func (c *Client) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	id, _ := res.Request.Context().Value(requestIDKey{}).(uint64)
	c.log.Debug("finish request",
		"method", res.Request.Method,
		"url", res.Request.URL,
		"status", res.StatusCode(),
		"duration_ms", res.Time().Milliseconds(),
		"request_seq", id,
	)
	return nil
}

func (c *Client) onError(req *resty.Request, err error) {
	c.log.Debug("request failed", "method", req.Method, "url", req.URL, "error", err)
}

// SubmitCourse posts o to /courses and returns the document the server
// built from it.
func (c *Client) SubmitCourse(ctx context.Context, o *outline.CourseOutline) (*Submission, error) {
	if o == nil {
		return nil, errors.New("remote: nil outline")
	}
	return c.Post(ctx, o)
}

// Post sends any JSON body to /courses. Callers forwarding stored data
// that may not be a well-formed outline use it directly.
func (c *Client) Post(ctx context.Context, body any) (*Submission, error) {
	var doc mindmap.Document
	var apiErr errorBody
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&doc).
		SetError(&apiErr).
		Post(CoursesPath)
	if err != nil {
		return nil, fmt.Errorf("submit course: %w", err)
	}
	if res.StatusCode() != http.StatusCreated {
		msg := apiErr.Error
		if msg == "" {
			msg = strings.TrimSpace(truncate(res.String(), 256))
		}
		return nil, &StatusError{Status: res.StatusCode(), Message: msg}
	}
	return &Submission{Document: &doc, Locator: c.baseURL + ScreenshotPath}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
