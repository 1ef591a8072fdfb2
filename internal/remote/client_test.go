package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/coursemap/internal/mindmap"
	"github.com/dgallion1/coursemap/internal/outline"
)

func sampleOutline() *outline.CourseOutline {
	return &outline.CourseOutline{
		Course:     "X",
		Instructor: "Y",
		Sections:   []outline.Section{{Heading: "Intro", Items: []string{"A", "B"}}},
	}
}

func TestSubmitCourse_Created(t *testing.T) {
	var gotPath, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		var o outline.CourseOutline
		require.NoError(t, json.NewDecoder(r.Body).Decode(&o))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(mindmap.Build(&o))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, nil)
	sub, err := c.SubmitCourse(context.Background(), sampleOutline())
	require.NoError(t, err)

	assert.Equal(t, CoursesPath, gotPath)
	assert.Contains(t, gotType, "application/json")
	assert.Equal(t, srv.URL+ScreenshotPath, sub.Locator)
	require.NotNil(t, sub.Document)
	assert.True(t, mindmap.SameShape(mindmap.Build(sampleOutline()), sub.Document))
}

func TestSubmitCourse_BadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Missing required fields"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).SubmitCourse(context.Background(), sampleOutline())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "Missing required fields", se.Message)
}

func TestSubmitCourse_OKIsNotCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, nil).SubmitCourse(context.Background(), sampleOutline())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusOK, se.Status)
}

func TestSubmitCourse_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	// Unblock the handler before Close waits on it.
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(srv.URL, 50*time.Millisecond, nil).SubmitCourse(context.Background(), sampleOutline())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSubmitCourse_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, nil).SubmitCourse(context.Background(), sampleOutline())
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestSubmitCourse_NilOutline(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", time.Second, nil).SubmitCourse(context.Background(), nil)
	assert.Error(t, err)
}
