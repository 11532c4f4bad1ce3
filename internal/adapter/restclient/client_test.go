package restclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/kovoc/internal/entity"
)

const progressBody = `{
	"success": true,
	"data": {
		"lessonId": "lesson-1",
		"progress": 33.3,
		"vocabularies": [
			{"vocabulary": {"id": "v1", "word": "사랑", "meaning": "tình yêu", "pronunciation": "sarang"}, "status": "mastered", "lastReviewed": "2024-03-01T09:00:00Z"},
			{"vocabulary": {"id": 42, "word": "물", "meaning": "nước"}, "status": "LEARNING", "lastReviewed": null},
			{"vocabulary": {"id": "v3", "word": "학교", "meaning": "trường học"}, "status": "reviewing"},
			{"vocabulary": {"word": "책", "meaning": "sách"}, "status": "unlearned"}
		]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := logtest.NewNullLogger()
	client, err := New(srv.URL+"/api/", append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestFetchDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/lesson-progress/lesson-1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, progressBody)
	}, WithToken(" secret "))

	detail, err := client.FetchDetail(context.Background(), "lesson-1")
	require.NoError(t, err)

	assert.Equal(t, "lesson-1", detail.LessonID)
	assert.InDelta(t, 33.3, detail.ProgressPercent, 0.001)
	require.Len(t, detail.Items, 3)

	first := detail.Items[0]
	assert.Equal(t, entity.VocabularyItem{ID: "v1", Word: "사랑", Meaning: "tình yêu", Pronunciation: "sarang"}, first.Item)
	assert.Equal(t, entity.StatusMastered, first.Status)
	require.NotNil(t, first.LastReviewedAt)
	assert.True(t, first.LastReviewedAt.Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))

	assert.Equal(t, "42", detail.Items[1].Item.ID)
	assert.Equal(t, entity.StatusLearning, detail.Items[1].Status)
	assert.Nil(t, detail.Items[1].LastReviewedAt)

	assert.Equal(t, entity.StatusUnlearned, detail.Items[2].Status)
}

func TestFetchDetailWithoutToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"vocabularies":[]}}`)
	})

	detail, err := client.FetchDetail(context.Background(), "lesson-9")
	require.NoError(t, err)
	assert.Equal(t, "lesson-9", detail.LessonID)
	assert.Empty(t, detail.Items)
}

func TestFetchDetailErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, `{"success":false,"message":"lesson not found"}`)
			},
			want: entity.ErrLessonNotFound,
		},
		{
			name: "html error page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, "<!DOCTYPE html><html><body>Bad gateway</body></html>")
			},
			want: entity.ErrMalformedResponse,
		},
		{
			name: "html with json content type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, "<html>login</html>")
			},
			want: entity.ErrMalformedResponse,
		},
		{
			name: "plain text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				_, _ = io.WriteString(w, "Internal Server Error")
			},
			want: entity.ErrMalformedResponse,
		},
		{
			name: "unsuccessful envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"success":false,"message":"quota exceeded"}`)
			},
			want: entity.ErrUnexpectedResponse,
		},
		{
			name: "server error envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusInternalServerError, `{"success":true}`)
			},
			want: entity.ErrUnexpectedResponse,
		},
		{
			name: "null data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"success":true,"data":null}`)
			},
			want: entity.ErrMalformedResponse,
		},
		{
			name: "missing data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"success":true}`)
			},
			want: entity.ErrMalformedResponse,
		},
		{
			name: "broken data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"success":true,"data":{"vocabularies":"nope"}}`)
			},
			want: entity.ErrMalformedResponse,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)
			_, err := client.FetchDetail(context.Background(), "lesson-1")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFetchDetailNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	logger, _ := logtest.NewNullLogger()
	client, err := New(url, WithLogger(logger))
	require.NoError(t, err)

	_, err = client.FetchDetail(context.Background(), "lesson-1")
	require.ErrorIs(t, err, entity.ErrNetwork)
}

func TestFetchDetailTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := client.FetchDetail(context.Background(), "lesson-1")
	require.ErrorIs(t, err, entity.ErrNetwork)
}

func TestUpdateStatus(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/lesson-progress/lesson-1/vocabulary/v%202", r.URL.EscapedPath())
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"status":"learning"}}`)
	})

	require.NoError(t, client.UpdateStatus(context.Background(), "lesson-1", "v 2", entity.StatusLearning))
	assert.Equal(t, map[string]string{"status": "learning"}, got)
}

func TestUpdateStatusNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	err := client.UpdateStatus(context.Background(), "lesson-1", "v9", entity.StatusMastered)
	require.ErrorIs(t, err, entity.ErrVocabularyNotFound)
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)
	_, err = New("::")
	require.Error(t, err)
}

func TestSkippedRowsAreLogged(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, progressBody)
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithLogger(logger))
	require.NoError(t, err)
	_, err = client.FetchDetail(context.Background(), "lesson-1")
	require.NoError(t, err)

	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "skipping vocabulary without id" {
			warned = true
		}
	}
	assert.True(t, warned, "expected warning for row without id")
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	// 3-byte Hangul syllables put the cut inside a rune.
	raw := []byte(strings.Repeat("가", 40))
	got := snippet(raw)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("가", snippetSize/3)+"...", got)

	assert.Equal(t, "short", snippet([]byte("  short \n")))
}
