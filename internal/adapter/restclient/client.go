// Package restclient implements the progress store on top of the remote
// lesson-progress REST API.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kovoc/internal/entity"
	"github.com/eslsoft/kovoc/internal/repository"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20
	snippetSize    = 80
)

var _ repository.ProgressRepository = (*Client)(nil)

// Client talks to the lesson-progress API for the authenticated user.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Option customises a Client.
type Option func(*Client)

// WithToken sends the token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout bounds each request. Non-positive values disable the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// New creates a Client for baseURL, e.g. "https://example.com/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http(s), got %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(parsed.String(), "/"),
		timeout:    defaultTimeout,
		httpClient: &http.Client{},
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("adapter", "restclient")
	return c, nil
}

// FetchDetail loads the lesson's vocabulary with the user's statuses.
func (c *Client) FetchDetail(ctx context.Context, lessonID string) (*entity.LessonProgress, error) {
	path := "/lesson-progress/" + url.PathEscape(lessonID)
	data, err := c.do(ctx, http.MethodGet, path, nil, entity.ErrLessonNotFound)
	if err != nil {
		return nil, err
	}

	if isNullData(data) {
		return nil, fmt.Errorf("%w: lesson progress without data", entity.ErrMalformedResponse)
	}
	var dto progressDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: decode lesson progress: %v", entity.ErrMalformedResponse, err)
	}
	return c.toProgress(lessonID, dto), nil
}

// UpdateStatus sets one item's status. The server stamps the review time.
func (c *Client) UpdateStatus(ctx context.Context, lessonID, vocabularyID string, status entity.MasteryStatus) error {
	path := "/lesson-progress/" + url.PathEscape(lessonID) + "/vocabulary/" + url.PathEscape(vocabularyID)
	_, err := c.do(ctx, http.MethodPatch, path, statusUpdateDTO{Status: string(status)}, entity.ErrVocabularyNotFound)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any, notFound error) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("method", method).WithField("path", path).Debug("request failed")
		return nil, fmt.Errorf("%w: %s %s: %v", entity.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", entity.ErrNetwork, err)
	}
	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(started).String(),
	}).Debug("request completed")

	if resp.StatusCode == http.StatusNotFound {
		return nil, notFound
	}
	if !looksLikeJSON(resp.Header.Get("Content-Type"), raw) {
		return nil, fmt.Errorf("%w: status %d, body %q", entity.ErrMalformedResponse, resp.StatusCode, snippet(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", entity.ErrMalformedResponse, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || env.Success == nil || !*env.Success {
		return nil, fmt.Errorf("%w: status %d: %s", entity.ErrUnexpectedResponse, resp.StatusCode, env.message())
	}
	return env.Data, nil
}

func (c *Client) toProgress(lessonID string, dto progressDTO) *entity.LessonProgress {
	progress := &entity.LessonProgress{
		LessonID:        strings.TrimSpace(string(dto.LessonID)),
		ProgressPercent: dto.Progress,
		Items:           make([]entity.VocabularyStatus, 0, len(dto.Vocabularies)),
	}
	if progress.LessonID == "" {
		progress.LessonID = lessonID
	}

	for _, row := range dto.Vocabularies {
		item := entity.VocabularyItem{
			ID:            strings.TrimSpace(string(row.Vocabulary.ID)),
			Word:          row.Vocabulary.Word,
			Meaning:       row.Vocabulary.Meaning,
			Pronunciation: row.Vocabulary.Pronunciation,
		}
		if item.ID == "" {
			c.log.WithField("lesson_id", lessonID).Warn("skipping vocabulary without id")
			continue
		}
		status, err := entity.ParseMasteryStatus(row.Status)
		if err != nil {
			c.log.WithFields(logrus.Fields{
				"lesson_id":     lessonID,
				"vocabulary_id": item.ID,
				"status":        row.Status,
			}).Debug("unknown status treated as unlearned")
			status = entity.StatusUnlearned
		}
		progress.Items = append(progress.Items, entity.VocabularyStatus{
			Item:           item,
			Status:         status,
			LastReviewedAt: parseReviewed(row.LastReviewed),
		})
	}
	return progress
}

func looksLikeJSON(contentType string, raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '<' {
		return false
	}
	contentType = strings.ToLower(contentType)
	if strings.Contains(contentType, "html") {
		return false
	}
	if strings.Contains(contentType, "json") {
		return true
	}
	return trimmed[0] == '{'
}

func isNullData(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// snippet keeps at most snippetSize bytes without splitting a rune.
func snippet(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) <= snippetSize {
		return text
	}
	cut := snippetSize
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
