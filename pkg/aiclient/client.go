package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"skillmatch-backend/internal/domain"
)

// ErrUnavailable wraps transport failures and 5xx responses.
var ErrUnavailable = errors.New("analysis service unavailable")

// RejectedError is returned when the service answers 4xx. Message is safe to pass through.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("analysis service rejected request (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the resume analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type analyzeResponse struct {
	SimilarityScore *float64 `json:"similarity_score"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// Analyze posts the resume and job description as multipart form data.
func (c *Client) Analyze(ctx context.Context, filename string, data []byte, jobDescription string) (*domain.MatchResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("resume", filename)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := writer.WriteField("job_description", jobDescription); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	return normalize(parsed), nil
}

// Health calls GET /health and treats any 2xx as ready.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, &RejectedError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
	return respBody, nil
}

// errorMessage pulls "detail", "message" or "error" out of a JSON error body.
func errorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 300 {
		return "resume analysis request was rejected"
	}
	return msg
}

func normalize(r analyzeResponse) *domain.MatchResult {
	out := &domain.MatchResult{
		MatchedKeywords: r.MatchedKeywords,
		MissingKeywords: r.MissingKeywords,
	}
	if r.SimilarityScore != nil {
		out.SimilarityScore = min(max(*r.SimilarityScore, 0), 100)
	}
	if out.MatchedKeywords == nil {
		out.MatchedKeywords = []string{}
	}
	if out.MissingKeywords == nil {
		out.MissingKeywords = []string{}
	}
	return out
}
