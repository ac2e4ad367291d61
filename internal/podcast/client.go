package podcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

// HTTPDoer is the subset of *http.Client used by Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the podcast backend
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for backend requests
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithRequestTimeout sets an overall timeout on backend requests
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewClient creates a Client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		baseURL = models.DefaultBackendURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: models.DefaultBackendTimeoutSec * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// transcriptRequest is the body of POST /api/transcript. ImageURLs and
// SourceURLs are reserved for multi-source input and always sent empty.
type transcriptRequest struct {
	Text       string                  `json:"text"`
	ImageURLs  []string                `json:"image_urls"`
	SourceURLs []string                `json:"source_urls"`
	Config     models.TranscriptConfig `json:"config"`
}

// audioRequest is the body of POST /api/audio
type audioRequest struct {
	Transcript models.Transcript `json:"transcript"`
	VoiceMap   models.VoiceMap   `json:"voice_map"`
}

// GenerateTranscript submits page text and configuration and returns the
// generated transcript. Empty text fails with an EmptyContextError before
// any request is made.
func (c *Client) GenerateTranscript(ctx context.Context, contextText string, cfg models.TranscriptConfig) (models.Transcript, error) {
	if strings.TrimSpace(contextText) == "" {
		return nil, apierrors.NewEmptyContextError("")
	}

	body := transcriptRequest{
		Text:       contextText,
		ImageURLs:  []string{},
		SourceURLs: []string{},
		Config:     cfg,
	}

	data, err := c.postJSON(ctx, models.EndpointTranscript, body, MsgTranscriptFailed)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(data, PathTranscript)
	if !result.Exists() || !result.IsArray() {
		return nil, apierrors.NewParseError("response has no transcript", PathTranscript)
	}

	var transcript models.Transcript
	if err := json.Unmarshal([]byte(result.Raw), &transcript); err != nil {
		return nil, apierrors.NewParseError(fmt.Sprintf("invalid transcript: %v", err), PathTranscript)
	}

	slog.Debug("transcript generated", "lines", len(transcript))
	return transcript, nil
}

// GenerateAudio submits a transcript and voice map and returns the audio URL.
//
// An empty transcript is a no-op: no request is made and ("", nil) is
// returned. Callers must check for a transcript before invoking the stage.
func (c *Client) GenerateAudio(ctx context.Context, transcript models.Transcript, voices models.VoiceMap) (string, error) {
	if len(transcript) == 0 {
		return "", nil
	}

	body := audioRequest{
		Transcript: transcript,
		VoiceMap:   voices,
	}

	data, err := c.postJSON(ctx, models.EndpointAudio, body, MsgAudioFailed)
	if err != nil {
		return "", err
	}

	audioURL := gjson.GetBytes(data, PathAudioURL).String()
	if audioURL == "" {
		return "", apierrors.NewParseError("response has no audio_url", PathAudioURL)
	}

	slog.Debug("audio generated", "audio_url", audioURL)
	return audioURL, nil
}

// postJSON posts body to endpoint and returns the 2xx response body.
// Non-2xx answers become RemoteRequestErrors carrying the extracted message.
func (c *Client) postJSON(ctx context.Context, endpoint string, body any, fallback string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	target := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError("POST "+endpoint, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	slog.Debug("backend responded", "endpoint", endpoint, "status", resp.StatusCode, "took", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := extractErrorMessage(errorBody, fallback)
		return nil, apierrors.NewRemoteRequestError(resp.StatusCode, endpoint, message, string(errorBody))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, apierrors.NewNetworkError("read "+endpoint, target, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	return data, nil
}

// extractErrorMessage pulls a readable message out of an error body:
// detail[0].msg, then a string detail, then fallback.
func extractErrorMessage(body []byte, fallback string) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}

	if msg := gjson.GetBytes(body, PathDetailMsg); msg.Exists() && msg.String() != "" {
		return msg.String()
	}

	if detail := gjson.GetBytes(body, PathDetail); detail.Type == gjson.String && detail.String() != "" {
		return detail.String()
	}

	return fallback
}
