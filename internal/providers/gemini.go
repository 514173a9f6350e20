package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	GeminiName    = "gemini"
	GeminiBaseURL = "https://generativelanguage.googleapis.com"
	GeminiModel   = "gemini-2.5-flash"

	geminiDefaultPollInterval = time.Second
)

// errStillProcessing signals the upload poll loop that the file has not
// reached a terminal state yet. It is the only error the loop retries on.
var errStillProcessing = errors.New("file still processing")

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	PollInterval time.Duration // Delay between upload-state polls
	Timeout      time.Duration
	HTTPClient   *http.Client // Optional (tests)
}

// GeminiClient implements AnalysisClient using the Gemini Files and
// generateContent APIs.
type GeminiClient struct {
	apiKey       string
	baseURL      string
	model        string
	pollInterval time.Duration
	client       *http.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = GeminiModel
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = geminiDefaultPollInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &GeminiClient{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		model:        cfg.Model,
		pollInterval: cfg.PollInterval,
		client:       httpClient,
	}
}

// Name returns the client identifier.
func (c *GeminiClient) Name() string {
	return GeminiName
}

// Upload sends a local image to the Gemini Files API and blocks until the
// file reaches a terminal state, polling on the configured interval.
func (c *GeminiClient) Upload(ctx context.Context, path string) (Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Handle{}, &UploadError{Path: path, Err: err}
	}

	file, err := c.uploadBytes(ctx, data, mimeTypeFor(path))
	if err != nil {
		return Handle{}, &UploadError{Path: path, Err: err}
	}

	if !mapGeminiState(file.State).Terminal() {
		file, err = c.waitForFile(ctx, file.Name)
		if err != nil {
			return Handle{}, &UploadError{Path: path, Err: err}
		}
	}

	if mapGeminiState(file.State) == StateFailed {
		return Handle{}, &UploadError{Path: path, State: StateFailed, Err: fmt.Errorf("remote processing failed for %s", file.Name)}
	}

	return Handle{
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: file.MIMEType,
	}, nil
}

// Generate issues a single generateContent request over the prompt and the
// uploaded files. The raw response text is returned unmodified.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, handles []Handle) (string, error) {
	parts := make([]geminiPart, 0, len(handles)+1)
	parts = append(parts, geminiPart{Text: prompt})
	for _, h := range handles {
		parts = append(parts, geminiPart{
			FileData: &geminiFileData{
				FileURI:  h.URI,
				MIMEType: h.MIMEType,
			},
		})
	}

	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{{Parts: parts}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &GenerationError{Provider: GeminiName, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	respBody, err := c.doRequest(ctx, http.MethodPost, url, "application/json", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &GenerationError{Provider: GeminiName, Err: err}
	}

	var genResp geminiGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", &GenerationError{Provider: GeminiName, Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}
	if len(genResp.Candidates) == 0 {
		return "", &GenerationError{Provider: GeminiName, Err: fmt.Errorf("no candidates in response")}
	}

	var text strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// Delete removes an uploaded file. Callers treat failures as best-effort.
func (c *GeminiClient) Delete(ctx context.Context, handle Handle) error {
	url := fmt.Sprintf("%s/v1beta/%s", c.baseURL, handle.Name)
	if _, err := c.doRequest(ctx, http.MethodDelete, url, "", nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", handle.Name, err)
	}
	return nil
}

// uploadBytes performs a raw media upload to the Files API.
func (c *GeminiClient) uploadBytes(ctx context.Context, data []byte, mimeType string) (*geminiFile, error) {
	url := c.baseURL + "/upload/v1beta/files"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, geminiAPIError(resp.StatusCode, respBody)
	}

	var uploadResp geminiUploadResponse
	if err := json.Unmarshal(respBody, &uploadResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if uploadResp.File.Name == "" {
		return nil, fmt.Errorf("upload response missing file name")
	}
	return &uploadResp.File, nil
}

// waitForFile polls the file state on a fixed interval until it reaches a
// terminal state. There is deliberately no attempt ceiling: a file stuck in
// PROCESSING blocks the caller until the context is cancelled.
func (c *GeminiClient) waitForFile(ctx context.Context, name string) (*geminiFile, error) {
	var file *geminiFile
	err := retry.Do(
		func() error {
			f, err := c.getFile(ctx, name)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			file = f
			switch mapGeminiState(f.State) {
			case StateReady:
				return nil
			case StateFailed:
				return retry.Unrecoverable(fmt.Errorf("file %s reached failed state", name))
			default:
				return errStillProcessing
			}
		},
		retry.Context(ctx),
		retry.Attempts(0), // poll until terminal
		retry.Delay(c.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// getFile fetches the current metadata for an uploaded file.
func (c *GeminiClient) getFile(ctx context.Context, name string) (*geminiFile, error) {
	url := fmt.Sprintf("%s/v1beta/%s", c.baseURL, name)
	respBody, err := c.doRequest(ctx, http.MethodGet, url, "", nil)
	if err != nil {
		return nil, err
	}

	var file geminiFile
	if err := json.Unmarshal(respBody, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file metadata: %w", err)
	}
	return &file, nil
}

// doRequest makes an HTTP request to the Gemini API and returns the body.
func (c *GeminiClient) doRequest(ctx context.Context, method, url, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, geminiAPIError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// geminiAPIError extracts a structured error message if present.
func geminiAPIError(status int, body []byte) error {
	var errResp geminiErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return fmt.Errorf("Gemini error (status %d): %s", status, errResp.Error.Message)
	}
	return fmt.Errorf("Gemini error (status %d): %s", status, string(body))
}

// mapGeminiState translates remote file states to the client contract.
// Gemini reports ACTIVE for files ready to use.
func mapGeminiState(state string) FileState {
	switch state {
	case "ACTIVE":
		return StateReady
	case "PROCESSING":
		return StateProcessing
	case "FAILED":
		return StateFailed
	default:
		return StatePending
	}
}

// mimeTypeFor guesses the MIME type from a file extension.
func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// Gemini API types

type geminiFile struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	State    string `json:"state"`
	MIMEType string `json:"mimeType"`
}

type geminiUploadResponse struct {
	File geminiFile `json:"file"`
}

type geminiGenerateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text     string          `json:"text,omitempty"`
	FileData *geminiFileData `json:"file_data,omitempty"`
}

type geminiFileData struct {
	FileURI  string `json:"file_uri"`
	MIMEType string `json:"mime_type"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Verify interface
var _ AnalysisClient = (*GeminiClient)(nil)
