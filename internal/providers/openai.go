package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-4o"
)

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	BaseURL    string       // Optional (tests)
	HTTPClient *http.Client // Optional (tests)
}

// OpenAIClient implements AnalysisClient using the official OpenAI SDK.
// Files uploaded for vision are available immediately, so Upload never
// needs a state poll.
type OpenAIClient struct {
	model  string
	client openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Upload sends a local image to the OpenAI Files API.
func (c *OpenAIClient) Upload(ctx context.Context, path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return Handle{}, &UploadError{Path: path, Err: err}
	}
	defer f.Close()

	file, err := c.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(f, filepath.Base(path), mimeTypeFor(path)),
		Purpose: openai.FilePurposeVision,
	})
	if err != nil {
		return Handle{}, &UploadError{Path: path, Err: err}
	}

	return Handle{
		Name:     file.ID,
		MIMEType: mimeTypeFor(path),
	}, nil
}

// Generate issues a single Responses API request over the prompt and the
// uploaded images. The raw output text is returned unmodified.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, handles []Handle) (string, error) {
	content := responses.ResponseInputMessageContentListParam{
		responses.ResponseInputContentParamOfInputText(prompt),
	}
	for _, h := range handles {
		content = append(content, responses.ResponseInputContentUnionParam{
			OfInputImage: &responses.ResponseInputImageParam{
				FileID: openai.String(h.Name),
				Detail: responses.ResponseInputImageDetailAuto,
			},
		})
	}

	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(content, "user"),
			},
		},
	})
	if err != nil {
		return "", &GenerationError{Provider: OpenAIName, Err: err}
	}
	return resp.OutputText(), nil
}

// Delete removes an uploaded file. Callers treat failures as best-effort.
func (c *OpenAIClient) Delete(ctx context.Context, handle Handle) error {
	if _, err := c.client.Files.Delete(ctx, handle.Name); err != nil {
		return fmt.Errorf("failed to delete %s: %w", handle.Name, err)
	}
	return nil
}

// Verify interface
var _ AnalysisClient = (*OpenAIClient)(nil)
