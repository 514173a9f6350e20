package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const MockName = "mock"

// MockClient is an AnalysisClient for testing.
type MockClient struct {
	// Configurable behavior
	UploadErr     error            // Returned by every Upload call
	UploadErrFor  map[string]error // Per-path upload failures
	GenerateErr   error            // Returned by every Generate call
	GenerateErrAt int              // Fail the Nth Generate call (1-based, 0 = never)
	Response      string           // Default Generate response
	Responses     []string         // Per-call responses, consumed in order
	DeleteErr     error            // Returned by every Delete call

	mu            sync.Mutex
	uploads       []string // Paths uploaded, in order
	generateCount int
	prompts       []string
	deleted       []string // Handle names deleted, in order
}

// NewMockClient creates a new mock client.
func NewMockClient() *MockClient {
	return &MockClient{Response: "mock response"}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockName
}

// Upload records the path and returns a synthetic handle.
func (c *MockClient) Upload(ctx context.Context, path string) (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.UploadErrFor[path]; ok && err != nil {
		return Handle{}, &UploadError{Path: path, Err: err}
	}
	if c.UploadErr != nil {
		return Handle{}, &UploadError{Path: path, Err: c.UploadErr}
	}

	c.uploads = append(c.uploads, path)
	name := fmt.Sprintf("files/mock-%d", len(c.uploads))
	return Handle{Name: name, URI: "mock://" + name, MIMEType: "image/png"}, nil
}

// Generate records the prompt and returns the configured response.
func (c *MockClient) Generate(ctx context.Context, prompt string, handles []Handle) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generateCount++
	c.prompts = append(c.prompts, prompt)

	if c.GenerateErr != nil {
		return "", &GenerationError{Provider: MockName, Err: c.GenerateErr}
	}
	if c.GenerateErrAt > 0 && c.generateCount == c.GenerateErrAt {
		return "", &GenerationError{Provider: MockName, Err: fmt.Errorf("mock failure at call %d", c.generateCount)}
	}

	if len(c.Responses) > 0 {
		resp := c.Responses[0]
		c.Responses = c.Responses[1:]
		return resp, nil
	}
	return c.Response, nil
}

// Delete records the handle name.
func (c *MockClient) Delete(ctx context.Context, handle Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deleted = append(c.deleted, handle.Name)
	return c.DeleteErr
}

// UploadCount returns the number of successful uploads.
func (c *MockClient) UploadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.uploads)
}

// Uploads returns the uploaded paths in order.
func (c *MockClient) Uploads() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.uploads...)
}

// GenerateCount returns the number of Generate calls.
func (c *MockClient) GenerateCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generateCount
}

// Prompts returns the prompts passed to Generate, in order.
func (c *MockClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// Deleted returns the deleted handle names in order.
func (c *MockClient) Deleted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}

// DeletedOnce reports whether every deleted handle was deleted exactly once.
func (c *MockClient) DeletedOnce() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]int)
	for _, name := range c.deleted {
		seen[name]++
	}
	for _, count := range seen {
		if count != 1 {
			return false
		}
	}
	return true
}

// LastPromptContains reports whether the most recent prompt contains s.
func (c *MockClient) LastPromptContains(s string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return false
	}
	return strings.Contains(c.prompts[len(c.prompts)-1], s)
}

// Verify interface
var _ AnalysisClient = (*MockClient)(nil)
