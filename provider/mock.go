package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/reelforge/reelforge/project"
)

// MockConversational is a scripted in-memory Conversational useful for tests
// and examples. Responses are consumed in registration order; when the queue
// is exhausted a plain text response is returned.
type MockConversational struct {
	mu        sync.Mutex
	queue     []*ChatResponse
	err       error
	CallCount int
	// LastRequest captures the most recent request for assertions.
	LastRequest *ChatRequest
}

// NewMockConversational constructs an empty scripted conversational mock.
func NewMockConversational() *MockConversational {
	return &MockConversational{}
}

// Enqueue appends a scripted response.
func (m *MockConversational) Enqueue(resp *ChatResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

// EnqueueText appends a scripted plain-text response.
func (m *MockConversational) EnqueueText(text string) {
	m.Enqueue(&ChatResponse{Text: text})
}

// EnqueueToolCall appends a scripted response containing a single tool call.
func (m *MockConversational) EnqueueToolCall(name string, args string) {
	m.Enqueue(&ChatResponse{ToolCalls: []project.ToolCall{{
		ID:   project.NewID(),
		Name: name,
		Args: []byte(args),
	}}})
}

// Fail makes every subsequent Converse call return err.
func (m *MockConversational) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Converse implements Conversational.
func (m *MockConversational) Converse(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.LastRequest = &req
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) == 0 {
		return &ChatResponse{Text: "done"}, nil
	}
	resp := m.queue[0]
	m.queue = m.queue[1:]
	return resp, nil
}

// MockGenerator is a stub implementation of ImageGenerator, VideoGenerator,
// VoiceService and ScriptGenerator with map-based failure injection keyed by
// prompt substring or name.
type MockGenerator struct {
	mu sync.Mutex
	// FailPrompts lists prompt substrings that trigger a generation error.
	FailPrompts []string
	// Script and Extraction seed the structured drafting calls.
	Script     []SceneDraft
	Extraction *AssetExtraction
	ScriptErr  error
	Calls      int
}

// NewMockGenerator constructs a stub generator that always succeeds.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) shouldFail(prompt string) bool {
	for _, s := range m.FailPrompts {
		if s != "" && strings.Contains(prompt, s) {
			return true
		}
	}
	return false
}

// GenerateImage implements ImageGenerator.
func (m *MockGenerator) GenerateImage(_ context.Context, req ImageRequest) (*GeneratedMedia, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.shouldFail(req.Prompt) {
		return nil, fmt.Errorf("image generation failed for %q", req.Prompt)
	}
	return &GeneratedMedia{Data: []byte("png:" + req.Prompt), MIME: "image/png"}, nil
}

// GenerateClip implements VideoGenerator.
func (m *MockGenerator) GenerateClip(_ context.Context, req ClipRequest) (*GeneratedMedia, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.shouldFail(req.Prompt) {
		return nil, fmt.Errorf("clip generation failed for %q", req.Prompt)
	}
	return &GeneratedMedia{Data: []byte("mp4:" + req.Prompt), MIME: "video/mp4"}, nil
}

// CloneVoice implements VoiceService.
func (m *MockGenerator) CloneVoice(_ context.Context, name, sampleURL string) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.shouldFail(name) {
		return "", fmt.Errorf("voice clone failed for %q", name)
	}
	if sampleURL == "" {
		return "", fmt.Errorf("voice sample required")
	}
	return "voice-" + name, nil
}

// GenerateScript implements ScriptGenerator.
func (m *MockGenerator) GenerateScript(_ context.Context, _ ScriptRequest) ([]SceneDraft, error) {
	if m.ScriptErr != nil {
		return nil, m.ScriptErr
	}
	return m.Script, nil
}

// ExtractAssets implements ScriptGenerator.
func (m *MockGenerator) ExtractAssets(_ context.Context, _ ScriptRequest) (*AssetExtraction, error) {
	if m.ScriptErr != nil {
		return nil, m.ScriptErr
	}
	if m.Extraction == nil {
		return &AssetExtraction{}, nil
	}
	return m.Extraction, nil
}
