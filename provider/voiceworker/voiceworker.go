// Package voiceworker is an HTTP client for the external voice cloning
// worker. The worker accepts a named audio sample and returns an identifier
// for the cloned voice, which downstream video generation references.
package voiceworker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reelforge/reelforge/provider"
)

// Options configures the worker client.
type Options struct {
	Addr    string
	Timeout time.Duration
}

// Client implements provider.VoiceService against the worker API.
type Client struct {
	httpClient *http.Client
	addr       string
}

var _ provider.VoiceService = (*Client)(nil)

// New creates a voice worker client.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{Timeout: 120 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		addr:       opts.Addr,
	}
}

type cloneRequest struct {
	Name      string `json:"name"`
	SampleURL string `json:"sample_url"`
}

type cloneResponse struct {
	VoiceID string `json:"voice_id"`
	Error   string `json:"error,omitempty"`
}

// CloneVoice submits a sample to the worker and returns the voice identifier.
func (c *Client) CloneVoice(ctx context.Context, name, sampleURL string) (string, error) {
	body, err := json.Marshal(cloneRequest{Name: name, SampleURL: sampleURL})
	if err != nil {
		return "", fmt.Errorf("encode clone request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr+"/v1/voices/clone", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create clone request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("voice worker request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read worker response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("voice worker returned %d: %s", resp.StatusCode, string(payload))
	}

	var out cloneResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("parse worker response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("voice worker: %s", out.Error)
	}
	if out.VoiceID == "" {
		return "", fmt.Errorf("voice worker returned empty voice id")
	}
	return out.VoiceID, nil
}
