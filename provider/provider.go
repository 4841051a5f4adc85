// Package provider defines the generation-provider boundary: conversational
// turns with tool calling, structured script drafting, and image / video /
// voice generation. The engine relies on a single contract from every
// provider: a call eventually returns a result or an error.
package provider

import (
	"context"

	"github.com/reelforge/reelforge/project"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatRequest is the normalized conversational input: system instructions,
// full turn history (latest project snapshot embedded by the caller) and the
// exposed tool catalog.
type ChatRequest struct {
	System string
	Turns  []project.Turn
	Tools  []ToolDefinition
}

// ChatResponse is one model turn: optional free text plus zero or more tool
// call requests. Continuation tokens on tool calls are opaque and echoed
// back verbatim by the orchestrator.
type ChatResponse struct {
	Text      string
	ToolCalls []project.ToolCall
}

// Conversational drives the agent loop.
type Conversational interface {
	Converse(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// GeneratedMedia is raw generated bytes plus their MIME type. Callers upload
// the bytes to the asset store; providers never touch durable storage.
type GeneratedMedia struct {
	Data []byte
	MIME string
}

// ImageRequest describes one image generation call.
type ImageRequest struct {
	Prompt        string
	Aesthetic     string
	ReferenceURLs []string
}

// ImageGenerator produces still images (thumbnails, location references,
// character and attire angles).
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*GeneratedMedia, error)
}

// ClipRequest describes one video clip generation call.
type ClipRequest struct {
	Prompt       string
	ThumbnailURL string
	DurationSec  float64
	VoiceCloneID string
	Dialogue     string
}

// VideoGenerator produces short clips from scene thumbnails and scripts.
type VideoGenerator interface {
	GenerateClip(ctx context.Context, req ClipRequest) (*GeneratedMedia, error)
}

// VoiceService clones a speaker voice from an uploaded sample.
type VoiceService interface {
	CloneVoice(ctx context.Context, name, sampleURL string) (string, error)
}

// ScriptRequest carries the project context for structured drafting calls.
type ScriptRequest struct {
	Overview   string
	Aesthetic  string
	Brand      string
	Characters []project.Character
	Scenes     []project.Scene
	Guidance   string
}

// SceneDraft is one proposed scene from the script writer.
type SceneDraft struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	SpeakerID   string  `json:"speakerCharacterId,omitempty"`
	Dialogue    string  `json:"dialogueText,omitempty"`
	DurationSec float64 `json:"durationSec,omitempty"`
}

// LocationDraft is one setting extracted from the finalized script.
type LocationDraft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AttireDraft is one outfit extracted from the finalized script.
type AttireDraft struct {
	CharacterID string `json:"characterId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AssetExtraction is the preprocessing result: settings and outfits plus the
// scene tagging that references them by list position (resolved to generated
// ids by the caller).
type AssetExtraction struct {
	Locations []LocationDraft `json:"locations"`
	Attires   []AttireDraft   `json:"attires"`
	// SceneLocations maps scene id to an index into Locations.
	SceneLocations map[string]int `json:"sceneLocations,omitempty"`
	// SceneAttires maps scene id to character id to an index into Attires.
	SceneAttires map[string]map[string]int `json:"sceneAttires,omitempty"`
}

// ScriptGenerator produces structured drafts (JSON mode) for script
// generation and preprocessing extraction.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, req ScriptRequest) ([]SceneDraft, error)
	ExtractAssets(ctx context.Context, req ScriptRequest) (*AssetExtraction, error)
}
