// Package gemini adapts the Google GenAI API to the provider interfaces:
// conversational turns with function calling, JSON-mode script drafting, and
// Imagen / Veo media generation.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/reelforge/reelforge/project"
	"github.com/reelforge/reelforge/provider"
)

// Options configures the Gemini provider adapter.
type Options struct {
	APIKey     string
	ChatModel  string
	ImageModel string
	VideoModel string
	// PollInterval controls how often long-running video operations are
	// polled. Zero selects 10s.
	PollInterval time.Duration
}

// Provider wraps a genai client behind the provider interfaces.
type Provider struct {
	client *genai.Client
	opts   Options
}

// New creates a Gemini provider using the official client.
func New(ctx context.Context, optFns ...func(o *Options)) (*Provider, error) {
	opts := Options{
		ChatModel:    "gemini-2.5-flash",
		ImageModel:   "imagen-4.0-generate-001",
		VideoModel:   "veo-3.0-generate-001",
		PollInterval: 10 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: opts.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Provider{client: client, opts: opts}, nil
}

// Converse implements provider.Conversational. Thought signatures returned on
// function call parts are carried through as opaque continuation tokens and
// restored verbatim when history is replayed.
func (p *Provider) Converse(ctx context.Context, req provider.ChatRequest) (*provider.ChatResponse, error) {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: t.Parameters,
			}
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := buildContents(req.Turns)

	resp, err := p.client.Models.GenerateContent(ctx, p.opts.ChatModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return &provider.ChatResponse{}, nil
	}

	out := &provider.ChatResponse{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.Text += part.Text
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, fmt.Errorf("marshal function call args: %w", err)
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = project.NewID()
			}
			out.ToolCalls = append(out.ToolCalls, project.ToolCall{
				ID:           id,
				Name:         part.FunctionCall.Name,
				Args:         args,
				Continuation: part.ThoughtSignature,
			})
		}
	}
	return out, nil
}

// buildContents converts conversation turns into genai contents, restoring
// continuation tokens on replayed function call parts.
func buildContents(turns []project.Turn) []*genai.Content {
	var contents []*genai.Content
	for _, t := range turns {
		role := genai.RoleUser
		if t.Role == project.RoleModel {
			role = genai.RoleModel
		}
		var parts []*genai.Part
		for _, p := range t.Parts {
			switch part := p.(type) {
			case project.TextPart:
				if part.Text != "" {
					parts = append(parts, &genai.Part{Text: part.Text})
				}
			case project.InlineMediaPart:
				parts = append(parts, &genai.Part{InlineData: &genai.Blob{
					MIMEType: part.MIMEType,
					Data:     part.Data,
				}})
			case project.ToolCallPart:
				var args map[string]any
				if len(part.Call.Args) > 0 {
					_ = json.Unmarshal(part.Call.Args, &args)
				}
				parts = append(parts, &genai.Part{
					FunctionCall:     &genai.FunctionCall{ID: part.Call.ID, Name: part.Call.Name, Args: args},
					ThoughtSignature: part.Call.Continuation,
				})
			case project.ToolResponsePart:
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       part.Response.ID,
					Name:     part.Response.Name,
					Response: map[string]any{"result": part.Response.Response},
				}})
			}
		}
		if len(parts) > 0 {
			contents = append(contents, &genai.Content{Role: role, Parts: parts})
		}
	}
	return contents
}

// GenerateImage implements provider.ImageGenerator using Imagen.
func (p *Provider) GenerateImage(ctx context.Context, req provider.ImageRequest) (*provider.GeneratedMedia, error) {
	prompt := req.Prompt
	if req.Aesthetic != "" {
		prompt = fmt.Sprintf("%s\n\nVisual style: %s", prompt, req.Aesthetic)
	}
	resp, err := p.client.Models.GenerateImages(ctx, p.opts.ImageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("imagen generate: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("imagen returned no images")
	}
	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &provider.GeneratedMedia{Data: img.ImageBytes, MIME: mime}, nil
}

// GenerateClip implements provider.VideoGenerator using Veo. Video generation
// is a long-running operation; the call blocks while polling until the
// operation finishes or the context is cancelled.
func (p *Provider) GenerateClip(ctx context.Context, req provider.ClipRequest) (*provider.GeneratedMedia, error) {
	prompt := req.Prompt
	if req.Dialogue != "" {
		prompt = fmt.Sprintf("%s\n\nSpoken dialogue: %s", prompt, req.Dialogue)
	}

	op, err := p.client.Models.GenerateVideos(ctx, p.opts.VideoModel, prompt, nil, &genai.GenerateVideosConfig{})
	if err != nil {
		return nil, fmt.Errorf("veo generate: %w", err)
	}

	interval := p.opts.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
		op, err = p.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, fmt.Errorf("veo poll: %w", err)
		}
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, fmt.Errorf("veo returned no videos")
	}
	return &provider.GeneratedMedia{
		Data: op.Response.GeneratedVideos[0].Video.VideoBytes,
		MIME: "video/mp4",
	}, nil
}

// GenerateScript implements provider.ScriptGenerator via JSON mode.
func (p *Provider) GenerateScript(ctx context.Context, req provider.ScriptRequest) ([]provider.SceneDraft, error) {
	var drafts struct {
		Scenes []provider.SceneDraft `json:"scenes"`
	}
	if err := p.generateJSON(ctx, scriptSystemPrompt, scriptUserPrompt(req), &drafts); err != nil {
		return nil, err
	}
	return drafts.Scenes, nil
}

// ExtractAssets implements provider.ScriptGenerator via JSON mode.
func (p *Provider) ExtractAssets(ctx context.Context, req provider.ScriptRequest) (*provider.AssetExtraction, error) {
	var out provider.AssetExtraction
	if err := p.generateJSON(ctx, extractSystemPrompt, extractUserPrompt(req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Provider) generateJSON(ctx context.Context, system, user string, target any) error {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.opts.ChatModel, genai.Text(user), config)
	if err != nil {
		return fmt.Errorf("gemini generate: %w", err)
	}
	if err := json.Unmarshal([]byte(resp.Text()), target); err != nil {
		return fmt.Errorf("parse structured response: %w", err)
	}
	return nil
}

const scriptSystemPrompt = `You are a video script writer. Produce a JSON object
{"scenes": [...]} where each scene has type (dialogue|ambient|infographic),
description, optional speakerCharacterId and dialogueText, and durationSec.
Keep each scene under the duration limit given in the brief.`

const extractSystemPrompt = `You analyze a finalized video script. Produce a JSON
object with "locations" (name, description), "attires" (characterId, name,
description), "sceneLocations" (scene id to location list index) and
"sceneAttires" (scene id to character id to attire list index).`

func scriptUserPrompt(req provider.ScriptRequest) string {
	b, _ := json.Marshal(map[string]any{
		"overview":       req.Overview,
		"aesthetic":      req.Aesthetic,
		"brand":          req.Brand,
		"characters":     req.Characters,
		"guidance":       req.Guidance,
		"maxClipSeconds": project.MaxClipSeconds,
	})
	return string(b)
}

func extractUserPrompt(req provider.ScriptRequest) string {
	b, _ := json.Marshal(map[string]any{
		"overview":   req.Overview,
		"aesthetic":  req.Aesthetic,
		"characters": req.Characters,
		"scenes":     req.Scenes,
	})
	return string(b)
}
