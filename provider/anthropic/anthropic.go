// Package anthropic provides a Claude-backed conversational adapter.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/reelforge/reelforge/project"
	"github.com/reelforge/reelforge/provider"
)

// Options configures the Anthropic provider adapter.
type Options struct {
	APIKey      string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Provider implements provider.Conversational on the Anthropic Messages API.
type Provider struct {
	client anthropic.Client
	opts   Options
}

// New creates an Anthropic conversational provider.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model:       string(anthropic.ModelClaudeSonnet4_20250514),
		MaxTokens:   4096,
		Temperature: 1.0,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	return &Provider{
		client: anthropic.NewClient(clientOpts...),
		opts:   opts,
	}
}

// Converse implements provider.Conversational.
func (p *Provider) Converse(ctx context.Context, req provider.ChatRequest) (*provider.ChatResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.opts.Model),
		Messages:    buildMessages(req.Turns),
		MaxTokens:   p.opts.MaxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic message: %w", err)
	}

	out := &provider.ChatResponse{}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			out.ToolCalls = append(out.ToolCalls, project.ToolCall{
				ID:   tu.ID,
				Name: tu.Name,
				Args: json.RawMessage(tu.Input),
			})
		}
	}
	return out, nil
}

// buildMessages converts conversation turns to Anthropic messages. Tool
// responses must follow the assistant message that issued the call, so they
// are grouped into a single user message per turn.
func buildMessages(turns []project.Turn) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, t := range turns {
		var blocks []anthropic.ContentBlockParamUnion
		for _, p := range t.Parts {
			switch part := p.(type) {
			case project.TextPart:
				if part.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(part.Text))
				}
			case project.InlineMediaPart:
				blocks = append(blocks, anthropic.NewTextBlock(fmt.Sprintf("[attachment: %s (%s)]", part.Name, part.MIMEType)))
			case project.ToolCallPart:
				blocks = append(blocks, anthropic.NewToolUseBlock(part.Call.ID, json.RawMessage(part.Call.Args), part.Call.Name))
			case project.ToolResponsePart:
				payload, _ := json.Marshal(part.Response.Response)
				blocks = append(blocks, anthropic.NewToolResultBlock(part.Response.ID, string(payload), false))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if t.Role == project.RoleModel {
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
	}
	return messages
}

func buildTools(defs []provider.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		schema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if props, ok := def.Parameters["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := def.Parameters["required"].([]string); ok {
			schema.Required = req
		}
		tools[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: schema,
			},
		}
	}
	return tools
}
