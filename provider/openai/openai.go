// Package openai provides an image generation adapter backed by the OpenAI
// Images API. It serves as an alternative to Imagen for thumbnail and
// reference asset rendering.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/reelforge/reelforge/provider"
)

// Options configures the OpenAI image adapter.
type Options struct {
	APIKey string
	Model  string
	Size   string
}

// Provider implements provider.ImageGenerator.
type Provider struct {
	client openai.Client
	opts   Options
}

// New creates an OpenAI image provider.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model: string(openai.ImageModelGPTImage1),
		Size:  "1024x1024",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	return &Provider{
		client: openai.NewClient(clientOpts...),
		opts:   opts,
	}
}

// GenerateImage implements provider.ImageGenerator.
func (p *Provider) GenerateImage(ctx context.Context, req provider.ImageRequest) (*provider.GeneratedMedia, error) {
	prompt := req.Prompt
	if req.Aesthetic != "" {
		prompt = fmt.Sprintf("%s\n\nVisual style: %s", prompt, req.Aesthetic)
	}

	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(p.opts.Model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(p.opts.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("openai image generate: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai returned no image data")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return &provider.GeneratedMedia{Data: data, MIME: "image/png"}, nil
}
