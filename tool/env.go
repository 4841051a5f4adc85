package tool

import (
	"bytes"
	"context"
	"fmt"

	"github.com/reelforge/reelforge/asset"
	"github.com/reelforge/reelforge/fanout"
	"github.com/reelforge/reelforge/logging"
	"github.com/reelforge/reelforge/project"
	"github.com/reelforge/reelforge/provider"
)

// Stitcher assembles the final video from per-scene clips.
type Stitcher interface {
	Stitch(ctx context.Context, p *project.Project) (string, error)
}

// Env bundles the external collaborators tool handlers depend on. Handlers
// reach providers and storage only through it, which keeps them mockable.
type Env struct {
	Images   provider.ImageGenerator
	Video    provider.VideoGenerator
	Voice    provider.VoiceService
	Script   provider.ScriptGenerator
	Assets   asset.Store
	Batch    *fanout.Runner
	Stitcher Stitcher
	Logger   logging.Logger
}

// uploadMedia stores generated bytes under a project-scoped object name and
// returns the durable URL.
func (e Env) uploadMedia(ctx context.Context, p *project.Project, kind string, media *provider.GeneratedMedia) (string, error) {
	ext := ".png"
	if media.MIME == "video/mp4" {
		ext = ".mp4"
	}
	objectName := fmt.Sprintf("projects/%s/%s/%s%s", p.ID, kind, project.NewID(), ext)
	url, err := e.Assets.Upload(ctx, objectName, bytes.NewReader(media.Data), int64(len(media.Data)), media.MIME)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", kind, err)
	}
	return url, nil
}
