package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reelforge/reelforge/fanout"
	"github.com/reelforge/reelforge/project"
	"github.com/reelforge/reelforge/provider"
	"github.com/reelforge/reelforge/stage"
)

// batchResult aggregates a fan-out batch into a Result. Successful items
// carry their mutation in the payload; failed items get the caller-supplied
// error-status mutation. The batch is always a successful Result, even with
// item failures.
func batchResult(batch fanout.BatchResult, onFailure func(fanout.ItemResult) project.Mutation) Result {
	items := make([]map[string]any, len(batch.Items))
	var mutations []project.Mutation
	for i, item := range batch.Items {
		entry := map[string]any{"id": item.ID, "success": item.Success}
		if item.Success {
			mutations = append(mutations, item.Payload.(project.Mutation))
		} else {
			entry["error"] = item.Error
			mutations = append(mutations, onFailure(item))
		}
		items[i] = entry
	}
	return ok(map[string]any{
		"attempted": batch.Attempted,
		"succeeded": batch.Succeeded,
		"items":     items,
	}, mutations...)
}

// splitItemID decomposes a "kind/id" fan-out item identifier.
func splitItemID(itemID string) (kind, id string, found bool) {
	kind, id, found = strings.Cut(itemID, "/")
	return kind, id, found
}

// generateAllThumbnails renders a thumbnail for every scene that does not
// have a ready one, fanned out concurrently in scene order.
func (d *Dispatcher) generateAllThumbnails(ctx context.Context, p *project.Project) Result {
	if err := stage.Check(p, stage.OpGenerateThumbnails); err != nil {
		return fail(err)
	}

	var tasks []fanout.Task
	for _, s := range p.Scenes {
		if s.Thumbnail.Status == project.AssetReady {
			continue
		}
		tasks = append(tasks, fanout.Task{
			ID:  "scene/" + s.ID,
			Seq: s.Index,
			Run: func(ctx context.Context) (any, error) {
				url, err := d.renderThumbnail(ctx, p, s, "")
				if err != nil {
					return nil, err
				}
				return project.SetSceneThumbnail{SceneID: s.ID, URL: url, Status: project.AssetReady}, nil
			},
		})
	}

	if len(tasks) == 0 {
		return ok(map[string]any{"attempted": 0, "succeeded": 0, "items": []any{}})
	}

	batch := d.env.Batch.RunBatch(ctx, tasks)
	return batchResult(batch, func(item fanout.ItemResult) project.Mutation {
		_, id, _ := splitItemID(item.ID)
		return project.SetSceneThumbnail{SceneID: id, Status: project.AssetError}
	})
}

func (d *Dispatcher) editThumbnail(ctx context.Context, args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[editThumbnailArgs](EditThumbnail, args)
	if err != nil {
		return fail(err)
	}
	s, found := resolveScene(p, a.SceneID)
	if !found {
		return failMsg(EditThumbnail, fmt.Sprintf("scene %q not found", a.SceneID))
	}
	if s.Thumbnail.URL == "" {
		return failMsg(EditThumbnail, fmt.Sprintf("scene %d has no thumbnail yet; generate thumbnails first", s.Index))
	}
	if a.Instructions == "" {
		return failMsg(EditThumbnail, "edit instructions are required")
	}

	url, err := d.renderThumbnail(ctx, p, *s, a.Instructions)
	if err != nil {
		return failProvider(EditThumbnail, fmt.Sprintf("thumbnail generation failed for scene %d: %v", s.Index, err))
	}
	return ok(map[string]any{"sceneId": s.ID, "url": url},
		project.SetSceneThumbnail{SceneID: s.ID, URL: url, Status: project.AssetReady})
}

// generateAllClips renders a clip for every scene without a ready one. Clips
// animate the scene's ready thumbnail and, for dialogue scenes, speak the
// script with the speaker's cloned voice.
func (d *Dispatcher) generateAllClips(ctx context.Context, p *project.Project) Result {
	if err := stage.Check(p, stage.OpGenerateClips); err != nil {
		return fail(err)
	}

	var tasks []fanout.Task
	for _, s := range p.Scenes {
		if s.Clip.Status == project.AssetReady {
			continue
		}
		tasks = append(tasks, fanout.Task{
			ID:  "scene/" + s.ID,
			Seq: s.Index,
			Run: func(ctx context.Context) (any, error) {
				url, err := d.renderClip(ctx, p, s)
				if err != nil {
					return nil, err
				}
				return project.SetSceneClip{SceneID: s.ID, URL: url, Status: project.AssetReady}, nil
			},
		})
	}

	if len(tasks) == 0 {
		return ok(map[string]any{"attempted": 0, "succeeded": 0, "items": []any{}})
	}

	batch := d.env.Batch.RunBatch(ctx, tasks)
	return batchResult(batch, func(item fanout.ItemResult) project.Mutation {
		_, id, _ := splitItemID(item.ID)
		return project.SetSceneClip{SceneID: id, Status: project.AssetError}
	})
}

// assembleFinalOutput stitches every ready clip into the final video. It is
// gated by an explicit confirmed flag and never triggered implicitly; a
// failed run requires fresh confirmation to retry.
func (d *Dispatcher) assembleFinalOutput(ctx context.Context, args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[assembleArgs](AssembleFinalOutput, args)
	if err != nil {
		return fail(err)
	}
	if !a.Confirmed {
		return failMsg(AssembleFinalOutput, "assembly is not confirmed; ask the user to confirm before assembling the final video")
	}
	if err := stage.Check(p, stage.OpAssemble); err != nil {
		return fail(err)
	}

	url, err := d.env.Stitcher.Stitch(ctx, p)
	if err != nil {
		return failExec(AssembleFinalOutput, fmt.Sprintf("assembly failed: %v", err))
	}
	return ok(map[string]any{"url": url},
		project.SetFinalVideo{URL: url},
		project.SetStage{Stage: project.StageAssembly})
}

func (d *Dispatcher) renderThumbnail(ctx context.Context, p *project.Project, s project.Scene, instructions string) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scene %d (%s): %s", s.Index+1, s.Type, s.Description)
	if l, found := p.LocationByID(s.LocationID); found {
		fmt.Fprintf(&sb, "\nLocation: %s. %s", l.Name, l.Description)
	}
	for _, charID := range s.CharacterIDs {
		c, found := p.CharacterByID(charID)
		if !found {
			continue
		}
		fmt.Fprintf(&sb, "\nCharacter: %s", c.Name)
		if attID, tagged := s.AttireByCharacter[charID]; tagged {
			if att, found := p.AttireByID(attID); found {
				fmt.Fprintf(&sb, " wearing %s", att.Name)
			}
		}
	}
	if instructions != "" {
		fmt.Fprintf(&sb, "\n\nEdit: %s", instructions)
	}

	media, err := d.env.Images.GenerateImage(ctx, provider.ImageRequest{
		Prompt:        sb.String(),
		Aesthetic:     p.Aesthetic,
		ReferenceURLs: sceneReferenceURLs(p, s),
	})
	if err != nil {
		return "", err
	}
	return d.env.uploadMedia(ctx, p, "scenes/"+s.ID+"/thumbnail", media)
}

func (d *Dispatcher) renderClip(ctx context.Context, p *project.Project, s project.Scene) (string, error) {
	req := provider.ClipRequest{
		Prompt:       s.Description,
		ThumbnailURL: s.Thumbnail.URL,
		DurationSec:  s.DurationSec,
	}
	if s.Script != nil {
		req.Dialogue = s.Script.Dialogue
		if c, found := p.CharacterByID(s.Script.SpeakerID); found {
			req.VoiceCloneID = c.VoiceCloneID
		}
	}
	media, err := d.env.Video.GenerateClip(ctx, req)
	if err != nil {
		return "", err
	}
	return d.env.uploadMedia(ctx, p, "scenes/"+s.ID+"/clip", media)
}

// sceneReferenceURLs collects the visual references that keep a scene render
// consistent: its location image and the angle sets of tagged attires.
func sceneReferenceURLs(p *project.Project, s project.Scene) []string {
	var refs []string
	if l, found := p.LocationByID(s.LocationID); found && l.ImageURL != "" {
		refs = append(refs, l.ImageURL)
	}
	for _, attID := range s.AttireByCharacter {
		if att, found := p.AttireByID(attID); found {
			refs = append(refs, att.AngleURLs...)
		}
	}
	return refs
}
