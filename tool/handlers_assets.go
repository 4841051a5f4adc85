package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reelforge/reelforge/fanout"
	"github.com/reelforge/reelforge/project"
	"github.com/reelforge/reelforge/provider"
)

// generatePreprocAssets renders a reference image for every pending location
// and an angle set for every pending attire, fanned out concurrently. Each
// item independently degrades to error status on failure; the batch itself
// always reports completion with counts. Zero pending items is a successful
// no-op.
func (d *Dispatcher) generatePreprocAssets(ctx context.Context, p *project.Project) Result {
	var tasks []fanout.Task
	seq := 0
	for _, loc := range p.Locations {
		if loc.Status == project.AssetReady {
			continue
		}
		tasks = append(tasks, fanout.Task{
			ID:  "location/" + loc.ID,
			Seq: seq,
			Run: func(ctx context.Context) (any, error) {
				url, err := d.renderLocation(ctx, p, loc, "")
				if err != nil {
					return nil, err
				}
				return project.SetLocationImage{ID: loc.ID, URL: url, Status: project.AssetReady}, nil
			},
		})
		seq++
	}
	for _, att := range p.Attires {
		if att.Status == project.AssetReady {
			continue
		}
		tasks = append(tasks, fanout.Task{
			ID:  "attire/" + att.ID,
			Seq: seq,
			Run: func(ctx context.Context) (any, error) {
				urls, err := d.renderAttireAngles(ctx, p, att, "")
				if err != nil {
					return nil, err
				}
				return project.SetAttireAngles{ID: att.ID, URLs: urls, Status: project.AssetReady}, nil
			},
		})
		seq++
	}

	if len(tasks) == 0 {
		return ok(map[string]any{"attempted": 0, "succeeded": 0, "items": []any{}})
	}

	batch := d.env.Batch.RunBatch(ctx, tasks)
	return batchResult(batch, func(item fanout.ItemResult) project.Mutation {
		kind, id, _ := splitItemID(item.ID)
		if kind == "location" {
			return project.SetLocationStatus{ID: id, Status: project.AssetError}
		}
		return project.SetAttireStatus{ID: id, Status: project.AssetError}
	})
}

func (d *Dispatcher) generateLocationImage(ctx context.Context, args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[locationArgs](GenerateLocationImage, args)
	if err != nil {
		return fail(err)
	}
	l, found := resolveLocation(p, a.LocationID)
	if !found {
		return failMsg(GenerateLocationImage, fmt.Sprintf("location %q not found; run preprocessing first", a.LocationID))
	}

	url, err := d.renderLocation(ctx, p, *l, "")
	if err != nil {
		return failProvider(GenerateLocationImage, fmt.Sprintf("image generation failed for location %s: %v", l.Name, err))
	}
	return ok(map[string]any{"locationId": l.ID, "url": url},
		project.SetLocationImage{ID: l.ID, URL: url, Status: project.AssetReady})
}

func (d *Dispatcher) editLocationImage(ctx context.Context, args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[locationArgs](EditLocationImage, args)
	if err != nil {
		return fail(err)
	}
	l, found := resolveLocation(p, a.LocationID)
	if !found {
		return failMsg(EditLocationImage, fmt.Sprintf("location %q not found", a.LocationID))
	}
	if l.ImageURL == "" {
		return failMsg(EditLocationImage, fmt.Sprintf("location %s has no image yet; generate one first", l.Name))
	}
	if a.Instructions == "" {
		return failMsg(EditLocationImage, "edit instructions are required")
	}

	url, err := d.renderLocation(ctx, p, *l, a.Instructions)
	if err != nil {
		return failProvider(EditLocationImage, fmt.Sprintf("image generation failed for location %s: %v", l.Name, err))
	}
	return ok(map[string]any{"locationId": l.ID, "url": url},
		project.SetLocationImage{ID: l.ID, URL: url, Status: project.AssetReady})
}

func (d *Dispatcher) editAttireAngles(ctx context.Context, args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[attireArgs](EditAttireAngles, args)
	if err != nil {
		return fail(err)
	}
	att, found := resolveAttire(p, a.AttireID)
	if !found {
		return failMsg(EditAttireAngles, fmt.Sprintf("attire %q not found", a.AttireID))
	}
	if a.Instructions == "" {
		return failMsg(EditAttireAngles, "edit instructions are required")
	}

	urls, err := d.renderAttireAngles(ctx, p, *att, a.Instructions)
	if err != nil {
		return failProvider(EditAttireAngles, fmt.Sprintf("angle generation failed for attire %s: %v", att.Name, err))
	}
	return ok(map[string]any{"attireId": att.ID, "urls": urls},
		project.SetAttireAngles{ID: att.ID, URLs: urls, Status: project.AssetReady})
}

func (d *Dispatcher) renderLocation(ctx context.Context, p *project.Project, l project.Location, instructions string) (string, error) {
	prompt := fmt.Sprintf("Establishing shot of %s. %s", l.Name, l.Description)
	if instructions != "" {
		prompt = fmt.Sprintf("%s\n\nEdit: %s", prompt, instructions)
	}
	refs := []string(nil)
	if l.ImageURL != "" {
		refs = []string{l.ImageURL}
	}
	media, err := d.env.Images.GenerateImage(ctx, provider.ImageRequest{
		Prompt:        prompt,
		Aesthetic:     p.Aesthetic,
		ReferenceURLs: refs,
	})
	if err != nil {
		return "", err
	}
	return d.env.uploadMedia(ctx, p, "locations/"+l.ID, media)
}

func (d *Dispatcher) renderAttireAngles(ctx context.Context, p *project.Project, att project.Attire, instructions string) ([]string, error) {
	var refs []string
	if c, found := p.CharacterByID(att.CharacterID); found {
		refs = c.Angles
	}
	angleNames := []string{"front", "left profile", "right profile", "back"}
	urls := make([]string, 0, project.MaxReferenceAngles)
	for _, angle := range angleNames[:project.MaxReferenceAngles] {
		prompt := fmt.Sprintf("Outfit reference: %s, %s view. %s", att.Name, angle, att.Description)
		if instructions != "" {
			prompt = fmt.Sprintf("%s\n\nEdit: %s", prompt, instructions)
		}
		media, err := d.env.Images.GenerateImage(ctx, provider.ImageRequest{
			Prompt:        prompt,
			Aesthetic:     p.Aesthetic,
			ReferenceURLs: refs,
		})
		if err != nil {
			return nil, err
		}
		url, err := d.env.uploadMedia(ctx, p, "attires/"+att.ID, media)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
