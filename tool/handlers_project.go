package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reelforge/reelforge/project"
)

func (d *Dispatcher) saveOverview(args json.RawMessage) Result {
	a, err := decodeArgs[saveOverviewArgs](SaveOverview, args)
	if err != nil {
		return fail(err)
	}
	if strings.TrimSpace(a.Overview) == "" {
		return failMsg(SaveOverview, "overview must not be empty")
	}
	return ok(map[string]any{"saved": true}, project.SetOverview{Overview: a.Overview})
}

func (d *Dispatcher) saveAesthetic(args json.RawMessage) Result {
	a, err := decodeArgs[saveAestheticArgs](SaveAesthetic, args)
	if err != nil {
		return fail(err)
	}
	if strings.TrimSpace(a.Aesthetic) == "" {
		return failMsg(SaveAesthetic, "aesthetic description must not be empty")
	}
	return ok(map[string]any{"saved": true}, project.SetAesthetic{Aesthetic: a.Aesthetic})
}

func (d *Dispatcher) saveBrand(args json.RawMessage) Result {
	a, err := decodeArgs[saveBrandArgs](SaveBrand, args)
	if err != nil {
		return fail(err)
	}
	return ok(map[string]any{"saved": true}, project.SetBrand{Brand: a.Brand})
}

func (d *Dispatcher) updateChecklistItem(args json.RawMessage) Result {
	a, err := decodeArgs[checklistArgs](UpdateChecklistItem, args)
	if err != nil {
		return fail(err)
	}
	if a.Key == "" {
		return failMsg(UpdateChecklistItem, "checklist key is required")
	}
	return ok(map[string]any{"key": a.Key, "done": a.Done},
		project.SetChecklistItem{Key: a.Key, Done: a.Done})
}

// showArtifact surfaces a stored artifact URL for display. It is read-only
// and issues no mutations.
func (d *Dispatcher) showArtifact(args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[showArtifactArgs](ShowArtifact, args)
	if err != nil {
		return fail(err)
	}
	switch a.Kind {
	case "final-video":
		if p.FinalVideoURL == "" {
			return failMsg(ShowArtifact, "no final video has been assembled yet")
		}
		return ok(map[string]any{"kind": a.Kind, "url": p.FinalVideoURL})
	case "thumbnail":
		s, found := resolveScene(p, a.ID)
		if !found || s.Thumbnail.URL == "" {
			return failMsg(ShowArtifact, fmt.Sprintf("no thumbnail found for scene %q", a.ID))
		}
		return ok(map[string]any{"kind": a.Kind, "sceneId": s.ID, "url": s.Thumbnail.URL})
	case "clip":
		s, found := resolveScene(p, a.ID)
		if !found || s.Clip.URL == "" {
			return failMsg(ShowArtifact, fmt.Sprintf("no clip found for scene %q", a.ID))
		}
		return ok(map[string]any{"kind": a.Kind, "sceneId": s.ID, "url": s.Clip.URL})
	case "location-image":
		l, found := resolveLocation(p, a.ID)
		if !found || l.ImageURL == "" {
			return failMsg(ShowArtifact, fmt.Sprintf("no image found for location %q", a.ID))
		}
		return ok(map[string]any{"kind": a.Kind, "locationId": l.ID, "url": l.ImageURL})
	case "character-angles":
		c, found := resolveCharacter(p, a.ID)
		if !found || len(c.Angles) == 0 {
			return failMsg(ShowArtifact, fmt.Sprintf("no reference angles found for character %q", a.ID))
		}
		return ok(map[string]any{"kind": a.Kind, "characterId": c.ID, "urls": c.Angles})
	default:
		return failMsg(ShowArtifact, fmt.Sprintf("unknown artifact kind %q", a.Kind))
	}
}

// requestUpload pauses the agent loop: the orchestrator detects this tool by
// name and suspends until the user sends a message with attachments. The
// handler itself just validates and echoes the request.
func (d *Dispatcher) requestUpload(args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[requestUploadArgs](RequestUpload, args)
	if err != nil {
		return fail(err)
	}
	if strings.TrimSpace(a.Purpose) == "" {
		return failMsg(RequestUpload, "upload purpose is required")
	}
	data := map[string]any{"status": "awaiting-upload", "purpose": a.Purpose}
	if a.CharacterID != "" {
		if c, found := resolveCharacter(p, a.CharacterID); found {
			data["characterId"] = c.ID
		}
	}
	return ok(data)
}
