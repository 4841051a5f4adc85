package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reelforge/reelforge/diff"
	"github.com/reelforge/reelforge/project"
	"github.com/reelforge/reelforge/provider"
	"github.com/reelforge/reelforge/stage"
)

func (d *Dispatcher) generateScript(ctx context.Context, args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[generateScriptArgs](GenerateScript, args)
	if err != nil {
		return fail(err)
	}
	if err := stage.Check(p, stage.OpGenerateScript); err != nil {
		return fail(err)
	}

	drafts, err := d.env.Script.GenerateScript(ctx, provider.ScriptRequest{
		Overview:   p.Overview,
		Aesthetic:  p.Aesthetic,
		Brand:      p.Brand,
		Characters: p.Characters,
		Guidance:   a.Guidance,
	})
	if err != nil {
		return failProvider(GenerateScript, fmt.Sprintf("script generation failed: %v", err))
	}
	if len(drafts) == 0 {
		return failExec(GenerateScript, "script generation returned no scenes")
	}

	scenes := make([]project.Scene, len(drafts))
	for i, draft := range drafts {
		scenes[i] = sceneFromDraft(p, draft, i)
	}
	summaries := make([]map[string]any, len(scenes))
	for i, s := range scenes {
		summaries[i] = map[string]any{
			"sceneId":     s.ID,
			"index":       s.Index,
			"type":        s.Type,
			"description": s.Description,
			"durationSec": s.DurationSec,
		}
	}
	return ok(map[string]any{"scenes": summaries},
		project.ReplaceScenes{Scenes: scenes},
		project.SetStage{Stage: project.StageScript})
}

// sceneFromDraft materializes a provider draft into a scene. Durations are
// clamped to the per-clip cap, and a dialogue speaker is resolved through the
// identifier heuristic since drafts may carry fabricated ids.
func sceneFromDraft(p *project.Project, draft provider.SceneDraft, index int) project.Scene {
	s := project.Scene{
		ID:          project.NewID(),
		Index:       index,
		Type:        project.SceneType(draft.Type),
		Description: draft.Description,
		DurationSec: draft.DurationSec,
		Thumbnail:   project.MediaRef{Status: project.AssetPending},
		Clip:        project.MediaRef{Status: project.AssetPending},
	}
	if s.Type == "" {
		s.Type = project.SceneAmbient
	}
	if s.DurationSec <= 0 || s.DurationSec > project.MaxClipSeconds {
		s.DurationSec = project.MaxClipSeconds
	}
	if draft.SpeakerID != "" {
		if c, found := resolveCharacter(p, draft.SpeakerID); found {
			s.Type = project.SceneDialogue
			s.Script = &project.Script{SpeakerID: c.ID, Dialogue: draft.Dialogue}
			s.CharacterIDs = []string{c.ID}
		}
	}
	return s
}

func (d *Dispatcher) editScene(args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[editSceneArgs](EditScene, args)
	if err != nil {
		return fail(err)
	}
	s, found := resolveScene(p, a.SceneID)
	if !found {
		return failMsg(EditScene, fmt.Sprintf("scene %q not found; generate a script first", a.SceneID))
	}

	fieldDiff, err := diff.SceneField(p, s, a.Field, a.NewValue)
	if err != nil {
		return failMsg(EditScene, err.Error())
	}
	if !fieldDiff.Changed() {
		return ok(map[string]any{"sceneId": s.ID, "changed": false})
	}

	updated := *s
	switch a.Field {
	case diff.FieldDescription:
		updated.Description = a.NewValue
	case diff.FieldDialogue:
		sc := *updated.Script
		sc.Dialogue = a.NewValue
		updated.Script = &sc
	case diff.FieldSpeaker:
		c, found := resolveCharacter(p, a.NewValue)
		if !found {
			return failMsg(EditScene, fmt.Sprintf("character %q not found", a.NewValue))
		}
		if updated.Script == nil {
			updated.Script = &project.Script{SpeakerID: c.ID}
		} else {
			sc := *updated.Script
			sc.SpeakerID = c.ID
			updated.Script = &sc
		}
		updated.Type = project.SceneDialogue
	case diff.FieldLocation:
		l, found := resolveLocation(p, a.NewValue)
		if !found {
			return failMsg(EditScene, fmt.Sprintf("location %q not found", a.NewValue))
		}
		updated.LocationID = l.ID
	case diff.FieldDuration:
		var dur float64
		if _, err := fmt.Sscanf(a.NewValue, "%f", &dur); err != nil || dur <= 0 {
			return failMsg(EditScene, fmt.Sprintf("invalid duration %q", a.NewValue))
		}
		if dur > project.MaxClipSeconds {
			return failMsg(EditScene, fmt.Sprintf("duration %.1fs exceeds the %.0fs clip limit", dur, project.MaxClipSeconds))
		}
		updated.DurationSec = dur
	case diff.FieldType:
		switch st := project.SceneType(a.NewValue); st {
		case project.SceneDialogue, project.SceneAmbient, project.SceneInfographic:
			updated.Type = st
		default:
			return failMsg(EditScene, fmt.Sprintf("unknown scene type %q", a.NewValue))
		}
	}

	// An edit invalidates downstream media for this scene.
	updated.Thumbnail = project.MediaRef{Status: project.AssetPending}
	updated.Clip = project.MediaRef{Status: project.AssetPending}

	return ok(map[string]any{"sceneId": s.ID, "changed": true, "diff": fieldDiff},
		project.PutScene{Scene: updated})
}

func (d *Dispatcher) updateScript(args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[updateScriptArgs](UpdateScript, args)
	if err != nil {
		return fail(err)
	}
	if len(a.Updates) == 0 {
		return failMsg(UpdateScript, "no updates supplied")
	}

	changes, err := diff.Scenes(p, a.Updates)
	if err != nil {
		return failMsg(UpdateScript, err.Error())
	}
	if len(changes) == 0 {
		return ok(map[string]any{"changed": 0})
	}

	byScene := make(map[string]diff.SceneUpdate, len(a.Updates))
	for _, u := range a.Updates {
		byScene[u.SceneID] = u
	}

	var mutations []project.Mutation
	for _, change := range changes {
		s, _ := p.SceneByID(change.SceneID)
		updated := *s
		u := byScene[change.SceneID]
		if u.Speaker != "" {
			c, found := resolveCharacter(p, u.Speaker)
			if !found {
				return failMsg(UpdateScript, fmt.Sprintf("character %q not found", u.Speaker))
			}
			if updated.Script == nil {
				updated.Script = &project.Script{SpeakerID: c.ID}
			} else {
				sc := *updated.Script
				sc.SpeakerID = c.ID
				updated.Script = &sc
			}
			updated.Type = project.SceneDialogue
		}
		if u.Dialogue != "" {
			sc := *updated.Script
			sc.Dialogue = u.Dialogue
			updated.Script = &sc
		}
		updated.Thumbnail = project.MediaRef{Status: project.AssetPending}
		updated.Clip = project.MediaRef{Status: project.AssetPending}
		mutations = append(mutations, project.PutScene{Scene: updated})
	}

	return ok(map[string]any{"changed": len(changes), "changes": changes}, mutations...)
}

func (d *Dispatcher) addScene(args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[addSceneArgs](AddScene, args)
	if err != nil {
		return fail(err)
	}
	if a.Description == "" {
		return failMsg(AddScene, "scene description is required")
	}

	index := len(p.Scenes)
	if a.AfterScene != "" {
		if after, found := resolveScene(p, a.AfterScene); found {
			index = after.Index + 1
		}
	}

	s := sceneFromDraft(p, provider.SceneDraft{
		Type:        a.Type,
		Description: a.Description,
		SpeakerID:   a.SpeakerID,
		Dialogue:    a.Dialogue,
		DurationSec: a.DurationSec,
	}, index)

	// Splicing shifts every scene at or after the insertion point so
	// sequence indexes stay unique.
	mutations := []project.Mutation{project.PutScene{Scene: s}}
	for _, existing := range p.Scenes {
		if existing.Index >= index {
			shifted := existing
			shifted.Index++
			mutations = append(mutations, project.PutScene{Scene: shifted})
		}
	}

	return ok(map[string]any{"sceneId": s.ID, "index": s.Index}, mutations...)
}

func (d *Dispatcher) removeScene(args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[removeSceneArgs](RemoveScene, args)
	if err != nil {
		return fail(err)
	}
	s, found := resolveScene(p, a.SceneID)
	if !found {
		return failMsg(RemoveScene, fmt.Sprintf("scene %q not found", a.SceneID))
	}
	return ok(map[string]any{"sceneId": s.ID, "removed": true},
		project.RemoveScene{ID: s.ID})
}

// preprocessScript finalizes the script and extracts locations and attires
// from it. Finalization requires an explicit confirmed flag from the user;
// the flag is part of this call rather than separate state so the agent can
// never preprocess an unconfirmed script.
func (d *Dispatcher) preprocessScript(ctx context.Context, args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[preprocessScriptArgs](PreprocessScript, args)
	if err != nil {
		return fail(err)
	}
	if !a.Confirmed {
		return failMsg(PreprocessScript, "the script is not finalized; ask the user to confirm the script before preprocessing")
	}

	confirmed := p.Clone()
	confirmed.FinalizationConfirmed = true
	if err := stage.Check(confirmed, stage.OpPreprocess); err != nil {
		return fail(err)
	}

	extraction, err := d.env.Script.ExtractAssets(ctx, provider.ScriptRequest{
		Overview:   p.Overview,
		Aesthetic:  p.Aesthetic,
		Characters: p.Characters,
		Scenes:     p.Scenes,
	})
	if err != nil {
		return failProvider(PreprocessScript, fmt.Sprintf("asset extraction failed: %v", err))
	}

	locations := make([]project.Location, len(extraction.Locations))
	for i, draft := range extraction.Locations {
		locations[i] = project.Location{
			ID:          project.NewID(),
			Name:        draft.Name,
			Description: draft.Description,
			Status:      project.AssetPending,
		}
	}
	attires := make([]project.Attire, len(extraction.Attires))
	for i, draft := range extraction.Attires {
		characterID := draft.CharacterID
		if c, found := resolveCharacter(p, draft.CharacterID); found {
			characterID = c.ID
		}
		attires[i] = project.Attire{
			ID:          project.NewID(),
			CharacterID: characterID,
			Name:        draft.Name,
			Description: draft.Description,
			Status:      project.AssetPending,
		}
	}

	mutations := []project.Mutation{
		project.ConfirmFinalization{},
		project.AddLocations{Locations: locations},
		project.AddAttires{Attires: attires},
	}
	mutations = append(mutations, tagScenes(p, extraction, locations, attires)...)
	mutations = append(mutations, project.SetStage{Stage: project.StagePreprocessing})

	return ok(map[string]any{
		"locations": len(locations),
		"attires":   len(attires),
	}, mutations...)
}

// tagScenes applies the extraction's scene-to-location and scene-to-attire
// assignments, translating list positions into generated ids.
func tagScenes(p *project.Project, ex *provider.AssetExtraction, locations []project.Location, attires []project.Attire) []project.Mutation {
	var mutations []project.Mutation
	for _, s := range p.Scenes {
		updated := s
		changed := false
		if idx, found := ex.SceneLocations[s.ID]; found && idx >= 0 && idx < len(locations) {
			updated.LocationID = locations[idx].ID
			changed = true
		}
		if byChar, found := ex.SceneAttires[s.ID]; found {
			m := make(map[string]string, len(byChar))
			for charID, idx := range byChar {
				if idx < 0 || idx >= len(attires) {
					continue
				}
				if c, found := resolveCharacter(p, charID); found {
					m[c.ID] = attires[idx].ID
				}
			}
			if len(m) > 0 {
				updated.AttireByCharacter = m
				changed = true
			}
		}
		if changed {
			mutations = append(mutations, project.PutScene{Scene: updated})
		}
	}
	return mutations
}
