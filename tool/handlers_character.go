package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reelforge/reelforge/fanout"
	"github.com/reelforge/reelforge/project"
	"github.com/reelforge/reelforge/provider"
)

func (d *Dispatcher) addCharacter(args json.RawMessage) Result {
	a, err := decodeArgs[addCharacterArgs](AddCharacter, args)
	if err != nil {
		return fail(err)
	}
	if strings.TrimSpace(a.Name) == "" {
		return failMsg(AddCharacter, "character name is required")
	}
	c := project.Character{
		ID:              project.NewID(),
		Name:            strings.TrimSpace(a.Name),
		ReferenceImages: a.ReferenceImages,
		VoiceSampleURL:  a.VoiceSampleURL,
		Status:          project.CharacterDraft,
	}
	return ok(map[string]any{"characterId": c.ID, "name": c.Name},
		project.PutCharacter{Character: c})
}

func (d *Dispatcher) updateCharacter(args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[updateCharacterArgs](UpdateCharacter, args)
	if err != nil {
		return fail(err)
	}
	c, found := resolveCharacter(p, a.CharacterID)
	if !found {
		return failMsg(UpdateCharacter, fmt.Sprintf("character %q not found; add the character first", a.CharacterID))
	}
	updated := *c
	if a.Name != "" {
		updated.Name = a.Name
	}
	if len(a.ReferenceImages) > 0 {
		updated.ReferenceImages = append(updated.ReferenceImages, a.ReferenceImages...)
	}
	if a.VoiceSampleURL != "" {
		updated.VoiceSampleURL = a.VoiceSampleURL
	}
	return ok(map[string]any{"characterId": updated.ID, "name": updated.Name},
		project.PutCharacter{Character: updated})
}

// generateCharacterAngles renders the fixed set of reference angles for one
// character from its uploaded photos. Angle renders fan out concurrently;
// a failed angle degrades the character to error status instead of failing
// the call, so the agent can report and continue.
func (d *Dispatcher) generateCharacterAngles(ctx context.Context, args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[characterAnglesArgs](GenerateCharacterAngles, args)
	if err != nil {
		return fail(err)
	}
	c, found := resolveCharacter(p, a.CharacterID)
	if !found {
		return failMsg(GenerateCharacterAngles, fmt.Sprintf("character %q not found; add the character first", a.CharacterID))
	}
	if len(c.ReferenceImages) == 0 {
		return failMsg(GenerateCharacterAngles, fmt.Sprintf("character %s has no uploaded reference photos; request an upload first", c.Name))
	}

	angleNames := []string{"front", "left profile", "right profile", "back"}
	tasks := make([]fanout.Task, 0, project.MaxReferenceAngles)
	for i, angle := range angleNames[:project.MaxReferenceAngles] {
		char := *c
		tasks = append(tasks, fanout.Task{
			ID:  fmt.Sprintf("%s/%s", char.ID, angle),
			Seq: i,
			Run: func(ctx context.Context) (any, error) {
				media, err := d.env.Images.GenerateImage(ctx, provider.ImageRequest{
					Prompt:        fmt.Sprintf("Studio reference of %s, %s view, neutral background", char.Name, angle),
					Aesthetic:     p.Aesthetic,
					ReferenceURLs: char.ReferenceImages,
				})
				if err != nil {
					return nil, err
				}
				return d.env.uploadMedia(ctx, p, "characters/"+char.ID+"/angles", media)
			},
		})
	}

	batch := d.env.Batch.RunBatch(ctx, tasks)
	var urls []string
	for _, item := range batch.Items {
		if item.Success {
			urls = append(urls, item.Payload.(string))
		}
	}

	data := map[string]any{"attempted": batch.Attempted, "succeeded": batch.Succeeded}
	if len(urls) == 0 {
		return ok(data, project.SetCharacterStatus{ID: c.ID, Status: project.CharacterError})
	}
	return ok(data,
		project.SetCharacterAngles{ID: c.ID, Angles: urls},
		project.SetCharacterStatus{ID: c.ID, Status: project.CharacterReady})
}

// createVoiceClone submits the character's voice sample to the voice service.
// A provider failure is a retryable error result, not a status mutation; the
// user re-invokes explicitly.
func (d *Dispatcher) createVoiceClone(ctx context.Context, args json.RawMessage, p *project.Project) Result {
	a, err := decodeArgs[voiceCloneArgs](CreateVoiceClone, args)
	if err != nil {
		return fail(err)
	}
	c, found := resolveCharacter(p, a.CharacterID)
	if !found {
		return failMsg(CreateVoiceClone, fmt.Sprintf("character %q not found; add the character first", a.CharacterID))
	}
	sampleURL := a.SampleURL
	if sampleURL == "" {
		sampleURL = c.VoiceSampleURL
	}
	if sampleURL == "" {
		return failMsg(CreateVoiceClone, fmt.Sprintf("character %s has no voice sample; request an upload first", c.Name))
	}

	voiceID, err := d.env.Voice.CloneVoice(ctx, c.Name, sampleURL)
	if err != nil {
		return failProvider(CreateVoiceClone, fmt.Sprintf("voice cloning failed for %s: %v", c.Name, err))
	}
	return ok(map[string]any{"characterId": c.ID, "voiceCloneId": voiceID},
		project.SetVoiceClone{ID: c.ID, VoiceCloneID: voiceID})
}
