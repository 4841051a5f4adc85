package tool

import "github.com/reelforge/reelforge/provider"

func schema(required []string, props map[string]any) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func boolean(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func number(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func strList(desc string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": desc}
}

// Definitions returns the full tool catalog exposed to the conversational
// model. The catalog is fixed; the dispatcher matches it case for case.
func Definitions() []provider.ToolDefinition {
	return []provider.ToolDefinition{
		{
			Name:        SaveOverview,
			Description: "Save the project overview describing what the video is about.",
			Parameters: schema([]string{"overview"}, map[string]any{
				"overview": str("Narrative overview of the video"),
			}),
		},
		{
			Name:        SaveAesthetic,
			Description: "Save the visual aesthetic description applied to every generated asset.",
			Parameters: schema([]string{"aesthetic"}, map[string]any{
				"aesthetic": str("Visual style description"),
			}),
		},
		{
			Name:        SaveBrand,
			Description: "Save optional brand guidelines (logo treatment, colors, tone).",
			Parameters: schema(nil, map[string]any{
				"brand": str("Brand guidelines"),
			}),
		},
		{
			Name:        AddCharacter,
			Description: "Add a cast member to the project.",
			Parameters: schema([]string{"name"}, map[string]any{
				"name":            str("Character display name"),
				"referenceImages": strList("URLs of uploaded reference photos"),
				"voiceSampleUrl":  str("URL of an uploaded voice sample"),
			}),
		},
		{
			Name:        UpdateCharacter,
			Description: "Update an existing character's name, reference photos or voice sample.",
			Parameters: schema([]string{"characterId"}, map[string]any{
				"characterId":     str("Character id or name"),
				"name":            str("New display name"),
				"referenceImages": strList("Additional reference photo URLs"),
				"voiceSampleUrl":  str("URL of an uploaded voice sample"),
			}),
		},
		{
			Name:        GenerateScript,
			Description: "Generate the full scene-by-scene script. Requires overview, aesthetic and complete characters.",
			Parameters: schema(nil, map[string]any{
				"guidance": str("Optional user guidance for the script writer"),
			}),
		},
		{
			Name:        EditScene,
			Description: "Edit one field of a scene (description, dialogue, speaker, location, duration, type).",
			Parameters: schema([]string{"sceneId", "field", "newValue"}, map[string]any{
				"sceneId":  str("Scene id"),
				"field":    str("Field to edit"),
				"newValue": str("New field value"),
			}),
		},
		{
			Name:        UpdateScript,
			Description: "Apply a batch of dialogue and speaker updates across multiple scenes.",
			Parameters: schema([]string{"updates"}, map[string]any{
				"updates": map[string]any{
					"type":        "array",
					"description": "Per-scene updates",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"sceneId":  str("Scene id"),
							"dialogue": str("New dialogue text"),
							"speaker":  str("New speaker character id or name"),
						},
						"required": []string{"sceneId"},
					},
				},
			}),
		},
		{
			Name:        AddScene,
			Description: "Insert a new scene into the script.",
			Parameters: schema([]string{"description"}, map[string]any{
				"type":               str("dialogue, ambient or infographic"),
				"description":        str("What happens in the scene"),
				"speakerCharacterId": str("Speaker for dialogue scenes"),
				"dialogueText":       str("Spoken dialogue"),
				"durationSec":        number("Scene duration in seconds"),
				"afterSceneId":       str("Insert after this scene"),
			}),
		},
		{
			Name:        RemoveScene,
			Description: "Remove a scene from the script.",
			Parameters: schema([]string{"sceneId"}, map[string]any{
				"sceneId": str("Scene id"),
			}),
		},
		{
			Name:        PreprocessScript,
			Description: "Finalize the script and extract locations and attires from it. Requires explicit user confirmation.",
			Parameters: schema([]string{"confirmed"}, map[string]any{
				"confirmed": boolean("True only after the user confirmed the script is final"),
			}),
		},
		{
			Name:        GeneratePreprocAssets,
			Description: "Generate reference images for every pending location and attire concurrently.",
			Parameters:  schema(nil, map[string]any{}),
		},
		{
			Name:        GenerateLocationImage,
			Description: "Generate the reference image for one location.",
			Parameters: schema([]string{"locationId"}, map[string]any{
				"locationId": str("Location id or name"),
			}),
		},
		{
			Name:        EditLocationImage,
			Description: "Regenerate a location's reference image with edit instructions.",
			Parameters: schema([]string{"locationId", "instructions"}, map[string]any{
				"locationId":   str("Location id or name"),
				"instructions": str("What to change"),
			}),
		},
		{
			Name:        EditAttireAngles,
			Description: "Regenerate an attire's angle set with edit instructions.",
			Parameters: schema([]string{"attireId", "instructions"}, map[string]any{
				"attireId":     str("Attire id or name"),
				"instructions": str("What to change"),
			}),
		},
		{
			Name:        GenerateAllThumbnails,
			Description: "Generate a thumbnail for every scene that does not have a ready one.",
			Parameters:  schema(nil, map[string]any{}),
		},
		{
			Name:        EditThumbnail,
			Description: "Regenerate one scene's thumbnail with edit instructions.",
			Parameters: schema([]string{"sceneId", "instructions"}, map[string]any{
				"sceneId":      str("Scene id"),
				"instructions": str("What to change"),
			}),
		},
		{
			Name:        GenerateAllClips,
			Description: "Generate a video clip for every scene with a ready thumbnail and no ready clip.",
			Parameters:  schema(nil, map[string]any{}),
		},
		{
			Name:        AssembleFinalOutput,
			Description: "Stitch every scene clip into the final video. Requires explicit user confirmation.",
			Parameters: schema([]string{"confirmed"}, map[string]any{
				"confirmed": boolean("True only after the user confirmed assembly"),
			}),
		},
		{
			Name:        UpdateChecklistItem,
			Description: "Mark a production checklist item done or not done.",
			Parameters: schema([]string{"key", "done"}, map[string]any{
				"key":  str("Checklist item key"),
				"done": boolean("Completion state"),
			}),
		},
		{
			Name:        ShowArtifact,
			Description: "Show a stored artifact to the user (final-video, thumbnail, clip, location-image, character-angles).",
			Parameters: schema([]string{"kind"}, map[string]any{
				"kind": str("Artifact kind"),
				"id":   str("Entity id where the kind needs one"),
			}),
		},
		{
			Name:        RequestUpload,
			Description: "Ask the user to upload files (reference photos, voice samples). Pauses the conversation until files arrive.",
			Parameters: schema([]string{"purpose"}, map[string]any{
				"purpose":     str("What the upload is for"),
				"characterId": str("Character the upload belongs to"),
			}),
		},
		{
			Name:        GenerateCharacterAngles,
			Description: "Generate the reference angle set for a character from its uploaded photos.",
			Parameters: schema([]string{"characterId"}, map[string]any{
				"characterId": str("Character id or name"),
			}),
		},
		{
			Name:        CreateVoiceClone,
			Description: "Clone a character's voice from its uploaded sample.",
			Parameters: schema([]string{"characterId"}, map[string]any{
				"characterId": str("Character id or name"),
				"sampleUrl":   str("Voice sample URL, defaults to the character's stored sample"),
			}),
		},
	}
}
