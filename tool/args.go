package tool

import (
	"encoding/json"
	"fmt"

	"github.com/reelforge/reelforge/diff"
)

// Per-tool argument structs. Each tool decodes its own statically defined
// field set instead of reading an untyped map, so a malformed or mistyped
// argument fails at decode with a precise message.

type saveOverviewArgs struct {
	Overview string `json:"overview"`
}

type saveAestheticArgs struct {
	Aesthetic string `json:"aesthetic"`
}

type saveBrandArgs struct {
	Brand string `json:"brand"`
}

type addCharacterArgs struct {
	Name            string   `json:"name"`
	ReferenceImages []string `json:"referenceImages,omitempty"`
	VoiceSampleURL  string   `json:"voiceSampleUrl,omitempty"`
}

type updateCharacterArgs struct {
	CharacterID     string   `json:"characterId"`
	Name            string   `json:"name,omitempty"`
	ReferenceImages []string `json:"referenceImages,omitempty"`
	VoiceSampleURL  string   `json:"voiceSampleUrl,omitempty"`
}

type generateScriptArgs struct {
	Guidance string `json:"guidance,omitempty"`
}

type editSceneArgs struct {
	SceneID  string `json:"sceneId"`
	Field    string `json:"field"`
	NewValue string `json:"newValue"`
}

type updateScriptArgs struct {
	Updates []diff.SceneUpdate `json:"updates"`
}

type addSceneArgs struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	SpeakerID   string  `json:"speakerCharacterId,omitempty"`
	Dialogue    string  `json:"dialogueText,omitempty"`
	DurationSec float64 `json:"durationSec,omitempty"`
	AfterScene  string  `json:"afterSceneId,omitempty"`
}

type removeSceneArgs struct {
	SceneID string `json:"sceneId"`
}

type preprocessScriptArgs struct {
	Confirmed bool `json:"confirmed"`
}

type locationArgs struct {
	LocationID   string `json:"locationId"`
	Instructions string `json:"instructions,omitempty"`
}

type attireArgs struct {
	AttireID     string `json:"attireId"`
	Instructions string `json:"instructions,omitempty"`
}

type editThumbnailArgs struct {
	SceneID      string `json:"sceneId"`
	Instructions string `json:"instructions,omitempty"`
}

type assembleArgs struct {
	Confirmed bool `json:"confirmed"`
}

type checklistArgs struct {
	Key  string `json:"key"`
	Done bool   `json:"done"`
}

type showArtifactArgs struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

type requestUploadArgs struct {
	Purpose     string `json:"purpose"`
	CharacterID string `json:"characterId,omitempty"`
}

type characterAnglesArgs struct {
	CharacterID string `json:"characterId"`
}

type voiceCloneArgs struct {
	CharacterID string `json:"characterId"`
	SampleURL   string `json:"sampleUrl,omitempty"`
}

// decodeArgs parses raw JSON arguments into the tool's typed struct. Empty
// input decodes to the zero value so optional-only tools accept a missing
// args object.
func decodeArgs[T any](toolName string, raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, NewToolError(toolName, fmt.Sprintf("invalid arguments: %v", err), CodeValidation)
	}
	return v, nil
}
