package project

import (
	"strings"

	"github.com/google/uuid"
)

// Stage identifies one of the ordered production phases. Stages gate which
// tool operations are legal; the predicate table lives in package stage.
type Stage string

// Production stages in pipeline order.
const (
	StageOverview      Stage = "overview"
	StageAesthetic     Stage = "aesthetic"
	StageBrand         Stage = "brand"
	StageCharacters    Stage = "characters"
	StageScript        Stage = "script"
	StagePreprocessing Stage = "preprocessing"
	StageThumbnails    Stage = "thumbnails"
	StageClips         Stage = "clips"
	StageAssembly      Stage = "assembly"
)

// AssetStatus tracks the lifecycle of a generated visual asset.
type AssetStatus string

// Asset lifecycle states.
const (
	AssetPending    AssetStatus = "pending"
	AssetGenerating AssetStatus = "generating"
	AssetReady      AssetStatus = "ready"
	AssetError      AssetStatus = "error"
)

// CharacterStatus tracks a character through reference generation.
type CharacterStatus string

// Character lifecycle states.
const (
	CharacterDraft      CharacterStatus = "draft"
	CharacterProcessing CharacterStatus = "processing"
	CharacterReady      CharacterStatus = "ready"
	CharacterError      CharacterStatus = "error"
)

// SceneType distinguishes how a scene is produced and narrated.
type SceneType string

// Scene types.
const (
	SceneDialogue    SceneType = "dialogue"
	SceneAmbient     SceneType = "ambient"
	SceneInfographic SceneType = "infographic"
)

// MaxClipSeconds bounds the duration of a single generated clip.
const MaxClipSeconds = 8.0

// MaxReferenceAngles is the number of generated reference angles per
// character or attire.
const MaxReferenceAngles = 4

// MediaRef is a generated media resource plus its generation status.
type MediaRef struct {
	URL    string      `json:"url,omitempty"`
	Status AssetStatus `json:"status"`
}

// Character is a cast member of the project. A character is complete once it
// has at least one generated reference angle and a voice clone; completeness
// of every character gates the script stage.
type Character struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ReferenceImages []string        `json:"referenceImages"`
	VoiceSampleURL  string          `json:"voiceSampleUrl,omitempty"`
	Angles          []string        `json:"angles,omitempty"`
	VoiceCloneID    string          `json:"voiceCloneId,omitempty"`
	Status          CharacterStatus `json:"status"`
}

// IsComplete reports whether the character has generated reference angles and
// a voice clone.
func (c Character) IsComplete() bool {
	return len(c.Angles) >= 1 && c.VoiceCloneID != ""
}

// MissingRequirements names what still blocks completeness, in dependency
// order. Empty for a complete character.
func (c Character) MissingRequirements() []string {
	var missing []string
	if len(c.Angles) == 0 {
		missing = append(missing, "reference angles")
	}
	if c.VoiceCloneID == "" {
		missing = append(missing, "voice clone")
	}
	return missing
}

// Script is the spoken portion of a dialogue scene. A nil Script means the
// scene has no speaker; dialogue text is only meaningful when Script is set.
type Script struct {
	SpeakerID string `json:"speakerCharacterId"`
	Dialogue  string `json:"dialogueText"`
}

// Scene is one ordered shot of the final video. Index is the stable sequence
// position and survives reordering and splicing; it is distinct from the
// scene's position in the Scenes slice.
type Scene struct {
	ID                string            `json:"id"`
	Index             int               `json:"index"`
	Type              SceneType         `json:"type"`
	Description       string            `json:"description,omitempty"`
	DurationSec       float64           `json:"durationSec,omitempty"`
	Script            *Script           `json:"script,omitempty"`
	LocationID        string            `json:"locationId,omitempty"`
	CharacterIDs      []string          `json:"characterIds,omitempty"`
	AttireByCharacter map[string]string `json:"attireByCharacter,omitempty"`
	Thumbnail         MediaRef          `json:"thumbnail"`
	Clip              MediaRef          `json:"clip"`
}

// Location is a visual setting extracted during preprocessing and referenced
// by scenes by id.
type Location struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	Status      AssetStatus `json:"status"`
}

// Attire is a character outfit extracted during preprocessing. It carries up
// to four generated angle images.
type Attire struct {
	ID          string      `json:"id"`
	CharacterID string      `json:"characterId,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	AngleURLs   []string    `json:"angleUrls,omitempty"`
	Status      AssetStatus `json:"status"`
}

// Project is the aggregate root for one production session. It is owned
// exclusively by the session and mutated only through Apply; tool handlers and
// fan-out workers never touch it directly.
type Project struct {
	ID                    string            `json:"id"`
	Overview              string            `json:"overview,omitempty"`
	Aesthetic             string            `json:"aesthetic,omitempty"`
	Brand                 string            `json:"brand,omitempty"`
	Characters            []Character       `json:"characters,omitempty"`
	Scenes                []Scene           `json:"scenes,omitempty"`
	Locations             []Location        `json:"locations,omitempty"`
	Attires               []Attire          `json:"attires,omitempty"`
	Checklist             map[string]bool   `json:"checklist,omitempty"`
	FinalVideoURL         string            `json:"finalVideoUrl,omitempty"`
	FinalizationConfirmed bool              `json:"finalizationConfirmed,omitempty"`
	Stage                 Stage             `json:"stage"`
}

// New returns an empty project at the overview stage.
func New() *Project {
	return &Project{ID: NewID(), Stage: StageOverview, Checklist: map[string]bool{}}
}

// NewID generates a unique identifier for entities and turns.
func NewID() string { return uuid.NewString() }

// CharacterByID returns the character with the given id, if present.
func (p *Project) CharacterByID(id string) (*Character, bool) {
	for i := range p.Characters {
		if p.Characters[i].ID == id {
			return &p.Characters[i], true
		}
	}
	return nil, false
}

// SceneByID returns the scene with the given id, if present.
func (p *Project) SceneByID(id string) (*Scene, bool) {
	for i := range p.Scenes {
		if p.Scenes[i].ID == id {
			return &p.Scenes[i], true
		}
	}
	return nil, false
}

// LocationByID returns the location with the given id, if present.
func (p *Project) LocationByID(id string) (*Location, bool) {
	for i := range p.Locations {
		if p.Locations[i].ID == id {
			return &p.Locations[i], true
		}
	}
	return nil, false
}

// AttireByID returns the attire with the given id, if present.
func (p *Project) AttireByID(id string) (*Attire, bool) {
	for i := range p.Attires {
		if p.Attires[i].ID == id {
			return &p.Attires[i], true
		}
	}
	return nil, false
}

// IncompleteCharacters returns every character still missing angles or a
// voice clone, in creation order.
func (p *Project) IncompleteCharacters() []Character {
	var out []Character
	for _, c := range p.Characters {
		if !c.IsComplete() {
			out = append(out, c)
		}
	}
	return out
}

// CharacterName resolves a character id to its display name. Unresolved ids
// render as "(none)" so diff output never silently drops a reference.
func (p *Project) CharacterName(id string) string {
	if id == "" {
		return "(none)"
	}
	if c, ok := p.CharacterByID(id); ok {
		return c.Name
	}
	return "(none)"
}

// DisplayNameEqual matches a candidate string against an entity display
// name, case-insensitively and ignoring surrounding whitespace.
func DisplayNameEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Clone returns a deep copy of the project safe for independent mutation.
// Handlers receive clones as snapshots so a failing handler can never leave
// the session aggregate partially updated.
func (p *Project) Clone() *Project {
	cp := *p
	cp.Characters = make([]Character, len(p.Characters))
	for i, c := range p.Characters {
		c.ReferenceImages = append([]string(nil), c.ReferenceImages...)
		c.Angles = append([]string(nil), c.Angles...)
		cp.Characters[i] = c
	}
	cp.Scenes = make([]Scene, len(p.Scenes))
	for i, s := range p.Scenes {
		cp.Scenes[i] = cloneScene(s)
	}
	cp.Locations = append([]Location(nil), p.Locations...)
	cp.Attires = make([]Attire, len(p.Attires))
	for i, a := range p.Attires {
		a.AngleURLs = append([]string(nil), a.AngleURLs...)
		cp.Attires[i] = a
	}
	cp.Checklist = make(map[string]bool, len(p.Checklist))
	for k, v := range p.Checklist {
		cp.Checklist[k] = v
	}
	return &cp
}

func cloneScene(s Scene) Scene {
	s.CharacterIDs = append([]string(nil), s.CharacterIDs...)
	if s.AttireByCharacter != nil {
		m := make(map[string]string, len(s.AttireByCharacter))
		for k, v := range s.AttireByCharacter {
			m[k] = v
		}
		s.AttireByCharacter = m
	}
	if s.Script != nil {
		sc := *s.Script
		s.Script = &sc
	}
	return s
}
