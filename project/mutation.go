package project

import "fmt"

// Mutation is a declarative description of a change to the Project aggregate.
// Tool handlers and fan-out workers return mutations instead of touching the
// aggregate; the orchestrator is the single writer that applies them serially
// through Apply. The variant set is closed via the unexported marker.
type Mutation interface {
	isMutation()
	// Type returns the wire identifier used in the {type, payload} envelope.
	Type() string
}

// SetOverview replaces the project overview.
type SetOverview struct {
	Overview string `json:"overview"`
}

// SetAesthetic replaces the aesthetic description.
type SetAesthetic struct {
	Aesthetic string `json:"aesthetic"`
}

// SetBrand replaces the optional brand description.
type SetBrand struct {
	Brand string `json:"brand"`
}

// PutCharacter inserts a character, or replaces it when the id already exists.
type PutCharacter struct {
	Character Character `json:"character"`
}

// SetCharacterStatus updates a character's generation status.
type SetCharacterStatus struct {
	ID     string          `json:"id"`
	Status CharacterStatus `json:"status"`
}

// SetCharacterAngles records generated reference angles for a character.
type SetCharacterAngles struct {
	ID     string   `json:"id"`
	Angles []string `json:"angles"`
}

// SetVoiceClone records the voice-clone identifier for a character.
type SetVoiceClone struct {
	ID           string `json:"id"`
	VoiceCloneID string `json:"voiceCloneId"`
}

// ReplaceScenes swaps the whole ordered scene list (script generation).
type ReplaceScenes struct {
	Scenes []Scene `json:"scenes"`
}

// PutScene inserts a scene, or replaces it when the id already exists.
type PutScene struct {
	Scene Scene `json:"scene"`
}

// RemoveScene deletes a scene by id.
type RemoveScene struct {
	ID string `json:"id"`
}

// AddLocations appends preprocessing-extracted locations.
type AddLocations struct {
	Locations []Location `json:"locations"`
}

// AddAttires appends preprocessing-extracted attires.
type AddAttires struct {
	Attires []Attire `json:"attires"`
}

// SetLocationImage records a generated location reference image.
type SetLocationImage struct {
	ID     string      `json:"id"`
	URL    string      `json:"url"`
	Status AssetStatus `json:"status"`
}

// SetLocationStatus updates a location's status without touching media.
type SetLocationStatus struct {
	ID     string      `json:"id"`
	Status AssetStatus `json:"status"`
}

// SetAttireAngles records generated attire angle images.
type SetAttireAngles struct {
	ID     string      `json:"id"`
	URLs   []string    `json:"urls"`
	Status AssetStatus `json:"status"`
}

// SetAttireStatus updates an attire's status without touching media.
type SetAttireStatus struct {
	ID     string      `json:"id"`
	Status AssetStatus `json:"status"`
}

// SetSceneThumbnail records a generated scene thumbnail.
type SetSceneThumbnail struct {
	SceneID string      `json:"sceneId"`
	URL     string      `json:"url"`
	Status  AssetStatus `json:"status"`
}

// SetSceneClip records a generated scene clip.
type SetSceneClip struct {
	SceneID string      `json:"sceneId"`
	URL     string      `json:"url"`
	Status  AssetStatus `json:"status"`
}

// SetFinalVideo records the assembled final output URL.
type SetFinalVideo struct {
	URL string `json:"url"`
}

// ConfirmFinalization marks the script as finalized by the user, unlocking
// preprocessing.
type ConfirmFinalization struct{}

// SetStage advances the project to a new production stage.
type SetStage struct {
	Stage Stage `json:"stage"`
}

// SetChecklistItem toggles one production checklist entry.
type SetChecklistItem struct {
	Key  string `json:"key"`
	Done bool   `json:"done"`
}

func (SetOverview) isMutation()         {}
func (SetAesthetic) isMutation()        {}
func (SetBrand) isMutation()            {}
func (PutCharacter) isMutation()        {}
func (SetCharacterStatus) isMutation()  {}
func (SetCharacterAngles) isMutation()  {}
func (SetVoiceClone) isMutation()       {}
func (ReplaceScenes) isMutation()       {}
func (PutScene) isMutation()            {}
func (RemoveScene) isMutation()         {}
func (AddLocations) isMutation()        {}
func (AddAttires) isMutation()          {}
func (SetLocationImage) isMutation()    {}
func (SetLocationStatus) isMutation()   {}
func (SetAttireAngles) isMutation()     {}
func (SetAttireStatus) isMutation()     {}
func (SetSceneThumbnail) isMutation()   {}
func (SetSceneClip) isMutation()        {}
func (SetFinalVideo) isMutation()       {}
func (ConfirmFinalization) isMutation() {}
func (SetStage) isMutation()            {}
func (SetChecklistItem) isMutation()    {}

// Type implements Mutation.
func (SetOverview) Type() string { return "set-overview" }

// Type implements Mutation.
func (SetAesthetic) Type() string { return "set-aesthetic" }

// Type implements Mutation.
func (SetBrand) Type() string { return "set-brand" }

// Type implements Mutation.
func (PutCharacter) Type() string { return "put-character" }

// Type implements Mutation.
func (SetCharacterStatus) Type() string { return "set-character-status" }

// Type implements Mutation.
func (SetCharacterAngles) Type() string { return "set-character-angles" }

// Type implements Mutation.
func (SetVoiceClone) Type() string { return "set-voice-clone" }

// Type implements Mutation.
func (ReplaceScenes) Type() string { return "replace-scenes" }

// Type implements Mutation.
func (PutScene) Type() string { return "put-scene" }

// Type implements Mutation.
func (RemoveScene) Type() string { return "remove-scene" }

// Type implements Mutation.
func (AddLocations) Type() string { return "add-locations" }

// Type implements Mutation.
func (AddAttires) Type() string { return "add-attires" }

// Type implements Mutation.
func (SetLocationImage) Type() string { return "set-location-image" }

// Type implements Mutation.
func (SetLocationStatus) Type() string { return "set-location-status" }

// Type implements Mutation.
func (SetAttireAngles) Type() string { return "set-attire-angles" }

// Type implements Mutation.
func (SetAttireStatus) Type() string { return "set-attire-status" }

// Type implements Mutation.
func (SetSceneThumbnail) Type() string { return "set-scene-thumbnail" }

// Type implements Mutation.
func (SetSceneClip) Type() string { return "set-scene-clip" }

// Type implements Mutation.
func (SetFinalVideo) Type() string { return "set-final-video" }

// Type implements Mutation.
func (ConfirmFinalization) Type() string { return "confirm-finalization" }

// Type implements Mutation.
func (SetStage) Type() string { return "set-stage" }

// Type implements Mutation.
func (SetChecklistItem) Type() string { return "set-checklist-item" }

// Envelope is the wire form of a mutation: a type tag plus the mutation value
// as payload.
type Envelope struct {
	Type    string   `json:"type"`
	Payload Mutation `json:"payload"`
}

// Describe wraps a mutation into its wire envelope.
func Describe(m Mutation) Envelope {
	return Envelope{Type: m.Type(), Payload: m}
}

// DescribeAll wraps a slice of mutations into wire envelopes.
func DescribeAll(ms []Mutation) []Envelope {
	if len(ms) == 0 {
		return nil
	}
	out := make([]Envelope, len(ms))
	for i, m := range ms {
		out[i] = Describe(m)
	}
	return out
}

// Apply executes one mutation against the aggregate. It is the only place
// the aggregate is written; callers serialize their Apply calls. Unknown
// targets (stale ids) are reported as errors rather than ignored so a
// mis-resolved reference cannot silently drop an update.
func Apply(p *Project, m Mutation) error {
	switch mut := m.(type) {
	case SetOverview:
		p.Overview = mut.Overview
	case SetAesthetic:
		p.Aesthetic = mut.Aesthetic
	case SetBrand:
		p.Brand = mut.Brand
	case PutCharacter:
		for i := range p.Characters {
			if p.Characters[i].ID == mut.Character.ID {
				p.Characters[i] = mut.Character
				return nil
			}
		}
		p.Characters = append(p.Characters, mut.Character)
	case SetCharacterStatus:
		c, ok := p.CharacterByID(mut.ID)
		if !ok {
			return fmt.Errorf("character %s not found", mut.ID)
		}
		c.Status = mut.Status
	case SetCharacterAngles:
		c, ok := p.CharacterByID(mut.ID)
		if !ok {
			return fmt.Errorf("character %s not found", mut.ID)
		}
		c.Angles = mut.Angles
	case SetVoiceClone:
		c, ok := p.CharacterByID(mut.ID)
		if !ok {
			return fmt.Errorf("character %s not found", mut.ID)
		}
		c.VoiceCloneID = mut.VoiceCloneID
	case ReplaceScenes:
		p.Scenes = mut.Scenes
	case PutScene:
		for i := range p.Scenes {
			if p.Scenes[i].ID == mut.Scene.ID {
				p.Scenes[i] = mut.Scene
				return nil
			}
		}
		p.Scenes = append(p.Scenes, mut.Scene)
	case RemoveScene:
		for i := range p.Scenes {
			if p.Scenes[i].ID == mut.ID {
				p.Scenes = append(p.Scenes[:i], p.Scenes[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("scene %s not found", mut.ID)
	case AddLocations:
		p.Locations = append(p.Locations, mut.Locations...)
	case AddAttires:
		p.Attires = append(p.Attires, mut.Attires...)
	case SetLocationImage:
		l, ok := p.LocationByID(mut.ID)
		if !ok {
			return fmt.Errorf("location %s not found", mut.ID)
		}
		l.ImageURL = mut.URL
		l.Status = mut.Status
	case SetLocationStatus:
		l, ok := p.LocationByID(mut.ID)
		if !ok {
			return fmt.Errorf("location %s not found", mut.ID)
		}
		l.Status = mut.Status
	case SetAttireAngles:
		a, ok := p.AttireByID(mut.ID)
		if !ok {
			return fmt.Errorf("attire %s not found", mut.ID)
		}
		a.AngleURLs = mut.URLs
		a.Status = mut.Status
	case SetAttireStatus:
		a, ok := p.AttireByID(mut.ID)
		if !ok {
			return fmt.Errorf("attire %s not found", mut.ID)
		}
		a.Status = mut.Status
	case SetSceneThumbnail:
		s, ok := p.SceneByID(mut.SceneID)
		if !ok {
			return fmt.Errorf("scene %s not found", mut.SceneID)
		}
		s.Thumbnail = MediaRef{URL: mut.URL, Status: mut.Status}
	case SetSceneClip:
		s, ok := p.SceneByID(mut.SceneID)
		if !ok {
			return fmt.Errorf("scene %s not found", mut.SceneID)
		}
		s.Clip = MediaRef{URL: mut.URL, Status: mut.Status}
	case SetFinalVideo:
		p.FinalVideoURL = mut.URL
	case ConfirmFinalization:
		p.FinalizationConfirmed = true
	case SetStage:
		p.Stage = mut.Stage
	case SetChecklistItem:
		if p.Checklist == nil {
			p.Checklist = map[string]bool{}
		}
		p.Checklist[mut.Key] = mut.Done
	default:
		return fmt.Errorf("unknown mutation %T", m)
	}
	return nil
}

// ApplyAll applies mutations in order, stopping at the first failure.
func ApplyAll(p *Project, ms ...Mutation) error {
	for _, m := range ms {
		if err := Apply(p, m); err != nil {
			return err
		}
	}
	return nil
}
