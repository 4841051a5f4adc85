// Package diff computes field-level before/after deltas for auditable edits.
// Single-field diffs feed the edit tools; the multi-field variant suppresses
// no-op fields so batch updates only report what actually changed.
package diff

import (
	"fmt"
	"strings"

	"github.com/aryann/difflib"

	"github.com/reelforge/reelforge/project"
)

// FieldDiff is one before/after record for a named field.
type FieldDiff struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Changed reports whether the field value actually changed.
func (d FieldDiff) Changed() bool { return d.Old != d.New }

// String renders the diff in a compact human-readable form.
func (d FieldDiff) String() string {
	return fmt.Sprintf("%s: %q -> %q", d.Field, d.Old, d.New)
}

// Scene field names accepted by the edit tools.
const (
	FieldDescription = "description"
	FieldDialogue    = "dialogue"
	FieldSpeaker     = "speaker"
	FieldLocation    = "location"
	FieldDuration    = "duration"
	FieldType        = "type"
)

// SceneField computes the before/after diff for editing one field of a scene.
// Speaker and location values are resolved to display names so the output is
// human readable; an unresolved id renders as "(none)".
//
// Editing the dialogue field requires a script sub-object with a speaker
// already assigned: setting dialogue on a speakerless scene is a validation
// error, never the silent creation of a partial script.
func SceneField(p *project.Project, s *project.Scene, field, newValue string) (FieldDiff, error) {
	switch field {
	case FieldDescription:
		return FieldDiff{Field: field, Old: s.Description, New: newValue}, nil
	case FieldDialogue:
		if s.Script == nil {
			return FieldDiff{}, fmt.Errorf("scene %d has no speaker assigned; set a speaker before editing dialogue", s.Index)
		}
		return FieldDiff{Field: field, Old: s.Script.Dialogue, New: newValue}, nil
	case FieldSpeaker:
		oldID := ""
		if s.Script != nil {
			oldID = s.Script.SpeakerID
		}
		return FieldDiff{Field: field, Old: p.CharacterName(oldID), New: p.CharacterName(newValue)}, nil
	case FieldLocation:
		return FieldDiff{Field: field, Old: locationName(p, s.LocationID), New: locationName(p, newValue)}, nil
	case FieldDuration:
		return FieldDiff{Field: field, Old: fmt.Sprintf("%gs", s.DurationSec), New: newValue}, nil
	case FieldType:
		return FieldDiff{Field: field, Old: string(s.Type), New: newValue}, nil
	default:
		return FieldDiff{}, fmt.Errorf("unknown scene field %q", field)
	}
}

func locationName(p *project.Project, id string) string {
	if id == "" {
		return "(none)"
	}
	if l, ok := p.LocationByID(id); ok {
		return l.Name
	}
	return "(none)"
}

// SceneUpdate is one proposed dialogue/speaker update against a scene,
// used by the batch script editor.
type SceneUpdate struct {
	SceneID  string `json:"sceneId"`
	Dialogue string `json:"dialogue,omitempty"`
	Speaker  string `json:"speaker,omitempty"`
}

// SceneChange is the computed change set for one scene: only the fields whose
// values actually differ appear in Fields.
type SceneChange struct {
	SceneID string      `json:"sceneId"`
	Index   int         `json:"index"`
	Fields  []FieldDiff `json:"fields"`
}

// Scenes computes the change sets for a batch of proposed updates against
// multiple scenes, suppressing no-op fields. Scenes whose updates are all
// no-ops are excluded entirely.
func Scenes(p *project.Project, updates []SceneUpdate) ([]SceneChange, error) {
	var out []SceneChange
	for _, u := range updates {
		s, ok := p.SceneByID(u.SceneID)
		if !ok {
			return nil, fmt.Errorf("scene %s not found", u.SceneID)
		}
		var fields []FieldDiff
		if u.Speaker != "" {
			d, err := SceneField(p, s, FieldSpeaker, u.Speaker)
			if err != nil {
				return nil, err
			}
			if d.Changed() {
				fields = append(fields, d)
			}
		}
		if u.Dialogue != "" {
			// A speaker supplied in the same update satisfies the
			// dialogue-requires-speaker rule.
			if s.Script == nil && u.Speaker == "" {
				return nil, fmt.Errorf("scene %d has no speaker assigned; set a speaker before editing dialogue", s.Index)
			}
			old := ""
			if s.Script != nil {
				old = s.Script.Dialogue
			}
			d := FieldDiff{Field: FieldDialogue, Old: old, New: u.Dialogue}
			if d.Changed() {
				fields = append(fields, d)
			}
		}
		if len(fields) > 0 {
			out = append(out, SceneChange{SceneID: s.ID, Index: s.Index, Fields: fields})
		}
	}
	return out, nil
}

// WordOp tags one word-level delta segment.
type WordOp int

// Word-level delta operations.
const (
	Equal WordOp = iota
	Insert
	Delete
)

// WordDelta is one segment of a word-level text diff.
type WordDelta struct {
	Op   WordOp `json:"op"`
	Text string `json:"text"`
}

// Words computes a word-level delta between two strings, used to render
// dialogue edits in the review surface.
func Words(old, new string) []WordDelta {
	if old == new {
		return []WordDelta{{Op: Equal, Text: old}}
	}
	recs := difflib.Diff(strings.Fields(old), strings.Fields(new))
	out := make([]WordDelta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			out = append(out, WordDelta{Op: Equal, Text: r.Payload})
		case difflib.LeftOnly:
			out = append(out, WordDelta{Op: Delete, Text: r.Payload})
		case difflib.RightOnly:
			out = append(out, WordDelta{Op: Insert, Text: r.Payload})
		}
	}
	return out
}
