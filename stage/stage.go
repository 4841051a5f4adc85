// Package stage implements the dependency validator gating pipeline
// operations. Each gated operation maps to an ordered list of predicates over
// the project; the first unmet predicate produces the error, so the reported
// problem is always the most fundamental one.
package stage

import (
	"fmt"
	"strings"

	"github.com/reelforge/reelforge/project"
)

// Op identifies a gated pipeline operation.
type Op string

// Gated operations.
const (
	OpGenerateScript     Op = "generate-script"
	OpPreprocess         Op = "preprocess"
	OpGenerateThumbnails Op = "generate-thumbnails"
	OpGenerateClips      Op = "generate-clips"
	OpAssemble           Op = "assemble"
)

// Error reports the first unmet precondition for an operation. It is a
// business error: callers convert it into a failed tool result, never a
// transport failure.
type Error struct {
	Op        Op
	Condition string
	Message   string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

type predicate struct {
	condition string
	check     func(*project.Project) error
}

func unmet(op Op, condition, msg string) error {
	return &Error{Op: op, Condition: condition, Message: msg}
}

func overviewSet(op Op) predicate {
	return predicate{"overview", func(p *project.Project) error {
		if strings.TrimSpace(p.Overview) == "" {
			return unmet(op, "overview", "the project overview has not been saved yet; save an overview first")
		}
		return nil
	}}
}

func aestheticSet(op Op) predicate {
	return predicate{"aesthetic", func(p *project.Project) error {
		if strings.TrimSpace(p.Aesthetic) == "" {
			return unmet(op, "aesthetic", "the aesthetic description has not been saved yet; save an aesthetic first")
		}
		return nil
	}}
}

func hasCharacters(op Op) predicate {
	return predicate{"characters", func(p *project.Project) error {
		if len(p.Characters) == 0 {
			return unmet(op, "characters", "at least one character is required; add a character first")
		}
		return nil
	}}
}

// charactersComplete names every incomplete character together with what it
// is missing, so the agent can report all blockers in one pass.
func charactersComplete(op Op) predicate {
	return predicate{"characters-complete", func(p *project.Project) error {
		incomplete := p.IncompleteCharacters()
		if len(incomplete) == 0 {
			return nil
		}
		parts := make([]string, len(incomplete))
		for i, c := range incomplete {
			parts[i] = fmt.Sprintf("%s (missing %s)", c.Name, strings.Join(c.MissingRequirements(), " and "))
		}
		return unmet(op, "characters-complete",
			"all characters must have generated reference angles and a voice clone before this step: "+strings.Join(parts, "; "))
	}}
}

func hasScenes(op Op) predicate {
	return predicate{"scenes", func(p *project.Project) error {
		if len(p.Scenes) == 0 {
			return unmet(op, "scenes", "no scenes exist yet; generate the script first")
		}
		return nil
	}}
}

func finalizationConfirmed(op Op) predicate {
	return predicate{"finalization-confirmed", func(p *project.Project) error {
		if !p.FinalizationConfirmed {
			return unmet(op, "finalization-confirmed", "the script has not been confirmed as final; ask the user to confirm finalization first")
		}
		return nil
	}}
}

func preprocessingAssetsExist(op Op) predicate {
	return predicate{"preprocessing-assets", func(p *project.Project) error {
		if len(p.Locations) == 0 && len(p.Attires) == 0 {
			return unmet(op, "preprocessing-assets", "no locations or attires have been extracted; run preprocessing first")
		}
		return nil
	}}
}

func thumbnailsReady(op Op) predicate {
	return predicate{"thumbnails-ready", func(p *project.Project) error {
		var missing []string
		for _, s := range p.Scenes {
			if s.Thumbnail.Status != project.AssetReady {
				missing = append(missing, fmt.Sprintf("scene %d", s.Index))
			}
		}
		if len(missing) > 0 {
			return unmet(op, "thumbnails-ready", "every scene needs a ready thumbnail before clips can be generated; still pending: "+strings.Join(missing, ", "))
		}
		return nil
	}}
}

func clipsReady(op Op) predicate {
	return predicate{"clips-ready", func(p *project.Project) error {
		var missing []string
		for _, s := range p.Scenes {
			if s.Clip.Status != project.AssetReady {
				missing = append(missing, fmt.Sprintf("scene %d", s.Index))
			}
		}
		if len(missing) > 0 {
			return unmet(op, "clips-ready", "every scene needs a ready clip before assembly; still pending: "+strings.Join(missing, ", "))
		}
		return nil
	}}
}

// table maps each gated operation to its predicates in dependency order.
var table = map[Op][]predicate{
	OpGenerateScript: {
		overviewSet(OpGenerateScript),
		aestheticSet(OpGenerateScript),
		hasCharacters(OpGenerateScript),
		charactersComplete(OpGenerateScript),
	},
	OpPreprocess: {
		finalizationConfirmed(OpPreprocess),
		hasScenes(OpPreprocess),
		overviewSet(OpPreprocess),
		aestheticSet(OpPreprocess),
		charactersComplete(OpPreprocess),
	},
	OpGenerateThumbnails: {
		hasScenes(OpGenerateThumbnails),
		aestheticSet(OpGenerateThumbnails),
		preprocessingAssetsExist(OpGenerateThumbnails),
	},
	OpGenerateClips: {
		hasScenes(OpGenerateClips),
		thumbnailsReady(OpGenerateClips),
		aestheticSet(OpGenerateClips),
	},
	OpAssemble: {
		hasScenes(OpAssemble),
		clipsReady(OpAssemble),
	},
}

// Check evaluates the predicate table for op against the project and returns
// the first unmet condition as a *Error, or nil when all preconditions hold.
// Unknown operations are not gated.
func Check(p *project.Project, op Op) error {
	for _, pred := range table[op] {
		if err := pred.check(p); err != nil {
			return err
		}
	}
	return nil
}
