package tool

import (
	"strings"

	"github.com/reelforge/reelforge/project"
)

// The conversational agent sometimes fabricates placeholder identifiers
// instead of echoing real ones. Resolution is best effort: exact id match
// first, then a normalized case-insensitive match against display names,
// then the most recently created entity of the expected type.

var placeholderSuffixes = []string{"-id", "_id", "-1", "-001", "-placeholder"}

func normalizeCandidate(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, suffix := range placeholderSuffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.TrimSpace(s)
}

func resolveCharacter(p *project.Project, candidate string) (*project.Character, bool) {
	if c, found := p.CharacterByID(candidate); found {
		return c, true
	}
	norm := normalizeCandidate(candidate)
	for i := range p.Characters {
		if project.DisplayNameEqual(p.Characters[i].Name, norm) {
			return &p.Characters[i], true
		}
	}
	if len(p.Characters) > 0 {
		return &p.Characters[len(p.Characters)-1], true
	}
	return nil, false
}

func resolveScene(p *project.Project, candidate string) (*project.Scene, bool) {
	if s, found := p.SceneByID(candidate); found {
		return s, true
	}
	if len(p.Scenes) > 0 {
		return &p.Scenes[len(p.Scenes)-1], true
	}
	return nil, false
}

func resolveLocation(p *project.Project, candidate string) (*project.Location, bool) {
	if l, found := p.LocationByID(candidate); found {
		return l, true
	}
	norm := normalizeCandidate(candidate)
	for i := range p.Locations {
		if project.DisplayNameEqual(p.Locations[i].Name, norm) {
			return &p.Locations[i], true
		}
	}
	if len(p.Locations) > 0 {
		return &p.Locations[len(p.Locations)-1], true
	}
	return nil, false
}

func resolveAttire(p *project.Project, candidate string) (*project.Attire, bool) {
	if a, found := p.AttireByID(candidate); found {
		return a, true
	}
	norm := normalizeCandidate(candidate)
	for i := range p.Attires {
		if project.DisplayNameEqual(p.Attires[i].Name, norm) {
			return &p.Attires[i], true
		}
	}
	if len(p.Attires) > 0 {
		return &p.Attires[len(p.Attires)-1], true
	}
	return nil, false
}
