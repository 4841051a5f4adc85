package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_CoreFields(t *testing.T) {
	p := New()

	require.NoError(t, ApplyAll(p,
		SetOverview{Overview: "a product launch video"},
		SetAesthetic{Aesthetic: "warm film look"},
		SetBrand{Brand: "acme"},
	))

	assert.Equal(t, "a product launch video", p.Overview)
	assert.Equal(t, "warm film look", p.Aesthetic)
	assert.Equal(t, "acme", p.Brand)
}

func TestApply_PutCharacterInsertsAndReplaces(t *testing.T) {
	p := New()
	c := Character{ID: NewID(), Name: "Ada", Status: CharacterDraft}

	require.NoError(t, Apply(p, PutCharacter{Character: c}))
	require.Len(t, p.Characters, 1)

	c.Name = "Ada Lovelace"
	require.NoError(t, Apply(p, PutCharacter{Character: c}))
	require.Len(t, p.Characters, 1)
	assert.Equal(t, "Ada Lovelace", p.Characters[0].Name)
}

func TestApply_UnknownIDFails(t *testing.T) {
	p := New()

	err := Apply(p, SetCharacterStatus{ID: "missing", Status: CharacterReady})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = Apply(p, RemoveScene{ID: "missing"})
	require.Error(t, err)

	err = Apply(p, SetSceneClip{SceneID: "missing", URL: "u", Status: AssetReady})
	require.Error(t, err)
}

func TestApply_SceneMedia(t *testing.T) {
	p := New()
	s := Scene{ID: NewID(), Index: 0, Type: SceneAmbient}
	require.NoError(t, Apply(p, PutScene{Scene: s}))

	require.NoError(t, Apply(p, SetSceneThumbnail{SceneID: s.ID, URL: "mem://thumb", Status: AssetReady}))
	require.NoError(t, Apply(p, SetSceneClip{SceneID: s.ID, Status: AssetError}))

	got, ok := p.SceneByID(s.ID)
	require.True(t, ok)
	assert.Equal(t, "mem://thumb", got.Thumbnail.URL)
	assert.Equal(t, AssetReady, got.Thumbnail.Status)
	assert.Equal(t, AssetError, got.Clip.Status)
	assert.Empty(t, got.Clip.URL)
}

func TestApply_FinalizationAndStage(t *testing.T) {
	p := New()
	require.NoError(t, ApplyAll(p,
		ConfirmFinalization{},
		SetStage{Stage: StagePreprocessing},
		SetChecklistItem{Key: "script-approved", Done: true},
	))

	assert.True(t, p.FinalizationConfirmed)
	assert.Equal(t, StagePreprocessing, p.Stage)
	assert.True(t, p.Checklist["script-approved"])
}

func TestApplyAll_StopsAtFirstFailure(t *testing.T) {
	p := New()
	err := ApplyAll(p,
		SetOverview{Overview: "kept"},
		SetLocationStatus{ID: "missing", Status: AssetReady},
		SetAesthetic{Aesthetic: "never applied"},
	)
	require.Error(t, err)
	assert.Equal(t, "kept", p.Overview)
	assert.Empty(t, p.Aesthetic)
}

func TestClone_IsDeep(t *testing.T) {
	p := New()
	charID := NewID()
	require.NoError(t, ApplyAll(p,
		PutCharacter{Character: Character{ID: charID, Name: "Ada", Angles: []string{"a1"}}},
		PutScene{Scene: Scene{ID: NewID(), Index: 0, Script: &Script{SpeakerID: charID, Dialogue: "hi"}}},
	))

	cp := p.Clone()
	cp.Characters[0].Angles[0] = "changed"
	cp.Scenes[0].Script.Dialogue = "changed"
	cp.Checklist["x"] = true

	assert.Equal(t, "a1", p.Characters[0].Angles[0])
	assert.Equal(t, "hi", p.Scenes[0].Script.Dialogue)
	assert.NotContains(t, p.Checklist, "x")
}

func TestCharacterMissingRequirements(t *testing.T) {
	c := Character{Name: "Ada"}
	assert.Equal(t, []string{"reference angles", "voice clone"}, c.MissingRequirements())

	c.Angles = []string{"a"}
	assert.Equal(t, []string{"voice clone"}, c.MissingRequirements())

	c.VoiceCloneID = "v"
	assert.True(t, c.IsComplete())
	assert.Empty(t, c.MissingRequirements())
}

func TestCharacterNameFallback(t *testing.T) {
	p := New()
	assert.Equal(t, "(none)", p.CharacterName(""))
	assert.Equal(t, "(none)", p.CharacterName("ghost"))
}

func TestDescribeEnvelope(t *testing.T) {
	env := Describe(SetOverview{Overview: "x"})
	assert.Equal(t, "set-overview", env.Type)

	envs := DescribeAll([]Mutation{SetBrand{Brand: "b"}, ConfirmFinalization{}})
	require.Len(t, envs, 2)
	assert.Equal(t, "confirm-finalization", envs[1].Type)
	assert.Nil(t, DescribeAll(nil))
}
