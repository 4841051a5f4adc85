package stage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelforge/reelforge/project"
)

func completeCharacter(name string) project.Character {
	return project.Character{
		ID:           project.NewID(),
		Name:         name,
		Angles:       []string{"mem://angle"},
		VoiceCloneID: "voice-" + name,
		Status:       project.CharacterReady,
	}
}

func scriptReadyProject() *project.Project {
	p := project.New()
	p.Overview = "a launch video"
	p.Aesthetic = "warm film look"
	p.Characters = []project.Character{completeCharacter("Ada")}
	return p
}

func TestCheck_GenerateScript_FirstUnmetWins(t *testing.T) {
	p := project.New()

	err := Check(p, OpGenerateScript)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overview")

	p.Overview = "something"
	err = Check(p, OpGenerateScript)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aesthetic")

	p.Aesthetic = "style"
	err = Check(p, OpGenerateScript)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one character")
}

func TestCheck_GenerateScript_IncompleteCharacterNamesMissingAngles(t *testing.T) {
	p := scriptReadyProject()
	p.Characters = []project.Character{{
		ID:           project.NewID(),
		Name:         "Ada",
		VoiceCloneID: "voice-ada",
	}}

	err := Check(p, OpGenerateScript)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ada")
	assert.Contains(t, err.Error(), "reference angles")
}

func TestCheck_NamesEveryIncompleteCharacter(t *testing.T) {
	p := scriptReadyProject()
	p.Characters = append(p.Characters,
		project.Character{ID: project.NewID(), Name: "Grace"},
		project.Character{ID: project.NewID(), Name: "Linus", Angles: []string{"mem://a"}},
	)

	for _, op := range []Op{OpGenerateScript, OpPreprocess} {
		proj := p.Clone()
		proj.FinalizationConfirmed = true
		proj.Scenes = []project.Scene{{ID: project.NewID()}}

		err := Check(proj, op)
		require.Error(t, err, "op %s", op)
		assert.Contains(t, err.Error(), "Grace (missing reference angles and voice clone)")
		assert.Contains(t, err.Error(), "Linus (missing voice clone)")
		assert.NotContains(t, err.Error(), "Ada (")
	}
}

func TestCheck_GenerateScript_CompleteProjectPasses(t *testing.T) {
	require.NoError(t, Check(scriptReadyProject(), OpGenerateScript))
}

func TestCheck_Preprocess_RequiresConfirmationFirst(t *testing.T) {
	p := scriptReadyProject()
	p.Scenes = []project.Scene{{ID: project.NewID()}}

	err := Check(p, OpPreprocess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirm")

	p.FinalizationConfirmed = true
	require.NoError(t, Check(p, OpPreprocess))
}

func TestCheck_GenerateThumbnails(t *testing.T) {
	p := project.New()
	p.Aesthetic = "style"

	err := Check(p, OpGenerateThumbnails)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenes")

	p.Scenes = []project.Scene{{ID: project.NewID()}}
	err = Check(p, OpGenerateThumbnails)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preprocessing")

	p.Locations = []project.Location{{ID: project.NewID(), Name: "Office"}}
	require.NoError(t, Check(p, OpGenerateThumbnails))
}

func TestCheck_GenerateClips_ListsPendingThumbnails(t *testing.T) {
	p := project.New()
	p.Aesthetic = "style"
	p.Scenes = []project.Scene{
		{ID: project.NewID(), Index: 0, Thumbnail: project.MediaRef{URL: "u", Status: project.AssetReady}},
		{ID: project.NewID(), Index: 1},
	}

	err := Check(p, OpGenerateClips)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene 1")
	assert.NotContains(t, err.Error(), "scene 0")
}

func TestCheck_Assemble(t *testing.T) {
	p := project.New()
	p.Scenes = []project.Scene{
		{ID: project.NewID(), Index: 0, Clip: project.MediaRef{URL: "u", Status: project.AssetReady}},
		{ID: project.NewID(), Index: 1, Clip: project.MediaRef{Status: project.AssetError}},
	}

	err := Check(p, OpAssemble)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene 1")

	var stageErr *Error
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, OpAssemble, stageErr.Op)
	assert.Equal(t, "clips-ready", stageErr.Condition)

	p.Scenes[1].Clip = project.MediaRef{URL: "u2", Status: project.AssetReady}
	require.NoError(t, Check(p, OpAssemble))
}

func TestCheck_UnknownOpIsNotGated(t *testing.T) {
	require.NoError(t, Check(project.New(), Op("save-overview")))
}
