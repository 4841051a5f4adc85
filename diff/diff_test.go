package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelforge/reelforge/project"
)

func diffProject() (*project.Project, *project.Scene) {
	p := project.New()
	p.Characters = []project.Character{
		{ID: "char-ada", Name: "Ada"},
		{ID: "char-grace", Name: "Grace"},
	}
	p.Locations = []project.Location{{ID: "loc-office", Name: "Office"}}
	p.Scenes = []project.Scene{{
		ID:          "scene-1",
		Index:       0,
		Type:        project.SceneDialogue,
		Description: "opening shot",
		DurationSec: 5,
		Script:      &project.Script{SpeakerID: "char-ada", Dialogue: "hello"},
		LocationID:  "loc-office",
	}}
	return p, &p.Scenes[0]
}

func TestSceneField_Description(t *testing.T) {
	p, s := diffProject()

	d, err := SceneField(p, s, FieldDescription, "closing shot")
	require.NoError(t, err)
	assert.True(t, d.Changed())
	assert.Equal(t, "opening shot", d.Old)
	assert.Equal(t, "closing shot", d.New)
}

func TestSceneField_DialogueWithoutSpeakerFails(t *testing.T) {
	p, s := diffProject()
	s.Script = nil

	_, err := SceneField(p, s, FieldDialogue, "new line")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speaker")
}

func TestSceneField_SpeakerResolvesDisplayNames(t *testing.T) {
	p, s := diffProject()

	d, err := SceneField(p, s, FieldSpeaker, "char-grace")
	require.NoError(t, err)
	assert.Equal(t, "Ada", d.Old)
	assert.Equal(t, "Grace", d.New)

	d, err = SceneField(p, s, FieldSpeaker, "ghost-id")
	require.NoError(t, err)
	assert.Equal(t, "(none)", d.New)
}

func TestSceneField_UnknownField(t *testing.T) {
	p, s := diffProject()
	_, err := SceneField(p, s, "mood", "happy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scene field")
}

func TestScenes_SuppressesNoOps(t *testing.T) {
	p, _ := diffProject()

	changes, err := Scenes(p, []SceneUpdate{
		{SceneID: "scene-1", Dialogue: "hello"},
	})
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestScenes_ReturnsOnlyChangedFields(t *testing.T) {
	p, _ := diffProject()

	changes, err := Scenes(p, []SceneUpdate{
		{SceneID: "scene-1", Dialogue: "hello", Speaker: "char-grace"},
	})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Len(t, changes[0].Fields, 1)
	assert.Equal(t, FieldSpeaker, changes[0].Fields[0].Field)
}

func TestScenes_DialogueNeedsSpeakerUnlessSuppliedTogether(t *testing.T) {
	p, s := diffProject()
	s.Script = nil

	_, err := Scenes(p, []SceneUpdate{{SceneID: "scene-1", Dialogue: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speaker")

	changes, err := Scenes(p, []SceneUpdate{{SceneID: "scene-1", Dialogue: "hi", Speaker: "char-ada"}})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Len(t, changes[0].Fields, 2)
}

func TestScenes_UnknownScene(t *testing.T) {
	p, _ := diffProject()
	_, err := Scenes(p, []SceneUpdate{{SceneID: "ghost", Dialogue: "hi"}})
	require.Error(t, err)
}

func TestWords(t *testing.T) {
	deltas := Words("the quick brown fox", "the slow brown fox")

	var removed, added []string
	for _, d := range deltas {
		switch d.Op {
		case Delete:
			removed = append(removed, d.Text)
		case Insert:
			added = append(added, d.Text)
		}
	}
	assert.Equal(t, []string{"quick"}, removed)
	assert.Equal(t, []string{"slow"}, added)
}
