package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelforge/reelforge/asset"
	"github.com/reelforge/reelforge/fanout"
	"github.com/reelforge/reelforge/logging"
	"github.com/reelforge/reelforge/project"
	"github.com/reelforge/reelforge/provider"
)

type fakeStitcher struct {
	url    string
	called int
}

func (f *fakeStitcher) Stitch(_ context.Context, _ *project.Project) (string, error) {
	f.called++
	return f.url, nil
}

type testEnv struct {
	dispatcher *Dispatcher
	generator  *provider.MockGenerator
	store      *asset.InMemoryStore
	stitcher   *fakeStitcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gen := provider.NewMockGenerator()
	store := asset.NewInMemoryStore()
	stitcher := &fakeStitcher{url: "mem://final.mp4"}
	d := NewDispatcher(Env{
		Images:   gen,
		Video:    gen,
		Voice:    gen,
		Script:   gen,
		Assets:   store,
		Batch:    fanout.NewRunner(4, logging.NoOpLogger{}),
		Stitcher: stitcher,
		Logger:   logging.NoOpLogger{},
	})
	return &testEnv{dispatcher: d, generator: gen, store: store, stitcher: stitcher}
}

func completeCharacter(name string) project.Character {
	return project.Character{
		ID:           project.NewID(),
		Name:         name,
		Angles:       []string{"mem://angle"},
		VoiceCloneID: "voice-" + name,
		Status:       project.CharacterReady,
	}
}

func execute(t *testing.T, te *testEnv, name, args string, p *project.Project) Result {
	t.Helper()
	return te.dispatcher.Execute(context.Background(), name, json.RawMessage(args), p)
}

func TestExecute_UnknownToolFailsWithoutPanic(t *testing.T) {
	te := newTestEnv(t)

	res := execute(t, te, "summon-dragon", `{}`, project.New())

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown tool")
	assert.Empty(t, res.Mutations())
}

func TestExecute_MalformedArgs(t *testing.T) {
	te := newTestEnv(t)

	res := execute(t, te, SaveOverview, `{"overview": 42}`, project.New())

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "invalid arguments")
}

func TestSaveOverview(t *testing.T) {
	te := newTestEnv(t)

	res := execute(t, te, SaveOverview, `{"overview":"  "}`, project.New())
	assert.False(t, res.Success)

	res = execute(t, te, SaveOverview, `{"overview":"launch video"}`, project.New())
	require.True(t, res.Success)
	require.Len(t, res.Mutations(), 1)
	assert.Equal(t, project.SetOverview{Overview: "launch video"}, res.Update)
}

func TestAddAndUpdateCharacter(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()

	res := execute(t, te, AddCharacter, `{"name":"Ada"}`, p)
	require.True(t, res.Success)
	put := res.Update.(project.PutCharacter)
	assert.Equal(t, "Ada", put.Character.Name)
	assert.Equal(t, project.CharacterDraft, put.Character.Status)
	require.NoError(t, project.Apply(p, res.Update))

	res = execute(t, te, UpdateCharacter, `{"characterId":"Ada","voiceSampleUrl":"mem://sample.wav"}`, p)
	require.True(t, res.Success)
	updated := res.Update.(project.PutCharacter)
	assert.Equal(t, put.Character.ID, updated.Character.ID)
	assert.Equal(t, "mem://sample.wav", updated.Character.VoiceSampleURL)
}

func TestGenerateScript_IncompleteCharacterMentionsReferenceAngles(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Overview = "launch video"
	p.Aesthetic = "warm"
	p.Characters = []project.Character{{
		ID:           project.NewID(),
		Name:         "Ada",
		VoiceCloneID: "voice-ada",
	}}

	res := execute(t, te, GenerateScript, `{}`, p)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "reference angles")
	assert.Contains(t, res.Error, "Ada")
	assert.Empty(t, res.Mutations())
}

func TestGenerateScript_BuildsScenesAndClampsDuration(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Overview = "launch video"
	p.Aesthetic = "warm"
	p.Characters = []project.Character{completeCharacter("Ada")}
	te.generator.Script = []provider.SceneDraft{
		{Type: "ambient", Description: "opening", DurationSec: 30},
		{Description: "Ada speaks", SpeakerID: "Ada", Dialogue: "hello", DurationSec: 4},
	}

	res := execute(t, te, GenerateScript, `{"guidance":"keep it short"}`, p)
	require.True(t, res.Success, res.Error)

	replace := res.Update.(project.ReplaceScenes)
	require.Len(t, replace.Scenes, 2)
	assert.Equal(t, project.MaxClipSeconds, replace.Scenes[0].DurationSec)
	assert.Equal(t, project.SceneDialogue, replace.Scenes[1].Type)
	require.NotNil(t, replace.Scenes[1].Script)
	assert.Equal(t, p.Characters[0].ID, replace.Scenes[1].Script.SpeakerID)
	assert.Equal(t, project.AssetPending, replace.Scenes[0].Thumbnail.Status)

	require.Len(t, res.Additional, 1)
	assert.Equal(t, project.SetStage{Stage: project.StageScript}, res.Additional[0])
}

func TestEditScene_DialogueWithoutSpeaker(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Scenes = []project.Scene{{ID: "s1", Index: 0, Type: project.SceneAmbient}}

	res := execute(t, te, EditScene, `{"sceneId":"s1","field":"dialogue","newValue":"hi"}`, p)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "speaker")
	assert.Empty(t, res.Mutations())
}

func TestEditScene_NoOpSuppressed(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Scenes = []project.Scene{{ID: "s1", Index: 0, Description: "same"}}

	res := execute(t, te, EditScene, `{"sceneId":"s1","field":"description","newValue":"same"}`, p)

	require.True(t, res.Success)
	assert.Empty(t, res.Mutations())
}

func TestEditScene_InvalidatesDownstreamMedia(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Scenes = []project.Scene{{
		ID: "s1", Index: 0, Description: "old",
		Thumbnail: project.MediaRef{URL: "t", Status: project.AssetReady},
		Clip:      project.MediaRef{URL: "c", Status: project.AssetReady},
	}}

	res := execute(t, te, EditScene, `{"sceneId":"s1","field":"description","newValue":"new"}`, p)
	require.True(t, res.Success)

	put := res.Update.(project.PutScene)
	assert.Equal(t, project.AssetPending, put.Scene.Thumbnail.Status)
	assert.Equal(t, project.AssetPending, put.Scene.Clip.Status)
}

func TestEditScene_UnknownTypeRejected(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Scenes = []project.Scene{{ID: "s1", Index: 0, Type: project.SceneAmbient}}

	res := execute(t, te, EditScene, `{"sceneId":"s1","field":"type","newValue":"montage"}`, p)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown scene type")

	res = execute(t, te, EditScene, `{"sceneId":"s1","field":"type","newValue":"infographic"}`, p)
	require.True(t, res.Success, res.Error)
	put := res.Update.(project.PutScene)
	assert.Equal(t, project.SceneInfographic, put.Scene.Type)
}

func TestAddScene_SpliceKeepsIndexesUnique(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Scenes = []project.Scene{
		{ID: "s0", Index: 0, Description: "one"},
		{ID: "s1", Index: 1, Description: "two"},
		{ID: "s2", Index: 2, Description: "three"},
	}

	res := execute(t, te, AddScene, `{"description":"spliced","afterSceneId":"s0"}`, p)
	require.True(t, res.Success, res.Error)
	require.NoError(t, project.ApplyAll(p, res.Mutations()...))

	require.Len(t, p.Scenes, 4)
	byIndex := make(map[int]string, len(p.Scenes))
	for _, s := range p.Scenes {
		held, taken := byIndex[s.Index]
		require.Falsef(t, taken, "sequence index %d held by scenes %s and %s", s.Index, held, s.ID)
		byIndex[s.Index] = s.ID
	}

	spliced, _ := p.SceneByID(res.Data.(map[string]any)["sceneId"].(string))
	assert.Equal(t, 1, spliced.Index)
	shifted1, _ := p.SceneByID("s1")
	shifted2, _ := p.SceneByID("s2")
	assert.Equal(t, 2, shifted1.Index)
	assert.Equal(t, 3, shifted2.Index)
}

func TestAddScene_AppendDoesNotShift(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Scenes = []project.Scene{{ID: "s0", Index: 0, Description: "one"}}

	res := execute(t, te, AddScene, `{"description":"closing"}`, p)
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Mutations(), 1)
	assert.Equal(t, 1, res.Update.(project.PutScene).Scene.Index)
}

func TestEditScene_DurationBeyondCapRejected(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Scenes = []project.Scene{{ID: "s1", Index: 0, DurationSec: 5}}

	res := execute(t, te, EditScene, `{"sceneId":"s1","field":"duration","newValue":"30"}`, p)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "clip limit")
}

func TestUpdateScript_BatchSuppressesNoOps(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	ada := completeCharacter("Ada")
	p.Characters = []project.Character{ada}
	p.Scenes = []project.Scene{
		{ID: "s1", Index: 0, Script: &project.Script{SpeakerID: ada.ID, Dialogue: "hello"}},
		{ID: "s2", Index: 1, Script: &project.Script{SpeakerID: ada.ID, Dialogue: "bye"}},
	}

	res := execute(t, te, UpdateScript,
		`{"updates":[{"sceneId":"s1","dialogue":"hello"},{"sceneId":"s2","dialogue":"farewell"}]}`, p)

	require.True(t, res.Success, res.Error)
	require.Len(t, res.Mutations(), 1)
	put := res.Update.(project.PutScene)
	assert.Equal(t, "s2", put.Scene.ID)
	assert.Equal(t, "farewell", put.Scene.Script.Dialogue)
}

func TestPreprocessScript_RequiresConfirmation(t *testing.T) {
	te := newTestEnv(t)

	res := execute(t, te, PreprocessScript, `{"confirmed":false}`, project.New())

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not finalized")
}

func TestPreprocessScript_ExtractsAndTags(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Overview = "launch"
	p.Aesthetic = "warm"
	ada := completeCharacter("Ada")
	p.Characters = []project.Character{ada}
	p.Scenes = []project.Scene{{ID: "s1", Index: 0, Description: "opening"}}
	te.generator.Extraction = &provider.AssetExtraction{
		Locations:      []provider.LocationDraft{{Name: "Office", Description: "open plan"}},
		Attires:        []provider.AttireDraft{{CharacterID: ada.ID, Name: "Suit", Description: "navy"}},
		SceneLocations: map[string]int{"s1": 0},
		SceneAttires:   map[string]map[string]int{"s1": {ada.ID: 0}},
	}

	res := execute(t, te, PreprocessScript, `{"confirmed":true}`, p)
	require.True(t, res.Success, res.Error)

	mutations := res.Mutations()
	require.NoError(t, project.ApplyAll(p, mutations...))

	assert.True(t, p.FinalizationConfirmed)
	require.Len(t, p.Locations, 1)
	require.Len(t, p.Attires, 1)
	assert.Equal(t, project.AssetPending, p.Locations[0].Status)
	assert.Equal(t, p.Locations[0].ID, p.Scenes[0].LocationID)
	assert.Equal(t, p.Attires[0].ID, p.Scenes[0].AttireByCharacter[ada.ID])
	assert.Equal(t, project.StagePreprocessing, p.Stage)
}

func TestGeneratePreprocAssets_PartialFailure(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Aesthetic = "warm"
	p.Locations = []project.Location{
		{ID: "l1", Name: "Office", Status: project.AssetPending},
		{ID: "l2", Name: "Cave", Status: project.AssetPending},
		{ID: "l3", Name: "Rooftop", Status: project.AssetPending},
	}
	te.generator.FailPrompts = []string{"Cave"}

	res := execute(t, te, GeneratePreprocAssets, `{}`, p)
	require.True(t, res.Success, res.Error)

	data := res.Data.(map[string]any)
	assert.Equal(t, 3, data["attempted"])
	assert.Equal(t, 2, data["succeeded"])

	require.NoError(t, project.ApplyAll(p, res.Mutations()...))
	l1, _ := p.LocationByID("l1")
	l2, _ := p.LocationByID("l2")
	l3, _ := p.LocationByID("l3")
	assert.Equal(t, project.AssetReady, l1.Status)
	assert.NotEmpty(t, l1.ImageURL)
	assert.Equal(t, project.AssetError, l2.Status)
	assert.Empty(t, l2.ImageURL)
	assert.Equal(t, project.AssetReady, l3.Status)
}

func TestGeneratePreprocAssets_NothingPendingIsIdempotent(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Locations = []project.Location{{ID: "l1", Name: "Office", Status: project.AssetReady}}

	res := execute(t, te, GeneratePreprocAssets, `{}`, p)

	require.True(t, res.Success)
	data := res.Data.(map[string]any)
	assert.Equal(t, 0, data["attempted"])
	assert.Empty(t, res.Mutations())
	assert.Zero(t, te.generator.Calls)
}

func TestGeneratePreprocAssets_AttireAngleSets(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Aesthetic = "warm"
	ada := completeCharacter("Ada")
	p.Characters = []project.Character{ada}
	p.Attires = []project.Attire{{ID: "a1", CharacterID: ada.ID, Name: "Suit", Status: project.AssetPending}}

	res := execute(t, te, GeneratePreprocAssets, `{}`, p)
	require.True(t, res.Success, res.Error)

	require.NoError(t, project.ApplyAll(p, res.Mutations()...))
	att, _ := p.AttireByID("a1")
	assert.Equal(t, project.AssetReady, att.Status)
	assert.Len(t, att.AngleURLs, project.MaxReferenceAngles)
}

func TestGenerateAllThumbnails_GateAndGeneration(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()

	res := execute(t, te, GenerateAllThumbnails, `{}`, p)
	assert.False(t, res.Success)

	p.Aesthetic = "warm"
	p.Locations = []project.Location{{ID: "l1", Name: "Office", ImageURL: "mem://office", Status: project.AssetReady}}
	p.Scenes = []project.Scene{
		{ID: "s1", Index: 0, Description: "opening", LocationID: "l1"},
		{ID: "s2", Index: 1, Description: "closing", Thumbnail: project.MediaRef{URL: "t", Status: project.AssetReady}},
	}

	res = execute(t, te, GenerateAllThumbnails, `{}`, p)
	require.True(t, res.Success, res.Error)

	data := res.Data.(map[string]any)
	assert.Equal(t, 1, data["attempted"])

	require.NoError(t, project.ApplyAll(p, res.Mutations()...))
	s1, _ := p.SceneByID("s1")
	assert.Equal(t, project.AssetReady, s1.Thumbnail.Status)
	assert.NotEmpty(t, s1.Thumbnail.URL)
}

func TestGenerateAllClips_UsesVoiceClone(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Aesthetic = "warm"
	ada := completeCharacter("Ada")
	p.Characters = []project.Character{ada}
	p.Scenes = []project.Scene{{
		ID: "s1", Index: 0, Description: "Ada speaks",
		Script:    &project.Script{SpeakerID: ada.ID, Dialogue: "hello"},
		Thumbnail: project.MediaRef{URL: "mem://thumb", Status: project.AssetReady},
	}}

	res := execute(t, te, GenerateAllClips, `{}`, p)
	require.True(t, res.Success, res.Error)

	require.NoError(t, project.ApplyAll(p, res.Mutations()...))
	s1, _ := p.SceneByID("s1")
	assert.Equal(t, project.AssetReady, s1.Clip.Status)
}

func TestAssemble_NotConfirmed(t *testing.T) {
	te := newTestEnv(t)

	res := execute(t, te, AssembleFinalOutput, `{"confirmed":false}`, project.New())

	assert.False(t, res.Success)
	assert.Zero(t, te.stitcher.called)
}

func TestAssemble_ClipsNotReadySkipsStitcher(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Scenes = []project.Scene{
		{ID: "s1", Index: 0, Clip: project.MediaRef{URL: "u", Status: project.AssetReady}},
		{ID: "s2", Index: 1, Clip: project.MediaRef{Status: project.AssetError}},
	}

	res := execute(t, te, AssembleFinalOutput, `{"confirmed":true}`, p)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "scene 1")
	assert.Zero(t, te.stitcher.called)
}

func TestAssemble_Success(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Scenes = []project.Scene{{ID: "s1", Index: 0, Clip: project.MediaRef{URL: "u", Status: project.AssetReady}}}

	res := execute(t, te, AssembleFinalOutput, `{"confirmed":true}`, p)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 1, te.stitcher.called)
	assert.Equal(t, project.SetFinalVideo{URL: "mem://final.mp4"}, res.Update)
}

func TestRequestUpload(t *testing.T) {
	te := newTestEnv(t)

	res := execute(t, te, RequestUpload, `{}`, project.New())
	assert.False(t, res.Success)

	res = execute(t, te, RequestUpload, `{"purpose":"reference photos"}`, project.New())
	require.True(t, res.Success)
	data := res.Data.(map[string]any)
	assert.Equal(t, "awaiting-upload", data["status"])
	assert.Empty(t, res.Mutations())
}

func TestGenerateCharacterAngles(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Characters = []project.Character{{ID: "c1", Name: "Ada", Status: project.CharacterDraft}}

	res := execute(t, te, GenerateCharacterAngles, `{"characterId":"c1"}`, p)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "reference photos")

	p.Characters[0].ReferenceImages = []string{"mem://photo.jpg"}
	res = execute(t, te, GenerateCharacterAngles, `{"characterId":"c1"}`, p)
	require.True(t, res.Success, res.Error)

	require.NoError(t, project.ApplyAll(p, res.Mutations()...))
	c, _ := p.CharacterByID("c1")
	assert.Len(t, c.Angles, project.MaxReferenceAngles)
	assert.Equal(t, project.CharacterReady, c.Status)
}

func TestCreateVoiceClone_ResolvesByName(t *testing.T) {
	te := newTestEnv(t)
	p := project.New()
	p.Characters = []project.Character{{
		ID: "c1", Name: "Ada", VoiceSampleURL: "mem://sample.wav",
	}}

	res := execute(t, te, CreateVoiceClone, `{"characterId":"ada"}`, p)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, project.SetVoiceClone{ID: "c1", VoiceCloneID: "voice-Ada"}, res.Update)
}

func TestResolveCharacter_Heuristic(t *testing.T) {
	p := project.New()
	p.Characters = []project.Character{
		{ID: "c1", Name: "Ada"},
		{ID: "c2", Name: "Grace Hopper"},
	}

	c, found := resolveCharacter(p, "c1")
	require.True(t, found)
	assert.Equal(t, "Ada", c.Name)

	c, found = resolveCharacter(p, "grace_hopper-id")
	require.True(t, found)
	assert.Equal(t, "Grace Hopper", c.Name)

	c, found = resolveCharacter(p, "totally-unknown-xyz")
	require.True(t, found)
	assert.Equal(t, "Grace Hopper", c.Name)

	_, found = resolveCharacter(project.New(), "anything")
	assert.False(t, found)
}
