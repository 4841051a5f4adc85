package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reelforge/reelforge/logging"
	"github.com/reelforge/reelforge/project"
)

// Dispatcher routes tool calls by name to their handlers. The match over the
// catalog is total: every name constant has a case, and an unrecognized name
// returns a failed Result rather than an error.
type Dispatcher struct {
	env    Env
	logger logging.Logger
}

// NewDispatcher creates a dispatcher over the given environment.
func NewDispatcher(env Env) *Dispatcher {
	logger := env.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
		env.Logger = logger
	}
	return &Dispatcher{env: env, logger: logger}
}

// Execute runs one tool call against a read-only project snapshot and returns
// the result. The snapshot is never written; state changes travel back as
// mutations inside the Result.
func (d *Dispatcher) Execute(ctx context.Context, name string, args json.RawMessage, p *project.Project) Result {
	res := d.dispatch(ctx, name, args, p)
	if res.Success {
		d.logger.Info("tool.call.success", "tool", name, "mutations", len(res.Mutations()))
	} else {
		d.logger.Warn("tool.call.failed", "tool", name, "error", res.Error)
	}
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, args json.RawMessage, p *project.Project) Result {
	switch name {
	case SaveOverview:
		return d.saveOverview(args)
	case SaveAesthetic:
		return d.saveAesthetic(args)
	case SaveBrand:
		return d.saveBrand(args)
	case AddCharacter:
		return d.addCharacter(args)
	case UpdateCharacter:
		return d.updateCharacter(args, p)
	case GenerateScript:
		return d.generateScript(ctx, args, p)
	case EditScene:
		return d.editScene(args, p)
	case UpdateScript:
		return d.updateScript(args, p)
	case AddScene:
		return d.addScene(args, p)
	case RemoveScene:
		return d.removeScene(args, p)
	case PreprocessScript:
		return d.preprocessScript(ctx, args, p)
	case GeneratePreprocAssets:
		return d.generatePreprocAssets(ctx, p)
	case GenerateLocationImage:
		return d.generateLocationImage(ctx, args, p)
	case EditLocationImage:
		return d.editLocationImage(ctx, args, p)
	case EditAttireAngles:
		return d.editAttireAngles(ctx, args, p)
	case GenerateAllThumbnails:
		return d.generateAllThumbnails(ctx, p)
	case EditThumbnail:
		return d.editThumbnail(ctx, args, p)
	case GenerateAllClips:
		return d.generateAllClips(ctx, p)
	case AssembleFinalOutput:
		return d.assembleFinalOutput(ctx, args, p)
	case UpdateChecklistItem:
		return d.updateChecklistItem(args)
	case ShowArtifact:
		return d.showArtifact(args, p)
	case RequestUpload:
		return d.requestUpload(args, p)
	case GenerateCharacterAngles:
		return d.generateCharacterAngles(ctx, args, p)
	case CreateVoiceClone:
		return d.createVoiceClone(ctx, args, p)
	default:
		return fail(NewToolError(name, fmt.Sprintf("unknown tool %q", name), CodeValidation))
	}
}
