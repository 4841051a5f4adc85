// Package orchestrator drives the conversation-controlled production loop.
// Each user message triggers up to a fixed number of provider round-trips;
// tool calls returned by the model execute sequentially against the project
// aggregate, and their mutations are applied here, by the single writer,
// before the next iteration reads the state.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/reelforge/reelforge/asset"
	"github.com/reelforge/reelforge/logging"
	"github.com/reelforge/reelforge/project"
	"github.com/reelforge/reelforge/provider"
	"github.com/reelforge/reelforge/tool"
)

// MaxIterations caps provider round-trips per user message. Reaching the cap
// is a soft stop: the partial result is returned, never an error.
const MaxIterations = 10

// Phase is the loop state surfaced with every turn result.
type Phase string

// Loop phases.
const (
	PhaseIdle             Phase = "idle"
	PhaseAwaitingProvider Phase = "awaiting-provider"
	PhaseExecutingTools   Phase = "executing-tools"
	PhaseAwaitingUpload   Phase = "awaiting-upload"
	PhaseDone             Phase = "done"
)

// UploadRequest is a pending ask for user files. It is the loop's only
// external suspension point: no further provider round-trips happen until a
// new user message with attachments arrives.
type UploadRequest struct {
	CallID      string `json:"callId"`
	Purpose     string `json:"purpose"`
	CharacterID string `json:"characterId,omitempty"`
}

// TurnResult is the outcome of one user message.
type TurnResult struct {
	FinalText  string
	History    []project.Turn
	Pending    *UploadRequest
	Iterations int
	CapReached bool
	Phase      Phase
}

// Options configures the orchestrator.
type Options struct {
	Logger        logging.Logger
	SystemPrompt  string
	MaxIterations int
}

// Orchestrator runs the agent loop for one session at a time.
type Orchestrator struct {
	chat          provider.Conversational
	dispatcher    *tool.Dispatcher
	assets        asset.Store
	logger        logging.Logger
	systemPrompt  string
	maxIterations int
}

// New creates an orchestrator over a conversational provider and dispatcher.
func New(chat provider.Conversational, dispatcher *tool.Dispatcher, assets asset.Store, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger:        logging.NewDefaultLogger(),
		SystemPrompt:  defaultSystemPrompt,
		MaxIterations: MaxIterations,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		chat:          chat,
		dispatcher:    dispatcher,
		assets:        assets,
		logger:        opts.Logger,
		systemPrompt:  opts.SystemPrompt,
		maxIterations: opts.MaxIterations,
	}
}

// RunTurn processes one user message against the session's history and
// project. The returned history supersedes the input. An error is returned
// only for transport-level conversational failures; tool failures travel
// back to the model as tool responses and the loop continues.
func (o *Orchestrator) RunTurn(ctx context.Context, userMessage string, attachments []project.Attachment, history []project.Turn, proj *project.Project) (*TurnResult, error) {
	userTurn, err := o.buildUserTurn(ctx, userMessage, attachments, proj)
	if err != nil {
		return nil, err
	}
	history = append(history, userTurn)

	o.logger.Info("orchestrator.turn.start", "project_id", proj.ID, "history", len(history))

	result := &TurnResult{Phase: PhaseAwaitingProvider}
	for i := 0; i < o.maxIterations; i++ {
		result.Iterations = i + 1

		resp, err := o.chat.Converse(ctx, provider.ChatRequest{
			System: o.systemPrompt + "\n\nCurrent project state:\n" + snapshotJSON(proj),
			Turns:  history,
			Tools:  tool.Definitions(),
		})
		if err != nil {
			result.History = history
			return result, fmt.Errorf("conversational provider: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			history = append(history, modelTurn(resp))
			result.FinalText = resp.Text
			result.History = history
			result.Phase = PhaseDone
			o.logger.Info("orchestrator.turn.done", "project_id", proj.ID, "iterations", result.Iterations)
			return result, nil
		}

		result.Phase = PhaseExecutingTools
		history = append(history, modelTurn(resp))

		responseTurn, pending := o.executeCalls(ctx, resp.ToolCalls, proj)
		history = append(history, responseTurn)

		if pending != nil {
			result.FinalText = resp.Text
			result.History = history
			result.Pending = pending
			result.Phase = PhaseAwaitingUpload
			o.logger.Info("orchestrator.turn.paused", "project_id", proj.ID, "purpose", pending.Purpose)
			return result, nil
		}
		result.Phase = PhaseAwaitingProvider
	}

	// Iteration cap reached: return the partial result.
	result.History = history
	result.CapReached = true
	result.Phase = PhaseDone
	o.logger.Warn("orchestrator.turn.cap_reached", "project_id", proj.ID, "iterations", result.Iterations)
	return result, nil
}

// executeCalls runs the turn's tool calls strictly sequentially against the
// live project, applying each call's mutations before the next call runs. A
// request-upload call stops execution: its response acknowledges the pause
// and any remaining calls are answered as skipped so every call still has
// exactly one response.
func (o *Orchestrator) executeCalls(ctx context.Context, calls []project.ToolCall, proj *project.Project) (project.Turn, *UploadRequest) {
	responseTurn := project.Turn{Role: project.RoleUser}
	var pending *UploadRequest

	for i, call := range calls {
		if call.Name == tool.RequestUpload {
			res := o.dispatcher.Execute(ctx, call.Name, call.Args, proj)
			responseTurn.Parts = append(responseTurn.Parts, responsePart(call, res.Wire()))
			if res.Success {
				pending = pendingFromCall(call)
				for _, skipped := range calls[i+1:] {
					responseTurn.Parts = append(responseTurn.Parts, responsePart(skipped, map[string]any{
						"success": false,
						"error":   "skipped: awaiting user upload",
					}))
				}
				return responseTurn, pending
			}
			continue
		}

		res := o.dispatcher.Execute(ctx, call.Name, call.Args, proj)
		if res.Success {
			if err := applyStaged(proj, res.Mutations()); err != nil {
				o.logger.Error("orchestrator.apply.failed", "tool", call.Name, "error", err)
				responseTurn.Parts = append(responseTurn.Parts, responsePart(call, map[string]any{
					"success": false,
					"error":   fmt.Sprintf("state update failed: %v", err),
				}))
				continue
			}
		}
		responseTurn.Parts = append(responseTurn.Parts, responsePart(call, res.Wire()))
	}
	return responseTurn, pending
}

// applyStaged applies the mutations to a copy of the aggregate and swaps the
// copy in only when every mutation succeeds, so a mutation failing mid-list
// leaves the project exactly as it was before the call.
func applyStaged(proj *project.Project, mutations []project.Mutation) error {
	staged := proj.Clone()
	if err := project.ApplyAll(staged, mutations...); err != nil {
		return err
	}
	*proj = *staged
	return nil
}

func responsePart(call project.ToolCall, payload any) project.ToolResponsePart {
	return project.ToolResponsePart{Response: project.ToolResponse{
		ID:           call.ID,
		Name:         call.Name,
		Response:     payload,
		Continuation: call.Continuation,
	}}
}

func pendingFromCall(call project.ToolCall) *UploadRequest {
	req := &UploadRequest{CallID: call.ID}
	var args struct {
		Purpose     string `json:"purpose"`
		CharacterID string `json:"characterId"`
	}
	if err := json.Unmarshal(call.Args, &args); err == nil {
		req.Purpose = args.Purpose
		req.CharacterID = args.CharacterID
	}
	return req
}

// buildUserTurn assembles the inbound turn. Attachments are uploaded to the
// asset store first so tools can reference them by durable URL; the turn
// carries both the inline bytes (for the model to see) and the URL listing.
func (o *Orchestrator) buildUserTurn(ctx context.Context, message string, attachments []project.Attachment, proj *project.Project) (project.Turn, error) {
	turn := project.Turn{Role: project.RoleUser}
	if message != "" {
		turn.Parts = append(turn.Parts, project.TextPart{Text: message})
	}
	for _, att := range attachments {
		objectName := fmt.Sprintf("projects/%s/uploads/%s-%s", proj.ID, project.NewID(), att.Name)
		url, err := o.assets.Upload(ctx, objectName, bytes.NewReader(att.Data), int64(len(att.Data)), att.MIMEType)
		if err != nil {
			return project.Turn{}, fmt.Errorf("upload attachment %s: %w", att.Name, err)
		}
		turn.Parts = append(turn.Parts,
			project.InlineMediaPart{MIMEType: att.MIMEType, Data: att.Data, Name: att.Name},
			project.TextPart{Text: fmt.Sprintf("[uploaded %s: %s]", att.Name, url)},
		)
	}
	if len(turn.Parts) == 0 {
		turn.Parts = append(turn.Parts, project.TextPart{Text: "(empty message)"})
	}
	return turn, nil
}

// modelTurn converts a provider response into a model turn.
func modelTurn(resp *provider.ChatResponse) project.Turn {
	turn := project.Turn{Role: project.RoleModel}
	if resp.Text != "" {
		turn.Parts = append(turn.Parts, project.TextPart{Text: resp.Text})
	}
	for _, call := range resp.ToolCalls {
		turn.Parts = append(turn.Parts, project.ToolCallPart{Call: call})
	}
	return turn
}

func snapshotJSON(proj *project.Project) string {
	b, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

const defaultSystemPrompt = `You are a video production director guiding a user
from idea to finished video. Work through the stages in order: overview,
aesthetic, optional brand, characters (each needs uploaded reference photos, a
generated angle set and a voice clone), script, preprocessing (locations and
attires), thumbnails, clips, and final assembly. Use the provided tools for
every state change; never invent URLs or ids. Ask the user to confirm before
finalizing the script and before assembling the final video. When you need
files from the user, call request-upload and wait.`
