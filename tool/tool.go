// Package tool implements the dispatch table for the fixed production tool
// catalog. Each handler validates its arguments and the project's stage
// preconditions, may call out to the generation provider, and returns a
// Result carrying declarative state mutations. Handlers never write to the
// aggregate; the orchestrator applies mutations serially.
package tool

import "fmt"

// Tool names in the fixed catalog. Dispatch is a total match over this set;
// an unrecognized name yields a failed Result, never a panic or an error
// escaping the dispatcher.
const (
	SaveOverview            = "save-overview"
	SaveAesthetic           = "save-aesthetic"
	SaveBrand               = "save-brand"
	AddCharacter            = "add-character"
	UpdateCharacter         = "update-character"
	GenerateScript          = "generate-script"
	EditScene               = "edit-scene"
	UpdateScript            = "update-script"
	AddScene                = "add-scene"
	RemoveScene             = "remove-scene"
	PreprocessScript        = "preprocess-script"
	GeneratePreprocAssets   = "generate-preprocessing-assets"
	GenerateLocationImage   = "generate-location-image"
	EditLocationImage       = "edit-location-image"
	EditAttireAngles        = "edit-attire-angles"
	GenerateAllThumbnails   = "generate-all-thumbnails"
	EditThumbnail           = "edit-thumbnail"
	GenerateAllClips        = "generate-all-clips"
	AssembleFinalOutput     = "assemble-final-output"
	UpdateChecklistItem     = "update-checklist-item"
	ShowArtifact            = "show-artifact"
	RequestUpload           = "request-upload"
	GenerateCharacterAngles = "generate-character-angles"
	CreateVoiceClone        = "create-voice-clone"
)

// Error codes used in ToolError.Code.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeProvider   = "PROVIDER_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
)

// ToolError carries structured context for a tool failure. It is rendered
// into the Result's error string; it never escapes the dispatcher as a Go
// error.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the given details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
