package tool

import "github.com/reelforge/reelforge/project"

// Result is the outcome of one tool execution. Mutations describe state
// changes for the single writer to apply; a failed result carries none.
type Result struct {
	Success bool
	Data    any
	Error   string
	// Update is the primary state mutation, when the tool has one.
	Update project.Mutation
	// Additional carries follow-on mutations for handlers that touch
	// multiple entities in one call.
	Additional []project.Mutation
}

// Mutations returns every mutation of the result in application order.
func (r Result) Mutations() []project.Mutation {
	var out []project.Mutation
	if r.Update != nil {
		out = append(out, r.Update)
	}
	out = append(out, r.Additional...)
	return out
}

// WireResult is the JSON form of a Result per the tool-call contract.
type WireResult struct {
	Success           bool               `json:"success"`
	Data              any                `json:"data,omitempty"`
	Error             string             `json:"error,omitempty"`
	StateUpdates      *project.Envelope  `json:"stateUpdates,omitempty"`
	AdditionalUpdates []project.Envelope `json:"additionalUpdates,omitempty"`
}

// Wire converts the result into its JSON wire form.
func (r Result) Wire() WireResult {
	w := WireResult{Success: r.Success, Data: r.Data, Error: r.Error}
	if r.Update != nil {
		env := project.Describe(r.Update)
		w.StateUpdates = &env
	}
	w.AdditionalUpdates = project.DescribeAll(r.Additional)
	return w
}

func ok(data any, mutations ...project.Mutation) Result {
	r := Result{Success: true, Data: data}
	if len(mutations) > 0 {
		r.Update = mutations[0]
		r.Additional = mutations[1:]
	}
	return r
}

func fail(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

func failMsg(toolName, msg string) Result {
	return fail(NewToolError(toolName, msg, CodeValidation))
}

func failExec(toolName, msg string) Result {
	return fail(NewToolError(toolName, msg, CodeExecution))
}

func failProvider(toolName, msg string) Result {
	return fail(NewToolError(toolName, msg, CodeProvider))
}
