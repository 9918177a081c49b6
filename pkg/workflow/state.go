package workflow

import (
	"github.com/studygraph/backend/pkg/common"
	"github.com/studygraph/backend/pkg/graph"
	"github.com/studygraph/backend/pkg/query"
)

// State identifies one node of the request workflow.
type State string

const (
	// StateRoute is the entry state. It carries no handler; its only
	// job is picking the next state from the requested action.
	StateRoute State = "route"
	// StateUpload extracts text from the uploaded file.
	StateUpload State = "upload"
	// StateExtract runs the ingestion pipeline over extracted text.
	StateExtract State = "extract"
	// StateQuery answers a question from the user's materials.
	StateQuery State = "query"
	// StateVisualize exports the user's graph for rendering.
	StateVisualize State = "visualize"
	// StateError is the uniform sink for every failure path.
	StateError State = "error"
	// StateEnd terminates the run.
	StateEnd State = "end"
)

// Action names the operation a caller requests from the workflow.
type Action string

const (
	ActionUpload    Action = "upload"
	ActionQuery     Action = "query"
	ActionVisualize Action = "visualize"
)

// WorkflowState carries one invocation through the workflow: the
// requested action with its payload fields, and the outcome fields the
// state handlers fill in. A fresh instance is created per invocation
// and never shared or reused.
type WorkflowState struct {
	Action Action `json:"action"`
	UserID string `json:"user_id"`

	FileData      []byte               `json:"-"`
	Filename      string               `json:"filename,omitempty"`
	ExtractedText string               `json:"-"`
	FileType      string               `json:"file_type,omitempty"`
	Processing    *graph.ProcessResult `json:"processing_result,omitempty"`

	Question    string           `json:"question,omitempty"`
	QueryResult *query.AskResult `json:"query_result,omitempty"`

	GraphData *common.GraphData `json:"graph_data,omitempty"`

	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`

	// Request-scoped observers passed through to the query pipeline.
	tracers []query.Tracer
}

// Failed reports whether a handler has flagged the state.
func (s *WorkflowState) Failed() bool {
	return s.Error != ""
}

// Transition is the pure state transition function: given the current
// state and the outcome recorded on the workflow state, it returns the
// next state. It never mutates its input.
//
// Any state whose handler flagged an error routes to StateError, which
// in turn always terminates; routing an unset or unknown action is
// itself an error. The graph is acyclic, so every run reaches StateEnd.
func Transition(current State, state *WorkflowState) State {
	if current != StateError && state.Failed() {
		return StateError
	}

	switch current {
	case StateRoute:
		switch state.Action {
		case ActionUpload:
			return StateUpload
		case ActionQuery:
			return StateQuery
		case ActionVisualize:
			return StateVisualize
		default:
			return StateError
		}
	case StateUpload:
		return StateExtract
	case StateExtract, StateQuery, StateVisualize, StateError:
		return StateEnd
	default:
		return StateEnd
	}
}
