package workflow

import "testing"

func TestTransitionRouting(t *testing.T) {
	tests := []struct {
		name    string
		current State
		state   WorkflowState
		want    State
	}{
		{
			name:    "route upload",
			current: StateRoute,
			state:   WorkflowState{Action: ActionUpload},
			want:    StateUpload,
		},
		{
			name:    "route query",
			current: StateRoute,
			state:   WorkflowState{Action: ActionQuery},
			want:    StateQuery,
		},
		{
			name:    "route visualize",
			current: StateRoute,
			state:   WorkflowState{Action: ActionVisualize},
			want:    StateVisualize,
		},
		{
			name:    "route without action",
			current: StateRoute,
			state:   WorkflowState{},
			want:    StateError,
		},
		{
			name:    "route unknown action",
			current: StateRoute,
			state:   WorkflowState{Action: "reindex"},
			want:    StateError,
		},
		{
			name:    "route with preexisting error flag",
			current: StateRoute,
			state:   WorkflowState{Action: ActionQuery, Error: "boom"},
			want:    StateError,
		},
		{
			name:    "upload leads to extract",
			current: StateUpload,
			state:   WorkflowState{Action: ActionUpload},
			want:    StateExtract,
		},
		{
			name:    "failed upload diverts to error",
			current: StateUpload,
			state:   WorkflowState{Action: ActionUpload, Error: TextExtractionFailed},
			want:    StateError,
		},
		{
			name:    "extract terminates",
			current: StateExtract,
			state:   WorkflowState{Action: ActionUpload},
			want:    StateEnd,
		},
		{
			name:    "query terminates",
			current: StateQuery,
			state:   WorkflowState{Action: ActionQuery},
			want:    StateEnd,
		},
		{
			name:    "visualize terminates",
			current: StateVisualize,
			state:   WorkflowState{Action: ActionVisualize},
			want:    StateEnd,
		},
		{
			name:    "error terminates even while flagged",
			current: StateError,
			state:   WorkflowState{Error: "boom"},
			want:    StateEnd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.state
			if got := Transition(tt.current, &state); got != tt.want {
				t.Errorf("Transition(%s) = %s, want %s", tt.current, got, tt.want)
			}
		})
	}
}

func TestTransitionAlwaysTerminates(t *testing.T) {
	// Walk from every state with every action/error combination; the
	// graph is acyclic, so a handful of steps must always reach end.
	states := []State{StateRoute, StateUpload, StateExtract, StateQuery, StateVisualize, StateError, StateEnd, "bogus"}
	actions := []Action{"", ActionUpload, ActionQuery, ActionVisualize, "bogus"}
	errorFlags := []string{"", "boom"}

	for _, start := range states {
		for _, action := range actions {
			for _, errorFlag := range errorFlags {
				state := WorkflowState{Action: action, Error: errorFlag}
				current := start
				for step := 0; current != StateEnd; step++ {
					if step > len(states) {
						t.Fatalf("no termination from %s with action %q error %q", start, action, errorFlag)
					}
					current = Transition(current, &state)
				}
			}
		}
	}
}
