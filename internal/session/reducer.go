package session

import (
	"time"

	"github.com/calebdunn/studypath-backend/internal/progress"
	"github.com/calebdunn/studypath-backend/internal/roadmap"
	"github.com/calebdunn/studypath-backend/internal/types"
)

// State is the pair every view derives from: the current plan document and
// its progress store. Handlers mutate it only through Apply, so the update
// path is one explicit state machine instead of callbacks scattered across
// the call tree.
type State struct {
	Plan     types.PlanDocument
	Progress progress.Store
}

type CommandType string

const (
	CommandToggleNode    CommandType = "toggle_node"
	CommandReplacePlan   CommandType = "replace_plan"
	CommandResetProgress CommandType = "reset_progress"
)

type Command struct {
	Type    CommandType
	NodeKey string
	Plan    *types.PlanDocument
	// Progress accompanies a plan replacement: the store loaded for the new
	// plan's title.
	Progress progress.Store
	At       time.Time
}

// Apply returns the state after cmd. Unknown commands and toggles on the
// synthetic start/finish nodes leave the state unchanged; callers can detect
// a no-op with Changed.
func Apply(st State, cmd Command) State {
	switch cmd.Type {
	case CommandToggleNode:
		if cmd.NodeKey == "" || progress.Synthetic(cmd.NodeKey) {
			return st
		}
		st.Progress = progress.Toggle(st.Progress, cmd.NodeKey, cmd.At)
		return st
	case CommandReplacePlan:
		if cmd.Plan == nil {
			return st
		}
		st.Plan = *cmd.Plan
		if cmd.Progress != nil {
			st.Progress = cmd.Progress
		} else {
			st.Progress = progress.Store{}
		}
		return st
	case CommandResetProgress:
		st.Progress = progress.Store{}
		return st
	default:
		return st
	}
}

// Changed reports whether applying cmd to st would alter it. Toggles always
// change a non-synthetic key; the synthetic endpoints never change.
func Changed(st State, cmd Command) bool {
	switch cmd.Type {
	case CommandToggleNode:
		return cmd.NodeKey != "" && !progress.Synthetic(cmd.NodeKey)
	case CommandReplacePlan:
		return cmd.Plan != nil
	case CommandResetProgress:
		return len(st.Progress) > 0
	default:
		return false
	}
}

// Graph builds the roadmap for the current state.
func (s State) Graph() roadmap.Graph {
	return roadmap.Build(s.Plan, s.Progress)
}

// CompletionRate reports overall progress for the current state.
func (s State) CompletionRate() int {
	return progress.CompletionRate(s.Plan, s.Progress)
}
