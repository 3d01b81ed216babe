// Package session implements the client-side interaction state machine: the
// legal sequence of steps from picking a delta sign through submission and
// confirmation, the score/history browsing flow, and the tap-unlocked
// administrative flow.
//
// Navigation is a pure function of (state, action); all I/O lives in the
// Controller so the machine itself is deterministic and testable without a
// UI or a store.
package session

import (
	"github.com/okian/tally/internal/domain/model"
)

// Screen enumerates the screens a session can be on.
type Screen int

const (
	ScreenIdle Screen = iota
	ScreenChoosingEntity
	ScreenComposing
	ScreenSubmitting
	ScreenConfirming
	ScreenViewingScores
	ScreenViewingHistory
)

func (s Screen) String() string {
	switch s {
	case ScreenIdle:
		return "idle"
	case ScreenChoosingEntity:
		return "choosing-entity"
	case ScreenComposing:
		return "composing"
	case ScreenSubmitting:
		return "submitting"
	case ScreenConfirming:
		return "confirming"
	case ScreenViewingScores:
		return "viewing-scores"
	case ScreenViewingHistory:
		return "viewing-history"
	default:
		return "unknown"
	}
}

// ActionKind enumerates the discrete navigation actions a user can take.
type ActionKind int

const (
	ActionPickSign ActionKind = iota
	ActionPickEntity
	ActionEditStory
	ActionBack
	ActionHome
	ActionRequestScores
	ActionSelectPerson
)

// Action is one user action with its payload.
type Action struct {
	Kind  ActionKind
	Delta model.Delta // ActionPickSign
	Name  string      // ActionPickEntity, ActionSelectPerson
	Text  string      // ActionEditStory
}

// State is the transient session record. It is process-local, owned by one
// Controller, and discarded on restart.
type State struct {
	Screen       Screen
	PendingDelta model.Delta // 0 means unset
	PendingName  string
	Draft        string
	ViewedName   string // person whose history is being browsed
}

// clearPending drops any in-progress submission state.
func (s State) clearPending() State {
	s.PendingDelta = 0
	s.PendingName = ""
	s.Draft = ""
	return s
}

// transition applies a navigation action to a state. Illegal actions return
// ErrIllegalAction and leave the state unchanged; submission itself is not
// handled here because it performs I/O (see Controller.Submit).
func transition(s State, a Action) (State, error) {
	switch a.Kind {
	case ActionHome:
		// Legal from anywhere; discards any draft.
		s = s.clearPending()
		s.Screen = ScreenIdle
		s.ViewedName = ""
		return s, nil

	case ActionPickSign:
		if s.Screen != ScreenIdle {
			return s, ErrIllegalAction
		}
		if !a.Delta.Valid() {
			return s, ErrIllegalAction
		}
		s.PendingDelta = a.Delta
		s.Screen = ScreenChoosingEntity
		return s, nil

	case ActionPickEntity:
		if s.Screen != ScreenChoosingEntity || a.Name == "" {
			return s, ErrIllegalAction
		}
		if !s.PendingDelta.Valid() {
			// Composing must never be reachable without a sign; this is a
			// programming error, not user error.
			return s, ErrIllegalAction
		}
		s.PendingName = a.Name
		s.Draft = ""
		s.Screen = ScreenComposing
		return s, nil

	case ActionEditStory:
		if s.Screen != ScreenComposing {
			return s, ErrIllegalAction
		}
		s.Draft = a.Text
		return s, nil

	case ActionBack:
		switch s.Screen {
		case ScreenComposing:
			s.Screen = ScreenChoosingEntity
			return s, nil
		case ScreenChoosingEntity:
			s = s.clearPending()
			s.Screen = ScreenIdle
			return s, nil
		case ScreenViewingHistory:
			s.Screen = ScreenViewingScores
			s.ViewedName = ""
			return s, nil
		case ScreenViewingScores:
			s.Screen = ScreenIdle
			return s, nil
		default:
			return s, ErrIllegalAction
		}

	case ActionRequestScores:
		if s.Screen != ScreenIdle {
			return s, ErrIllegalAction
		}
		s.Screen = ScreenViewingScores
		return s, nil

	case ActionSelectPerson:
		if s.Screen != ScreenViewingScores || a.Name == "" {
			return s, ErrIllegalAction
		}
		s.ViewedName = a.Name
		s.Screen = ScreenViewingHistory
		return s, nil

	default:
		return s, ErrIllegalAction
	}
}
