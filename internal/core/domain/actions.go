package domain

// Action is a lifecycle action on a CCPair.
type Action string

const (
	ActionIndex         Action = "index"
	ActionFullReindex   Action = "full_reindex"
	ActionPauseOrResume Action = "pause_or_resume"
	ActionDelete        Action = "delete"
)

// Reasons shown when an action is blocked.
const (
	ReasonInvalid        = "credentials or configuration must be fixed first."
	ReasonDeleting       = "cannot index while deleting."
	ReasonIndexing       = "an index run is already in progress."
	ReasonNotActive      = "connector must be active."
	ReasonPauseBlocked   = "cannot pause or resume while deleting or indexing."
	ReasonDeleteNotPause = "connector must be paused before deletion."
)

// ActionSet is the set of actions currently permitted for a CCPair.
type ActionSet struct {
	Index         bool
	FullReindex   bool
	PauseOrResume bool
	Delete        bool
	// BlockedReason explains why indexing is blocked. Empty when indexing is allowed.
	BlockedReason string
	// PauseBlockedReason explains why pause/resume is blocked.
	PauseBlockedReason string
	// DeleteBlockedReason explains why delete is blocked.
	DeleteBlockedReason string
}

// AllowedActions derives the permitted actions from a CCPair's state.
// It never performs I/O.
func AllowedActions(p CCPair) ActionSet {
	var set ActionSet

	switch {
	case p.Status == StatusInvalid:
		set.BlockedReason = ReasonInvalid
	case p.Status == StatusDeleting:
		set.BlockedReason = ReasonDeleting
	case p.Indexing:
		set.BlockedReason = ReasonIndexing
	case p.Status != StatusActive:
		set.BlockedReason = ReasonNotActive
	default:
		set.Index = true
		set.FullReindex = true
	}

	if p.Status == StatusDeleting || p.Indexing {
		set.PauseBlockedReason = ReasonPauseBlocked
	} else {
		set.PauseOrResume = true
	}

	if p.Status == StatusPaused {
		set.Delete = true
	} else {
		set.DeleteBlockedReason = ReasonDeleteNotPause
	}

	return set
}

// Allows reports whether the action is permitted and, if not, why.
func (s ActionSet) Allows(a Action) (bool, string) {
	switch a {
	case ActionIndex:
		return s.Index, s.BlockedReason
	case ActionFullReindex:
		return s.FullReindex, s.BlockedReason
	case ActionPauseOrResume:
		return s.PauseOrResume, s.PauseBlockedReason
	case ActionDelete:
		return s.Delete, s.DeleteBlockedReason
	default:
		return false, "unknown action"
	}
}

// Check returns an ActionBlockedError when the action is not permitted.
func (s ActionSet) Check(a Action) error {
	if ok, reason := s.Allows(a); !ok {
		return &ActionBlockedError{Action: a, Reason: reason}
	}
	return nil
}
