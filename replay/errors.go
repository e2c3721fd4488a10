package replay

import "fmt"

type ReplayError struct {
	StepIndex int32          `json:"step_index"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message"`
	Expected  *ExpectedState `json:"expected,omitempty"`
}

// ExpectedState is the engine state at the moment a command was rejected.
type ExpectedState struct {
	Phase          string `json:"phase"`
	AwaitingResume bool   `json:"awaiting_resume"`
	Caller         int    `json:"caller"`
	Callee         int    `json:"callee"`
	Predicate      int    `json:"predicate"`
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}
