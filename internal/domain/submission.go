package domain

import "fmt"

// SubmissionState tracks a draft through the transaction processor.
type SubmissionState string

const (
	SubmissionReceived  SubmissionState = "received"
	SubmissionValidated SubmissionState = "validated"
	SubmissionCommitted SubmissionState = "committed"
	SubmissionRejected  SubmissionState = "rejected"
)

var submissionTransitions = map[SubmissionState][]SubmissionState{
	SubmissionReceived:  {SubmissionValidated, SubmissionRejected},
	SubmissionValidated: {SubmissionCommitted, SubmissionRejected},
}

// IsTerminal reports whether no further transition is possible.
func (s SubmissionState) IsTerminal() bool {
	return s == SubmissionCommitted || s == SubmissionRejected
}

// CanTransition reports whether moving from s to next is allowed.
func (s SubmissionState) CanTransition(next SubmissionState) bool {
	for _, allowed := range submissionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Submission is the processor's record of one submitted draft.
type Submission struct {
	OwnerID string
	Draft   Draft
	State   SubmissionState
	Err     error
}

// NewSubmission starts a submission in the received state.
func NewSubmission(ownerID string, draft Draft) *Submission {
	return &Submission{
		OwnerID: ownerID,
		Draft:   draft,
		State:   SubmissionReceived,
	}
}

// Advance moves the submission to next. Illegal transitions panic, since they
// can only come from a processor bug.
func (s *Submission) Advance(next SubmissionState) {
	if !s.State.CanTransition(next) {
		panic(fmt.Sprintf("illegal submission transition %s -> %s", s.State, next))
	}
	s.State = next
}

// Reject moves the submission to rejected and records the reason.
func (s *Submission) Reject(err error) {
	s.Advance(SubmissionRejected)
	s.Err = err
}
