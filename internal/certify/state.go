// Package certify drives the collection approval pipeline: a version's
// certification state is the pipeline label of the repository holding it,
// and a transition moves the version to another pipeline repository.
package certify

import (
	"fmt"

	"github.com/blackwell-systems/hubctl/internal/hub"
)

// State is a certification state.
type State string

const (
	NeedsReview State = "needs_review"
	Approved    State = "approved"
	Rejected    State = "rejected"
)

// Pipeline label values stored on repositories.
const (
	LabelStaging  = "staging"
	LabelApproved = "approved"
	LabelRejected = "rejected"
)

// Label returns the repository pipeline label for s.
func (s State) Label() string {
	switch s {
	case NeedsReview:
		return LabelStaging
	case Approved:
		return LabelApproved
	case Rejected:
		return LabelRejected
	}
	return ""
}

// Title is the human-readable state name.
func (s State) Title() string {
	switch s {
	case NeedsReview:
		return "Needs review"
	case Approved:
		return "Approved"
	case Rejected:
		return "Rejected"
	}
	return string(s)
}

// ParseState accepts state names and pipeline labels.
func ParseState(s string) (State, error) {
	switch s {
	case string(NeedsReview), LabelStaging, "needs-review", "review":
		return NeedsReview, nil
	case string(Approved), "published", "approve":
		return Approved, nil
	case string(Rejected), "reject", "not_certified":
		return Rejected, nil
	}
	return "", fmt.Errorf("unknown certification state %q (want needs_review, approved or rejected)", s)
}

// StateOf derives the state of a search row from its repository label.
func StateOf(row hub.CollectionVersionSearch) (State, bool) {
	switch row.Repository.Pipeline() {
	case LabelStaging:
		return NeedsReview, true
	case LabelApproved:
		return Approved, true
	case LabelRejected:
		return Rejected, true
	}
	return "", false
}

// CanTransition reports whether from -> to is a permitted move.
func CanTransition(from, to State) bool {
	switch from {
	case NeedsReview:
		return to == Approved || to == Rejected
	case Approved:
		return to == Rejected
	case Rejected:
		return to == Approved
	}
	return false
}

// Repos names the repository backing each state.
type Repos struct {
	Staging   string `mapstructure:"staging_repo" yaml:"staging_repo"`
	Published string `mapstructure:"published_repo" yaml:"published_repo"`
	Rejected  string `mapstructure:"rejected_repo" yaml:"rejected_repo"`
}

// DefaultRepos are the hub's stock pipeline repositories.
func DefaultRepos() Repos {
	return Repos{Staging: "staging", Published: "published", Rejected: "rejected"}
}

// For returns the repository name backing s.
func (r Repos) For(s State) string {
	d := DefaultRepos()
	switch s {
	case NeedsReview:
		return orDefault(r.Staging, d.Staging)
	case Approved:
		return orDefault(r.Published, d.Published)
	case Rejected:
		return orDefault(r.Rejected, d.Rejected)
	}
	return ""
}

func orDefault(v, d string) string {
	if v != "" {
		return v
	}
	return d
}
