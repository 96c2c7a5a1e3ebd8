package certify

import "github.com/blackwell-systems/hubctl/internal/hub"

// ActionKind identifies an operator action on a version.
type ActionKind string

const (
	ActionUploadSignature ActionKind = "upload_signature"
	ActionApprove         ActionKind = "approve"
	ActionReject          ActionKind = "reject"
)

// Action is one control offered for a row.
type Action struct {
	Kind     ActionKind
	Label    string
	Disabled bool
	// Target is the destination state for approve/reject.
	Target State
}

// mustUploadSignature reports whether approval out of review is blocked
// until a signature is uploaded.
func mustUploadSignature(row hub.CollectionVersionSearch, flags hub.FeatureFlags) bool {
	return flags.RequireUploadSignatures && !row.IsSigned
}

// AutoSign reports whether approvals ask the hub to sign.
func AutoSign(flags hub.FeatureFlags) bool {
	return flags.CollectionAutoSign && !flags.RequireUploadSignatures
}

// Actions lists the controls available for row. Rows whose repository has
// no pipeline label get none.
func Actions(row hub.CollectionVersionSearch, flags hub.FeatureFlags) []Action {
	state, ok := StateOf(row)
	if !ok {
		return nil
	}

	approveLabel := "Approve"
	if AutoSign(flags) {
		approveLabel = "Sign and approve"
	}
	approve := Action{Kind: ActionApprove, Label: approveLabel, Target: Approved}
	reject := Action{Kind: ActionReject, Label: "Reject", Target: Rejected}

	switch state {
	case Approved:
		approve.Disabled = true
		return []Action{approve, reject}
	case Rejected:
		reject.Disabled = true
		return []Action{approve, reject}
	}

	var out []Action
	if flags.CanUploadSignatures && !row.IsSigned {
		out = append(out, Action{Kind: ActionUploadSignature, Label: "Upload signature"})
	}
	approve.Disabled = mustUploadSignature(row, flags)
	return append(out, approve, reject)
}

// Find returns the action of the given kind, if offered.
func Find(actions []Action, kind ActionKind) (Action, bool) {
	for _, a := range actions {
		if a.Kind == kind {
			return a, true
		}
	}
	return Action{}, false
}

// StatusText is the status column text for row.
func StatusText(row hub.CollectionVersionSearch, flags hub.FeatureFlags) string {
	state, ok := StateOf(row)
	if !ok {
		return ""
	}
	switch state {
	case Approved:
		if flags.DisplaySignatures && row.IsSigned {
			return "Signed and approved"
		}
		return "Approved"
	case Rejected:
		return "Rejected"
	default:
		if !row.IsSigned && flags.CanUploadSignatures && flags.RequireUploadSignatures {
			return "Needs signature and review"
		}
		return "Needs review"
	}
}
