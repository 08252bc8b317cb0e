package status

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// Transition describes a requested status change for a single relationship.
type Transition struct {
	From Status
	To   Status

	// OriginalOnly is true when the only row backing the account for this
	// seller is the immutable import snapshot. Such accounts can move between
	// statuses but can never be dropped to available.
	OriginalOnly bool

	// ProtectedBySeller holds the seller that currently protects the account,
	// empty when the account is unprotected.
	ProtectedBySeller string

	// ActingSeller is the seller the transition is performed for.
	ActingSeller string
}

// Validate checks a transition against the status machine. It returns nil when
// the transition is legal, or an httperror describing why it is not. Role
// capability and manager scope are checked by the caller before this runs;
// Validate only enforces the rules that hold for every role.
func Validate(t Transition) error {
	from := Normalize(t.From)
	to := Normalize(t.To)

	if !IsValid(t.To) {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown status %q", string(t.To))
	}
	if t.From != "" && !IsValid(t.From) {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown status %q", string(t.From))
	}

	if to == Available && t.OriginalOnly {
		return httperror.NewHTTPError(http.StatusConflict, "this is an original account and cannot be unassigned")
	}

	// A protected account belongs to exactly one seller's working book. The
	// owning seller may move it freely; everyone else has to wait for it to
	// become available.
	if t.ProtectedBySeller != "" && t.ProtectedBySeller != t.ActingSeller {
		return httperror.NewHTTPErrorf(http.StatusConflict, "account is held by another seller's book")
	}

	if from == to {
		return httperror.NewHTTPError(http.StatusBadRequest, "relationship already has that status")
	}

	return nil
}

// CanUnassign reports whether a relationship may be deleted outright. Deleting
// is equivalent to a transition to available, so the same original-account rule
// applies.
func CanUnassign(originalOnly bool) error {
	if originalOnly {
		return httperror.NewHTTPError(http.StatusConflict, "this is an original account and cannot be unassigned")
	}
	return nil
}
