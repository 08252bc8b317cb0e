// Package status defines the relationship status vocabulary and the rules for
// moving between statuses. Stored data contains both the current vocabulary and
// the legacy one from the pre-migration pipeline, so every read goes through
// Normalize before any other logic sees the value.
package status

// Status is a relationship status as it appears in stored data.
type Status string

// Canonical statuses. Internal logic only ever sees these four.
const (
	Available     Status = "available"
	MustKeep      Status = "must_keep"
	ForDiscussion Status = "for_discussion"
	ToBePeeled    Status = "to_be_peeled"
)

// Legacy statuses. These still appear in stored rows and import feeds.
const (
	Pinned               Status = "pinned"
	Assigned             Status = "assigned"
	UpForDebate          Status = "up_for_debate"
	ApprovalForPinning   Status = "approval_for_pinning"
	ApprovalForAssigning Status = "approval_for_assigning"
	Peeled               Status = "peeled"
)

// aliases maps the legacy vocabulary onto the canonical one. The table mirrors
// the historical status migration and must not be changed.
var aliases = map[Status]Status{
	Pinned:               MustKeep,
	ApprovalForPinning:   MustKeep,
	Assigned:             ForDiscussion,
	UpForDebate:          ForDiscussion,
	ApprovalForAssigning: ForDiscussion,
	Peeled:               ToBePeeled,
}

// Normalize returns the canonical form of s. Canonical values pass through
// unchanged. Unknown values are returned as-is and will fail IsValid.
func Normalize(s Status) Status {
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// IsValid reports whether s is a known status, canonical or legacy.
func IsValid(s Status) bool {
	switch Normalize(s) {
	case Available, MustKeep, ForDiscussion, ToBePeeled:
		return true
	}
	return false
}

// IsProtected reports whether s marks an account as part of a seller's working
// book. A protected account is never offered as available to another seller.
func IsProtected(s Status) bool {
	switch Normalize(s) {
	case MustKeep, ForDiscussion, ToBePeeled:
		return true
	}
	return false
}

// IsMustKeepEquivalent reports whether s counts as must_keep for KPI and
// display purposes.
func IsMustKeepEquivalent(s Status) bool {
	return Normalize(s) == MustKeep
}

// Canonical returns the four canonical statuses in pipeline order.
func Canonical() []Status {
	return []Status{MustKeep, ForDiscussion, ToBePeeled, Available}
}

// ProtectedStored returns every stored value, canonical or legacy, that marks
// a protected relationship. Queries filtering on protection must use this
// list, not the canonical statuses alone, because legacy rows are still live.
func ProtectedStored() []Status {
	stored := []Status{MustKeep, ForDiscussion, ToBePeeled}
	for legacy, canonical := range aliases {
		if canonical != Available {
			stored = append(stored, legacy)
		}
	}
	return stored
}
