// Package access is the single point of truth for per-resource access
// decisions. Every resource boundary (profile lookup, career-plan
// lookup, candidate listing) routes through Decide; nothing else in the
// service re-derives who may read what.
package access

import (
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/role"
)

// Level is the outcome of an access decision.
type Level int

const (
	// Denied: the caller may not read the resource at all.
	Denied Level = iota

	// OwnerAccess: the caller is the resource owner and gets the full
	// record.
	OwnerAccess

	// RecruiterAccess: the caller is a recruiter reading someone else's
	// resource and gets the reduced read-only projection.
	RecruiterAccess
)

func (l Level) String() string {
	switch l {
	case OwnerAccess:
		return "owner"
	case RecruiterAccess:
		return "recruiter"
	default:
		return "denied"
	}
}

// Decide maps the caller and the resource owner to an access level.
// Identity match grants owner access regardless of role; recruiters may
// read other users' resources; everything else is denied. Pure function,
// no I/O.
func Decide(caller auth.Caller, resourceOwnerID string) Level {
	if caller.ID != "" && caller.ID == resourceOwnerID {
		return OwnerAccess
	}
	if role.IsRecruiter(caller.Role) {
		return RecruiterAccess
	}
	return Denied
}

// CanListCandidates gates the bulk candidate-discovery operation:
// recruiters only, unless the development override is set.
func CanListCandidates(caller auth.Caller, devOverride bool) bool {
	if devOverride {
		return true
	}
	return role.IsRecruiter(caller.Role)
}
