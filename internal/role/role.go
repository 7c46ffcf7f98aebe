package role

import "strings"

// Value is a logical user role. The platform recognizes two roles:
// candidates own their profile, recruiters review other users' profiles.
// Any other value is carried through untouched.
type Value string

const (
	Candidate Value = "candidate"
	Recruiter Value = "recruiter"
)

// Historic spellings found in stored profiles and issued claims.
// Matching is case-insensitive with surrounding whitespace ignored.
var (
	candidateSpellings = []string{"candidate", "jobseeker", "job_seeker"}
	recruiterSpellings = []string{"recruiter", "employer", "hiring_manager"}
)

// Normalize canonicalizes a raw role string. Recognized spellings map to
// Candidate or Recruiter; anything else is returned unchanged so callers
// can decide how to treat it. Normalize is the only permitted way to
// compare roles; raw string equality on role values is a bug.
func Normalize(raw string) Value {
	folded := strings.ToLower(strings.TrimSpace(raw))

	for _, s := range candidateSpellings {
		if folded == s {
			return Candidate
		}
	}
	for _, s := range recruiterSpellings {
		if folded == s {
			return Recruiter
		}
	}

	return Value(raw)
}

// Equal reports whether two raw role strings denote the same logical role.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// IsCandidate reports whether raw denotes the candidate role.
func IsCandidate(raw string) bool {
	return Normalize(raw) == Candidate
}

// IsRecruiter reports whether raw denotes the recruiter role.
func IsRecruiter(raw string) bool {
	return Normalize(raw) == Recruiter
}

// CandidateSpellings returns every recognized candidate spelling,
// lower-cased. The profile store uses these for SQL-side filtering so
// listing stays consistent with Normalize.
func CandidateSpellings() []string {
	out := make([]string, len(candidateSpellings))
	copy(out, candidateSpellings)
	return out
}
