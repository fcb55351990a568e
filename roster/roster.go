package roster

import (
	"fmt"
	"strings"
	"time"
)

// Employee is one tracked person, keyed by matricule across imports.
type Employee struct {
	ID           int64
	Matricule    string
	Nom          string
	Prenom       string
	Poste        string
	Site         string
	Affaire      string
	Classe       string
	Affectation  string
	Ville        string
	TauxLogement float64
	TauxRepas    float64
}

// Flag identifies one of the six attendance outcomes for an employee-day.
type Flag int

const (
	Present Flag = iota
	Absent
	Conge
	TourRepos
	ReposMed
	SansPh
)

// FlagCount is the number of independent attendance flags.
const FlagCount = 6

// Label returns the display label used in reports and export headers.
func (f Flag) Label() string {
	switch f {
	case Present:
		return "Présent"
	case Absent:
		return "Absent"
	case Conge:
		return "CONG"
	case TourRepos:
		return "Tour_rep"
	case ReposMed:
		return "Repos_med"
	case SansPh:
		return "Sans_ph"
	default:
		return fmt.Sprintf("Flag(%d)", int(f))
	}
}

// AllFlags lists the flags in their canonical report order.
func AllFlags() []Flag {
	return []Flag{Present, Absent, Conge, TourRepos, ReposMed, SansPh}
}

// Flags holds the six attendance flags for one employee-day. The flags are
// independent in the data model even though they are near-exclusive in
// practice.
type Flags [FlagCount]bool

// Any reports whether at least one flag is set.
func (f Flags) Any() bool {
	for _, set := range f {
		if set {
			return true
		}
	}
	return false
}

// Counts returns the flags as 0/1 integers in canonical order.
func (f Flags) Counts() [FlagCount]int {
	var out [FlagCount]int
	for i, set := range f {
		if set {
			out[i] = 1
		}
	}
	return out
}

// MergePolicy decides how flags of a re-imported (employee, date) pair are
// combined with the stored record.
type MergePolicy int

const (
	// MergeOr keeps a flag set once any import has set it. Monotonic, so
	// re-importing the same file is idempotent.
	MergeOr MergePolicy = iota
	// MergeReplace overwrites the stored flags with the incoming ones.
	MergeReplace
)

// ParseMergePolicy maps configuration text to a policy. Empty input selects
// MergeOr.
func ParseMergePolicy(value string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "or":
		return MergeOr, nil
	case "replace":
		return MergeReplace, nil
	default:
		return MergeOr, fmt.Errorf("unsupported merge policy %q (supported: or|replace)", value)
	}
}

// Merge combines stored and incoming flags under the given policy.
func Merge(stored, incoming Flags, policy MergePolicy) Flags {
	if policy == MergeReplace {
		return incoming
	}
	var out Flags
	for i := range out {
		out[i] = stored[i] || incoming[i]
	}
	return out
}

// Attendance is the stored flag set for one employee on one calendar date.
type Attendance struct {
	ID         int64
	EmployeeID int64
	Date       time.Time
	Flags      Flags
}

// Fact is an attendance record joined with its employee, as read back for
// reports and exports.
type Fact struct {
	Employee Employee
	Date     time.Time
	Flags    Flags
}

// Summary is one recap row: an employee with each flag summed over a date
// range.
type Summary struct {
	Employee Employee
	Totals   [FlagCount]int
}
