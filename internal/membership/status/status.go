// Package status defines the closed set of membership statuses and their
// restricted / non-restricted partition.
package status

import (
	"strings"

	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
)

// Status is a membership status literal.
type Status string

// Unspecified marks a user with no stored status yet (a new profile).
const Unspecified Status = ""

const (
	Pending      Status = "PENDING"
	Regular      Status = "REGULAR"
	Reserve      Status = "RESERVE"
	CivilService Status = "CIVIL_SERVICE"
	Industry     Status = "INDUSTRY"
	Retired      Status = "RETIRED"
	Resigned     Status = "RESIGNED"
	Lost         Status = "LOST"
	Deceased     Status = "DECEASED"
)

type class int

const (
	classNonRestricted class = iota + 1
	classRestricted
)

// partition is the exhaustive classification table; every declared status
// appears exactly once.
var partition = map[Status]class{
	Pending:      classRestricted,
	Regular:      classNonRestricted,
	Reserve:      classNonRestricted,
	CivilService: classNonRestricted,
	Industry:     classNonRestricted,
	Retired:      classNonRestricted,
	Resigned:     classRestricted,
	Lost:         classRestricted,
	Deceased:     classRestricted,
}

var ordered = []Status{
	Pending, Regular, Reserve, CivilService, Industry, Retired, Resigned, Lost, Deceased,
}

// ErrUnrecognized is the sentinel matched (by code) for unknown literals.
var ErrUnrecognized = apperrors.New(apperrors.CodeStatusUnrecognized, "membership status is not recognized")

// All returns every status in declaration order.
func All() []Status {
	out := make([]Status, len(ordered))
	copy(out, ordered)
	return out
}

// Restricted returns the restricted statuses in declaration order.
func Restricted() []Status {
	return filter(classRestricted)
}

// NonRestricted returns the non-restricted statuses in declaration order.
func NonRestricted() []Status {
	return filter(classNonRestricted)
}

func filter(c class) []Status {
	var out []Status
	for _, s := range ordered {
		if partition[s] == c {
			out = append(out, s)
		}
	}
	return out
}

// IsRestricted reports whether s is PENDING, RESIGNED, LOST or DECEASED.
func IsRestricted(s Status) bool {
	return partition[s] == classRestricted
}

// IsNonRestricted reports whether s is REGULAR, RESERVE, CIVIL_SERVICE,
// INDUSTRY or RETIRED.
func IsNonRestricted(s Status) bool {
	return partition[s] == classNonRestricted
}

// Valid reports whether s is one of the declared literals.
func (s Status) Valid() bool {
	_, ok := partition[s]
	return ok
}

// Validate returns an input error for anything but a declared literal.
func (s Status) Validate() error {
	if s.Valid() {
		return nil
	}
	return unrecognized(string(s))
}

// String returns the literal.
func (s Status) String() string {
	return string(s)
}

// Parse converts untrusted text into a Status. Surrounding whitespace and
// letter case are ignored; anything else must match a literal exactly.
func Parse(value string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !candidate.Valid() {
		return Unspecified, unrecognized(value)
	}
	return candidate, nil
}

// ParseOptional is Parse but maps blank input to Unspecified.
func ParseOptional(value string) (Status, error) {
	if strings.TrimSpace(value) == "" {
		return Unspecified, nil
	}
	return Parse(value)
}

// ParseList parses every value and drops duplicates, keeping first-seen order.
func ParseList(values []string) ([]Status, error) {
	out := make([]Status, 0, len(values))
	seen := make(map[Status]struct{}, len(values))
	for _, value := range values {
		parsed, err := Parse(value)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[parsed]; ok {
			continue
		}
		seen[parsed] = struct{}{}
		out = append(out, parsed)
	}
	return out, nil
}

// Contains reports whether set holds s.
func Contains(set []Status, s Status) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

func unrecognized(value string) *apperrors.Error {
	return apperrors.WithMetadata(
		apperrors.CodeStatusUnrecognized,
		"membership status "+strings.TrimSpace(value)+" is not recognized",
		map[string]string{"Status": strings.TrimSpace(value)},
	)
}
