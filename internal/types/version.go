package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Version is an OSGi version: major.minor.micro.qualifier. The zero value
// is 0.0.0.
type Version struct {
	Major     int
	Minor     int
	Micro     int
	Qualifier string
}

// ParseVersion parses a dotted version string. Missing or non-numeric
// components default to zero and anything after the third dot is kept
// verbatim as the qualifier.
func ParseVersion(raw string) Version {
	parts := strings.SplitN(strings.TrimSpace(raw), ".", 4)
	var v Version
	for i, part := range parts {
		switch i {
		case 0:
			v.Major = leadingInt(part)
		case 1:
			v.Minor = leadingInt(part)
		case 2:
			v.Micro = leadingInt(part)
		case 3:
			v.Qualifier = part
		}
	}
	return v
}

// leadingInt parses the run of digits at the start of value, so "3-SNAPSHOT"
// reads as 3.
func leadingInt(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return n
}

// Compare returns -1, 0, or 1. Numeric fields are compared first, the
// qualifier lexically last.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Micro, other.Micro); c != 0 {
		return c
	}
	return strings.Compare(v.Qualifier, other.Qualifier)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v Version) String() string {
	base := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
	if v.Qualifier == "" {
		return base
	}
	return base + "." + v.Qualifier
}

// VersionRange is an interval of versions. A nil bound is unbounded on
// that side.
type VersionRange struct {
	Lower          *Version
	Upper          *Version
	LowerInclusive bool
	UpperInclusive bool
}

// ParseVersionRange parses OSGi range syntax. It returns a nil range for
// empty input and for the "0.0.0" sentinel, both of which mean no
// constraint. A bare version yields [v, infinity).
func ParseVersionRange(raw string) (*VersionRange, error) {
	value := strings.TrimSpace(raw)
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = strings.TrimSpace(value[1 : len(value)-1])
	}
	if value == "" || value == "0.0.0" {
		return nil, nil
	}
	// Some artifacts double the parentheses; it means the same thing.
	value = strings.ReplaceAll(value, "((", "(")
	value = strings.ReplaceAll(value, "))", ")")

	if !strings.ContainsAny(value, "[(") {
		lower := ParseVersion(value)
		return &VersionRange{Lower: &lower, LowerInclusive: true, UpperInclusive: true}, nil
	}

	if len(value) < 2 || (value[0] != '[' && value[0] != '(') {
		return nil, malformedRange(raw)
	}
	last := value[len(value)-1]
	if last != ']' && last != ')' {
		return nil, malformedRange(raw)
	}
	bounds := strings.Split(value[1:len(value)-1], ",")
	if len(bounds) != 2 {
		return nil, malformedRange(raw)
	}
	r := &VersionRange{
		LowerInclusive: value[0] == '[',
		UpperInclusive: last == ']',
	}
	if lower := strings.TrimSpace(bounds[0]); lower != "" {
		v := ParseVersion(lower)
		r.Lower = &v
	}
	if upper := strings.TrimSpace(bounds[1]); upper != "" {
		v := ParseVersion(upper)
		r.Upper = &v
	}
	return r, nil
}

func malformedRange(raw string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("malformed version range: %q", raw))
}

// IsSuitable reports whether v lies inside the range, honouring the
// inclusive flag of every present bound.
func (r *VersionRange) IsSuitable(v Version) bool {
	if r == nil {
		return true
	}
	if r.Lower != nil {
		c := v.Compare(*r.Lower)
		if c < 0 || (c == 0 && !r.LowerInclusive) {
			return false
		}
	}
	if r.Upper != nil {
		c := v.Compare(*r.Upper)
		if c > 0 || (c == 0 && !r.UpperInclusive) {
			return false
		}
	}
	return true
}

// String renders the range in interval syntax. A range with only an
// inclusive lower bound renders as the bare version.
func (r *VersionRange) String() string {
	if r == nil {
		return ""
	}
	if r.Upper == nil && r.LowerInclusive && r.Lower != nil {
		return r.Lower.String()
	}
	var b strings.Builder
	if r.LowerInclusive {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}
	if r.Lower != nil {
		b.WriteString(r.Lower.String())
	}
	b.WriteByte(',')
	if r.Upper != nil {
		b.WriteString(r.Upper.String())
	}
	if r.UpperInclusive {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

// IsCompatible is true when either side is absent, otherwise it defers to
// IsSuitable.
func IsCompatible(r *VersionRange, v *Version) bool {
	if r == nil || v == nil {
		return true
	}
	return r.IsSuitable(*v)
}
