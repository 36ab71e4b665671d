package reolink

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Firmware version strings look like "v3.0.0.136_20121102".
var versionRegex = regexp.MustCompile(`^v(\d+)\.(\d+)\.(\d+)\.(\d+)_(\d+)$`)

// SoftwareVersion is a parsed camera firmware version. Versions are ordered
// lexicographically over (major, middle, minor, build); the trailing sequence
// number does not participate in ordering. An Unknown version compares false
// against everything, including itself.
type SoftwareVersion struct {
	Major   int
	Middle  int
	Minor   int
	Build   int
	Unknown bool
}

// ParseSoftwareVersion parses a firmware version string. The literal string
// "unknown" (any case) yields the unordered sentinel value without error.
func ParseSoftwareVersion(s string) (SoftwareVersion, error) {
	if strings.EqualFold(s, "unknown") {
		return SoftwareVersion{Unknown: true}, nil
	}

	match := versionRegex.FindStringSubmatch(s)
	if match == nil {
		return SoftwareVersion{Unknown: true}, errors.NotValidf("version string %q", s)
	}

	var v SoftwareVersion
	v.Major, _ = strconv.Atoi(match[1])
	v.Middle, _ = strconv.Atoi(match[2])
	v.Minor, _ = strconv.Atoi(match[3])
	v.Build, _ = strconv.Atoi(match[4])
	return v, nil
}

func (v SoftwareVersion) cmp(o SoftwareVersion) int {
	a := [4]int{v.Major, v.Middle, v.Minor, v.Build}
	b := [4]int{o.Major, o.Middle, o.Minor, o.Build}
	for i := range a {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// GreaterThan reports whether v orders strictly after o.
func (v SoftwareVersion) GreaterThan(o SoftwareVersion) bool {
	if v.Unknown || o.Unknown {
		return false
	}
	return v.cmp(o) > 0
}

// GreaterOrEqual reports whether v orders at or after o.
func (v SoftwareVersion) GreaterOrEqual(o SoftwareVersion) bool {
	if v.Unknown || o.Unknown {
		return false
	}
	return v.cmp(o) >= 0
}

// LessThan reports whether v orders strictly before o.
func (v SoftwareVersion) LessThan(o SoftwareVersion) bool {
	if v.Unknown || o.Unknown {
		return false
	}
	return v.cmp(o) < 0
}

// LessOrEqual reports whether v orders at or before o.
func (v SoftwareVersion) LessOrEqual(o SoftwareVersion) bool {
	if v.Unknown || o.Unknown {
		return false
	}
	return v.cmp(o) <= 0
}

// Equal reports whether the two versions have identical components.
func (v SoftwareVersion) Equal(o SoftwareVersion) bool {
	if v.Unknown || o.Unknown {
		return false
	}
	return v.cmp(o) == 0
}

func (v SoftwareVersion) String() string {
	if v.Unknown {
		return "unknown"
	}
	return fmt.Sprintf("%d.%d.%d-%d", v.Major, v.Middle, v.Minor, v.Build)
}
