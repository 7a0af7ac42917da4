package enums

import (
	"fmt"
	"strings"
)

// JoinPolicy controls how the manager dashboard settles its concurrent facet fetches.
type JoinPolicy string

const (
	// JoinFailFast withholds the whole snapshot when any facet fails.
	JoinFailFast JoinPolicy = "failFast"
	// JoinBestEffort renders every facet that succeeded and reports the rest.
	JoinBestEffort JoinPolicy = "bestEffort"
)

// IsValid reports whether the value is a known JoinPolicy.
func (j JoinPolicy) IsValid() bool {
	return j == JoinFailFast || j == JoinBestEffort
}

// ParseJoinPolicy converts raw input into a JoinPolicy, ignoring case.
func ParseJoinPolicy(value string) (JoinPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "failfast":
		return JoinFailFast, nil
	case "besteffort":
		return JoinBestEffort, nil
	}
	return "", fmt.Errorf("invalid join policy %q", value)
}
