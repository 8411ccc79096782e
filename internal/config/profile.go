package config

import "time"

// Profile is a named set of collection timing and concurrency defaults
type Profile string

const (
	ProfileCautious   Profile = "cautious"   // one device at a time, generous timeouts
	ProfileBalanced   Profile = "balanced"   // default
	ProfileAggressive Profile = "aggressive" // wide fan-out, short timeouts
)

// ParseProfile converts a string to Profile, defaulting to ProfileBalanced
func ParseProfile(s string) Profile {
	switch s {
	case "cautious":
		return ProfileCautious
	case "balanced":
		return ProfileBalanced
	case "aggressive":
		return ProfileAggressive
	default:
		return ProfileBalanced
	}
}

// CollectionDefaults defines timing and concurrency settings
type CollectionDefaults struct {
	Workers          int
	ConnectTimeout   time.Duration
	CommandTimeout   time.Duration
	SNMPRetries      int
	PreflightTimeout time.Duration
}

// ProfileDefaults maps profiles to their collection defaults
var ProfileDefaults = map[Profile]CollectionDefaults{
	ProfileCautious: {
		Workers:          1,
		ConnectTimeout:   30 * time.Second,
		CommandTimeout:   2 * time.Minute,
		SNMPRetries:      3,
		PreflightTimeout: 5 * time.Minute,
	},
	ProfileBalanced: {
		Workers:          1,
		ConnectTimeout:   10 * time.Second,
		CommandTimeout:   30 * time.Second,
		SNMPRetries:      1,
		PreflightTimeout: time.Minute,
	},
	ProfileAggressive: {
		Workers:          16,
		ConnectTimeout:   3 * time.Second,
		CommandTimeout:   10 * time.Second,
		SNMPRetries:      0,
		PreflightTimeout: 20 * time.Second,
	},
}

// Defaults returns the collection defaults for a profile
func (p Profile) Defaults() CollectionDefaults {
	if d, ok := ProfileDefaults[p]; ok {
		return d
	}
	return ProfileDefaults[ProfileBalanced]
}
