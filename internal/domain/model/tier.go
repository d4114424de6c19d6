package model

import "fmt"

// CoverageTier classifies how completely a partition was observed.
// Tiers are mutually exclusive.
type CoverageTier int

const (
	TierPartial CoverageTier = iota
	TierTarget
	TierFull
)

// Tiers lists every tier from most to least complete.
var Tiers = []CoverageTier{TierFull, TierTarget, TierPartial}

func (t CoverageTier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierTarget:
		return "target"
	case TierPartial:
		return "partial"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier is the inverse of String.
func ParseTier(s string) (CoverageTier, error) {
	switch s {
	case "full":
		return TierFull, nil
	case "target":
		return TierTarget, nil
	case "partial":
		return TierPartial, nil
	}
	return 0, fmt.Errorf("unknown coverage tier %q", s)
}

// MarshalText lets tiers serve as JSON object keys.
func (t CoverageTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CoverageTier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
