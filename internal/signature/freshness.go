package signature

import (
	"strconv"
	"time"
)

// Freshness bounds how far a signed timestamp may drift from the local clock.
// MaxSkew <= 0 disables the check.
type Freshness struct {
	MaxSkew time.Duration
	Now     func() time.Time
}

// Allows reports whether timestamp (decimal Unix seconds) is inside the window.
func (f Freshness) Allows(timestamp string) bool {
	if f.MaxSkew <= 0 {
		return true
	}

	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	// Sub saturates, so compare both bounds instead of negating.
	skew := now().Sub(time.Unix(secs, 0))
	return skew >= -f.MaxSkew && skew <= f.MaxSkew
}
