package gesture

import "time"

// Gate is a cooldown window. While closed, the owning detector emits nothing.
// The zero value is open.
type Gate struct {
	closedUntil time.Time
}

// IsOpen reports whether the gate has reopened by now.
func (g *Gate) IsOpen(now time.Time) bool {
	return !now.Before(g.closedUntil)
}

// Close keeps the gate closed until now+d. A later Close overwrites the
// deadline, whether it is earlier or later than the current one.
func (g *Gate) Close(now time.Time, d time.Duration) {
	g.closedUntil = now.Add(d)
}

// ClosedUntil returns the reopening deadline (zero if never closed).
func (g *Gate) ClosedUntil() time.Time {
	return g.closedUntil
}
