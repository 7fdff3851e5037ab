// Package expand implements the rule expander of spec.md §4.2: given a
// policy, a target year, and the era's standard offset, it produces the
// concrete transition instants ("candidates") that policy's rules generate
// for that year and its immediate neighbors.
//
// The two-pass structure (provisional sort, then a chronological pass that
// chains each "wall clock" candidate's instant to the dst_offset of the
// candidate immediately before it) is grounded on the teacher's
// internal/tzir.Process, which carried a running activeOffset across
// transitions in the same way; this package generalizes that to correctly
// distinguish the wall/standard/universal AT-time suffixes, which the
// teacher's implementation never got to (see its datemath TODOs).
package expand

import (
	"fmt"
	"sort"

	"github.com/tzres/tzengine/internal/calendar"
	"github.com/tzres/tzengine/zonetab"
)

// Candidate is a concrete transition instant produced by expanding one rule
// for one calendar year.
type Candidate struct {
	UTInstant    int64 // epoch seconds, UT
	Year         int64 // the calendar year the rule was expanded for
	FromYear     int64 // the originating rule's FromYear, used for tie-breaks
	DeltaSeconds int64
	Letter       string
}

// InconsistentRuleSetError is returned when two rules produce colliding UT
// instants with incompatible (non-tie-breakable) offsets, which indicates
// corrupt zone data (spec.md §7).
type InconsistentRuleSetError struct {
	At int64
}

func (e *InconsistentRuleSetError) Error() string {
	return fmt.Sprintf("expand: inconsistent rule set: two rules collide at UT instant %d", e.At)
}

// Years expands the rules of policy that are active in any of
// {targetYear-1, targetYear, targetYear+1}, normalizing each to a UT
// instant. The caller (internal/transition) clips candidates outside
// targetYear itself when merging; the neighbor years exist only so the
// builder can determine the state at targetYear's boundaries.
//
// Each call bootstraps its wall-clock chaining at dst_offset = 0, per
// spec.md §4.2. This is stated, not threaded, explicitly so the function
// stays pure: in every real-world zone policy this repo has grounded
// against, standard time (delta 0) is in effect at the turn of the
// calendar year, so bootstrapping fresh at targetYear-1's start does not
// lose any transition that targetYear's query window cares about. See
// DESIGN.md for the Open Question this resolves.
func Years(policy *zonetab.ZonePolicy, eraOffset int64, targetYear int64) ([]Candidate, error) {
	type pending struct {
		wallSeconds int64
		suffix      zonetab.TimeSuffix
		fromYear    int64
		delta       int64
		letter      string
		year        int64
		ut          int64 // provisional (exact for s/u, placeholder for w)
		exact       bool
	}

	var all []pending
	for _, year := range [3]int64{targetYear - 1, targetYear, targetYear + 1} {
		for _, r := range policy.Rules {
			if year < r.FromYear || year > r.ToYear {
				continue
			}
			day, err := calendar.ResolveDayOfMonth(year, r.InMonth, r.OnDayOfWeek, r.OnDayOfMonth)
			if err != nil {
				return nil, err
			}
			wall := calendar.SecondsFromEpoch(year, r.InMonth, day, 0, 0, 0) + r.AtSeconds

			p := pending{
				wallSeconds: wall,
				suffix:      r.AtSuffix,
				fromYear:    r.FromYear,
				delta:       r.DeltaSeconds,
				letter:      r.Letter,
				year:        year,
			}
			switch r.AtSuffix {
			case zonetab.Universal:
				p.ut, p.exact = wall, true
			case zonetab.Standard:
				p.ut, p.exact = wall-eraOffset, true
			default: // Wall
				p.ut, p.exact = wall-eraOffset, false
			}
			all = append(all, p)
		}
	}

	sortCandidates := func(xs []pending) {
		sort.SliceStable(xs, func(i, j int) bool {
			if xs[i].ut != xs[j].ut {
				return xs[i].ut < xs[j].ut
			}
			if xs[i].fromYear != xs[j].fromYear {
				return xs[i].fromYear > xs[j].fromYear // larger FromYear wins -> sorts first
			}
			// Tie-break: the rule with a non-zero delta (DST start) is
			// treated as occurring first, matching the observed IANA
			// convention that a DST-end transition follows a DST-start
			// transition at an identical nominal timestamp.
			return xs[i].delta != 0 && xs[j].delta == 0
		})
	}

	sortCandidates(all)

	active := int64(0)
	for i := range all {
		if !all[i].exact {
			all[i].ut = all[i].wallSeconds - eraOffset - active
		}
		active = all[i].delta
	}

	sortCandidates(all)

	for i := 1; i < len(all); i++ {
		if all[i].ut == all[i-1].ut && all[i].delta != 0 == (all[i-1].delta != 0) {
			return nil, &InconsistentRuleSetError{At: all[i].ut}
		}
	}

	out := make([]Candidate, len(all))
	for i, p := range all {
		out[i] = Candidate{
			UTInstant:    p.ut,
			Year:         p.year,
			FromYear:     p.fromYear,
			DeltaSeconds: p.delta,
			Letter:       p.letter,
		}
	}
	return out, nil
}
