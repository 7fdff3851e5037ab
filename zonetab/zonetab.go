// Package zonetab defines the typed, read-only zone/policy/rule tables that
// the transition engine consumes (spec.md §3, §6). Tables are built once by
// Compile (see build.go) from the lower-level tzdata parse tree and are
// treated as immutable afterward; the engine never sees the parser's
// loosely-typed, string-discriminated records directly, per Design Note
// "Dynamically typed rule records".
package zonetab

import "fmt"

// MinYear and MaxYear are the sentinels used for open-ended FROM/TO and
// UNTIL fields ("the indefinite past"/"the indefinite future"). They are
// chosen wide enough that no real zone data approaches them while staying
// safe to use in ordinary int64 arithmetic, unlike math.MinInt64/MaxInt64.
const (
	MinYear int64 = -1 << 31
	MaxYear int64 = 1<<31 - 1
)

// TimeSuffix is the reference frame a rule or era UNTIL time is expressed
// in, spec.md §3's at_time_suffix / "wall / standard / universal time".
type TimeSuffix int

const (
	// Wall is local wall-clock time, as observed under whichever offset
	// was in effect just before the transition.
	Wall TimeSuffix = iota
	// Standard is local standard time, ignoring any active DST delta.
	Standard
	// Universal is UTC.
	Universal
)

func (s TimeSuffix) String() string {
	switch s {
	case Wall:
		return "wall"
	case Standard:
		return "standard"
	case Universal:
		return "universal"
	default:
		return fmt.Sprintf("TimeSuffix(%d)", int(s))
	}
}

// ZoneRule is one recurring recipe for when a secondary (DST) offset
// activates or deactivates within a ZonePolicy (spec.md §3).
type ZoneRule struct {
	FromYear, ToYear int64 // inclusive; may be MinYear/MaxYear
	InMonth          int   // 1-12
	OnDayOfWeek      int   // 0 = exact day_of_month, 1 (Mon) - 7 (Sun) otherwise
	OnDayOfMonth     int   // signed; see calendar.ResolveDayOfMonth
	AtSeconds        int64 // time of day the rule fires, in AtSuffix's frame
	AtSuffix         TimeSuffix
	DeltaSeconds     int64  // DST offset that becomes active
	Letter           string // abbreviation substitution, "" or "-" for none
}

// ZonePolicy is a named, ordered collection of ZoneRule.
type ZonePolicy struct {
	Name  string
	Rules []ZoneRule
}

// PolicyKind discriminates the three-variant tagged union that spec.md §9's
// Design Note "Polymorphic zone_policy field" calls for: a reference to a
// named policy, the FIXED sentinel (no named rules, use a constant delta),
// or the NONE sentinel (standard time only, delta always zero).
type PolicyKind int

const (
	PolicyReference PolicyKind = iota
	PolicyFixed
	PolicyNone
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyReference:
		return "reference"
	case PolicyFixed:
		return "fixed"
	case PolicyNone:
		return "none"
	default:
		return fmt.Sprintf("PolicyKind(%d)", int(k))
	}
}

// ZonePolicyRef is the zone_policy field of a ZoneEra.
type ZonePolicyRef struct {
	Kind PolicyKind
	// Policy is set iff Kind == PolicyReference.
	Policy *ZonePolicy
	// FixedDelta is the constant DST delta applied when Kind == PolicyFixed
	// (the source's rules_delta_seconds for the ":" sentinel).
	FixedDelta int64
}

// Until is the exclusive upper bound of a ZoneEra's validity window,
// spec.md §3's until_year/month/day/seconds/time_suffix. Unlike a rule's
// day selector, an era's UNTIL year and month are always concrete by the
// time the day selector would need them, so the compiler resolves any
// weekday-relative day form (e.g. "lastSun", "Sun>=1") to a plain day
// number once at build time (Compile, following the teacher's
// tzexpand.Earliest), and Until carries only the resolved day.
type Until struct {
	Defined bool
	Year    int64
	Month   int
	Day     int
	Seconds int64
	Suffix  TimeSuffix
}

// ZoneEra is a contiguous segment of a zone's history with a single
// standard offset and a single rule policy (spec.md §3).
type ZoneEra struct {
	OffsetSeconds    int64
	Policy           ZonePolicyRef
	RulesDeltaSecond int64 // same as Policy.FixedDelta, kept for symmetry with spec naming
	Format           string
	Until            Until
}

// ZoneInfo is a canonical zone or a link (alias) to one (spec.md §3).
type ZoneInfo struct {
	// Name is this ZoneInfo's own display name, which for a link is the
	// alias name, not the canonical name.
	Name string
	// Eras is the ordered list of ZoneEra records. For a link, this is the
	// same slice as LinkTarget.Eras, resolved eagerly at build time
	// (Design Note "Cyclic name resolution").
	Eras []ZoneEra
	// LinkTarget is non-nil iff this ZoneInfo is a pure alias.
	LinkTarget *ZoneInfo
}

// IsLink reports whether z is an alias of another zone.
func (z *ZoneInfo) IsLink() bool { return z.LinkTarget != nil }

// CanonicalName follows a link to the name of the zone whose eras are
// actually in effect. For a non-link ZoneInfo it returns its own name.
func (z *ZoneInfo) CanonicalName() string {
	if z.LinkTarget != nil {
		return z.LinkTarget.CanonicalName()
	}
	return z.Name
}

// Tables is the compiled, read-only view the engine consumes (spec.md §6):
// a typed {policy_name -> ZonePolicy} and {zone_name -> ZoneInfo} map.
// Zones is keyed by Normalize(name); Policies is keyed by the rule NAME
// exactly as written.
type Tables struct {
	Policies map[string]*ZonePolicy
	Zones    map[string]*ZoneInfo
}

// Normalize is the key function the compiler guarantees: lowercase,
// punctuation preserved, path separators kept (spec.md §6).
func Normalize(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
