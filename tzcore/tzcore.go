// Package tzcore implements the engine's query surface (spec.md §4.5, §6):
// Registry (zone lookup by canonical or alias name) and the two resolution
// operations, info_for_epoch and info_for_local, built on top of
// internal/yearcache and internal/transition.
//
// This is the engine's only public API; everything in internal/ is plumbing
// the embedding never touches directly. The Registry/ZoneHandle split and
// the sentinel error-kind design follow the teacher's tzc.Table /
// tzc.Compile split (a compiled, read-only lookup object handed to callers)
// generalized with the richer error taxonomy spec.md §7 asks for.
package tzcore

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tzres/tzengine/internal/calendar"
	"github.com/tzres/tzengine/internal/expand"
	"github.com/tzres/tzengine/internal/transition"
	"github.com/tzres/tzengine/internal/yearcache"
	"github.com/tzres/tzengine/zonetab"
)

// ErrorKind discriminates the engine's error taxonomy (spec.md §7). All
// errors returned across the tzcore boundary carry one of these.
type ErrorKind int

const (
	NotFound ErrorKind = iota
	OutOfRange
	InvalidCivilTime
	InvalidRuleDay
	InconsistentRuleSet
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case OutOfRange:
		return "OutOfRange"
	case InvalidCivilTime:
		return "InvalidCivilTime"
	case InvalidRuleDay:
		return "InvalidRuleDay"
	case InconsistentRuleSet:
		return "InconsistentRuleSet"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the single error type the query surface returns.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("tzcore: %s: %s", e.Kind, e.Msg) }

func errf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ZoneHandle is the opaque reference to a zone or its alias that Registry
// hands to callers (spec.md §6).
type ZoneHandle struct {
	info *zonetab.ZoneInfo
}

// Name returns the handle's own display name, which for an alias is the
// alias name, not the canonical name.
func (h ZoneHandle) Name() string { return h.info.Name }

// IsLink reports whether h is an alias of another zone.
func (h ZoneHandle) IsLink() bool { return h.info.IsLink() }

// CanonicalName follows a link to the name of the zone whose eras are
// actually consulted.
func (h ZoneHandle) CanonicalName() string { return h.info.CanonicalName() }

// Registry is the embedding-facing lookup over a compiled zonetab.Tables,
// with a year cache in front of the transition builder (spec.md §6, §4.6).
// A Registry is immutable after construction and safe for concurrent use
// (spec.md §5): zone lookup touches only the read-only Tables, and cache
// writes are internally synchronized by yearcache.Cache.
type Registry struct {
	tables zonetab.Tables
	cache  *yearcache.Cache
}

// NewRegistry wraps a compiled Tables (see zonetab.Compile) for querying.
// The caller owns tables' lifetime; Registry never mutates it.
func NewRegistry(tables zonetab.Tables) *Registry {
	return &Registry{tables: tables, cache: yearcache.New()}
}

// Get looks up name (canonical or alias, case-insensitive) and returns a
// ZoneHandle, or a NotFound error.
func (r *Registry) Get(name string) (ZoneHandle, error) {
	z, ok := r.tables.Zones[zonetab.Normalize(name)]
	if !ok {
		return ZoneHandle{}, errf(NotFound, "zone %q not found", name)
	}
	return ZoneHandle{info: z}, nil
}

// Zones returns the canonical and alias names known to the registry, for
// diagnostics (spec.md §6's observability surface does not mandate this,
// but an embedding needs some way to enumerate what Get will accept).
func (r *Registry) Zones() []string {
	names := make([]string, 0, len(r.tables.Zones))
	for _, z := range r.tables.Zones {
		names = append(names, z.Name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) transitionsForYear(h ZoneHandle, year int64) ([]transition.Active, error) {
	ts, err := r.cache.Get(h.info, year)
	if err != nil {
		return nil, wrapBuildError(err)
	}
	return ts, nil
}

func wrapBuildError(err error) error {
	var ruleDay *calendar.ErrInvalidRuleDay
	if errors.As(err, &ruleDay) {
		return errf(InvalidRuleDay, "%s", err)
	}
	var inconsistent *expand.InconsistentRuleSetError
	if errors.As(err, &inconsistent) {
		return errf(InconsistentRuleSet, "%s", err)
	}
	return errf(OutOfRange, "%s", err)
}

// InfoForEpoch implements spec.md §4.5's info_for_epoch: it resolves the
// ActiveTransition in effect at UT instant epochSeconds.
func (r *Registry) InfoForEpoch(h ZoneHandle, epochSeconds int64) (transition.Active, error) {
	year, _, _, _, _, _ := calendar.CivilFromSeconds(epochSeconds)
	ts, err := r.transitionsForYear(h, year)
	if err != nil {
		return transition.Active{}, err
	}

	i := sort.Search(len(ts), func(i int) bool { return ts[i].UntilInstant > epochSeconds })
	if i >= len(ts) || ts[i].StartInstant > epochSeconds {
		return transition.Active{}, errf(OutOfRange, "epoch %d outside tabulated horizon for %s", epochSeconds, h.Name())
	}
	return ts[i], nil
}

// InfoForLocal implements spec.md §4.5's info_for_local: it resolves the
// ActiveTransition that applies to civil time (y,m,d,H,M,S) in h, using
// fold to disambiguate an overlap or to pick a side of a gap.
func (r *Registry) InfoForLocal(h ZoneHandle, year int64, month, day, hour, minute, second, fold int) (transition.Active, error) {
	if err := validateCivilTime(year, month, day, hour, minute, second); err != nil {
		return transition.Active{}, err
	}
	if fold != 0 && fold != 1 {
		return transition.Active{}, errf(InvalidCivilTime, "fold must be 0 or 1, got %d", fold)
	}

	ts, err := r.transitionsForYear(h, year)
	if err != nil {
		return transition.Active{}, err
	}

	local := calendar.SecondsFromEpoch(year, month, day, hour, minute, second)

	var claims []int
	for i, t := range ts {
		ut := local - t.TotalOffset
		if ut >= t.StartInstant && ut < t.UntilInstant {
			claims = append(claims, i)
		}
	}

	switch len(claims) {
	case 1:
		out := ts[claims[0]]
		out.Fold = 0
		return out, nil
	case 2:
		// Overlap (fall-back): two transitions both claim this local time.
		// claims is in ascending transition-index order, which is also
		// chronological order, so claims[0] is the earlier.
		idx := claims[0]
		if fold == 1 {
			idx = claims[1]
		}
		out := ts[idx]
		out.Fold = fold
		return out, nil
	case 0:
		// Gap (spring-forward): synthesize from the transition immediately
		// before or after, per spec.md §4.5.
		// Compare in local time: a transition's local start is its UT
		// start plus the offset it introduces.
		i := sort.Search(len(ts), func(i int) bool { return ts[i].StartInstant+ts[i].TotalOffset > local })
		var pick int
		switch {
		case fold == 0 && i > 0:
			pick = i - 1
		case fold == 0:
			return transition.Active{}, errf(OutOfRange, "local time %04d-%02d-%02d precedes the tabulated horizon for %s", year, month, day, h.Name())
		case i < len(ts):
			pick = i
		default:
			return transition.Active{}, errf(OutOfRange, "local time %04d-%02d-%02d follows the tabulated horizon for %s", year, month, day, h.Name())
		}
		out := ts[pick]
		out.Fold = fold
		return out, nil
	default:
		return transition.Active{}, errf(InconsistentRuleSet, "local time %04d-%02d-%02d has %d claimants in %s", year, month, day, len(claims), h.Name())
	}
}

func validateCivilTime(year int64, month, day, hour, minute, second int) error {
	if month < 1 || month > 12 {
		return errf(InvalidCivilTime, "month %d out of range", month)
	}
	if day < 1 || day > calendar.DaysInMonth(year, month) {
		return errf(InvalidCivilTime, "day %d out of range for %04d-%02d", day, year, month)
	}
	if hour < 0 || hour > 23 {
		return errf(InvalidCivilTime, "hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return errf(InvalidCivilTime, "minute %d out of range", minute)
	}
	if second < 0 || second > 59 {
		return errf(InvalidCivilTime, "second %d out of range", second)
	}
	return nil
}
