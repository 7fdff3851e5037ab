package zonetab

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tzres/tzengine/internal/calendar"
	"github.com/tzres/tzengine/tzdata"
)

// Compile converts a parsed tzdata.File into the strongly-typed, read-only
// Tables the engine consumes. It is the seam Design Note "Dynamically typed
// rule records" calls for: from here on, nothing in the engine sees a raw
// "w"/"s"/"u" string or a "-"/":" RULES sentinel, only the TimeSuffix and
// PolicyKind enumerations.
//
// Zone grouping (a Zone line followed by its continuation lines) follows
// the teacher's tzc.Compile; link resolution is new, performed eagerly here
// per Design Note "Cyclic name resolution" so a runtime ZoneHandle never
// needs to chase an alias at query time.
func Compile(f tzdata.File) (Tables, error) {
	policies := make(map[string]*ZonePolicy)
	for _, r := range f.RuleLines {
		key := r.Name
		p, ok := policies[key]
		if !ok {
			p = &ZonePolicy{Name: r.Name}
			policies[key] = p
		}
		rule, err := convertRule(r)
		if err != nil {
			return Tables{}, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		p.Rules = append(p.Rules, rule)
	}

	var (
		zoneOrder []string
		zoneLines = make(map[string][]tzdata.ZoneLine)
		lastName  string
	)
	for _, l := range f.ZoneLines {
		if !l.Continuation {
			lastName = l.Name
			zoneOrder = append(zoneOrder, lastName)
		}
		zoneLines[lastName] = append(zoneLines[lastName], l)
	}

	zones := make(map[string]*ZoneInfo, len(zoneOrder))
	for _, name := range zoneOrder {
		eras, err := convertEras(zoneLines[name], policies)
		if err != nil {
			return Tables{}, fmt.Errorf("zone %s: %w", name, err)
		}
		zones[Normalize(name)] = &ZoneInfo{Name: name, Eras: eras}
	}

	if err := resolveLinks(f.LinkLines, zones); err != nil {
		return Tables{}, err
	}

	return Tables{Policies: policies, Zones: zones}, nil
}

// resolveLinks wires each Link line's alias name to the ZoneInfo of its
// target, following chains of links so every ZoneHandle's Eras field points
// directly at a zone that owns eras (never at another alias).
func resolveLinks(links []tzdata.LinkLine, zones map[string]*ZoneInfo) error {
	// A link's target may itself be defined by a later Link line, so
	// record edges first and resolve transitively afterward.
	edges := make(map[string]string, len(links))
	aliasDisplayName := make(map[string]string, len(links))
	for _, l := range links {
		edges[Normalize(l.To)] = Normalize(l.From)
		aliasDisplayName[Normalize(l.To)] = l.To
	}

	resolved := make(map[string]*ZoneInfo)
	var resolve func(key string, seen map[string]bool) (*ZoneInfo, error)
	resolve = func(key string, seen map[string]bool) (*ZoneInfo, error) {
		if z, ok := zones[key]; ok {
			return z, nil
		}
		if z, ok := resolved[key]; ok {
			return z, nil
		}
		target, ok := edges[key]
		if !ok {
			return nil, fmt.Errorf("link %s: target not found", key)
		}
		if seen[key] {
			return nil, fmt.Errorf("link %s: cyclic link chain", key)
		}
		seen[key] = true
		canonical, err := resolve(target, seen)
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", key, err)
		}
		alias := &ZoneInfo{Name: aliasDisplayName[key], Eras: canonical.Eras, LinkTarget: canonical}
		resolved[key] = alias
		return alias, nil
	}

	for key := range edges {
		alias, err := resolve(key, map[string]bool{})
		if err != nil {
			logrus.WithField("link", key).WithError(err).Warn("zonetab: skipping unresolvable link")
			continue
		}
		zones[key] = alias
	}
	return nil
}

func convertRule(r tzdata.RuleLine) (ZoneRule, error) {
	onDayOfWeek, onDayOfMonth := convertDay(r.On)
	return ZoneRule{
		FromYear:     convertYear(r.From),
		ToYear:       convertYear(r.To),
		InMonth:      int(r.In),
		OnDayOfWeek:  onDayOfWeek,
		OnDayOfMonth: onDayOfMonth,
		AtSeconds:    int64(r.At.Duration / time.Second),
		AtSuffix:     convertSuffix(r.At.Form),
		DeltaSeconds: int64(r.Save.Duration / time.Second),
		Letter:       r.Letter,
	}, nil
}

func convertYear(y tzdata.Year) int64 {
	switch y {
	case tzdata.MinYear:
		return MinYear
	case tzdata.MaxYear:
		return MaxYear
	default:
		return int64(y)
	}
}

// convertDay maps the teacher's tzdata.Day encoding (DayFormDayNum/Last/
// After/Before, with a time.Weekday where Sunday == 0) onto the engine's
// (OnDayOfWeek, OnDayOfMonth) pair from spec.md §3, where weekdays are
// numbered 1 (Monday) through 7 (Sunday) and 0 means "exact day of month".
func convertDay(d tzdata.Day) (onDayOfWeek, onDayOfMonth int) {
	switch d.Form {
	case tzdata.DayFormDayNum:
		return 0, d.Num
	case tzdata.DayFormLast:
		return isoWeekday(d.Day), 0
	case tzdata.DayFormAfter:
		return isoWeekday(d.Day), d.Num
	case tzdata.DayFormBefore:
		return isoWeekday(d.Day), -d.Num
	default:
		return 0, d.Num
	}
}

func isoWeekday(w time.Weekday) int {
	if w == time.Sunday {
		return 7
	}
	return int(w)
}

func convertSuffix(f tzdata.TimeForm) TimeSuffix {
	switch f {
	case tzdata.StandardTime:
		return Standard
	case tzdata.UniversalTime:
		return Universal
	default:
		return Wall
	}
}

func convertEras(lines []tzdata.ZoneLine, policies map[string]*ZonePolicy) ([]ZoneEra, error) {
	eras := make([]ZoneEra, 0, len(lines))
	for _, l := range lines {
		ref, err := convertPolicyRef(l.Rules, policies)
		if err != nil {
			return nil, err
		}
		until, err := resolveUntil(l.Until)
		if err != nil {
			return nil, fmt.Errorf("until: %w", err)
		}
		eras = append(eras, ZoneEra{
			OffsetSeconds:    int64(l.Offset / time.Second),
			Policy:           ref,
			RulesDeltaSecond: ref.FixedDelta,
			Format:           l.Format,
			Until:            until,
		})
	}
	return eras, nil
}

func convertPolicyRef(r tzdata.ZoneRules, policies map[string]*ZonePolicy) (ZonePolicyRef, error) {
	switch r.Form {
	case tzdata.ZoneRulesStandard:
		return ZonePolicyRef{Kind: PolicyNone}, nil
	case tzdata.ZoneRulesTime:
		return ZonePolicyRef{Kind: PolicyFixed, FixedDelta: int64(r.Time.Duration / time.Second)}, nil
	case tzdata.ZoneRulesName:
		p, ok := policies[r.Name]
		if !ok {
			return ZonePolicyRef{}, fmt.Errorf("policy %q not found", r.Name)
		}
		return ZonePolicyRef{Kind: PolicyReference, Policy: p}, nil
	default:
		return ZonePolicyRef{}, fmt.Errorf("unknown zone rules form %v", r.Form)
	}
}

// resolveUntil applies the teacher's tzexpand.Earliest defaulting rule
// (missing trailing fields take their earliest possible value) and, unlike
// the teacher, fully resolves a weekday-relative day form to a concrete day
// number immediately, since an era's UNTIL year and month are already
// concrete whenever its day selector is.
func resolveUntil(u tzdata.Until) (Until, error) {
	if !u.Defined {
		return Until{}, nil
	}

	year := int64(u.Year)
	month := time.January
	if u.Parts.Has(tzdata.UntilMonth) {
		month = u.Month
	}

	day := 1
	if u.Parts.Has(tzdata.UntilDay) {
		onDayOfWeek, onDayOfMonth := convertDay(u.Day)
		resolved, err := calendar.ResolveDayOfMonth(year, int(month), onDayOfWeek, onDayOfMonth)
		if err != nil {
			return Until{}, err
		}
		day = resolved
	}

	seconds := int64(0)
	suffix := Wall
	if u.Parts.Has(tzdata.UntilTime) {
		seconds = int64(u.Time.Duration / time.Second)
		suffix = convertSuffix(u.Time.Form)
	}

	return Until{
		Defined: true,
		Year:    year,
		Month:   int(month),
		Day:     day,
		Seconds: seconds,
		Suffix:  suffix,
	}, nil
}
