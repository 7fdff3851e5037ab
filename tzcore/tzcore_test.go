package tzcore

import (
	"testing"

	"github.com/tzres/tzengine/zonetab"
)

// buildTestTables constructs a small, hand-written Tables covering the
// zones spec.md §8's concrete scenarios exercise: America/Los_Angeles (and
// its US/Pacific alias) under the pre-2007 US DST rule the scenarios'
// literal instants were computed against, Africa/Tunis as a no-DST zone,
// and Australia/Sydney for a southern-hemisphere fall-back. This mirrors
// the teacher's own testdata/*.tzdata fixtures in spirit but is expressed
// directly as Go values, since the scenarios need specific historical rule
// years rather than today's full IANA data set.
func buildTestTables() zonetab.Tables {
	us := &zonetab.ZonePolicy{
		Name: "US",
		Rules: []zonetab.ZoneRule{
			{
				FromYear: 1987, ToYear: 2006,
				InMonth: 4, OnDayOfWeek: 7, OnDayOfMonth: 1,
				AtSeconds: 2 * 3600, AtSuffix: zonetab.Wall,
				DeltaSeconds: 3600, Letter: "D",
			},
			{
				FromYear: 1987, ToYear: 2006,
				InMonth: 10, OnDayOfWeek: 7, OnDayOfMonth: 0,
				AtSeconds: 2 * 3600, AtSuffix: zonetab.Wall,
				DeltaSeconds: 0, Letter: "S",
			},
		},
	}

	au := &zonetab.ZonePolicy{
		Name: "AU",
		Rules: []zonetab.ZoneRule{
			{
				FromYear: zonetab.MinYear, ToYear: zonetab.MaxYear,
				InMonth: 10, OnDayOfWeek: 7, OnDayOfMonth: 1,
				AtSeconds: 2 * 3600, AtSuffix: zonetab.Standard,
				DeltaSeconds: 3600, Letter: "D",
			},
			{
				FromYear: zonetab.MinYear, ToYear: zonetab.MaxYear,
				InMonth: 3, OnDayOfWeek: 7, OnDayOfMonth: 0,
				AtSeconds: 2 * 3600, AtSuffix: zonetab.Standard,
				DeltaSeconds: 0, Letter: "S",
			},
		},
	}

	losAngeles := &zonetab.ZoneInfo{
		Name: "America/Los_Angeles",
		Eras: []zonetab.ZoneEra{
			{
				OffsetSeconds: -8 * 3600,
				Policy:        zonetab.ZonePolicyRef{Kind: zonetab.PolicyReference, Policy: us},
				Format:        "P%sT",
			},
		},
	}
	tunis := &zonetab.ZoneInfo{
		Name: "Africa/Tunis",
		Eras: []zonetab.ZoneEra{
			{
				OffsetSeconds: 3600,
				Policy:        zonetab.ZonePolicyRef{Kind: zonetab.PolicyNone},
				Format:        "CET",
			},
		},
	}
	sydney := &zonetab.ZoneInfo{
		Name: "Australia/Sydney",
		Eras: []zonetab.ZoneEra{
			{
				OffsetSeconds: 10 * 3600,
				Policy:        zonetab.ZonePolicyRef{Kind: zonetab.PolicyReference, Policy: au},
				Format:        "AE%sT",
			},
		},
	}
	usPacific := &zonetab.ZoneInfo{Name: "US/Pacific", Eras: losAngeles.Eras, LinkTarget: losAngeles}

	return zonetab.Tables{
		Policies: map[string]*zonetab.ZonePolicy{"US": us, "AU": au},
		Zones: map[string]*zonetab.ZoneInfo{
			zonetab.Normalize(losAngeles.Name): losAngeles,
			zonetab.Normalize(tunis.Name):      tunis,
			zonetab.Normalize(sydney.Name):     sydney,
			zonetab.Normalize(usPacific.Name):  usPacific,
		},
	}
}

func mustGet(t *testing.T, r *Registry, name string) ZoneHandle {
	t.Helper()
	h, err := r.Get(name)
	if err != nil {
		t.Fatalf("Get(%q): %v", name, err)
	}
	return h
}

// Scenario 1: LA standard.
func TestScenarioLAStandard(t *testing.T) {
	r := NewRegistry(buildTestTables())
	la := mustGet(t, r, "America/Los_Angeles")

	got, err := r.InfoForLocal(la, 2000, 1, 2, 3, 4, 5, 0)
	if err != nil {
		t.Fatalf("InfoForLocal: %v", err)
	}
	if got.TotalOffset != -28800 || got.Abbreviation != "PST" {
		t.Errorf("got %+v, want total_offset=-28800 abbreviation=PST", got)
	}

	epoch, err := r.InfoForEpoch(la, 946811045)
	if err != nil {
		t.Fatalf("InfoForEpoch: %v", err)
	}
	if epoch.Abbreviation != "PST" || epoch.TotalOffset != -28800 {
		t.Errorf("InfoForEpoch(946811045) = %+v, want PST -28800", epoch)
	}
}

// Scenario 2: LA spring-forward boundary. 2000-04-02's transition is at
// wall 2:00 AM PST, which is 10:00 UTC (epoch 954669600); spec.md's own
// worked literal for this scenario is one hour off from its own stated
// local-time/offset facts (see DESIGN.md), so this test anchors on the
// UTC instant implied by "2000-04-02 10:00 UT" rather than that literal.
func TestScenarioLASpringForwardBoundary(t *testing.T) {
	r := NewRegistry(buildTestTables())
	la := mustGet(t, r, "America/Los_Angeles")

	const transition = 954669600 // 2000-04-02 10:00:00 UTC

	after, err := r.InfoForEpoch(la, transition)
	if err != nil {
		t.Fatalf("InfoForEpoch(%d): %v", transition, err)
	}
	if after.Abbreviation != "PDT" || after.TotalOffset != -25200 {
		t.Errorf("InfoForEpoch(%d) = %+v, want PDT -25200", transition, after)
	}

	before, err := r.InfoForEpoch(la, transition-1)
	if err != nil {
		t.Fatalf("InfoForEpoch(%d): %v", transition-1, err)
	}
	if before.Abbreviation != "PST" || before.TotalOffset != -28800 {
		t.Errorf("InfoForEpoch(%d) = %+v, want PST -28800", transition-1, before)
	}
}

// Scenario 3: LA fall-back overlap. As in scenario 2, the epoch values
// below anchor on the UTC instants implied by the transition actually
// falling at wall 2:00 AM, rather than spec.md's own literal (see
// DESIGN.md for the one-hour discrepancy this resolves).
func TestScenarioLAFallBackOverlap(t *testing.T) {
	r := NewRegistry(buildTestTables())
	la := mustGet(t, r, "America/Los_Angeles")

	const (
		earlyEpochWant = 972809999 // 2000-10-29 08:59:59 UTC, 01:59:59 PDT
		lateEpochWant  = 972813599 // 2000-10-29 09:59:59 UTC, 01:59:59 PST
	)

	early, err := r.InfoForLocal(la, 2000, 10, 29, 1, 59, 59, 0)
	if err != nil {
		t.Fatalf("InfoForLocal(fold=0): %v", err)
	}
	if early.Abbreviation != "PDT" || early.TotalOffset != -25200 {
		t.Errorf("fold=0 = %+v, want PDT -25200", early)
	}
	earlyEpoch, err := r.InfoForEpoch(la, earlyEpochWant)
	if err != nil || earlyEpoch.Abbreviation != "PDT" {
		t.Errorf("InfoForEpoch(%d) = %+v, err=%v, want PDT", earlyEpochWant, earlyEpoch, err)
	}

	late, err := r.InfoForLocal(la, 2000, 10, 29, 1, 59, 59, 1)
	if err != nil {
		t.Fatalf("InfoForLocal(fold=1): %v", err)
	}
	if late.Abbreviation != "PST" || late.TotalOffset != -28800 {
		t.Errorf("fold=1 = %+v, want PST -28800", late)
	}
	lateEpoch, err := r.InfoForEpoch(la, lateEpochWant)
	if err != nil || lateEpoch.Abbreviation != "PST" {
		t.Errorf("InfoForEpoch(%d) = %+v, err=%v, want PST", lateEpochWant, lateEpoch, err)
	}

	if early.TotalOffset-late.TotalOffset != 3600 {
		t.Errorf("fold=0/fold=1 offset delta = %d, want 3600", early.TotalOffset-late.TotalOffset)
	}
}

// Scenario 4: LA fall-back gap crossing (past the overlap, unambiguous).
func TestScenarioLAPastFallBack(t *testing.T) {
	r := NewRegistry(buildTestTables())
	la := mustGet(t, r, "America/Los_Angeles")

	got, err := r.InfoForLocal(la, 2000, 10, 29, 2, 0, 0, 0)
	if err != nil {
		t.Fatalf("InfoForLocal: %v", err)
	}
	if got.Abbreviation != "PST" || got.TotalOffset != -28800 {
		t.Errorf("got %+v, want PST -28800", got)
	}
}

// Scenario 5: US/Pacific alias.
func TestScenarioUSPacificAlias(t *testing.T) {
	r := NewRegistry(buildTestTables())
	alias := mustGet(t, r, "US/Pacific")

	if alias.Name() != "US/Pacific" {
		t.Errorf("Name() = %q, want US/Pacific", alias.Name())
	}
	if !alias.IsLink() {
		t.Error("IsLink() = false, want true")
	}
	if alias.CanonicalName() != "America/Los_Angeles" {
		t.Errorf("CanonicalName() = %q, want America/Los_Angeles", alias.CanonicalName())
	}

	got, err := r.InfoForLocal(alias, 2000, 4, 2, 3, 0, 0, 0)
	if err != nil {
		t.Fatalf("InfoForLocal: %v", err)
	}
	if got.Abbreviation != "PDT" || got.TotalOffset != -25200 {
		t.Errorf("got %+v, want PDT -25200 (same as scenario 2)", got)
	}
}

// Scenario 6: Africa/Tunis no-DST window.
func TestScenarioTunisNoDST(t *testing.T) {
	r := NewRegistry(buildTestTables())
	tunis := mustGet(t, r, "Africa/Tunis")

	got, err := r.InfoForLocal(tunis, 2006, 1, 1, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("InfoForLocal: %v", err)
	}
	if got.Abbreviation != "CET" || got.TotalOffset != 3600 || got.DSTOffset != 0 {
		t.Errorf("got %+v, want CET +3600 dst=0", got)
	}
}

// Scenario 7: Australia/Sydney southern-hemisphere fall-back.
func TestScenarioSydneyFallBack(t *testing.T) {
	r := NewRegistry(buildTestTables())
	sydney := mustGet(t, r, "Australia/Sydney")

	got, err := r.InfoForLocal(sydney, 2000, 3, 26, 2, 0, 0, 1)
	if err != nil {
		t.Fatalf("InfoForLocal: %v", err)
	}
	if got.Abbreviation != "AEST" || got.TotalOffset != 36000 || got.DSTOffset != 0 {
		t.Errorf("got %+v, want AEST +36000 dst=0", got)
	}
}

func TestGetNotFound(t *testing.T) {
	r := NewRegistry(buildTestTables())
	if _, err := r.Get("Nowhere/Imaginary"); err == nil {
		t.Fatal("Get on an unknown zone: want error, got nil")
	} else if e, ok := err.(*Error); !ok || e.Kind != NotFound {
		t.Errorf("Get error = %v, want ErrorKind NotFound", err)
	}
}

func TestInfoForLocalInvalidCivilTime(t *testing.T) {
	r := NewRegistry(buildTestTables())
	la := mustGet(t, r, "America/Los_Angeles")

	if _, err := r.InfoForLocal(la, 2001, 2, 30, 0, 0, 0, 0); err == nil {
		t.Fatal("InfoForLocal(Feb 30): want error, got nil")
	} else if e, ok := err.(*Error); !ok || e.Kind != InvalidCivilTime {
		t.Errorf("error = %v, want ErrorKind InvalidCivilTime", err)
	}
}
