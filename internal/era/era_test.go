package era

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tzres/tzengine/internal/calendar"
	"github.com/tzres/tzengine/zonetab"
)

func TestSelectSingleEraZone(t *testing.T) {
	zone := &zonetab.ZoneInfo{
		Name: "Etc/UTC",
		Eras: []zonetab.ZoneEra{
			{OffsetSeconds: 0, Policy: zonetab.ZonePolicyRef{Kind: zonetab.PolicyNone}, Format: "UTC"},
		},
	}

	got, err := Select(zone, 2020)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	want := []Active{{Era: zone.Eras[0], Start: NegInf, End: PosInf}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Select mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectMultiEraZone(t *testing.T) {
	// Three consecutive eras, boundaries at 1990-01-01 and 2010-01-01 UT.
	b1 := calendar.SecondsFromEpoch(1990, 1, 1, 0, 0, 0)
	b2 := calendar.SecondsFromEpoch(2010, 1, 1, 0, 0, 0)

	zone := &zonetab.ZoneInfo{
		Name: "Test/MultiEra",
		Eras: []zonetab.ZoneEra{
			{
				OffsetSeconds: -3600, Format: "AAA",
				Until: zonetab.Until{Defined: true, Year: 1990, Month: 1, Day: 1, Suffix: zonetab.Universal},
			},
			{
				OffsetSeconds: -7200, Format: "BBB",
				Until: zonetab.Until{Defined: true, Year: 2010, Month: 1, Day: 1, Suffix: zonetab.Universal},
			},
			{
				OffsetSeconds: -7200, Format: "CCC",
			},
		},
	}

	// A query for 2000 has a window of 1999-01-01 .. 2002-01-01, which only
	// touches era[1], so Select returns that single era with its resolved
	// bounds.
	got, err := Select(zone, 2000)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 1 || got[0].Era.Format != "BBB" {
		t.Fatalf("Select(2000) = %+v, want single BBB era", got)
	}
	if got[0].Start != b1 || got[0].End != b2 {
		t.Errorf("Select(2000) bounds = [%d,%d), want [%d,%d)", got[0].Start, got[0].End, b1, b2)
	}

	// A query spanning the 1990 boundary (year 1989 -> window touches both
	// era[0] and era[1]) must return both.
	got, err = Select(zone, 1989)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Select(1989) = %+v, want 2 eras", got)
	}
	if got[0].Start != NegInf || got[0].End != b1 {
		t.Errorf("Select(1989)[0] bounds = [%d,%d), want [-inf,%d)", got[0].Start, got[0].End, b1)
	}
}

func TestSelectZoneWithNoEras(t *testing.T) {
	zone := &zonetab.ZoneInfo{Name: "Empty/Zone"}
	if _, err := Select(zone, 2020); err == nil {
		t.Fatal("Select on a zone with no eras: want error, got nil")
	}
}

func TestSelectNotCoveringYear(t *testing.T) {
	zone := &zonetab.ZoneInfo{
		Name: "Test/Bounded",
		Eras: []zonetab.ZoneEra{
			{
				OffsetSeconds: 0, Format: "AAA",
				Until: zonetab.Until{Defined: true, Year: 1950, Month: 1, Day: 1, Suffix: zonetab.Universal},
			},
		},
	}
	if _, err := Select(zone, 2020); err == nil {
		t.Fatal("Select past a zone's last era: want error, got nil")
	}
}
