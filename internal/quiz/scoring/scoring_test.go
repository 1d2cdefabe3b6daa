package scoring

import (
	"testing"

	"growthscore_backend/internal/quiz/catalog"
)

func answerAll(cat catalog.Catalog, optionID string) map[string]string {
	answers := make(map[string]string, len(cat.Questions))
	for _, q := range cat.Questions {
		answers[q.ID] = optionID
	}
	return answers
}

func bestAnswers(cat catalog.Catalog) map[string]string {
	answers := make(map[string]string, len(cat.Questions))
	for _, q := range cat.Questions {
		best := q.Options[0]
		for _, o := range q.Options[1:] {
			if o.Points > best.Points {
				best = o
			}
		}
		answers[q.ID] = best.ID
	}
	return answers
}

func TestCalculatePerfectScore(t *testing.T) {
	cat := catalog.Default()
	res := Calculate(cat, bestAnswers(cat))

	if res.OverallScore != 40 || res.OverallMaxScore != 40 {
		t.Fatalf("expected 40/40, got %d/%d", res.OverallScore, res.OverallMaxScore)
	}
	if res.OverallPercentage != 100 {
		t.Fatalf("expected 100%%, got %d%%", res.OverallPercentage)
	}
	if res.Zone != catalog.ZoneGrowth {
		t.Fatalf("expected GROWTH zone, got %s", res.Zone)
	}
	for _, ps := range res.PillarScores {
		if ps.Score != 10 || ps.MaxScore != 10 || ps.Percentage != 100 {
			t.Errorf("pillar %s: expected 10/10 (100%%), got %d/%d (%d%%)", ps.Pillar, ps.Score, ps.MaxScore, ps.Percentage)
		}
	}
}

func TestCalculateZeroScore(t *testing.T) {
	cat := catalog.Default()
	answers := make(map[string]string, len(cat.Questions))
	for _, q := range cat.Questions {
		if q.Type == catalog.TypeBoolean {
			answers[q.ID] = "false"
		} else {
			answers[q.ID] = "no"
		}
	}

	res := Calculate(cat, answers)
	if res.OverallScore != 0 {
		t.Fatalf("expected 0 points, got %d", res.OverallScore)
	}
	if res.OverallMaxScore != 40 {
		t.Fatalf("expected max 40, got %d", res.OverallMaxScore)
	}
	if res.Zone != catalog.ZoneDanger {
		t.Fatalf("expected DANGER zone, got %s", res.Zone)
	}
}

func TestCalculateMissingAnswersCountAgainstMax(t *testing.T) {
	cat := catalog.Default()

	// Answer only one pillar perfectly; the other twelve questions still
	// contribute their maxima to the denominator.
	answers := map[string]string{
		"attract-1": "yes",
		"attract-2": "yes",
		"attract-3": "yes",
		"attract-4": "true",
	}

	res := Calculate(cat, answers)
	if res.OverallScore != 10 {
		t.Fatalf("expected 10 points, got %d", res.OverallScore)
	}
	if res.OverallMaxScore != 40 {
		t.Fatalf("expected max 40, got %d", res.OverallMaxScore)
	}
	if res.OverallPercentage != 25 {
		t.Fatalf("expected 25%%, got %d%%", res.OverallPercentage)
	}
}

func TestCalculateUnrecognizedOptionEarnsZero(t *testing.T) {
	cat := catalog.Default()
	answers := bestAnswers(cat)
	answers["convert-1"] = "bogus"

	res := Calculate(cat, answers)
	if res.OverallScore != 37 {
		t.Fatalf("expected 37 points, got %d", res.OverallScore)
	}
	if res.OverallMaxScore != 40 {
		t.Fatalf("max should be unaffected, got %d", res.OverallMaxScore)
	}
}

func TestCalculateWeakestPillar(t *testing.T) {
	cat := catalog.Default()
	answers := bestAnswers(cat)
	// Drag ASCEND below the rest.
	answers["ascend-1"] = "no"
	answers["ascend-2"] = "no"

	res := Calculate(cat, answers)
	if res.WeakestPillar != catalog.PillarAscend {
		t.Fatalf("expected ASCEND weakest, got %s", res.WeakestPillar)
	}
}

func TestCalculateWeakestPillarTieBreaksCanonically(t *testing.T) {
	cat := catalog.Default()

	// All pillars identical: the tie resolves to the first pillar in
	// canonical order, never by map iteration.
	res := Calculate(cat, answerAll(cat, "maybe"))
	if res.WeakestPillar != catalog.PillarAttract {
		t.Fatalf("expected ATTRACT on full tie, got %s", res.WeakestPillar)
	}

	// CONVERT and ACCELERATE tied for lowest: CONVERT wins.
	answers := bestAnswers(cat)
	answers["convert-1"] = "no"
	answers["accelerate-1"] = "no"
	res = Calculate(cat, answers)
	if res.WeakestPillar != catalog.PillarConvert {
		t.Fatalf("expected CONVERT on partial tie, got %s", res.WeakestPillar)
	}
}

// TestCalculateOverallUsesAggregateTotals checks that the overall percentage
// is point-weighted rather than an average of pillar percentages: with uneven
// pillar maxima the two computations disagree.
func TestCalculateOverallUsesAggregateTotals(t *testing.T) {
	cat := catalog.Catalog{
		DangerMax: 15,
		GrowthMin: 52,
		Questions: []catalog.Question{
			{ID: "a1", Pillar: catalog.PillarAttract, Type: catalog.TypeTriState, Options: []catalog.Option{
				{ID: "yes", Points: 48}, {ID: "no", Points: 0},
			}},
			{ID: "c1", Pillar: catalog.PillarConvert, Type: catalog.TypeBoolean, Options: []catalog.Option{
				{ID: "true", Points: 2}, {ID: "false", Points: 0},
			}},
			{ID: "s1", Pillar: catalog.PillarAscend, Type: catalog.TypeBoolean, Options: []catalog.Option{
				{ID: "true", Points: 2}, {ID: "false", Points: 0},
			}},
			{ID: "x1", Pillar: catalog.PillarAccelerate, Type: catalog.TypeBoolean, Options: []catalog.Option{
				{ID: "true", Points: 2}, {ID: "false", Points: 0},
			}},
		},
	}

	res := Calculate(cat, map[string]string{
		"a1": "no", "c1": "true", "s1": "true", "x1": "true",
	})

	// Aggregate: 6/54 = 11%. Pillar average would be (0+100+100+100)/4 = 75%.
	if res.OverallScore != 6 || res.OverallMaxScore != 54 {
		t.Fatalf("expected 6/54, got %d/%d", res.OverallScore, res.OverallMaxScore)
	}
	if res.OverallPercentage != 11 {
		t.Fatalf("expected 11%%, got %d%%", res.OverallPercentage)
	}
	if res.Zone != catalog.ZoneDanger {
		t.Fatalf("expected DANGER zone, got %s", res.Zone)
	}
	if res.WeakestPillar != catalog.PillarAttract {
		t.Fatalf("expected ATTRACT weakest, got %s", res.WeakestPillar)
	}
}

func TestCalculateIgnoresQuestionsOutsideCanonicalPillars(t *testing.T) {
	cat := catalog.Catalog{
		DangerMax: 15,
		GrowthMin: 52,
		Questions: []catalog.Question{
			{ID: "a1", Pillar: catalog.PillarAttract, Type: catalog.TypeBoolean, Options: []catalog.Option{
				{ID: "true", Points: 2}, {ID: "false", Points: 0},
			}},
			{ID: "r1", Pillar: catalog.Pillar("RETAIN"), Type: catalog.TypeBoolean, Options: []catalog.Option{
				{ID: "true", Points: 50}, {ID: "false", Points: 0},
			}},
		},
	}

	res := Calculate(cat, map[string]string{"a1": "true", "r1": "true"})

	// The rogue question must count toward neither side of the totals.
	if res.OverallScore != 2 || res.OverallMaxScore != 2 {
		t.Fatalf("expected 2/2, got %d/%d", res.OverallScore, res.OverallMaxScore)
	}
	if len(res.PillarScores) != len(catalog.PillarOrder) {
		t.Fatalf("expected %d pillar scores, got %d", len(catalog.PillarOrder), len(res.PillarScores))
	}
	for _, ps := range res.PillarScores {
		if ps.Pillar == "RETAIN" {
			t.Fatal("unknown pillar leaked into pillar scores")
		}
	}
}

func TestZoneBoundaries(t *testing.T) {
	cat := catalog.Default()
	cases := []struct {
		percentage int
		want       catalog.Zone
	}{
		{0, catalog.ZoneDanger},
		{15, catalog.ZoneDanger},
		{16, catalog.ZoneConstraint},
		{51, catalog.ZoneConstraint},
		{52, catalog.ZoneGrowth},
		{100, catalog.ZoneGrowth},
	}
	for _, tc := range cases {
		if got := cat.ZoneFor(tc.percentage); got != tc.want {
			t.Errorf("ZoneFor(%d) = %s, want %s", tc.percentage, got, tc.want)
		}
	}
}

func TestCalculateRounding(t *testing.T) {
	// 1 maybe + 15 zero answers: 1/40 = 2.5% rounds to 3 (half away from
	// truncation).
	cat := catalog.Default()
	answers := answerAll(cat, "nope")
	answers["attract-1"] = "maybe"

	res := Calculate(cat, answers)
	if res.OverallPercentage != 3 {
		t.Fatalf("expected 3%%, got %d%%", res.OverallPercentage)
	}
}

func TestCalculateEmptyAnswers(t *testing.T) {
	cat := catalog.Default()
	res := Calculate(cat, map[string]string{})

	if res.OverallScore != 0 || res.OverallMaxScore != 40 {
		t.Fatalf("expected 0/40, got %d/%d", res.OverallScore, res.OverallMaxScore)
	}
	if res.OverallPercentage != 0 {
		t.Fatalf("expected 0%%, got %d%%", res.OverallPercentage)
	}
	if res.Zone != catalog.ZoneDanger {
		t.Fatalf("expected DANGER zone, got %s", res.Zone)
	}
	if len(res.PillarScores) != 4 {
		t.Fatalf("expected 4 pillar scores, got %d", len(res.PillarScores))
	}
}
