// Package scoring turns a set of quiz answers into pillar scores, an overall
// percentage, a zone classification, and the weakest pillar. It is pure: no
// I/O, no clock, deterministic for a given catalog and answer set.
package scoring

import (
	"math"

	"growthscore_backend/internal/quiz/catalog"
)

// PillarScore is the aggregate for a single pillar.
type PillarScore struct {
	Pillar     catalog.Pillar `json:"pillar"`
	Score      int            `json:"score"`
	MaxScore   int            `json:"maxScore"`
	Percentage int            `json:"percentage"`
}

// Result is the complete scoring output for one submission.
type Result struct {
	OverallScore      int               `json:"overallScore"`
	OverallMaxScore   int               `json:"overallMaxScore"`
	OverallPercentage int               `json:"overallPercentage"`
	Zone              catalog.Zone      `json:"zone"`
	WeakestPillar     catalog.Pillar    `json:"weakestPillar"`
	PillarScores      []PillarScore     `json:"pillarScores"`
	Answers           map[string]string `json:"answers"`
}

// Calculate scores the given answers against the catalog. Answers map
// question ID to selected option ID. A missing or unrecognized answer earns
// zero points while the question's maximum still counts toward the
// denominator, so partial submissions are penalized rather than ignored.
//
// The overall percentage is computed from the aggregated point totals, not
// by averaging pillar percentages, so pillars with differing maxima carry
// proportional weight.
//
// Only questions belonging to a pillar in catalog.PillarOrder count; a
// question outside the canonical pillar set contributes to neither the
// pillar scores nor the overall totals.
func Calculate(cat catalog.Catalog, answers map[string]string) Result {
	totals := make(map[catalog.Pillar]*PillarScore, len(catalog.PillarOrder))
	for _, p := range catalog.PillarOrder {
		totals[p] = &PillarScore{Pillar: p}
	}

	for _, q := range cat.Questions {
		t, ok := totals[q.Pillar]
		if !ok {
			continue
		}
		t.MaxScore += q.MaxPoints()
		selected, answered := answers[q.ID]
		if !answered {
			continue
		}
		for _, o := range q.Options {
			if o.ID == selected {
				t.Score += o.Points
				break
			}
		}
	}

	res := Result{
		Answers:      answers,
		PillarScores: make([]PillarScore, 0, len(catalog.PillarOrder)),
	}
	for _, p := range catalog.PillarOrder {
		t := totals[p]
		t.Percentage = percentage(t.Score, t.MaxScore)
		res.OverallScore += t.Score
		res.OverallMaxScore += t.MaxScore
		res.PillarScores = append(res.PillarScores, *t)
	}

	res.OverallPercentage = percentage(res.OverallScore, res.OverallMaxScore)
	res.Zone = cat.ZoneFor(res.OverallPercentage)
	res.WeakestPillar = weakest(res.PillarScores)
	return res
}

// weakest returns the pillar with the lowest percentage. Ties resolve to the
// earliest pillar in canonical order, which is the slice order here.
func weakest(scores []PillarScore) catalog.Pillar {
	if len(scores) == 0 {
		return ""
	}
	w := scores[0]
	for _, s := range scores[1:] {
		if s.Percentage < w.Percentage {
			w = s
		}
	}
	return w.Pillar
}

func percentage(score, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(max) * 100))
}
