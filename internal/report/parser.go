package report

import (
	"regexp"
	"strings"
)

// Recommendation is one structured action item from the action plan.
type Recommendation struct {
	Title           string
	Investment      string
	Timeframe       string
	WhatToDo        string
	WhyItWorks      string
	ExpectedOutcome string
}

// ParsedReport is the structured form of the generated plain-text report.
type ParsedReport struct {
	Sections        map[string]string
	SectionOrder    []string
	Recommendations []Recommendation
}

var (
	markdownHeadingRe = regexp.MustCompile(`(?m)#{1,6}\s`)
	markdownBulletRe  = regexp.MustCompile(`(?m)^[-•]\s`)
	sectionSplitRe    = regexp.MustCompile(`(?i)SECTION:\s*`)
	recommendationRe  = regexp.MustCompile(`(?i)RECOMMENDATION\s*\d+[:.]\s*`)
	investmentRe      = regexp.MustCompile(`(?i)INVESTMENT:\s*([^\n]+)`)
	timeframeRe       = regexp.MustCompile(`(?i)TIMEFRAME:\s*([^\n]+)`)
	whatToDoRe        = regexp.MustCompile(`(?is)WHAT TO DO:\s*(.*?)(?:WHY IT WORKS:|$)`)
	whyItWorksRe      = regexp.MustCompile(`(?is)WHY IT WORKS:\s*(.*?)(?:EXPECTED OUTCOME:|$)`)
	expectedOutcomeRe = regexp.MustCompile(`(?is)EXPECTED OUTCOME:\s*(.*?)(?:RECOMMENDATION|$)`)
)

const actionPlanSection = "YOUR PERSONALISED ACTION PLAN"

// Parse recovers sections and the structured action plan from the generated
// text. The model is told not to emit markdown but occasionally does anyway,
// so leftover markdown symbols are stripped first. Missing labels within a
// recommendation degrade to empty fields rather than a parse failure.
func Parse(content string) ParsedReport {
	clean := markdownHeadingRe.ReplaceAllString(content, "")
	clean = strings.ReplaceAll(clean, "**", "")
	clean = strings.ReplaceAll(clean, "*", "")
	clean = strings.ReplaceAll(clean, "`", "")
	clean = markdownBulletRe.ReplaceAllString(clean, "")

	parsed := ParsedReport{Sections: make(map[string]string)}

	for _, chunk := range sectionSplitRe.Split(clean, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		title, body, _ := strings.Cut(chunk, "\n")
		title = strings.ToUpper(strings.TrimSpace(title))
		if _, seen := parsed.Sections[title]; !seen {
			parsed.SectionOrder = append(parsed.SectionOrder, title)
		}
		parsed.Sections[title] = strings.TrimSpace(body)
	}

	actionPlan := parsed.Sections[actionPlanSection]
	if actionPlan == "" {
		// US-English variant from a model that ignored instruction 7.
		actionPlan = parsed.Sections["YOUR PERSONALIZED ACTION PLAN"]
	}
	parsed.Recommendations = parseRecommendations(actionPlan)
	return parsed
}

func parseRecommendations(actionPlan string) []Recommendation {
	chunks := recommendationRe.Split(actionPlan, -1)
	if len(chunks) < 2 {
		return nil
	}

	recs := make([]Recommendation, 0, len(chunks)-1)
	for _, chunk := range chunks[1:] {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		title, rest, _ := strings.Cut(chunk, "\n")
		recs = append(recs, Recommendation{
			Title:           strings.TrimSpace(title),
			Investment:      firstGroup(investmentRe, rest),
			Timeframe:       firstGroup(timeframeRe, rest),
			WhatToDo:        firstGroup(whatToDoRe, rest),
			WhyItWorks:      firstGroup(whyItWorksRe, rest),
			ExpectedOutcome: firstGroup(expectedOutcomeRe, rest),
		})
	}
	return recs
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
