package report

import (
	"fmt"
	"strings"

	"growthscore_backend/internal/leads/repository"
	"growthscore_backend/internal/quiz/catalog"
)

// zoneDescriptions supplements the zone label in the prompt and rendered
// report.
var zoneDescriptions = map[catalog.Zone]string{
	catalog.ZoneDanger:     "Core growth foundations are missing or weak.",
	catalog.ZoneConstraint: "Solid drivers in place, but bottlenecks are limiting potential.",
	catalog.ZoneGrowth:     "Strong foundations that support scalable growth.",
}

// zoneColors drives the rendered report's accent color.
var zoneColors = map[catalog.Zone]string{
	catalog.ZoneDanger:     "#EF4444",
	catalog.ZoneConstraint: "#F59E0B",
	catalog.ZoneGrowth:     "#22C55E",
}

// buildPrompt assembles the consultant prompt for a lead. The structured
// SECTION / RECOMMENDATION markers it demands are what the parser recovers.
func buildPrompt(lead repository.Lead) string {
	pillars := catalog.Pillars()

	weakest := catalog.Pillar(lead.WeakestPillar)
	weakestName := lead.WeakestPillar
	if info, ok := pillars[weakest]; ok {
		weakestName = info.Name
	}

	weakestScore := 0
	summary := make([]string, 0, len(lead.PillarScores))
	for _, ps := range lead.PillarScores {
		name := string(ps.Pillar)
		if info, ok := pillars[ps.Pillar]; ok {
			name = info.Name
		}
		summary = append(summary, fmt.Sprintf("%s: %d%%", name, ps.Percentage))
		if ps.Pillar == weakest {
			weakestScore = ps.Percentage
		}
	}

	zoneLabel := catalog.ZoneLabel(catalog.Zone(lead.Zone))

	var b strings.Builder
	b.WriteString("You are an expert business consultant specialising in helping owner-managed businesses grow and scale.\n\n")
	b.WriteString("Generate a comprehensive, actionable growth assessment report. This report must be plain text only - NO markdown formatting whatsoever. No hashtags, no asterisks, no bullet points with dashes. Write in flowing prose with clear paragraph breaks.\n\n")

	b.WriteString("QUIZ RESULTS:\n")
	fmt.Fprintf(&b, "Overall Score: %d%%\n", lead.OverallPercentage)
	fmt.Fprintf(&b, "Zone: %s\n", zoneLabel)
	fmt.Fprintf(&b, "Weakest Pillar: %s (%d%%)\n", weakestName, weakestScore)
	fmt.Fprintf(&b, "All Pillars: %s\n\n", strings.Join(summary, ", "))

	if lead.Company != "" {
		fmt.Fprintf(&b, "BUSINESS CONTEXT (use this to personalise recommendations):\nThe business is called %s.\n\n", lead.Company)
	}

	b.WriteString("REPORT STRUCTURE (use these exact section titles):\n\n")
	b.WriteString("SECTION: EXECUTIVE SUMMARY\n")
	b.WriteString("Write 2-3 warm, encouraging paragraphs about their position and potential. Be honest but optimistic.\n\n")
	b.WriteString("SECTION: UNDERSTANDING YOUR SCORE\n")
	fmt.Fprintf(&b, "Explain what %d%% means practically. Clarify this is an assessment score measuring business systems, not a performance metric. Explain what businesses at this level typically experience.\n\n", lead.OverallPercentage)
	fmt.Fprintf(&b, "SECTION: YOUR PRIMARY GROWTH CONSTRAINT - %s\n", strings.ToUpper(weakestName))
	fmt.Fprintf(&b, "Deep dive into why %s at %d%% is holding them back. Explain the symptoms, root causes, and cascading effects on other areas.\n\n", weakestName, weakestScore)
	b.WriteString("SECTION: YOUR PERSONALISED ACTION PLAN\n")
	b.WriteString("Provide exactly 8 actionable recommendations tailored to their business. For each recommendation, use this EXACT structure with clear labels on separate lines:\n\n")
	b.WriteString("RECOMMENDATION [number]: [Brief title - 5-8 words max]\n\n")
	b.WriteString("INVESTMENT: [Free / Under £100 / £100-500 / Premium £500+]\n\n")
	b.WriteString("TIMEFRAME: [e.g., \"1-2 weeks\" or \"4-6 weeks\"]\n\n")
	b.WriteString("WHAT TO DO:\nWrite 2-3 sentences explaining the specific action steps. Be concrete and specific.\n\n")
	b.WriteString("WHY IT WORKS:\nWrite 2-3 sentences explaining why this is effective. Reference business growth principles or industry-specific insights.\n\n")
	b.WriteString("EXPECTED OUTCOME:\nWrite 1-2 sentences with realistic metrics (e.g., conversion rates, leads, revenue impact).\n\n")
	b.WriteString("Mix of: 2-3 free options, 2-3 low-cost options, 2-3 premium options. Mix of quick wins and strategic builds. Focus on tactics relevant to the 4 pillars: Attract (lead generation, content, traffic), Convert (sales funnels, offers, conversion), Ascend (retention, upsells, referrals), Accelerate (systems, automation, team).\n\n")
	b.WriteString("SECTION: BUSINESS GROWTH BENCHMARKS\n")
	b.WriteString("Write a brief intro paragraph about how general business benchmarks (conversion rates, lifetime value, retention, referral rates, ad costs) help them understand where they stand, list the key metrics, then 2-3 paragraphs on using them to set realistic targets.\n\n")
	b.WriteString("SECTION: YOUR NEXT STEPS\n")
	b.WriteString("End with clear call to action. Mention booking a free strategy call with Quentin Hunter to create a prioritised implementation roadmap.\n\n")
	b.WriteString("CRITICAL FORMATTING RULES:\n")
	b.WriteString("1. NO markdown symbols whatsoever (no #, *, -, _, etc.)\n")
	b.WriteString("2. NO bullet points - write in prose paragraphs\n")
	b.WriteString("3. Use \"SECTION:\" prefix for each section heading exactly as shown\n")
	b.WriteString("4. Use \"RECOMMENDATION 1:\", \"RECOMMENDATION 2:\", etc. for action items\n")
	b.WriteString("5. Separate paragraphs with blank lines\n")
	b.WriteString("6. Write naturally as a consultant would in a professional PDF report\n")
	b.WriteString("7. UK English spelling throughout (colour, organisation, programme, centre, behaviour)\n")
	b.WriteString("8. Approximately 1,600-2,000 words total\n")
	b.WriteString("9. Sound human and consultative, not robotic\n\n")
	b.WriteString("Generate the report now:")

	return b.String()
}
