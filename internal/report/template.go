package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"growthscore_backend/internal/leads/repository"
	"growthscore_backend/internal/quiz/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

type pillarView struct {
	Name       string
	Color      string
	Score      int
	MaxScore   int
	Percentage int
	Weakest    bool
}

type sectionView struct {
	Title      string
	Paragraphs []string
}

type reportView struct {
	FirstName         string
	Company           string
	OverallPercentage int
	ZoneLabel         string
	ZoneColor         string
	ZoneDescription   string
	WeakestPillar     string
	Pillars           []pillarView
	Sections          []sectionView
	Recommendations   []Recommendation
	CalendarURL       string
}

func renderReport(lead repository.Lead, parsed ParsedReport, calendarURL string) (string, error) {
	pillars := catalog.Pillars()
	zone := catalog.Zone(lead.Zone)

	view := reportView{
		FirstName:         lead.FirstName,
		Company:           lead.Company,
		OverallPercentage: lead.OverallPercentage,
		ZoneLabel:         catalog.ZoneLabel(zone),
		ZoneColor:         zoneColors[zone],
		ZoneDescription:   zoneDescriptions[zone],
		CalendarURL:       calendarURL,
	}
	if info, ok := pillars[catalog.Pillar(lead.WeakestPillar)]; ok {
		view.WeakestPillar = info.Name
	}

	for _, ps := range lead.PillarScores {
		info := pillars[ps.Pillar]
		view.Pillars = append(view.Pillars, pillarView{
			Name:       info.Name,
			Color:      info.Color,
			Score:      ps.Score,
			MaxScore:   ps.MaxScore,
			Percentage: ps.Percentage,
			Weakest:    string(ps.Pillar) == lead.WeakestPillar,
		})
	}

	for _, title := range parsed.SectionOrder {
		if title == actionPlanSection || title == "YOUR PERSONALIZED ACTION PLAN" {
			continue
		}
		view.Sections = append(view.Sections, sectionView{
			Title:      title,
			Paragraphs: splitParagraphs(parsed.Sections[title]),
		})
	}
	view.Recommendations = parsed.Recommendations

	tmpl, err := template.ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return "", fmt.Errorf("parse report template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "report.html", view); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

func splitParagraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(body, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
