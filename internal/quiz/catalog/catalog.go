// Package catalog defines the Growth Score question catalog: four business
// pillars, sixteen weighted questions, and the zone thresholds applied to the
// overall percentage.
package catalog

// Pillar is one of the four fixed business-capability categories.
type Pillar string

const (
	PillarAttract    Pillar = "ATTRACT"
	PillarConvert    Pillar = "CONVERT"
	PillarAscend     Pillar = "ASCEND"
	PillarAccelerate Pillar = "ACCELERATE"
)

// PillarOrder is the canonical iteration order. Weakest-pillar tie-breaks
// and result rendering both depend on it.
var PillarOrder = []Pillar{PillarAttract, PillarConvert, PillarAscend, PillarAccelerate}

// Zone classifies an overall percentage into one of three ordered bands.
type Zone string

const (
	ZoneDanger     Zone = "DANGER"
	ZoneConstraint Zone = "CONSTRAINT"
	ZoneGrowth     Zone = "GROWTH"
)

// QuestionType distinguishes the two answer scales.
type QuestionType string

const (
	TypeTriState QuestionType = "TRI_STATE"
	TypeBoolean  QuestionType = "BOOLEAN"
)

// Option is a selectable answer with its point value.
type Option struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Question belongs to exactly one pillar and carries an ordered option set.
// Option points are non-negative; the first option holding the maximum point
// value is the question's best answer.
type Question struct {
	ID      string       `json:"id"`
	Pillar  Pillar       `json:"pillar"`
	Type    QuestionType `json:"type"`
	Text    string       `json:"text"`
	Options []Option     `json:"options"`
}

// MaxPoints returns the point value of the question's best option.
func (q Question) MaxPoints() int {
	max := 0
	for _, o := range q.Options {
		if o.Points > max {
			max = o.Points
		}
	}
	return max
}

// PillarInfo holds display metadata for a pillar.
type PillarInfo struct {
	Name        string
	Description string
	Color       string
}

// Catalog is the complete question set plus zone thresholds. It is plain
// data so tests can score against a customized catalog.
type Catalog struct {
	Questions []Question
	// DangerMax is the inclusive upper bound of the Danger band.
	DangerMax int
	// GrowthMin is the inclusive lower bound of the Growth band.
	// Percentages between the two bands fall into Constraint.
	GrowthMin int
}

// ZoneFor classifies an overall percentage. The Constraint band is the
// fallback; only the outer bands are checked explicitly.
func (c Catalog) ZoneFor(percentage int) Zone {
	if percentage <= c.DangerMax {
		return ZoneDanger
	}
	if percentage >= c.GrowthMin {
		return ZoneGrowth
	}
	return ZoneConstraint
}

// Pillars returns display metadata keyed by pillar.
func Pillars() map[Pillar]PillarInfo {
	return map[Pillar]PillarInfo{
		PillarAttract: {
			Name:        "Attract",
			Description: "How effectively you attract ideal prospects to discover your business",
			Color:       "#14B8A6",
		},
		PillarConvert: {
			Name:        "Convert",
			Description: "How well you convert interested prospects into paying customers",
			Color:       "#8B5CF6",
		},
		PillarAscend: {
			Name:        "Ascend",
			Description: "How successfully you retain customers, increase lifetime value, and generate referrals",
			Color:       "#F59E0B",
		},
		PillarAccelerate: {
			Name:        "Accelerate",
			Description: "How well your operations, systems, and team support sustainable growth",
			Color:       "#EC4899",
		},
	}
}

// ZoneLabel returns the display label for a zone.
func ZoneLabel(z Zone) string {
	switch z {
	case ZoneDanger:
		return "Danger Zone"
	case ZoneGrowth:
		return "Growth Zone"
	default:
		return "Constraint Zone"
	}
}

var triStateOptions = []Option{
	{ID: "yes", Label: "Yes", Points: 3},
	{ID: "maybe", Label: "Maybe / Partially", Points: 1},
	{ID: "no", Label: "No", Points: 0},
}

var booleanOptions = []Option{
	{ID: "true", Label: "True", Points: 1},
	{ID: "false", Label: "False", Points: 0},
}

// Default returns the reference catalog: four questions per pillar, three
// tri-state and one boolean each, zone bands Danger <=15 and Growth >=52.
func Default() Catalog {
	return Catalog{
		DangerMax: 15,
		GrowthMin: 52,
		Questions: []Question{
			{
				ID:      "attract-1",
				Pillar:  PillarAttract,
				Type:    TypeTriState,
				Text:    "We have a documented profile of our ideal customer that outlines their demographics, pain points, goals, and how/why they choose one provider over another.",
				Options: triStateOptions,
			},
			{
				ID:      "attract-2",
				Pillar:  PillarAttract,
				Type:    TypeTriState,
				Text:    "Our marketing is diversified across at least three channels with no single channel representing more than 50% of our enquiries.",
				Options: triStateOptions,
			},
			{
				ID:      "attract-3",
				Pillar:  PillarAttract,
				Type:    TypeTriState,
				Text:    "We have a system for producing valuable content on a regular basis and publishing it across multiple platforms.",
				Options: triStateOptions,
			},
			{
				ID:      "attract-4",
				Pillar:  PillarAttract,
				Type:    TypeBoolean,
				Text:    "Attracting new prospects is NOT a bottleneck to growth. We have all the enquiries we could ever need.",
				Options: booleanOptions,
			},
			{
				ID:      "convert-1",
				Pillar:  PillarConvert,
				Type:    TypeTriState,
				Text:    "Our value proposition is clear and compelling and our conversion rates are strong without resorting to pushy, aggressive, or misleading sales tactics.",
				Options: triStateOptions,
			},
			{
				ID:      "convert-2",
				Pillar:  PillarConvert,
				Type:    TypeTriState,
				Text:    "We have marketing systems and sales funnels that generate a consistent, predictable, and growing flow of new customers each month, largely on autopilot.",
				Options: triStateOptions,
			},
			{
				ID:      "convert-3",
				Pillar:  PillarConvert,
				Type:    TypeTriState,
				Text:    "We maintain a database of all our best performing and most profitable offers and promotions so they can be easily catalogued and redeployed.",
				Options: triStateOptions,
			},
			{
				ID:      "convert-4",
				Pillar:  PillarConvert,
				Type:    TypeBoolean,
				Text:    "Conversion rate is NOT a bottleneck to growth. If we get the enquiries, we convert them into customers.",
				Options: booleanOptions,
			},
			{
				ID:      "ascend-1",
				Pillar:  PillarAscend,
				Type:    TypeTriState,
				Text:    "Our average customer lifetime value is high relative to the competition thanks to a diverse and integrated range of offerings.",
				Options: triStateOptions,
			},
			{
				ID:      "ascend-2",
				Pillar:  PillarAscend,
				Type:    TypeTriState,
				Text:    "We have automated email, SMS, and social media follow-up campaigns that consistently convert new enquiries and re-engage past customers on autopilot.",
				Options: triStateOptions,
			},
			{
				ID:      "ascend-3",
				Pillar:  PillarAscend,
				Type:    TypeTriState,
				Text:    "We have a documented process in place for getting happy customers to leave positive reviews and refer new customers.",
				Options: triStateOptions,
			},
			{
				ID:      "ascend-4",
				Pillar:  PillarAscend,
				Type:    TypeBoolean,
				Text:    "Retention, upsell, and referral rates are NOT a bottleneck to growth. Once we win a customer, they stay, buy more, and refer others.",
				Options: booleanOptions,
			},
			{
				ID:      "accelerate-1",
				Pillar:  PillarAccelerate,
				Type:    TypeTriState,
				Text:    "We utilise documented systems and data-driven scorecards to set growth targets, execute projects, and track our progress toward our goals.",
				Options: triStateOptions,
			},
			{
				ID:      "accelerate-2",
				Pillar:  PillarAccelerate,
				Type:    TypeTriState,
				Text:    "We have a robust and integrated tech stack that includes a CRM, email/SMS platform, website with lead capture, tracking/analytics, and a centralised customer database.",
				Options: triStateOptions,
			},
			{
				ID:      "accelerate-3",
				Pillar:  PillarAccelerate,
				Type:    TypeTriState,
				Text:    "We have a team composed of reliable staff and contractors all working together efficiently and effectively to achieve the business goals.",
				Options: triStateOptions,
			},
			{
				ID:      "accelerate-4",
				Pillar:  PillarAccelerate,
				Type:    TypeBoolean,
				Text:    "Our systems, technology, and team are NOT a bottleneck to growth. The business runs like a well-oiled machine.",
				Options: booleanOptions,
			},
		},
	}
}
