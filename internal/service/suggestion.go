package service

import (
	"strings"

	"github.com/featuredesk/backend/internal/models"
)

type ImpactTier string

const (
	ImpactHigh   ImpactTier = "high"
	ImpactMedium ImpactTier = "medium"
	ImpactLow    ImpactTier = "low"
)

type RelatedFeature struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    models.RequestCategory `json:"category"`
	Impact      ImpactTier             `json:"impact"`
}

type FeatureBundle struct {
	Name                  string   `json:"name"`
	Features              []string `json:"features"`
	DevelopmentEffortDays int      `json:"development_effort_days"`
	DevelopmentSynergy    int      `json:"development_synergy"`
}

type ReleaseTiming struct {
	RecommendedDate string     `json:"recommended_date"`
	SalesImpact     ImpactTier `json:"sales_impact"`
	Reasoning       string     `json:"reasoning"`
}

type SuggestionBundle struct {
	RelatedFeatures []RelatedFeature `json:"related_features"`
	Bundles         []FeatureBundle  `json:"bundles"`
	ReleaseTimings  []ReleaseTiming  `json:"release_timings"`
}

// titleSlot marks where the request's title is spliced into a bundle's
// feature list.
const titleSlot = "{{title}}"

// Catalog is the static suggestion content keyed by category, with a
// default bucket for categories it does not map. The engine is a pure
// lookup; swapping the content never touches the logic.
type Catalog struct {
	related        map[models.RequestCategory][]RelatedFeature
	relatedDefault []RelatedFeature
	bundles        map[models.RequestCategory][]FeatureBundle
	bundlesDefault []FeatureBundle
	timings        []ReleaseTiming
}

// Suggest returns the catalog entries for the category with the request
// title interpolated into each bundle's feature list.
func (c *Catalog) Suggest(category models.RequestCategory, title string) SuggestionBundle {
	related, ok := c.related[category]
	if !ok {
		related = c.relatedDefault
	}
	templates, ok := c.bundles[category]
	if !ok {
		templates = c.bundlesDefault
	}

	bundles := make([]FeatureBundle, len(templates))
	for i, tmpl := range templates {
		b := tmpl
		b.Features = make([]string, len(tmpl.Features))
		for j, f := range tmpl.Features {
			b.Features[j] = strings.ReplaceAll(f, titleSlot, title)
		}
		bundles[i] = b
	}

	out := SuggestionBundle{
		RelatedFeatures: make([]RelatedFeature, len(related)),
		Bundles:         bundles,
		ReleaseTimings:  make([]ReleaseTiming, len(c.timings)),
	}
	copy(out.RelatedFeatures, related)
	copy(out.ReleaseTimings, c.timings)
	return out
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		related: map[models.RequestCategory][]RelatedFeature{
			models.CategoryAPIIntegration: {
				{Title: "Webhook Event Notifications", Description: "Send real-time updates to third-party systems when events occur", Category: models.CategoryAPIIntegration, Impact: ImpactHigh},
				{Title: "API Rate Limiting Controls", Description: "Allow customers to configure their own API usage limits", Category: models.CategoryAPIIntegration, Impact: ImpactMedium},
				{Title: "OAuth 2.0 Integration", Description: "Standardize authentication across all integrations", Category: models.CategoryAPIIntegration, Impact: ImpactHigh},
			},
			models.CategoryUserInterface: {
				{Title: "Customizable Dashboard Widgets", Description: "Allow users to create their own dashboard layouts", Category: models.CategoryUserInterface, Impact: ImpactHigh},
				{Title: "Bulk Action Controls", Description: "Enable users to perform actions on multiple items at once", Category: models.CategoryUserInterface, Impact: ImpactMedium},
				{Title: "Dark Mode Support", Description: "Provide a dark color theme for the application", Category: models.CategoryUserInterface, Impact: ImpactLow},
			},
			models.CategoryReporting: {
				{Title: "Custom Report Builder", Description: "Allow users to create their own report templates", Category: models.CategoryReporting, Impact: ImpactHigh},
				{Title: "Scheduled Reports", Description: "Automatically generate and email reports on a schedule", Category: models.CategoryReporting, Impact: ImpactMedium},
				{Title: "Data Export Options", Description: "Export reports to Excel, CSV, and PDF formats", Category: models.CategoryReporting, Impact: ImpactMedium},
			},
		},
		relatedDefault: []RelatedFeature{
			{Title: "Enhanced Search Functionality", Description: "Implement advanced search with filters and sorting", Category: models.CategoryOther, Impact: ImpactMedium},
			{Title: "Notification Preferences", Description: "Let users customize which alerts they receive", Category: models.CategoryOther, Impact: ImpactLow},
			{Title: "Team Collaboration Tools", Description: "Add commenting and sharing features to requests", Category: models.CategoryOther, Impact: ImpactHigh},
		},
		bundles: map[models.RequestCategory][]FeatureBundle{
			models.CategoryAPIIntegration: {
				{Name: "API Platform Expansion", Features: []string{titleSlot, "Webhook Event Notifications", "API Documentation Portal"}, DevelopmentEffortDays: 21, DevelopmentSynergy: 85},
				{Name: "Integration Security Bundle", Features: []string{"OAuth 2.0 Integration", "API Rate Limiting", titleSlot}, DevelopmentEffortDays: 14, DevelopmentSynergy: 72},
			},
			models.CategoryUserInterface: {
				{Name: "UI Modernization Bundle", Features: []string{titleSlot, "Dark Mode Support", "Responsive Mobile Views"}, DevelopmentEffortDays: 18, DevelopmentSynergy: 78},
				{Name: "User Productivity Pack", Features: []string{"Customizable Dashboard", titleSlot, "Keyboard Shortcuts"}, DevelopmentEffortDays: 15, DevelopmentSynergy: 68},
			},
			models.CategoryReporting: {
				{Name: "Reporting Power User Bundle", Features: []string{titleSlot, "Custom Report Builder", "Advanced Filtering"}, DevelopmentEffortDays: 25, DevelopmentSynergy: 80},
				{Name: "Data Insights Package", Features: []string{"Scheduled Reports", titleSlot, "Interactive Charts"}, DevelopmentEffortDays: 20, DevelopmentSynergy: 75},
			},
		},
		bundlesDefault: []FeatureBundle{
			{Name: "User Experience Enhancements", Features: []string{titleSlot, "Enhanced Search", "Performance Optimizations"}, DevelopmentEffortDays: 16, DevelopmentSynergy: 65},
			{Name: "Collaboration Toolkit", Features: []string{"Team Sharing Features", titleSlot, "Activity Timeline"}, DevelopmentEffortDays: 22, DevelopmentSynergy: 70},
		},
		timings: []ReleaseTiming{
			{RecommendedDate: "Q3 2025", SalesImpact: ImpactHigh, Reasoning: "Aligns with typical enterprise budget planning cycle for next fiscal year"},
			{RecommendedDate: "Q2 2025", SalesImpact: ImpactMedium, Reasoning: "Could be bundled with summer product release ahead of industry conference"},
			{RecommendedDate: "Q4 2025", SalesImpact: ImpactLow, Reasoning: "End of year software updates often receive less attention due to holiday seasons"},
		},
	}
}
