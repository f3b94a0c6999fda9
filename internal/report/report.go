package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/analytics"
)

// Generator renders analytics results as markdown reports.
type Generator struct {
	analytics *analytics.Analytics
}

// New creates a report generator over an analytics layer.
func New(a *analytics.Analytics) *Generator {
	return &Generator{analytics: a}
}

func header(b *strings.Builder, title string) {
	fmt.Fprintf(b, "# %s\n\n", title)
	fmt.Fprintf(b, "*Generated: %s*\n\n", time.Now().Format("2006-01-02 15:04:05"))
}

// ExecutiveSummary renders the warehouse-wide overview report.
func (g *Generator) ExecutiveSummary() (string, error) {
	summary, err := g.analytics.Summary()
	if err != nil {
		return "", err
	}
	topOutcomes, err := g.analytics.TopOutcomes(10)
	if err != nil {
		return "", err
	}
	topIngredients, err := g.analytics.DangerousIngredients(10)
	if err != nil {
		return "", err
	}
	timing, err := g.analytics.ReactionTimingDistribution()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	header(&b, "Executive Summary — Veterinary Adverse Event Analysis")

	b.WriteString("## Dataset Overview\n\n")
	fmt.Fprintf(&b, "- Total adverse events analyzed: %d\n", summary.TotalEvents)
	fmt.Fprintf(&b, "- Unique animal breeds: %d\n", summary.TotalBreeds)
	fmt.Fprintf(&b, "- Unique adverse reactions: %d\n", summary.TotalReactions)
	fmt.Fprintf(&b, "- Unique outcomes: %d\n", summary.TotalOutcomes)
	fmt.Fprintf(&b, "- Active ingredients tracked: %d\n", summary.TotalIngredients)
	fmt.Fprintf(&b, "- Geographic locations: %d\n", summary.TotalLocations)
	fmt.Fprintf(&b, "- Events with weight recorded: %d\n", summary.EventsWithWeight)
	fmt.Fprintf(&b, "- Events with reaction timing: %d\n\n", summary.EventsWithTiming)

	b.WriteString("## Most Common Adverse Outcomes\n\n")
	if len(topOutcomes) == 0 {
		b.WriteString("No outcome data available.\n\n")
	}
	for i, o := range topOutcomes {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "%d. %s — %d cases (%.2f%%)\n", i+1, o.OutcomeName, o.OccurrenceCount, o.Percentage)
	}
	if len(topOutcomes) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Highest Risk Active Ingredients\n\n")
	if len(topIngredients) == 0 {
		b.WriteString("No ingredient data available.\n\n")
	}
	for i, ing := range topIngredients {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "%d. %s — %d events, %d distinct reactions\n", i+1, ing.IngredientName, ing.EventCount, ing.UniqueReactions)
	}
	if len(topIngredients) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Reaction Timing\n\n")
	for _, t := range timing {
		fmt.Fprintf(&b, "- %s: %d events", t.Category, t.EventCount)
		if t.AvgDays != nil {
			fmt.Fprintf(&b, " (avg %.2f days)", *t.AvgDays)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("## Recommendations\n\n")
	b.WriteString("- Implement enhanced screening protocols for the high-risk active ingredients above\n")
	b.WriteString("- Train staff on early recognition of the most common adverse reactions\n")
	b.WriteString("- Establish monitoring schedules based on the reaction timing distribution\n")
	b.WriteString("- Develop breed-specific prescribing guidelines\n")

	return b.String(), nil
}

// BreedSafetyReport renders the risk profile for one breed.
func (g *Generator) BreedSafetyReport(breedName, species string) (string, error) {
	profile, err := g.analytics.BreedRiskProfile(breedName, species)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	header(&b, "Breed Safety Report")

	fmt.Fprintf(&b, "- Breed: %s\n", profile.BreedName)
	fmt.Fprintf(&b, "- Species: %s\n", profile.Species)
	fmt.Fprintf(&b, "- Total adverse events: %d\n\n", profile.TotalEvents)

	b.WriteString("## Top Reactions to Monitor\n\n")
	if len(profile.TopReactions) == 0 {
		b.WriteString("No reaction data available for this breed.\n")
	}
	for i, r := range profile.TopReactions {
		fmt.Fprintf(&b, "%d. %s — %d events (%.2f%%)\n", i+1, r.ReactionName, r.ReactionCount, r.Percentage)
	}
	b.WriteString("\n")

	b.WriteString("## Most Common Outcomes\n\n")
	if len(profile.TopOutcomes) == 0 {
		b.WriteString("No outcome data available for this breed.\n")
	}
	for i, o := range profile.TopOutcomes {
		fmt.Fprintf(&b, "%d. %s — %d cases\n", i+1, o.Name, o.Count)
	}
	b.WriteString("\n")

	b.WriteString("## High-Risk Active Ingredients\n\n")
	if len(profile.RiskyIngredients) == 0 {
		b.WriteString("No specific ingredient data available.\n")
	} else {
		b.WriteString("The following ingredients have been frequently associated with adverse events in this breed:\n\n")
		for i, ing := range profile.RiskyIngredients {
			fmt.Fprintf(&b, "%d. %s (%d events)\n", i+1, ing.Name, ing.Count)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Recommendations\n\n")
	b.WriteString("- Monitor animals closely after administering medications containing the above active ingredients\n")
	b.WriteString("- Be aware of the most common reactions for this breed\n")
	b.WriteString("- Educate pet owners about potential adverse effects\n")
	b.WriteString("- Report any new adverse events to FDA\n")

	return b.String(), nil
}

// IngredientRiskReport renders the cross-species ingredient risk assessment.
func (g *Generator) IngredientRiskReport(limit int) (string, error) {
	ingredients, err := g.analytics.DangerousIngredients(limit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	header(&b, "Active Ingredient Risk Assessment")

	b.WriteString("This report identifies the active ingredients most commonly associated with adverse events across all species.\n\n")

	fmt.Fprintf(&b, "## Top %d High-Risk Ingredients\n\n", len(ingredients))
	if len(ingredients) == 0 {
		b.WriteString("No ingredient data available.\n")
	}
	for i, ing := range ingredients {
		fmt.Fprintf(&b, "%d. **%s** — %d events, %d distinct reactions\n", i+1, ing.IngredientName, ing.EventCount, ing.UniqueReactions)
	}
	b.WriteString("\n")

	b.WriteString("## Clinical Recommendations\n\n")
	b.WriteString("- Review patient history before prescribing medications with these ingredients\n")
	b.WriteString("- Consider alternative treatments when possible\n")
	b.WriteString("- Implement enhanced monitoring protocols\n")
	b.WriteString("- Maintain detailed records of adverse reactions\n")

	return b.String(), nil
}
