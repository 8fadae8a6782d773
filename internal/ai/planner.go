package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/travel-experience-marketplace/internal/model"
	"github.com/iliyamo/travel-experience-marketplace/internal/repository"
)

// Planner builds AI-assisted content on top of the experience
// catalog. It pulls prompt context from the database, delegates text
// generation to the Client, and repairs/parses the response with a
// deterministic fallback for every path.
type Planner struct {
	client      *Client
	experiences *repository.ExperienceRepo
}

// NewPlanner constructs a Planner. Both dependencies must be non-nil.
func NewPlanner(client *Client, experiences *repository.ExperienceRepo) *Planner {
	if client == nil || experiences == nil {
		panic("nil dependency passed to NewPlanner")
	}
	return &Planner{client: client, experiences: experiences}
}

// PlanTrip generates a day-by-day itinerary for a city, grounded on
// up to ten active local experiences. When the city has no
// experiences, or the generation call fails or returns unparseable
// JSON, a deterministic fallback plan is returned instead of an
// error.
func (p *Planner) PlanTrip(ctx context.Context, city string, days int, interests []string) (*model.TripPlan, error) {
	if days < 1 {
		days = 1
	}
	exps, err := p.experiences.ListActiveByCity(ctx, city, 10)
	if err != nil {
		return nil, err
	}
	if len(exps) == 0 {
		return &model.TripPlan{
			Title: fmt.Sprintf("AI Trip Plan for %s", city),
			Itinerary: []model.TripDay{{
				Day:         1,
				Description: fmt.Sprintf("No local experiences found for %s yet.", city),
				Activities:  []string{},
			}},
		}, nil
	}

	var b strings.Builder
	for i, e := range exps {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Title: %s\nTags: %s\nDescription: %s", e.Title, strings.Join(e.Tags, ", "), e.Description)
	}
	interestsText := "general tourism"
	if len(interests) > 0 {
		interestsText = strings.Join(interests, ", ")
	}

	prompt := fmt.Sprintf(`You are a Nepali travel planner AI.
Create a %d-day trip itinerary for %s, based on these local experiences:

%s

Focus on user interests: %s.
The output must be pure JSON:

{
  "title": "short trip title",
  "itinerary": [
	{"day": 1, "description": "...", "activities": ["...", "..."]},
	{"day": 2, "description": "...", "activities": ["..."]}
  ]
}`, days, city, b.String(), interestsText)

	raw := p.client.Generate(ctx, prompt)
	var plan model.TripPlan
	if raw != "" {
		if err := json.Unmarshal([]byte(RepairJSON(raw)), &plan); err == nil && len(plan.Itinerary) > 0 {
			return &plan, nil
		}
	}
	return fallbackPlan(city, days, exps), nil
}

// fallbackPlan assembles a generic itinerary from the catalog when
// generation is unavailable. One experience is suggested per day,
// cycling through what the city offers.
func fallbackPlan(city string, days int, exps []repository.ExperienceRecord) *model.TripPlan {
	plan := &model.TripPlan{Title: fmt.Sprintf("%d-Day %s Trip Plan", days, city)}
	for d := 1; d <= days; d++ {
		exp := exps[(d-1)%len(exps)]
		plan.Itinerary = append(plan.Itinerary, model.TripDay{
			Day:         d,
			Description: fmt.Sprintf("Day %d in %s", d, city),
			Activities:  []string{exp.Title},
		})
	}
	return plan
}

// EnrichExperience generates discovery tags and a one-line summary
// for an experience description. On any generation or parse failure
// it falls back to a truncated summary and an empty tag list.
func (p *Planner) EnrichExperience(ctx context.Context, description string) (*model.EnrichResult, error) {
	prompt := fmt.Sprintf(`You are a travel marketplace content assistant.
Given this experience description, produce discovery tags and a one-sentence summary.

Description: %s

The output must be pure JSON:

{
  "tags": ["tag1", "tag2", "tag3"],
  "summary": "one sentence"
}`, description)

	raw := p.client.Generate(ctx, prompt)
	var result model.EnrichResult
	if raw != "" {
		if err := json.Unmarshal([]byte(RepairJSON(raw)), &result); err == nil && result.Summary != "" {
			if result.Tags == nil {
				result.Tags = []string{}
			}
			return &result, nil
		}
	}
	return &model.EnrichResult{Tags: []string{}, Summary: truncate(description, 120)}, nil
}

// truncate shortens s to at most n bytes, backing off to a rune
// boundary so a multi-byte character is never cut in half.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n]) + "…"
}
