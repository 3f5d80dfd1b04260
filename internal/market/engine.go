package market

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/mbellver/estatesim/internal/domain/property"
)

// contradictions are event pairs that can never be active together.
var contradictions = map[string][]string{
	"economic-boom": {"recession"},
	"recession":     {"economic-boom"},
}

// hasContradicting reports whether any active event blocks baseID.
func hasContradicting(baseID string, current []Event) bool {
	blocked := contradictions[baseID]
	for _, e := range current {
		if !e.IsActive {
			continue
		}
		for _, b := range blocked {
			if strings.HasPrefix(e.ID, b) {
				return true
			}
		}
	}
	return false
}

// hasActiveInstance reports whether an instance of baseID is already running.
func hasActiveInstance(baseID string, current []Event) bool {
	for _, e := range current {
		if e.IsActive && strings.HasPrefix(e.ID, baseID) {
			return true
		}
	}
	return false
}

// instantiate stamps a template into a live event. Instance IDs append a
// short uuid so multiple occurrences of the same template stay distinct in
// the ledger. A month is approximated as 30 days.
func instantiate(rng *rand.Rand, template Event, now time.Time) Event {
	instance := template
	instance.Impacts = append([]Impact(nil), template.Impacts...)
	instance.Choices = append([]Choice(nil), template.Choices...)
	instance.RelatedEvents = append([]string(nil), template.RelatedEvents...)

	id := uuid.Must(uuid.NewRandomFromReader(rng)).String()
	instance.ID = fmt.Sprintf("%s-%s", template.ID, id[:8])
	instance.StartDate = now
	instance.EndDate = now.Add(time.Duration(template.DurationMonths) * 30 * 24 * time.Hour)
	instance.IsActive = true
	return instance
}

// CheckForNewEvents rolls every library template against its monthly
// probability and returns the instances that fire. Templates with a running
// instance or a contradicting active event are skipped.
func CheckForNewEvents(rng *rand.Rand, current []Event, now time.Time) []Event {
	var spawned []Event
	for _, template := range Library() {
		if hasActiveInstance(template.ID, current) {
			continue
		}
		if hasContradicting(template.ID, current) {
			continue
		}
		if rng.Float64() < template.Probability {
			spawned = append(spawned, instantiate(rng, template, now))
		}
	}
	return spawned
}

// CheckForRelatedEvents gives each active event's related templates a 25%
// chance to cascade. The same exclusion rules apply as for fresh spawns.
func CheckForRelatedEvents(rng *rand.Rand, active []Event, now time.Time) []Event {
	library := Library()
	templateByID := make(map[string]Event, len(library))
	for _, t := range library {
		templateByID[t.ID] = t
	}

	var spawned []Event
	for _, e := range active {
		if !e.IsActive || len(e.RelatedEvents) == 0 {
			continue
		}
		for _, relatedID := range e.RelatedEvents {
			template, ok := templateByID[relatedID]
			if !ok {
				continue
			}
			if hasActiveInstance(relatedID, active) || hasActiveInstance(relatedID, spawned) {
				continue
			}
			if hasContradicting(relatedID, active) {
				continue
			}
			if rng.Float64() < 0.25 {
				spawned = append(spawned, instantiate(rng, template, now))
			}
		}
	}
	return spawned
}

// ExpireEvents deactivates events whose end date has passed and returns the
// updated slice alongside the IDs that expired this call.
func ExpireEvents(events []Event, now time.Time) ([]Event, []string) {
	var expired []string
	updated := make([]Event, len(events))
	for i, e := range events {
		if e.IsActive && !e.EndDate.IsZero() && now.After(e.EndDate) {
			e.IsActive = false
			expired = append(expired, e.ID)
		}
		updated[i] = e
	}
	return updated, expired
}

// CalculateImpact sums every active event's adjustments of the given type
// that apply to the area/property-type query, including adjustments from
// selected choices. Pass empty area or propType to query global impact.
func CalculateImpact(active []Event, impactType ImpactType, area property.Location, propType property.Type) float64 {
	total := 0.0
	for _, e := range active {
		if !e.IsActive {
			continue
		}
		for _, impact := range e.Impacts {
			if impact.Type != impactType || !impact.appliesTo(area, propType) {
				continue
			}
			total += impact.Value
		}
		if e.SelectedChoice == "" {
			continue
		}
		for _, choice := range e.Choices {
			if choice.ID != e.SelectedChoice {
				continue
			}
			for _, impact := range choice.Impacts {
				if impact.Type != impactType || !impact.appliesTo(area, propType) {
					continue
				}
				total += impact.Value
			}
		}
	}
	return total
}

// ChoiceResult reports the outcome of a choice selection. MoneyChange is
// zero or negative; rejections carry success=false and a reason, never an
// error, since a bad pick is a game outcome rather than a fault.
type ChoiceResult struct {
	MoneyChange int
	Success     bool
	Message     string
}

// SelectChoice records the player's response to an active event. Events is
// mutated in place on success.
func SelectChoice(events []Event, eventID, choiceID string, playerMoney float64) ChoiceResult {
	idx := -1
	for i := range events {
		if events[i].ID == eventID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ChoiceResult{Success: false, Message: "Event not found."}
	}

	event := &events[idx]
	if len(event.Choices) == 0 {
		return ChoiceResult{Success: false, Message: "This event has no choices."}
	}

	var choice *Choice
	for i := range event.Choices {
		if event.Choices[i].ID == choiceID {
			choice = &event.Choices[i]
			break
		}
	}
	if choice == nil {
		return ChoiceResult{Success: false, Message: "Choice not found."}
	}

	if choice.RequiredMoney > 0 && float64(choice.RequiredMoney) > playerMoney {
		return ChoiceResult{
			Success: false,
			Message: fmt.Sprintf("Not enough money. This choice requires $%s.", humanize.Comma(int64(choice.RequiredMoney))),
		}
	}

	event.SelectedChoice = choiceID
	return ChoiceResult{
		MoneyChange: -choice.RequiredMoney,
		Success:     true,
		Message:     fmt.Sprintf("You chose: %s", choice.Description),
	}
}
