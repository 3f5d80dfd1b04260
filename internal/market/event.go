// Package market implements the world event engine: a library of economic,
// environmental and political event templates, probabilistic activation,
// mutual exclusion, related-event cascades and impact aggregation.
package market

import (
	"time"

	"github.com/mbellver/estatesim/internal/domain/property"
)

// Severity splits events into headline and background ones.
type Severity string

const (
	SeverityMajor Severity = "major"
	SeverityMinor Severity = "minor"
)

// Category groups events by cause.
type Category string

const (
	CategoryEconomic      Category = "economic"
	CategoryEnvironmental Category = "environmental"
	CategoryPolitical     Category = "political"
	CategorySocial        Category = "social"
)

// ImpactType names the simulation dial an event moves.
type ImpactType string

const (
	ImpactInterestRate    ImpactType = "interest_rate"
	ImpactLoanApproval    ImpactType = "loan_approval"
	ImpactMaxLoanAmount   ImpactType = "max_loan_amount"
	ImpactTenantQuality   ImpactType = "tenant_quality"
	ImpactPropertyValue   ImpactType = "property_value"
	ImpactMaintenanceCost ImpactType = "maintenance_cost"
	ImpactRenovationCost  ImpactType = "renovation_cost"
	ImpactAreaQuality     ImpactType = "area_quality"
)

// Impact is a single dial adjustment, optionally scoped to areas or
// property types. An empty scope applies everywhere.
type Impact struct {
	Type                  ImpactType          `json:"type"`
	Value                 float64             `json:"value"`
	AffectedAreas         []property.Location `json:"affected_areas,omitempty"`
	AffectedPropertyTypes []property.Type     `json:"affected_property_types,omitempty"`
}

// appliesTo checks the scope filters against a concrete area/type query.
func (i Impact) appliesTo(area property.Location, propType property.Type) bool {
	if len(i.AffectedAreas) > 0 && area != "" {
		found := false
		for _, a := range i.AffectedAreas {
			if a == area {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(i.AffectedPropertyTypes) > 0 && propType != "" {
		found := false
		for _, t := range i.AffectedPropertyTypes {
			if t == propType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Choice is a player response to an event. RequiredMoney of 0 means free.
type Choice struct {
	ID            string   `json:"id"`
	Description   string   `json:"description"`
	Impacts       []Impact `json:"impacts"`
	RequiredMoney int      `json:"required_money,omitempty"`
}

// Event is either a library template (no start/end, inactive) or a live
// instance stamped with a unique ID and dates.
type Event struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	DetailedDescription string   `json:"detailed_description"`
	Severity            Severity `json:"severity"`
	Category            Category `json:"category"`
	DurationMonths      int      `json:"duration_months"`
	Probability         float64  `json:"probability"` // per monthly check
	Impacts             []Impact `json:"impacts"`
	Choices             []Choice `json:"choices,omitempty"`
	RelatedEvents       []string `json:"related_events,omitempty"` // base IDs this event can cascade into

	StartDate      time.Time `json:"start_date,omitempty"`
	EndDate        time.Time `json:"end_date,omitempty"`
	IsActive       bool      `json:"is_active"`
	SelectedChoice string    `json:"selected_choice,omitempty"`
}

// Library returns the full event template set. Callers get a fresh slice
// each time; templates themselves are treated as immutable.
func Library() []Event {
	return []Event{
		{
			ID:          "economic-boom",
			Title:       "Economic Boom",
			Description: "The economy is thriving with low unemployment and high consumer confidence.",
			DetailedDescription: "A period of robust economic growth has created favorable market conditions " +
				"for real estate. Property values are increasing rapidly, and banks are more willing to lend " +
				"money at competitive rates. Tenant quality is also improved as more people have stable incomes.",
			Severity:       SeverityMajor,
			Category:       CategoryEconomic,
			DurationMonths: 24,
			Probability:    0.01,
			Impacts: []Impact{
				{Type: ImpactInterestRate, Value: -0.01},
				{Type: ImpactLoanApproval, Value: 0.2},
				{Type: ImpactMaxLoanAmount, Value: 0.15},
				{Type: ImpactTenantQuality, Value: 0.1},
				{Type: ImpactPropertyValue, Value: 0.03},
			},
		},
		{
			ID:          "recession",
			Title:       "Economic Recession",
			Description: "The economy has fallen into a recession with rising unemployment and decreasing consumer spending.",
			DetailedDescription: "Economic indicators are showing a significant downturn. Banks have tightened " +
				"lending practices, property values are stagnating or decreasing, and finding quality tenants " +
				"has become more challenging as unemployment rises.",
			Severity:       SeverityMajor,
			Category:       CategoryEconomic,
			DurationMonths: 18,
			Probability:    0.008,
			Impacts: []Impact{
				{Type: ImpactInterestRate, Value: 0.015},
				{Type: ImpactLoanApproval, Value: -0.25},
				{Type: ImpactMaxLoanAmount, Value: -0.2},
				{Type: ImpactTenantQuality, Value: -0.15},
				{Type: ImpactPropertyValue, Value: -0.01},
			},
			RelatedEvents: []string{"foreclosure-wave", "tenant-payment-issues"},
		},
		{
			ID:          "natural-disaster",
			Title:       "Natural Disaster",
			Description: "A significant natural disaster has affected the region.",
			DetailedDescription: "A natural disaster has hit the area, causing widespread property damage and " +
				"disruption. Insurance costs are rising, and some areas may see decreased property values due " +
				"to perceived risk. However, there may be opportunities in renovation and rebuilding.",
			Severity:       SeverityMajor,
			Category:       CategoryEnvironmental,
			DurationMonths: 6,
			Probability:    0.005,
			Impacts: []Impact{
				{Type: ImpactPropertyValue, Value: -0.1},
				{Type: ImpactMaintenanceCost, Value: 0.25},
				{Type: ImpactRenovationCost, Value: 0.2},
			},
			Choices: []Choice{
				{
					ID:            "invest-recovery",
					Description:   "Invest in disaster recovery efforts ($50,000)",
					Impacts:       []Impact{{Type: ImpactPropertyValue, Value: 0.05}},
					RequiredMoney: 50000,
				},
				{
					ID:          "minimal-response",
					Description: "Provide only minimal necessary repairs",
					Impacts:     []Impact{{Type: ImpactTenantQuality, Value: -0.1}},
				},
			},
		},
		{
			ID:          "local-business-growth",
			Title:       "Local Business Growth",
			Description: "New businesses are opening in certain areas, increasing desirability.",
			DetailedDescription: "Several new businesses have opened in specific neighborhoods, creating jobs " +
				"and improving the local economy. Properties in these areas may see increased values and " +
				"tenant demand.",
			Severity:       SeverityMinor,
			Category:       CategoryEconomic,
			DurationMonths: 12,
			Probability:    0.03,
			Impacts: []Impact{
				{Type: ImpactPropertyValue, Value: 0.02, AffectedAreas: []property.Location{property.LocationDowntown, property.LocationUrban}},
				{Type: ImpactTenantQuality, Value: 0.05, AffectedAreas: []property.Location{property.LocationDowntown, property.LocationUrban}},
			},
		},
		{
			ID:          "infrastructure-improvement",
			Title:       "Infrastructure Improvement",
			Description: "The city is investing in infrastructure upgrades in certain areas.",
			DetailedDescription: "The local government is implementing infrastructure improvements including " +
				"transportation, utilities, and public spaces. Properties in affected areas will likely see " +
				"increased values.",
			Severity:       SeverityMinor,
			Category:       CategoryPolitical,
			DurationMonths: 18,
			Probability:    0.02,
			Impacts: []Impact{
				{Type: ImpactPropertyValue, Value: 0.015, AffectedAreas: []property.Location{property.LocationSuburban}},
				{Type: ImpactAreaQuality, Value: 0.1, AffectedAreas: []property.Location{property.LocationSuburban}},
			},
		},
		{
			ID:          "tenant-payment-issues",
			Title:       "Widespread Tenant Payment Issues",
			Description: "Economic conditions are causing tenants to struggle with rent payments.",
			DetailedDescription: "Due to current economic conditions, tenants across various properties are " +
				"having difficulty making timely rent payments. This may affect your cash flow and require " +
				"proactive management.",
			Severity:       SeverityMinor,
			Category:       CategoryEconomic,
			DurationMonths: 3,
			Probability:    0.015,
			Impacts: []Impact{
				{Type: ImpactTenantQuality, Value: -0.2},
			},
		},
		{
			ID:          "foreclosure-wave",
			Title:       "Foreclosure Wave",
			Description: "Distressed owners are flooding the market with foreclosed properties.",
			DetailedDescription: "Mortgage defaults have spiked and banks are liquidating repossessed homes " +
				"below market value. Listed prices are dropping across the board, which hurts portfolio " +
				"valuations but opens buying opportunities for investors with cash on hand.",
			Severity:       SeverityMinor,
			Category:       CategoryEconomic,
			DurationMonths: 9,
			Probability:    0.004,
			Impacts: []Impact{
				{Type: ImpactPropertyValue, Value: -0.02},
				{Type: ImpactMaxLoanAmount, Value: -0.1},
			},
			Choices: []Choice{
				{
					ID:            "distressed-buyout",
					Description:   "Partner with the bank to bulk-buy distressed listings ($75,000)",
					Impacts:       []Impact{{Type: ImpactPropertyValue, Value: 0.01}},
					RequiredMoney: 75000,
				},
			},
		},
	}
}
