// Package pricing holds the pure valuation, rent, maintenance and tax models.
// Every function is deterministic given its inputs and, where noted, the RNG
// handle threaded in by the caller.
package pricing

import (
	"math"
	"math/rand"

	"github.com/mbellver/estatesim/internal/domain/property"
)

// MarketConditions feed the demand/interest-rate damping multiplier.
type MarketConditions struct {
	DemandLevel  float64 // 0.5 (very low) to 1.5 (very high)
	InterestRate float64 // percentage, e.g. 3.5
}

// Extras are the extended attributes applied after the base multipliers,
// in the fixed order documented on CalculateValue. Nil sub-fields are skipped.
type Extras struct {
	NeighborhoodQuality property.NeighborhoodQuality
	Amenities           *property.Amenities
	SpecialFeatures     *property.SpecialFeatures
	ViewQuality         property.ViewQuality
	LotSize             int
	EconomicIndicators  *property.EconomicIndicators
	RenovationPotential property.RenovationPotential
	MarketTrends        *property.MarketTrends
}

// ValueInput bundles the arguments of CalculateValue. Age and Condition are
// optional; Market and Extras are optional blocks.
type ValueInput struct {
	Size      int
	Type      property.Type
	Location  property.Location
	Age       *int // years
	Condition *int // 0-100, 100 is perfect
	Market    *MarketConditions
	Extras    *Extras
}

// basePricePerSquareMeter maps a property type to its price tier in $/m².
func basePricePerSquareMeter(t property.Type) float64 {
	var base float64
	switch t {
	case property.TypeMansion, property.TypeVilla:
		base = 7500 // luxury tier
	case property.TypeHouse, property.TypeColonialHouse, property.TypeBungalow,
		property.TypeChalet, property.TypeFarmhouse:
		base = 3500 // higher-end residential
	case property.TypeApartment, property.TypeCondo, property.TypeTownhouse,
		property.TypeDuplex, property.TypeSkyscraperCondo, property.TypeRowHouse:
		base = 2800 // standard residential
	case property.TypeCottage, property.TypeCabin, property.TypeTinyHome,
		property.TypeRanchHouse, property.TypeMobileHome, property.TypeHouseboat:
		base = 2200 // special residential
	case property.TypeCommercial, property.TypeMixedUse:
		base = 3800
	case property.TypeIndustrial:
		base = 2000
	case property.TypeLand:
		base = 800 // lower per m², typically much larger area
	case property.TypeVacation:
		base = 4500
	default:
		base = 2500
	}

	// Type-specific tweaks on top of the tier.
	switch t {
	case property.TypeMansion:
		base *= 1.3
	case property.TypeSkyscraperCondo:
		base *= 1.2
	case property.TypeMobileHome:
		base *= 0.7
	}
	return base
}

// LocationValueMultiplier returns the location factor used by the valuation
// model. Suburban is the reference point. Unknown locations are a fatal
// input error, never a silent fallthrough.
func LocationValueMultiplier(loc property.Location) (float64, error) {
	switch loc {
	case property.LocationDowntown:
		return 1.5, nil
	case property.LocationUrban:
		return 1.2, nil
	case property.LocationSuburban:
		return 1.0, nil
	case property.LocationCountry:
		return 0.7, nil
	default:
		return 0, property.ErrUnknownLocation{Location: loc}
	}
}

// lotSizeEligible reports whether a property type carries a lot-size premium.
func lotSizeEligible(t property.Type) bool {
	switch t {
	case property.TypeHouse, property.TypeVilla, property.TypeMansion,
		property.TypeFarmhouse, property.TypeColonialHouse, property.TypeRanchHouse:
		return true
	}
	return false
}

// CalculateValue prices a property from its attributes. Multipliers are
// applied in a fixed order: tier base, location, age, condition, market
// conditions, then the Extras block (neighborhood, amenities, special
// features, view, oversized lot, economic indicators, renovation potential,
// market trends). Buildings older than 70 years have a seeded 50% chance of a
// historic premium that overrides the age decay; rng drives only that branch.
func CalculateValue(rng *rand.Rand, in ValueInput) (int, error) {
	locMult, err := LocationValueMultiplier(in.Location)
	if err != nil {
		return 0, err
	}

	baseValue := float64(in.Size) * basePricePerSquareMeter(in.Type)

	ageMult := 1.0
	if in.Age != nil {
		age := *in.Age
		switch {
		case age < 2:
			ageMult = 1.1 // new construction premium
		case age < 10:
			ageMult = 1.05
		default:
			ageMult = math.Max(0.6, 1-float64(age)/100*0.4)
		}
		// Some old buildings command a historic premium instead of decay.
		if age > 70 && rng != nil && rng.Float64() > 0.5 {
			ageMult = 1.1
		}
	}

	condMult := 1.0
	if in.Condition != nil {
		// Poor condition (0) is worth 60% of base, perfect (100) 120%.
		condMult = 0.6 + float64(*in.Condition)/100*0.6
	}

	marketMult := 1.0
	if in.Market != nil {
		interestEffect := math.Max(0.85, 1.15-in.Market.InterestRate/20)
		marketMult = in.Market.DemandLevel * interestEffect
	}

	value := baseValue * locMult * ageMult * condMult * marketMult

	if in.Extras != nil {
		value *= extrasMultiplier(in.Type, in.Size, in.Extras)
	}

	return int(math.Round(value)), nil
}

func extrasMultiplier(t property.Type, size int, ex *Extras) float64 {
	mult := 1.0

	switch ex.NeighborhoodQuality {
	case property.NeighborhoodExcellent:
		mult *= 1.25
	case property.NeighborhoodGood:
		mult *= 1.15
	case property.NeighborhoodBelowAverage:
		mult *= 0.9
	case property.NeighborhoodPoor:
		mult *= 0.8
	}

	if ex.Amenities != nil {
		mult *= 0.85 + ex.Amenities.Average()/5*0.3
	}

	if ex.SpecialFeatures != nil {
		mult *= 1.0 + featureBonus(*ex.SpecialFeatures)
	}

	switch ex.ViewQuality {
	case property.ViewScenic:
		mult *= 1.12
	case property.ViewWater:
		mult *= 1.15
	case property.ViewMountain:
		mult *= 1.1
	case property.ViewCity:
		mult *= 1.08
	case property.ViewGarden:
		mult *= 1.05
	}

	if ex.LotSize > 0 && lotSizeEligible(t) {
		baseLot := float64(size) * 2
		if float64(ex.LotSize) > baseLot {
			lotMult := 1.0 + (float64(ex.LotSize)-baseLot)/baseLot*0.2
			mult *= math.Min(lotMult, 1.4) // cap at +40%
		}
	}

	if ex.EconomicIndicators != nil {
		ind := ex.EconomicIndicators
		unemploymentEffect := 1.0 - (ind.UnemploymentRate-5)/100
		jobGrowthEffect := 1.0 + ind.JobGrowth/100
		incomeEffect := math.Min(1.3, math.Max(0.8, float64(ind.MedianIncome)/50000))
		mult *= (unemploymentEffect + jobGrowthEffect + incomeEffect) / 3
	}

	switch ex.RenovationPotential {
	case property.RenovationHigh:
		mult *= 1.08
	case property.RenovationMedium:
		mult *= 1.04
	case property.RenovationLow:
		mult *= 1.01
	}

	if ex.MarketTrends != nil {
		tr := ex.MarketTrends
		appreciationEffect := 1.0 + tr.HistoricalAppreciation/100
		supplyEffect := math.Max(0.9, 1.1-float64(tr.PropertySupply)/100)
		daysEffect := math.Max(0.9, 1.1-float64(tr.AverageDaysOnMarket)/200)
		mult *= (appreciationEffect + supplyEffect + daysEffect) / 3 * tr.Seasonality
	}

	return mult
}

// featureBonus sums the additive special-feature bonuses.
func featureBonus(f property.SpecialFeatures) float64 {
	bonus := 0.0
	if f.SwimmingPool {
		bonus += 0.05
	}
	if f.Garden {
		bonus += 0.03
	}
	if f.RooftopTerrace {
		bonus += 0.04
	}
	if f.Balcony {
		bonus += 0.02
	}
	if f.Fireplace {
		bonus += 0.01
	}
	if f.HomeOffice {
		bonus += 0.02
	}
	if f.Garage {
		bonus += 0.03
	}
	if f.OutdoorSpaces {
		bonus += 0.02
	}
	if f.SmartHome {
		bonus += 0.04
	}
	if f.SecuritySystem {
		bonus += 0.02
	}
	return bonus
}
