// Package generator builds randomized properties, tenants and lease
// applications. Every function takes an explicit *rand.Rand so world seeds
// replay deterministically in tests.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mbellver/estatesim/internal/domain/property"
	"github.com/mbellver/estatesim/internal/pricing"
)

var adjectives = []string{
	"Spacious", "Cozy", "Luxurious", "Modern", "Elegant", "Rustic", "Charming",
	"Inviting", "Quaint", "Expansive", "Stylish", "Sophisticated", "Contemporary",
	"Secluded", "Grand", "Minimalist", "Vintage", "Picturesque", "Idyllic", "Unique",
}

var marketingAdjectives = []string{
	"hot new", "just listed", "must-see", "unbeatable", "prime", "premium",
	"desirable", "rare find",
}

// allowedTypes maps each location to the property types that can appear there.
// Land is always allowed.
func allowedTypes(loc property.Location) []property.Type {
	switch loc {
	case property.LocationDowntown:
		return []property.Type{
			property.TypeApartment, property.TypeCondo, property.TypeSkyscraperCondo,
			property.TypeCommercial, property.TypeMixedUse, property.TypeLand,
		}
	case property.LocationUrban:
		return []property.Type{
			property.TypeApartment, property.TypeCondo, property.TypeTownhouse,
			property.TypeCommercial, property.TypeIndustrial, property.TypeLand,
			property.TypeMixedUse,
		}
	case property.LocationSuburban:
		return []property.Type{
			property.TypeHouse, property.TypeApartment, property.TypeLand,
			property.TypeMobileHome, property.TypeRanchHouse, property.TypeColonialHouse,
			property.TypeDuplex, property.TypeRowHouse, property.TypeVilla,
			property.TypeBungalow, property.TypeMansion, property.TypeTinyHome,
			property.TypeHouseboat, property.TypeChalet,
		}
	case property.LocationCountry:
		return []property.Type{
			property.TypeHouse, property.TypeFarmhouse, property.TypeCottage,
			property.TypeBungalow, property.TypeChalet, property.TypeLand,
			property.TypeVacation, property.TypeHouseboat, property.TypeCabin,
			property.TypeMansion, property.TypeTinyHome, property.TypeRanchHouse,
			property.TypeColonialHouse,
		}
	default:
		return []property.Type{
			property.TypeHouse, property.TypeApartment, property.TypeCommercial,
			property.TypeLand, property.TypeVacation,
		}
	}
}

func randomLocation(rng *rand.Rand) property.Location {
	locs := property.Locations()
	return locs[rng.Intn(len(locs))]
}

func randomType(rng *rand.Rand, loc property.Location) property.Type {
	types := allowedTypes(loc)
	return types[rng.Intn(len(types))]
}

// randomRooms draws a room count from a type-then-location range.
// Land has no rooms.
func randomRooms(rng *rand.Rand, loc property.Location, t property.Type) *int {
	if t == property.TypeLand {
		return nil
	}

	minRooms, maxRooms := 1, 5
	switch t {
	case property.TypeMansion, property.TypeVilla, property.TypeColonialHouse, property.TypeFarmhouse:
		minRooms, maxRooms = 4, 10
	case property.TypeHouse, property.TypeRanchHouse, property.TypeBungalow, property.TypeDuplex:
		minRooms, maxRooms = 3, 6
	case property.TypeTinyHome, property.TypeMobileHome:
		minRooms, maxRooms = 1, 2
	case property.TypeCommercial, property.TypeIndustrial, property.TypeMixedUse:
		// Rooms here are office/retail units.
		minRooms, maxRooms = 1, 20
	}

	switch loc {
	case property.LocationDowntown:
		if t == property.TypeApartment {
			minRooms, maxRooms = 1, 3
		} else if t == property.TypeCondo {
			minRooms, maxRooms = 2, 4
		}
	case property.LocationUrban:
		if t == property.TypeTownhouse {
			minRooms, maxRooms = 3, 6
		}
	case property.LocationCountry:
		if minRooms < 2 {
			minRooms = 2
		}
		maxRooms += 2
	}

	rooms := rng.Intn(maxRooms-minRooms+1) + minRooms
	return &rooms
}

// randomSize draws a floor area in m². Land is handled on its own scale,
// 5-50x larger in the country.
func randomSize(rng *rand.Rand, loc property.Location, t property.Type) int {
	if t == property.TypeLand {
		minSize, maxSize := 1000, 10000
		if loc == property.LocationCountry {
			minSize, maxSize = 5000, 50000
		}
		return rng.Intn(maxSize-minSize+1) + minSize
	}

	minSize, maxSize := 10, 300
	switch loc {
	case property.LocationDowntown:
		if t == property.TypeApartment {
			minSize, maxSize = 30, 100
		} else if t == property.TypeCondo {
			minSize, maxSize = 50, 150
		}
	case property.LocationUrban:
		if t == property.TypeTownhouse {
			minSize, maxSize = 70, 200
		}
	case property.LocationSuburban:
		if t == property.TypeHouse {
			minSize, maxSize = 100, 300
		}
	case property.LocationCountry:
		if t == property.TypeFarmhouse {
			minSize, maxSize = 150, 400
		}
	}
	return rng.Intn(maxSize-minSize+1) + minSize
}

// randomNeighborhoodQuality draws from a location-biased categorical
// distribution over the five quality buckets.
func randomNeighborhoodQuality(rng *rand.Rand, loc property.Location) property.NeighborhoodQuality {
	qualities := property.NeighborhoodQualities()

	var probs []float64
	switch loc {
	case property.LocationDowntown:
		probs = []float64{0.3, 0.4, 0.2, 0.07, 0.03}
	case property.LocationUrban:
		probs = []float64{0.2, 0.3, 0.3, 0.15, 0.05}
	case property.LocationSuburban:
		probs = []float64{0.15, 0.35, 0.35, 0.1, 0.05}
	case property.LocationCountry:
		probs = []float64{0.1, 0.25, 0.4, 0.15, 0.1}
	default:
		probs = []float64{0.2, 0.2, 0.2, 0.2, 0.2}
	}

	roll := rng.Float64()
	cumulative := 0.0
	for i, q := range qualities {
		cumulative += probs[i]
		if roll < cumulative {
			return q
		}
	}
	return property.NeighborhoodAverage
}

// randomViewQuality first rolls whether the property has any view at all,
// then picks a kind with location-weighted shortcuts.
func randomViewQuality(rng *rand.Rand, loc property.Location, t property.Type) property.ViewQuality {
	viewProbability := 0.3
	switch {
	case t == property.TypeMansion || t == property.TypeVilla || t == property.TypeSkyscraperCondo:
		viewProbability = 0.8
	case loc == property.LocationCountry:
		viewProbability = 0.6
	case loc == property.LocationDowntown:
		viewProbability = 0.5
	}

	if rng.Float64() > viewProbability {
		return property.ViewNone
	}

	if loc == property.LocationCountry && rng.Float64() < 0.7 {
		if rng.Float64() < 0.6 {
			return property.ViewScenic
		}
		return property.ViewMountain
	}
	if loc == property.LocationDowntown && rng.Float64() < 0.8 {
		return property.ViewCity
	}

	views := property.ViewQualities()
	return views[rng.Intn(len(views))]
}

// randomAmenities centers each 0-5 score on location base values with ±1
// uniform noise.
func randomAmenities(rng *rand.Rand, loc property.Location) property.Amenities {
	var base property.Amenities
	switch loc {
	case property.LocationDowntown:
		base = property.Amenities{Schools: 3, Parks: 2, Shopping: 5, Transportation: 5, Healthcare: 4}
	case property.LocationUrban:
		base = property.Amenities{Schools: 3.5, Parks: 3, Shopping: 4, Transportation: 4, Healthcare: 3.5}
	case property.LocationSuburban:
		base = property.Amenities{Schools: 4, Parks: 4, Shopping: 3, Transportation: 2.5, Healthcare: 3}
	case property.LocationCountry:
		base = property.Amenities{Schools: 2, Parks: 5, Shopping: 1.5, Transportation: 1, Healthcare: 1.5}
	}

	adjust := func(score float64) float64 {
		return math.Max(0, math.Min(5, score+rng.Float64()*2-1))
	}
	return property.Amenities{
		Schools:        adjust(base.Schools),
		Parks:          adjust(base.Parks),
		Shopping:       adjust(base.Shopping),
		Transportation: adjust(base.Transportation),
		Healthcare:     adjust(base.Healthcare),
	}
}

// randomSpecialFeatures rolls each feature flag with a chance weighted by
// the property type's compatibility and how high-end the property is
// (valueTier in 0-1).
func randomSpecialFeatures(rng *rand.Rand, t property.Type, valueTier float64) property.SpecialFeatures {
	chance := func(base, compatibility float64) float64 {
		return base * compatibility * (0.2 + valueTier*0.8)
	}

	poolCompat := 0.1
	switch t {
	case property.TypeHouse:
		poolCompat = 0.6
	case property.TypeMansion:
		poolCompat = 0.9
	case property.TypeVilla:
		poolCompat = 0.8
	}

	gardenCompat := 0.2
	switch t {
	case property.TypeHouse, property.TypeCottage:
		gardenCompat = 0.8
	case property.TypeFarmhouse, property.TypeVilla, property.TypeMansion:
		gardenCompat = 0.9
	}

	terraceBase := 0.1
	if t == property.TypeSkyscraperCondo {
		terraceBase = 0.6
	}
	balconyBase := 0.3
	if t == property.TypeApartment || t == property.TypeCondo {
		balconyBase = 0.7
	}
	garageBase := 0.2
	if t == property.TypeHouse || t == property.TypeVilla || t == property.TypeMansion {
		garageBase = 0.8
	}

	return property.SpecialFeatures{
		SwimmingPool:   rng.Float64() < chance(0.3, poolCompat),
		Garden:         rng.Float64() < chance(0.5, gardenCompat),
		RooftopTerrace: rng.Float64() < terraceBase*valueTier,
		Balcony:        rng.Float64() < balconyBase*valueTier,
		Fireplace:      rng.Float64() < 0.4*valueTier,
		HomeOffice:     rng.Float64() < 0.5*valueTier,
		Garage:         rng.Float64() < garageBase*valueTier,
		OutdoorSpaces:  rng.Float64() < 0.6*valueTier,
		SmartHome:      rng.Float64() < 0.3*valueTier,
		SecuritySystem: rng.Float64() < 0.4*valueTier,
	}
}

// randomRenovationPotential grades upside by age. Land uses its own
// development-potential distribution.
func randomRenovationPotential(rng *rand.Rand, buildingDate, now time.Time, t property.Type) property.RenovationPotential {
	if t == property.TypeLand {
		switch roll := rng.Float64(); {
		case roll < 0.3:
			return property.RenovationHigh
		case roll < 0.6:
			return property.RenovationMedium
		case roll < 0.8:
			return property.RenovationLow
		default:
			return property.RenovationNone // protected or hard to develop
		}
	}

	age := now.Year() - buildingDate.Year()
	switch {
	case age < 5:
		if rng.Float64() < 0.1 {
			return property.RenovationLow
		}
		return property.RenovationNone
	case age < 15:
		if rng.Float64() < 0.7 {
			return property.RenovationLow
		}
		return property.RenovationMedium
	case age < 30:
		if rng.Float64() < 0.6 {
			return property.RenovationMedium
		}
		return property.RenovationHigh
	default:
		return property.RenovationHigh
	}
}

// randomEconomicIndicators perturbs location base figures with noise.
func randomEconomicIndicators(rng *rand.Rand, loc property.Location) property.EconomicIndicators {
	var unemployment, jobGrowth float64
	var population, medianIncome int
	switch loc {
	case property.LocationDowntown:
		unemployment, jobGrowth, population, medianIncome = 4, 2.3, 500000, 75000
	case property.LocationUrban:
		unemployment, jobGrowth, population, medianIncome = 4.5, 1.8, 300000, 60000
	case property.LocationSuburban:
		unemployment, jobGrowth, population, medianIncome = 3.8, 1.5, 150000, 80000
	case property.LocationCountry:
		unemployment, jobGrowth, population, medianIncome = 5.2, 0.8, 50000, 55000
	}

	return property.EconomicIndicators{
		UnemploymentRate: unemployment + (rng.Float64()*2 - 1),
		JobGrowth:        jobGrowth + (rng.Float64() - 0.5),
		Population:       int(math.Round(float64(population) * (0.9 + rng.Float64()*0.2))),
		MedianIncome:     int(math.Round(float64(medianIncome) * (0.9 + rng.Float64()*0.2))),
	}
}

// randomMarketTrends derives supply and days-on-market comparatively from the
// existing inventory when comparables exist, otherwise randomizes them.
func randomMarketTrends(rng *rand.Rand, loc property.Location, t property.Type, now time.Time, existing []property.Property) property.MarketTrends {
	var appreciation float64
	switch loc {
	case property.LocationDowntown:
		appreciation = 3.5
	case property.LocationUrban:
		appreciation = 2.8
	case property.LocationSuburban:
		appreciation = 2.5
	case property.LocationCountry:
		appreciation = 1.8
	default:
		appreciation = 2.0
	}
	switch t {
	case property.TypeCommercial, property.TypeMixedUse:
		appreciation += 0.5
	case property.TypeMansion, property.TypeVilla:
		appreciation += 0.3
	}

	supply := 0
	totalDays, comparables := 0, 0
	for _, p := range existing {
		if p.Type != t || p.Location != loc {
			continue
		}
		if p.Owner == "" {
			supply++
		}
		days := p.TimeOnMarket
		if days == 0 {
			days = int(math.Ceil(now.Sub(p.ListedDate).Hours() / 24))
		}
		totalDays += days
		comparables++
	}
	if supply == 0 {
		supply = rng.Intn(25) + 5 // 5-30 listings
	}

	var averageDays int
	if comparables > 0 {
		averageDays = int(math.Ceil(float64(totalDays) / float64(comparables)))
		if averageDays < 5 {
			averageDays = 5
		}
	} else {
		averageDays = rng.Intn(60) + 20 // 20-80 days
	}

	return property.MarketTrends{
		HistoricalAppreciation: appreciation + (rng.Float64()*2 - 1),
		PropertySupply:         supply,
		AverageDaysOnMarket:    averageDays,
		Seasonality:            SeasonalityFor(now.Month()),
	}
}

// SeasonalityFor maps a calendar month to the market seasonality multiplier.
// Spring and fall run hot, winter runs slow.
func SeasonalityFor(m time.Month) float64 {
	switch {
	case m >= time.March && m <= time.May:
		return 1.1
	case m >= time.September && m <= time.November:
		return 1.05
	case m == time.December || m <= time.February:
		return 0.9
	default:
		return 1.0
	}
}

// randomLotSize returns 0 for types without a lot.
func randomLotSize(rng *rand.Rand, t property.Type, size int) int {
	multiplier := 0.0
	switch t {
	case property.TypeMansion:
		multiplier = 10
	case property.TypeVilla:
		multiplier = 7
	case property.TypeFarmhouse:
		multiplier = 20
	case property.TypeRanchHouse:
		multiplier = 15
	case property.TypeHouse, property.TypeColonialHouse:
		multiplier = 3
	default:
		return 0
	}
	variation := 0.5 + rng.Float64()
	return int(math.Round(float64(size) * multiplier * variation))
}

// valueTier scores 0-1 how high-end the property is; it gates feature rolls.
func valueTier(loc property.Location, t property.Type, nq property.NeighborhoodQuality) float64 {
	tier := 0.2
	switch nq {
	case property.NeighborhoodExcellent:
		tier = 1
	case property.NeighborhoodGood:
		tier = 0.8
	case property.NeighborhoodAverage:
		tier = 0.6
	case property.NeighborhoodBelowAverage:
		tier = 0.4
	}
	if t == property.TypeMansion || t == property.TypeVilla {
		tier += 0.3
	}
	if loc == property.LocationDowntown {
		tier += 0.2
	}
	return tier / 1.5
}

// GenerateProperty constructs one fully-specified property. existing is the
// inventory generated so far; market-trend stats are comparative against it.
func GenerateProperty(rng *rand.Rand, id int, now time.Time, existing []property.Property) (property.Property, error) {
	loc := randomLocation(rng)
	adjective := adjectives[rng.Intn(len(adjectives))]
	address := fmt.Sprintf("%d %s St, %s", rng.Intn(10000), adjective, loc)
	t := randomType(rng, loc)

	// Built some time within the last 100 years.
	ageDays := rng.Int63n(100 * 365)
	buildingDate := now.AddDate(0, 0, -int(ageDays))

	condition := rng.Intn(101)
	size := randomSize(rng, loc, t)
	rooms := randomRooms(rng, loc, t)

	nq := randomNeighborhoodQuality(rng, loc)
	view := randomViewQuality(rng, loc, t)
	amenities := randomAmenities(rng, loc)
	lotSize := randomLotSize(rng, t, size)
	renovation := randomRenovationPotential(rng, buildingDate, now, t)
	indicators := randomEconomicIndicators(rng, loc)
	trends := randomMarketTrends(rng, loc, t, now, existing)
	features := randomSpecialFeatures(rng, t, valueTier(loc, t, nq))

	age := now.Year() - buildingDate.Year()
	value, err := pricing.CalculateValue(rng, pricing.ValueInput{
		Size:      size,
		Type:      t,
		Location:  loc,
		Age:       &age,
		Condition: &condition,
		Extras: &pricing.Extras{
			NeighborhoodQuality: nq,
			Amenities:           &amenities,
			SpecialFeatures:     &features,
			ViewQuality:         view,
			LotSize:             lotSize,
			EconomicIndicators:  &indicators,
			RenovationPotential: renovation,
			MarketTrends:        &trends,
		},
	})
	if err != nil {
		return property.Property{}, fmt.Errorf("value property %d: %w", id, err)
	}

	marketPrice := int(math.Floor(float64(value) * (0.9 + rng.Float64()*0.2))) // ±10% of value
	rent, err := pricing.CalculateRent(loc, size, float64(condition)/100, t, value)
	if err != nil {
		return property.Property{}, fmt.Errorf("rent property %d: %w", id, err)
	}

	purpose := property.PurposeHousing
	if rng.Float64() < 0.5 {
		purpose = property.PurposeBusiness
	}

	marketing := marketingAdjectives[rng.Intn(len(marketingAdjectives))]
	var description string
	if t == property.TypeLand {
		description = fmt.Sprintf("%s %d m² %s with %s development potential in %s.",
			marketing, size, t, renovation, loc)
	} else {
		unit := "rooms"
		if *rooms == 1 {
			unit = "room"
		}
		description = fmt.Sprintf("%s %s %s with %d %s located in %s.",
			marketing, adjective, t, *rooms, unit, loc)
	}

	return property.Property{
		ID:                        id,
		Address:                   address,
		Description:               description,
		Adjective:                 adjective,
		Type:                      t,
		Size:                      size,
		Rooms:                     rooms,
		LotSize:                   lotSize,
		BuildingDate:              buildingDate,
		Location:                  loc,
		NeighborhoodQuality:       nq,
		ViewQuality:               view,
		Amenities:                 amenities,
		SpecialFeatures:           features,
		RenovationPotential:       renovation,
		EconomicIndicators:        indicators,
		MarketTrends:              trends,
		Value:                     value,
		MarketPrice:               marketPrice,
		RenovationBonusPercentage: condition,
		MaintenanceCosts:          pricing.CalculateMaintenanceCost(loc, size, value, t),
		RentPrice:                 rent,
		IntendedPurpose:           purpose,
		Owner:                     "",
		ListedDate:                now,
		TimeOnMarket:              rng.Intn(90) + 1,
		IsNew:                     true,
		TenantHistory:             nil,
		TenantEvents:              nil,
		LeaseApplications:         nil,
	}, nil
}

// GenerateProperties builds n properties sequentially, feeding the growing
// list back in so later properties' supply and days-on-market stats reflect
// earlier ones. The ordering dependency is intentional.
func GenerateProperties(rng *rand.Rand, n int, now time.Time) ([]property.Property, error) {
	properties := make([]property.Property, 0, n)
	for i := 0; i < n; i++ {
		p, err := GenerateProperty(rng, i, now, properties)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, nil
}
