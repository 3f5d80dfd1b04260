// Package property defines the core domain entities for properties in the simulation.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package property

import (
	"fmt"
	"time"

	"github.com/mbellver/estatesim/internal/domain/tenant"
)

// Location is the area a property sits in.
type Location string

const (
	LocationDowntown Location = "Downtown"
	LocationUrban    Location = "Urban"
	LocationSuburban Location = "Suburban"
	LocationCountry  Location = "Country"
)

// Locations lists every valid location, in display order.
func Locations() []Location {
	return []Location{LocationDowntown, LocationUrban, LocationSuburban, LocationCountry}
}

// Valid reports whether l is one of the closed location set.
func (l Location) Valid() bool {
	switch l {
	case LocationDowntown, LocationUrban, LocationSuburban, LocationCountry:
		return true
	}
	return false
}

// ErrUnknownLocation is returned by pricing lookups keyed on Location.
type ErrUnknownLocation struct {
	Location Location
}

func (e ErrUnknownLocation) Error() string {
	return fmt.Sprintf("unknown location %q", string(e.Location))
}

// Type classifies a property.
type Type string

const (
	TypeHouse          Type = "House"
	TypeApartment      Type = "Apartment"
	TypeCommercial     Type = "Commercial"
	TypeIndustrial     Type = "Industrial"
	TypeLand           Type = "Land"
	TypeMixedUse       Type = "Mixed Use"
	TypeVacation       Type = "Vacation"
	TypeCondo          Type = "Condo"
	TypeTownhouse      Type = "Townhouse"
	TypeVilla          Type = "Villa"
	TypeBungalow       Type = "Bungalow"
	TypeMansion        Type = "Mansion"
	TypeCottage        Type = "Cottage"
	TypeDuplex         Type = "Duplex"
	TypeFarmhouse      Type = "Farmhouse"
	TypeChalet         Type = "Chalet"
	TypeCabin          Type = "Cabin"
	TypeTinyHome       Type = "Tiny Home"
	TypeRowHouse       Type = "Row House"
	TypeMobileHome     Type = "Mobile Home"
	TypeColonialHouse  Type = "Colonial House"
	TypeRanchHouse     Type = "Ranch House"
	TypeSkyscraperCondo Type = "Skyscraper Condo"
	TypeHouseboat      Type = "Houseboat"
)

// NeighborhoodQuality is a 5-bucket categorical rating.
type NeighborhoodQuality string

const (
	NeighborhoodExcellent    NeighborhoodQuality = "Excellent"
	NeighborhoodGood         NeighborhoodQuality = "Good"
	NeighborhoodAverage      NeighborhoodQuality = "Average"
	NeighborhoodBelowAverage NeighborhoodQuality = "Below Average"
	NeighborhoodPoor         NeighborhoodQuality = "Poor"
)

// NeighborhoodQualities lists the buckets best-to-worst.
func NeighborhoodQualities() []NeighborhoodQuality {
	return []NeighborhoodQuality{
		NeighborhoodExcellent,
		NeighborhoodGood,
		NeighborhoodAverage,
		NeighborhoodBelowAverage,
		NeighborhoodPoor,
	}
}

// ViewQuality describes what a property looks out on.
type ViewQuality string

const (
	ViewScenic   ViewQuality = "Scenic"
	ViewWater    ViewQuality = "Water"
	ViewCity     ViewQuality = "City"
	ViewMountain ViewQuality = "Mountain"
	ViewGarden   ViewQuality = "Garden"
	ViewNone     ViewQuality = "None"
)

// ViewQualities lists the view kinds excluding None.
func ViewQualities() []ViewQuality {
	return []ViewQuality{ViewScenic, ViewWater, ViewCity, ViewMountain, ViewGarden}
}

// RenovationPotential grades how much upside a renovation has.
// For Land it doubles as development potential.
type RenovationPotential string

const (
	RenovationHigh   RenovationPotential = "High"
	RenovationMedium RenovationPotential = "Medium"
	RenovationLow    RenovationPotential = "Low"
	RenovationNone   RenovationPotential = "None"
)

// Amenities holds 0-5 ratings for nearby services.
type Amenities struct {
	Schools        float64 `json:"schools"`
	Parks          float64 `json:"parks"`
	Shopping       float64 `json:"shopping"`
	Transportation float64 `json:"transportation"`
	Healthcare     float64 `json:"healthcare"`
}

// Average returns the mean of the five ratings.
func (a Amenities) Average() float64 {
	return (a.Schools + a.Parks + a.Shopping + a.Transportation + a.Healthcare) / 5
}

// SpecialFeatures are the additive-bonus flags a property can carry.
type SpecialFeatures struct {
	SwimmingPool   bool `json:"swimming_pool"`
	Garden         bool `json:"garden"`
	RooftopTerrace bool `json:"rooftop_terrace"`
	Balcony        bool `json:"balcony"`
	Fireplace      bool `json:"fireplace"`
	HomeOffice     bool `json:"home_office"`
	Garage         bool `json:"garage"`
	OutdoorSpaces  bool `json:"outdoor_spaces"`
	SmartHome      bool `json:"smart_home"`
	SecuritySystem bool `json:"security_system"`
}

// EconomicIndicators describe the local economy around a property.
type EconomicIndicators struct {
	UnemploymentRate float64 `json:"unemployment_rate"` // percentage
	JobGrowth        float64 `json:"job_growth"`        // percentage
	Population       int     `json:"population"`
	MedianIncome     int     `json:"median_income"`
}

// MarketTrends capture comparative market stats for a property's segment.
type MarketTrends struct {
	HistoricalAppreciation float64 `json:"historical_appreciation"` // percent per year
	PropertySupply         int     `json:"property_supply"`         // similar properties on market
	AverageDaysOnMarket    int     `json:"average_days_on_market"`
	Seasonality            float64 `json:"seasonality"` // multiplier, roughly 0.9-1.1
}

// Purpose is the intended use recorded at listing time.
type Purpose string

const (
	PurposeHousing  Purpose = "Housing"
	PurposeBusiness Purpose = "Business"
)

// OwnerPlayer marks a player-owned property; an empty owner means market-listed.
const OwnerPlayer = "Player"

// Property is the full state of a single property.
type Property struct {
	ID          int       `json:"id"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Adjective   string    `json:"adjective"`

	Type         Type      `json:"type"`
	Size         int       `json:"size"` // square meters
	Rooms        *int      `json:"rooms"` // nil iff Type == Land
	LotSize      int       `json:"lot_size,omitempty"` // 0 when not applicable
	BuildingDate time.Time `json:"building_date"`
	Location     Location  `json:"location"`

	NeighborhoodQuality NeighborhoodQuality `json:"neighborhood_quality"`
	ViewQuality         ViewQuality         `json:"view_quality"`
	Amenities           Amenities           `json:"amenities"`
	SpecialFeatures     SpecialFeatures     `json:"special_features"`
	RenovationPotential RenovationPotential `json:"renovation_potential"`
	EconomicIndicators  EconomicIndicators  `json:"economic_indicators"`
	MarketTrends        MarketTrends        `json:"market_trends"`

	Value                     int     `json:"value"`
	MarketPrice               int     `json:"market_price"`
	RenovationBonusPercentage int     `json:"renovation_bonus_percentage"` // 0-100
	MaintenanceCosts          int     `json:"maintenance_costs"`           // monthly
	RentPrice                 int     `json:"rent_price"`                  // monthly
	PropertyTax               int     `json:"property_tax"`                // monthly
	IntendedPurpose           Purpose `json:"intended_purpose"`

	Owner        string     `json:"owner"` // "" or OwnerPlayer
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	ListedDate   time.Time  `json:"listed_date"`
	TimeOnMarket int        `json:"time_on_market"` // days
	IsNew        bool       `json:"is_new"`

	IsRented          bool                      `json:"is_rented"`
	CurrentTenant     *tenant.Tenant            `json:"current_tenant,omitempty"`
	LeaseStart        *time.Time                `json:"lease_start,omitempty"`
	LeaseLength       int                       `json:"lease_length,omitempty"` // months
	TenantHistory     []tenant.Tenant           `json:"tenant_history"`
	TenantEvents      []tenant.Event            `json:"tenant_events"`
	LeaseApplications []tenant.LeaseApplication `json:"lease_applications"`
}

// OwnedByPlayer reports whether the player holds the deed.
func (p *Property) OwnedByPlayer() bool {
	return p.Owner == OwnerPlayer
}

// Age returns the building age in whole years at the given date.
func (p *Property) Age(at time.Time) int {
	return at.Year() - p.BuildingDate.Year()
}

// Validate checks the structural invariants every property must hold.
func (p *Property) Validate() error {
	if !p.Location.Valid() {
		return ErrUnknownLocation{Location: p.Location}
	}
	if (p.Type == TypeLand) != (p.Rooms == nil) {
		return fmt.Errorf("property %d: rooms must be absent iff type is Land", p.ID)
	}
	if p.Type == TypeLand && p.Size < 1000 {
		return fmt.Errorf("property %d: land size %d below 1000 m² minimum", p.ID, p.Size)
	}
	if p.RenovationBonusPercentage < 0 || p.RenovationBonusPercentage > 100 {
		return fmt.Errorf("property %d: renovation bonus %d outside [0,100]", p.ID, p.RenovationBonusPercentage)
	}
	if p.Value < 0 || p.RentPrice < 0 {
		return fmt.Errorf("property %d: negative value or rent", p.ID)
	}
	if p.IsRented && p.CurrentTenant == nil {
		return fmt.Errorf("property %d: rented without a current tenant", p.ID)
	}
	if !p.IsRented && p.CurrentTenant != nil {
		return fmt.Errorf("property %d: tenant present on a vacant property", p.ID)
	}
	return nil
}
