package pricing

import (
	"math"

	"github.com/mbellver/estatesim/internal/domain/property"
)

// RentPerSquareMeter returns the monthly $/m² rent base for a location.
func RentPerSquareMeter(loc property.Location) (float64, error) {
	switch loc {
	case property.LocationDowntown:
		return 35, nil
	case property.LocationUrban:
		return 25, nil
	case property.LocationSuburban:
		return 18, nil
	case property.LocationCountry:
		return 12, nil
	default:
		return 0, property.ErrUnknownLocation{Location: loc}
	}
}

// CalculateRent derives a monthly rent from location, size and condition.
// Passing a property type applies the luxury/commercial/industrial premium,
// and a non-zero property value clamps rent into a 6-12% annual yield band.
func CalculateRent(loc property.Location, size int, conditionMultiplier float64, t property.Type, propertyValue int) (int, error) {
	perSqm, err := RentPerSquareMeter(loc)
	if err != nil {
		return 0, err
	}

	rent := perSqm * float64(size) * conditionMultiplier

	switch t {
	case property.TypeMansion, property.TypeVilla:
		rent *= 1.3
	case property.TypeCommercial, property.TypeMixedUse:
		rent *= 1.4
	case property.TypeIndustrial:
		rent *= 0.8
	}

	if propertyValue > 0 {
		minMonthly := float64(propertyValue) * 0.005 / 12
		maxMonthly := float64(propertyValue) * 0.01 / 12
		if rent < minMonthly {
			rent = minMonthly
		} else if rent > maxMonthly {
			rent = maxMonthly
		}
	}

	return int(math.Round(rent)), nil
}

// CalculateMaintenanceCost estimates the monthly upkeep bill. The model is an
// annual rate on value (2% base, adjusted by location and type) divided by 12,
// floored at $0.50 per m² per month.
func CalculateMaintenanceCost(loc property.Location, size, value int, t property.Type) int {
	rate := 0.02
	switch loc {
	case property.LocationDowntown, property.LocationUrban:
		rate = 0.025
	case property.LocationCountry:
		rate = 0.03 // more land and exposure
	}

	switch t {
	case property.TypeMansion, property.TypeVilla:
		rate += 0.01
	case property.TypeApartment, property.TypeCondo:
		rate -= 0.005
	}

	monthly := float64(value) * rate / 12
	minimum := float64(size) * 0.5
	return int(math.Round(math.Max(monthly, minimum)))
}
