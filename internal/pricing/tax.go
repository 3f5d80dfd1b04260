package pricing

import (
	"math"

	"github.com/mbellver/estatesim/internal/domain/property"
)

// TaxBracket is one step of the progressive income tax schedule.
type TaxBracket struct {
	Threshold int     `yaml:"threshold"` // annual income where the bracket starts
	Rate      float64 `yaml:"rate"`
}

// TaxSchedule holds every tax constant the simulation charges. It is exposed
// through configuration; DefaultTaxSchedule is the statutory baseline.
type TaxSchedule struct {
	PropertyTaxRates      map[property.Location]float64 `yaml:"property_tax_rates"` // annual, fraction of value
	IncomeTaxBrackets     []TaxBracket                  `yaml:"income_tax_brackets"`
	ExpenseDeductionRate  float64                       `yaml:"expense_deduction_rate"`
	CapitalGainsShortTerm float64                       `yaml:"capital_gains_short_term"` // held < 12 months
	CapitalGainsLongTerm  float64                       `yaml:"capital_gains_long_term"`
}

// DefaultTaxSchedule returns the baseline schedule.
func DefaultTaxSchedule() TaxSchedule {
	return TaxSchedule{
		PropertyTaxRates: map[property.Location]float64{
			property.LocationDowntown: 0.018,
			property.LocationUrban:    0.016,
			property.LocationSuburban: 0.014,
			property.LocationCountry:  0.010,
		},
		IncomeTaxBrackets: []TaxBracket{
			{Threshold: 0, Rate: 0.10},
			{Threshold: 50000, Rate: 0.15},
			{Threshold: 100000, Rate: 0.25},
			{Threshold: 250000, Rate: 0.35},
		},
		ExpenseDeductionRate:  0.8,
		CapitalGainsShortTerm: 0.25,
		CapitalGainsLongTerm:  0.15,
	}
}

// MonthlyPropertyTax computes one month of property tax on a value at a
// location. Unknown locations are an input error.
func (s TaxSchedule) MonthlyPropertyTax(value int, loc property.Location) (int, error) {
	rate, ok := s.PropertyTaxRates[loc]
	if !ok {
		return 0, property.ErrUnknownLocation{Location: loc}
	}
	return int(math.Round(float64(value) * rate / 12)), nil
}

// RentalIncomeTax computes progressive tax on monthly rental income with the
// deductible expense allowance. The monthly figure is annualized for bracket
// purposes; set annualEstimate to get the yearly amount instead.
func (s TaxSchedule) RentalIncomeTax(monthlyRentalIncome, monthlyExpenses int, annualEstimate bool) int {
	taxableMonthly := math.Max(0, float64(monthlyRentalIncome)-float64(monthlyExpenses)*s.ExpenseDeductionRate)
	remaining := taxableMonthly * 12

	total := 0.0
	for i, bracket := range s.IncomeTaxBrackets {
		if i == len(s.IncomeTaxBrackets)-1 {
			total += remaining * bracket.Rate
			break
		}
		next := s.IncomeTaxBrackets[i+1]
		bracketIncome := math.Min(remaining, float64(next.Threshold-bracket.Threshold))
		total += bracketIncome * bracket.Rate
		remaining -= bracketIncome
		if remaining <= 0 {
			break
		}
	}

	if annualEstimate {
		return int(math.Round(total))
	}
	return int(math.Round(total / 12))
}

// CapitalGainsTax taxes the profit on a sale. Holding periods of 12 months or
// more qualify for the long-term rate; a sale at or below cost owes nothing.
func (s TaxSchedule) CapitalGainsTax(purchasePrice, salePrice, holdingPeriodMonths int) int {
	profit := salePrice - purchasePrice
	if profit <= 0 {
		return 0
	}
	rate := s.CapitalGainsShortTerm
	if holdingPeriodMonths >= 12 {
		rate = s.CapitalGainsLongTerm
	}
	return int(math.Round(float64(profit) * rate))
}
