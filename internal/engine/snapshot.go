package engine

import (
	"math"
	"time"

	"github.com/mbellver/estatesim/internal/domain/property"
	"github.com/mbellver/estatesim/internal/market"
)

// DebtState is the full banking position for queries.
type DebtState struct {
	TotalDebt           float64        `json:"total_debt"`
	MonthlyRepayment    float64        `json:"monthly_repayment"`
	BaseInterestRate    float64        `json:"base_interest_rate"`
	BankCreditScore     int            `json:"bank_credit_score"`
	MaxLoanAmount       float64        `json:"max_loan_amount"`
	MaxLoanToValueRatio float64        `json:"max_loan_to_value_ratio"`
	ConsecutivePayments int            `json:"consecutive_payments"`
	MissedPayments      int            `json:"missed_payments"`
	PaymentHistory      []LoanPayment  `json:"payment_history"`
	RateHistory         []RateChange   `json:"rate_history"`
	NextRateChangeDate  time.Time      `json:"next_rate_change_date"`
	RateProtection      RateProtection `json:"rate_protection"`
}

// Snapshot is a consistent point-in-time copy of the world for external
// consumers. Everything is copied; mutating a snapshot never touches the
// live world.
type Snapshot struct {
	Date      time.Time `json:"date"`
	TickCount int64     `json:"tick_count"`

	Properties []property.Property `json:"properties"`
	Cash       float64             `json:"cash"`
	Debt       DebtState           `json:"debt"`
	Events     []market.Event      `json:"events"` // active and expired

	MonthlyTaxes       TaxTotals     `json:"monthly_taxes"`
	YearlyTaxesPaid    float64       `json:"yearly_taxes_paid"`
	RecentCapitalGains []CapitalGain `json:"recent_capital_gains"`

	Outsourced []int   `json:"outsourced_properties"`
	Manager    Manager `json:"manager"`

	// Derived figures
	TotalAssetValue     float64 `json:"total_asset_value"`
	CurrentDebtRatio    float64 `json:"current_debt_ratio"`
	MonthlyRentalIncome int     `json:"monthly_rental_income"` // rented units
	DSCR                float64 `json:"dscr"`
	LoanApproval        int     `json:"loan_approval"` // percent
	MaxAvailableLoan    float64 `json:"max_available_loan"`
}

// Snapshot returns a deep copy of the current world state.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	properties := make([]property.Property, len(w.properties))
	copy(properties, w.properties)

	eventsCopy := make([]market.Event, len(w.events))
	copy(eventsCopy, w.events)

	payments := make([]LoanPayment, len(w.paymentHistory))
	copy(payments, w.paymentHistory)

	rates := make([]RateChange, len(w.rateHistory))
	copy(rates, w.rateHistory)

	gains := make([]CapitalGain, len(w.recentCapitalGains))
	copy(gains, w.recentCapitalGains)

	outsourced := make([]int, 0, len(w.outsourced))
	for id := range w.outsourced {
		outsourced = append(outsourced, id)
	}

	assetValue := w.totalAssetValue()

	rentalIncome := 0
	for _, p := range w.properties {
		if p.OwnedByPlayer() && p.IsRented {
			rentalIncome += p.RentPrice
		}
	}

	dscr := 0.0
	if w.monthlyRepayment > 0 {
		dscr = float64(rentalIncome) / w.monthlyRepayment
	}

	return Snapshot{
		Date:       w.currentDate,
		TickCount:  w.tickCount,
		Properties: properties,
		Cash:       w.cash,
		Debt: DebtState{
			TotalDebt:           w.totalDebt,
			MonthlyRepayment:    w.monthlyRepayment,
			BaseInterestRate:    w.baseInterestRate,
			BankCreditScore:     w.bankCreditScore,
			MaxLoanAmount:       w.maxLoanAmount,
			MaxLoanToValueRatio: w.maxLoanToValueRatio,
			ConsecutivePayments: w.consecutivePayments,
			MissedPayments:      w.missedPayments,
			PaymentHistory:      payments,
			RateHistory:         rates,
			NextRateChangeDate:  w.nextRateChangeDate,
			RateProtection:      w.rateProtection,
		},
		Events:             eventsCopy,
		MonthlyTaxes:       w.monthlyTaxes,
		YearlyTaxesPaid:    w.yearlyTaxesPaid,
		RecentCapitalGains: gains,
		Outsourced:         outsourced,
		Manager:            w.manager,

		TotalAssetValue:     assetValue,
		CurrentDebtRatio:    w.currentDebtRatio(),
		MonthlyRentalIncome: rentalIncome,
		DSCR:                dscr,
		LoanApproval:        LoanApprovalProbability(w.bankCreditScore, w.totalDebt, assetValue, w.maxLoanToValueRatio),
		MaxAvailableLoan:    math.Min(w.maxLoanAmount, math.Max(0, assetValue*w.maxLoanToValueRatio-w.totalDebt)),
	}
}
