package engine

import (
	"fmt"
	"math"

	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/market"
)

// serviceMortgage runs the scheduled mortgage payment. An on-time streak
// earns better bank terms at every third payment; misses cost credit score
// and, once they pile up, shrink the lending limits. Callers hold the mutex.
func (w *World) serviceMortgage() {
	if w.totalDebt <= 0 || w.monthlyRepayment <= 0 {
		return
	}

	fee := w.adminFee(w.monthlyRepayment)
	totalDue := w.monthlyRepayment + fee

	if w.cash >= totalDue {
		w.totalDebt = math.Max(0, w.totalDebt-w.monthlyRepayment)
		w.cash -= totalDue

		w.paymentHistory = append([]LoanPayment{{
			Date:   w.currentDate,
			Amount: w.monthlyRepayment,
			Fee:    fee,
		}}, w.paymentHistory...)

		w.consecutivePayments++
		w.missedPayments = 0

		if w.consecutivePayments%3 == 0 {
			w.bankCreditScore = minInt(850, w.bankCreditScore+5)
			w.maxLoanAmount = math.Min(5000000, w.maxLoanAmount*1.05)
			w.maxLoanToValueRatio = math.Min(0.9, w.maxLoanToValueRatio+0.01)
		}

		w.record(events.EntryMortgagePaid, -1, -totalDue,
			fmt.Sprintf("payment $%s, fee $%s", dollars(w.monthlyRepayment), dollars(fee)))
		return
	}

	w.consecutivePayments = 0
	w.missedPayments++
	w.bankCreditScore = maxInt(300, w.bankCreditScore-15)

	if w.missedPayments >= 3 {
		w.maxLoanAmount = math.Max(w.initialMaxLoan/2, w.maxLoanAmount*0.9)
		w.maxLoanToValueRatio = math.Max(0.5, w.maxLoanToValueRatio-0.02)
	}

	w.record(events.EntryMortgageMissed, -1, 0,
		fmt.Sprintf("missed payment, %d consecutive misses", w.missedPayments))
	w.log.Warn("missed loan payment, credit score now %d", w.bankCreditScore)
}

// reviewInterestRate applies the quarterly rate change when due: a small
// random fluctuation plus any interest-rate event impact, clamped to the
// configured band and to the rate-protection cap if one is active. The
// repayment is recomputed against the outstanding balance.
func (w *World) reviewInterestRate() {
	if w.currentDate.Before(w.nextRateChangeDate) {
		return
	}

	prevRate := w.baseInterestRate
	fluctuation := (w.rng.Float64() - 0.5) * 0.01
	impact := market.CalculateImpact(w.activeEvents(), market.ImpactInterestRate, "", "")

	newRate := math.Max(w.cfg.Banking.MinInterestRate,
		math.Min(w.cfg.Banking.MaxInterestRate, prevRate+fluctuation+impact))

	if w.rateProtection.Active && newRate > w.rateProtection.CapRate {
		newRate = w.rateProtection.CapRate
	}

	w.baseInterestRate = newRate
	w.rateHistory = append([]RateChange{{Date: w.currentDate, Rate: newRate}}, w.rateHistory...)
	w.nextRateChangeDate = w.currentDate.AddDate(0, 3, 0)

	w.record(events.EntryRateChanged, -1, 0,
		fmt.Sprintf("rate %.2f%% -> %.2f%%", prevRate*100, newRate*100))

	if w.totalDebt > 0 {
		w.monthlyRepayment = w.totalDebt * (newRate / 12)

		direction := "decreased"
		if newRate > prevRate {
			direction = "increased"
		}
		w.log.Info("interest rates have %s to %.1f%%", direction, newRate*100)
	}
}

// billRateProtection charges the rate-cap premium; the plan auto-cancels on
// the first unaffordable premium. Callers hold the mutex.
func (w *World) billRateProtection() {
	if !w.rateProtection.Active {
		return
	}

	if w.cash >= w.rateProtection.MonthlyCost {
		w.cash -= w.rateProtection.MonthlyCost
		w.record(events.EntryProtectionBilled, -1, -w.rateProtection.MonthlyCost, "rate protection premium")
		return
	}

	w.rateProtection = RateProtection{}
	w.log.Warn("interest rate protection cancelled due to missed payment")
}
