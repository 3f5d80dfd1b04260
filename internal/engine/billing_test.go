package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbellver/estatesim/internal/domain/tenant"
	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/market"
)

// rentedHouse wires a reliable tenant into an owned house. A payment
// probability of 1 makes the monthly rent roll deterministic.
func rentedHouse(w *World, id int, payProb float64) int {
	idx := addOwnedHouse(w, id)
	start := w.currentDate
	w.properties[idx].IsRented = true
	w.properties[idx].LeaseStart = &start
	w.properties[idx].LeaseLength = 12
	w.properties[idx].CurrentTenant = &tenant.Tenant{
		ID:                 "t1",
		Name:               "Jordan Reyes",
		PaymentProbability: payProb,
		RentAmount:         w.properties[idx].RentPrice,
	}
	return idx
}

func TestMonthlyBillingCollectsRentAndTaxes(t *testing.T) {
	w := newTestWorld(t)
	rentedHouse(w, 1, 1.0)
	w.cash = 10000

	w.runMonthlyBilling()

	// Rent 2,000 in; 350 property tax (1.4% of 300,000 / 12) and 200 income
	// tax (24,000/year in the 10% bracket) out.
	assert.Equal(t, 10000.0+1450.0, w.cash)
	assert.Equal(t, TaxTotals{PropertyTax: 350, IncomeTax: 200}, w.monthlyTaxes)
	assert.Equal(t, 550.0, w.yearlyTaxesPaid)

	rent := w.ledger.ByType(events.EntryRentCollected)
	require.Len(t, rent, 1)
	assert.Equal(t, 2000.0, rent[0].Amount)

	ptax := w.ledger.ByType(events.EntryPropertyTaxCharged)
	require.Len(t, ptax, 1)
	assert.Equal(t, -350.0, ptax[0].Amount)

	itax := w.ledger.ByType(events.EntryIncomeTaxCharged)
	require.Len(t, itax, 1)
	assert.Equal(t, -200.0, itax[0].Amount)
}

func TestMonthlyBillingMissedRent(t *testing.T) {
	w := newTestWorld(t)
	idx := rentedHouse(w, 1, 0.0)
	w.cash = 10000

	w.runMonthlyBilling()

	// No rent, so only the property tax bites. No income means no income tax.
	assert.Equal(t, 10000.0-350.0, w.cash)

	missed := w.ledger.ByType(events.EntryRentMissed)
	require.Len(t, missed, 1)
	assert.Zero(t, missed[0].Amount)
	assert.Empty(t, w.ledger.ByType(events.EntryRentCollected))

	evts := w.properties[idx].TenantEvents
	require.Len(t, evts, 1)
	assert.Equal(t, tenant.EventRentMissed, evts[0].Type)
}

func TestMonthlyBillingExpensesLagOneCycle(t *testing.T) {
	w := newTestWorld(t)
	rentedHouse(w, 1, 1.0)

	// First month deducts no expenses: the books have no prior property tax.
	w.runMonthlyBilling()
	first := w.monthlyTaxes.IncomeTax
	assert.Equal(t, 200, first)

	// Second month deducts 80% of last month's 350 property tax:
	// (2,000 - 280) * 12 = 20,640/year at 10% -> 172/month.
	w.runMonthlyBilling()
	assert.Equal(t, 172, w.monthlyTaxes.IncomeTax)
}

func TestMonthlyBillingManagerFee(t *testing.T) {
	w := newTestWorld(t)
	w.manager.Hired = true
	w.cash = 10000

	w.runMonthlyBilling()

	assert.Equal(t, 9500.0, w.cash)
	fees := w.ledger.ByType(events.EntryManagerFeeCharged)
	require.Len(t, fees, 1)
	assert.Equal(t, -500.0, fees[0].Amount)
}

func TestMonthlyBillingSkipsMarketProperties(t *testing.T) {
	w := newTestWorld(t)
	addHouse(w, 1) // listed, not owned
	w.cash = 10000

	w.runMonthlyBilling()

	assert.Equal(t, 10000.0, w.cash)
	assert.Zero(t, w.ledger.Len())
}

func TestAdvanceDayRunsBillingOnTheFirst(t *testing.T) {
	w := newTestWorld(t)
	addOwnedHouse(w, 1)
	w.currentDate = time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	w.advanceDay()

	assert.Equal(t, time.February, w.currentDate.Month())
	assert.Equal(t, 1, w.currentDate.Day())
	assert.NotEmpty(t, w.ledger.ByType(events.EntryPropertyTaxCharged))
}

func TestAdvanceDayMidMonthSkipsBilling(t *testing.T) {
	w := newTestWorld(t)
	addOwnedHouse(w, 1)

	w.advanceDay() // Jan 15 -> Jan 16

	assert.Empty(t, w.ledger.ByType(events.EntryPropertyTaxCharged))
}

func TestProcessRandomTenantIncidentNoOccupiedProperties(t *testing.T) {
	w := newTestWorld(t)
	addOwnedHouse(w, 1) // vacant

	w.processRandomTenantIncident()

	assert.Zero(t, w.ledger.Len())
}

func TestClockAdvanceTicks(t *testing.T) {
	w := newTestWorld(t)
	c := NewClock(w)

	c.AdvanceTicks(5)

	snap := w.Snapshot()
	assert.Equal(t, int64(5), snap.TickCount)
	assert.Equal(t, time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC), snap.Date)
}

func TestClockTickExpiresWorldEvents(t *testing.T) {
	w := newTestWorld(t)
	w.cfg.Simulation.EventCheckTicks = 1
	w.events = []market.Event{{
		ID:       "stale-event",
		IsActive: true,
		EndDate:  w.currentDate.AddDate(0, 0, -1),
	}}
	c := NewClock(w)

	c.AdvanceTicks(1)

	assert.False(t, w.events[0].IsActive)
	ended := w.ledger.ByType(events.EntryWorldEventEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, "stale-event", ended[0].Detail)
}

func TestClockPauseAndSpeed(t *testing.T) {
	w := newTestWorld(t)
	c := NewClock(w)

	res := c.SetPaused(true)
	require.True(t, res.OK)
	assert.True(t, c.Paused())

	res = c.SetPaused(false)
	require.True(t, res.OK)
	assert.False(t, c.Paused())

	assert.True(t, c.SetTickRate(SpeedFast).OK)
	assert.False(t, c.SetTickRate(0).OK)
}

// Every ledger amount is the exact cash delta of its operation, so replaying
// the ledger from the starting balance must land on the live cash figure.
func TestLedgerReconcilesWithCash(t *testing.T) {
	w := newTestWorld(t)
	addHouse(w, 1)
	startingCash := w.cash

	require.True(t, w.BuyOrSell(1).OK)        // -200,000
	require.True(t, w.TakeLoan(100000).OK)    // +100,000
	require.True(t, w.RepayLoan(50000).OK)    // -51,000 with fee
	require.True(t, w.BuyOrSell(1).OK)        // sell: +300,000 - 25,000 tax
	w.runMonthlyBilling()                     // nothing owned, no-op

	total := 0.0
	for _, e := range w.ledger.All() {
		total += e.Amount
	}
	assert.InDelta(t, w.cash, startingCash+total, 1e-6)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	w := newTestWorld(t)
	rentedHouse(w, 1, 1.0)
	w.totalDebt = 100000
	w.monthlyRepayment = 500
	w.outsourced[1] = true

	snap := w.Snapshot()

	assert.Equal(t, w.cash, snap.Cash)
	assert.Equal(t, 300000.0, snap.TotalAssetValue)
	assert.InDelta(t, 100000.0/300000.0, snap.CurrentDebtRatio, 1e-9)
	assert.Equal(t, 2000, snap.MonthlyRentalIncome)
	assert.InDelta(t, 4.0, snap.DSCR, 1e-9) // 2,000 rent / 500 repayment
	assert.Equal(t, []int{1}, snap.Outsourced)
	assert.Equal(t, 110000.0, snap.MaxAvailableLoan)

	// Mutating the snapshot leaves the world untouched.
	snap.Properties[0].Value = 1
	assert.Equal(t, 300000, w.properties[0].Value)
}
