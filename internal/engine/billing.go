package engine

import (
	"fmt"
	"math"

	"github.com/mbellver/estatesim/internal/domain/tenant"
	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/generator"
	"github.com/mbellver/estatesim/internal/market"
)

// advanceDay moves the simulation one day forward and runs the daily and
// monthly work. Callers hold the mutex.
func (w *World) advanceDay() {
	w.currentDate = w.currentDate.AddDate(0, 0, 1)

	if w.currentDate.Day() == 1 {
		w.runMonthlyBilling()
	}

	if w.rng.Float64() < w.cfg.Simulation.DailyTenantEventRoll {
		w.processRandomTenantIncident()
	}
}

// runMonthlyBilling settles the month on the 1st: property tax per owned
// property, a payment roll per tenant, rental income tax and the manager
// fee. The income-tax expense input is last month's property tax, matching
// how the books lag by one cycle.
func (w *World) runMonthlyBilling() {
	totalRentalIncome := 0
	totalPropertyTax := 0

	qualityImpact := market.CalculateImpact(w.activeEvents(), market.ImpactTenantQuality, "", "")

	for i := range w.properties {
		p := &w.properties[i]
		if !p.OwnedByPlayer() {
			continue
		}

		tax, err := w.cfg.Taxes.MonthlyPropertyTax(p.Value, p.Location)
		if err != nil {
			w.log.Error("property tax for %d: %v", p.ID, err)
			continue
		}
		p.PropertyTax = tax
		totalPropertyTax += tax

		if !p.IsRented || p.CurrentTenant == nil {
			continue
		}

		t := p.CurrentTenant
		if w.rng.Float64() < t.PaymentProbability+qualityImpact {
			totalRentalIncome += p.RentPrice
			p.TenantEvents = append(p.TenantEvents, tenant.Event{
				Type:            tenant.EventRentPaid,
				Date:            w.currentDate,
				Description:     "Rent paid on time",
				FinancialImpact: p.RentPrice,
			})
			w.record(events.EntryRentCollected, p.ID, float64(p.RentPrice),
				fmt.Sprintf("rent from %s", t.Name))
		} else {
			p.TenantEvents = append(p.TenantEvents, tenant.Event{
				Type:            tenant.EventRentMissed,
				Date:            w.currentDate,
				Description:     "Rent payment missed",
				FinancialImpact: -p.RentPrice,
			})
			w.record(events.EntryRentMissed, p.ID, 0,
				fmt.Sprintf("missed rent from %s", t.Name))
		}
	}

	incomeTax := w.cfg.Taxes.RentalIncomeTax(totalRentalIncome, w.monthlyTaxes.PropertyTax, false)

	w.cash += float64(totalRentalIncome) - float64(totalPropertyTax) - float64(incomeTax)

	if totalPropertyTax > 0 {
		w.record(events.EntryPropertyTaxCharged, -1, -float64(totalPropertyTax), "monthly property tax")
	}
	if incomeTax > 0 {
		w.record(events.EntryIncomeTaxCharged, -1, -float64(incomeTax), "rental income tax")
	}

	w.monthlyTaxes = TaxTotals{PropertyTax: totalPropertyTax, IncomeTax: incomeTax}
	w.yearlyTaxesPaid += float64(totalPropertyTax + incomeTax)

	if w.manager.Hired {
		w.cash -= w.manager.Fee
		w.record(events.EntryManagerFeeCharged, -1, -w.manager.Fee, "property manager fee")
	}
}

// processRandomTenantIncident picks one occupied property and rolls for a
// damage or complaint incident. Damage repair costs land on the player
// unless the property is outsourced or a manager is hired.
func (w *World) processRandomTenantIncident() {
	var occupied []int
	for i := range w.properties {
		p := &w.properties[i]
		if p.OwnedByPlayer() && p.IsRented && p.CurrentTenant != nil {
			occupied = append(occupied, i)
		}
	}
	if len(occupied) == 0 {
		return
	}

	p := &w.properties[occupied[w.rng.Intn(len(occupied))]]
	t := p.CurrentTenant

	if w.rng.Float64() < 0.7 {
		if w.rng.Float64() >= generator.TenantEventProbability(t, tenant.EventDamage) {
			return
		}
		damageCost := int(math.Round(float64(p.Value) * (0.001 + w.rng.Float64()*0.005)))

		p.TenantEvents = append(p.TenantEvents, tenant.Event{
			Type:        tenant.EventDamage,
			Date:        w.currentDate,
			Description: fmt.Sprintf("Repairs needed: $%d", damageCost),
		})

		if !w.outsourced[p.ID] && !w.manager.Hired {
			w.cash -= float64(damageCost)
			w.record(events.EntryTenantIncident, p.ID, -float64(damageCost),
				fmt.Sprintf("repairs at %s", p.Address))
		}
		return
	}

	if w.rng.Float64() < generator.TenantEventProbability(t, tenant.EventComplaint) {
		p.TenantEvents = append(p.TenantEvents, tenant.Event{
			Type:        tenant.EventComplaint,
			Date:        w.currentDate,
			Description: "Tenant filed a complaint",
		})
		w.record(events.EntryTenantIncident, p.ID, 0, fmt.Sprintf("complaint at %s", p.Address))
	}
}
